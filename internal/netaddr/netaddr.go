// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package netaddr implements IPv4 address/network arithmetic: computing
// the canonical network address of addr/prefix (used by
// model.Network.Normalize), and containment of a host or subnet in a
// network.
//
// This is 32-bit unsigned arithmetic only (spec.md §4.1): IPv6 addresses
// are carried through the model but never run through NetworkOf/Contains.
package netaddr

import (
	"fmt"
	"net/netip"

	"github.com/awesome-security/firelet/internal/errors"
)

// NetworkOf returns the canonical network address of addr/prefixLen: addr
// with every bit below prefixLen cleared. addr must be a dotted-quad IPv4
// address.
func NetworkOf(addr string, prefixLen int) (string, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "", errors.Wrapf(err, errors.KindValidation, "invalid IPv4 address %q", addr)
	}
	if !ip.Is4() {
		return "", errors.Errorf(errors.KindValidation, "not an IPv4 address: %q", addr)
	}
	if prefixLen < 0 || prefixLen > 32 {
		return "", errors.Errorf(errors.KindValidation, "invalid IPv4 prefix length: %d", prefixLen)
	}

	prefix := netip.PrefixFrom(ip, prefixLen).Masked()
	return prefix.Addr().String(), nil
}

// ContainsHost reports whether hostAddr falls inside the network
// netAddr/prefixLen.
func ContainsHost(netAddr string, prefixLen int, hostAddr string) (bool, error) {
	canon, err := NetworkOf(hostAddr, prefixLen)
	if err != nil {
		return false, err
	}
	return canon == netAddr, nil
}

// ContainsNetwork reports whether the network otherAddr/otherPrefix falls
// inside netAddr/prefixLen: the other network's address, masked to
// prefixLen, must equal netAddr, and the other network must be at least as
// specific (otherPrefix >= prefixLen).
func ContainsNetwork(netAddr string, prefixLen int, otherAddr string, otherPrefix int) (bool, error) {
	if otherPrefix < prefixLen {
		return false, nil
	}
	canon, err := NetworkOf(otherAddr, prefixLen)
	if err != nil {
		return false, err
	}
	return canon == netAddr, nil
}

// MustNetworkOf is NetworkOf for callers (tests, fixtures) that already
// know addr/prefixLen is well formed.
func MustNetworkOf(addr string, prefixLen int) string {
	n, err := NetworkOf(addr, prefixLen)
	if err != nil {
		panic(fmt.Sprintf("netaddr: %v", err))
	}
	return n
}
