// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package slicer partitions a compiled directive set into the per-host,
// per-interface ruleset that gets delivered to each firewall (spec.md
// §4.4), mirroring lib/flcore.py's FireSet.compile_dict().
//
// The matching strategy is a substring test against the host's address,
// an approximation carried over unchanged from the original: it does not
// match subnets, only directives mentioning the exact host address.
package slicer

import (
	"strings"

	"github.com/awesome-security/firelet/internal/compiler"
	"github.com/awesome-security/firelet/internal/model"
)

// Strategy decides whether a directive belongs on a given host interface.
// The default Strategy is AddressSubstring; a subnet-aware strategy can
// be swapped in without changing Slice's callers.
type Strategy interface {
	Matches(directive compiler.Directive, host model.Host) bool
}

// AddressSubstring is the original substring-match strategy: a directive
// belongs to a host interface if its text mentions that interface's
// address anywhere.
type AddressSubstring struct{}

// Matches implements Strategy.
func (AddressSubstring) Matches(d compiler.Directive, host model.Host) bool {
	return strings.Contains(d.Text, host.Address)
}

// Sliced is the per-host, per-interface ruleset: Sliced[host][iface] is
// the ordered directive list for that interface.
type Sliced map[string]map[string][]compiler.Directive

// Slice partitions directives across hosts using strategy. If strategy is
// nil, AddressSubstring is used.
func Slice(directives []compiler.Directive, hosts []model.Host, strategy Strategy) Sliced {
	if strategy == nil {
		strategy = AddressSubstring{}
	}

	out := make(Sliced)
	for _, h := range hosts {
		if _, ok := out[h.Name]; !ok {
			out[h.Name] = make(map[string][]compiler.Directive)
		}
		if _, ok := out[h.Name][h.Iface]; !ok {
			out[h.Name][h.Iface] = nil
		}
		for _, d := range directives {
			if strategy.Matches(d, h) {
				out[h.Name][h.Iface] = append(out[h.Name][h.Iface], d)
			}
		}
	}
	return out
}
