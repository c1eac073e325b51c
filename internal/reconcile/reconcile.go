// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package reconcile checks that each host's actual interface
// configuration matches the object model before a deploy proceeds
// (spec.md §4.7), mirroring lib/flcore.py's FireSet._check_ifaces.
package reconcile

import (
	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/model"
	"github.com/awesome-security/firelet/internal/remoteparse"
)

// HostState is one host's fetched state, as returned by the remote
// session layer and parsed by remoteparse: its interface configuration
// and its currently-applied iptables ruleset.
type HostState struct {
	Hostname   string
	Interfaces map[string]remoteparse.Interface
	IPTables   remoteparse.IPTablesSave
	Reachable  bool
}

// Check compares fs's host/interface table against states, returning one
// error describing the first violation found, or nil if every declared
// host/interface/address matches.
//
// Checks, in order: the host must be reachable (present in states with
// Reachable true), the declared interface must exist on the host, and
// the declared address must equal either the interface's stripped IPv4
// address or its IPv6 address.
func Check(fs *model.FireSet, states map[string]HostState) error {
	for _, h := range fs.Hosts {
		st, ok := states[h.Name]
		if !ok || !st.Reachable {
			return errors.Attr(errors.Errorf(errors.KindUnavailable, "host %q not available", h.Name), "host", h.Name)
		}

		iface, ok := st.Interfaces[h.Iface]
		if !ok {
			return errors.Attr(errors.Errorf(errors.KindConflict, "interface %q missing on host %q", h.Iface, h.Name), "host", h.Name)
		}

		if h.Address != iface.IPv4Address() && h.Address != iface.IPv6Address() {
			return errors.Attr(errors.Errorf(errors.KindConflict,
				"wrong address on host %q interface %q: declared %q, actual v4=%q v6=%q",
				h.Name, h.Iface, h.Address, iface.IPv4Address(), iface.IPv6Address()), "host", h.Name)
		}
	}
	return nil
}
