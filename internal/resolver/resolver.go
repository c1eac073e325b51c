// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package resolver turns the endpoint strings used in Rule.Src/Dst
// ("*", "host:iface", a network name, or a host group name) into the set
// of concrete addresses the compiler expands into directives (spec.md
// §4.2), mirroring lib/flcore.py's res()/_flattenhg.
package resolver

import (
	"strconv"
	"strings"

	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/model"
)

// Endpoint is one resolved address: either a bare host address or a
// network in CIDR form.
type Endpoint struct {
	Addr      string
	IsNetwork bool
	PrefixLen int
}

// Resolver resolves Rule.Src/Dst endpoint strings against a FireSet's
// host, network, and host group tables.
type Resolver struct {
	hostByNameIface map[string]string // "name:iface" -> address
	networkByName   map[string]model.Network
	groupByName     map[string]model.HostGroup
}

// New indexes fs's tables for repeated Resolve calls.
func New(fs *model.FireSet) *Resolver {
	r := &Resolver{
		hostByNameIface: make(map[string]string),
		networkByName:   make(map[string]model.Network),
		groupByName:     make(map[string]model.HostGroup),
	}
	for _, h := range fs.Hosts {
		r.hostByNameIface[h.Name+":"+h.Iface] = h.Address
	}
	for _, n := range fs.Networks {
		r.networkByName[n.Name] = n
	}
	for _, g := range fs.HostGroups {
		r.groupByName[g.Name] = g
	}
	return r
}

// Resolve expands endpoint into its concrete set of Endpoints.
//
//   - "*" resolves to the single wildcard network 0.0.0.0/0.
//   - "host:iface" resolves to that interface's address.
//   - a network name resolves to that network's CIDR.
//   - a host group name resolves recursively through its children,
//     de-duplicating repeated members and erroring on a membership cycle.
func (r *Resolver) Resolve(endpoint string) ([]Endpoint, error) {
	if endpoint == "*" {
		return []Endpoint{{Addr: "0.0.0.0", IsNetwork: true, PrefixLen: 0}}, nil
	}

	if addr, ok := r.hostByNameIface[endpoint]; ok {
		return []Endpoint{{Addr: addr}}, nil
	}

	if n, ok := r.networkByName[endpoint]; ok {
		return []Endpoint{{Addr: n.Address, IsNetwork: true, PrefixLen: n.PrefixLen}}, nil
	}

	if _, ok := r.groupByName[endpoint]; ok {
		seen := make(map[string]bool)
		var out []Endpoint
		if err := r.flattenGroup(endpoint, seen, map[string]bool{}, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, errors.Errorf(errors.KindValidation, "unknown endpoint %q", endpoint)
}

// flattenGroup recursively resolves group's children into out, tracking
// visiting to detect cycles and seen to de-duplicate resolved addresses.
func (r *Resolver) flattenGroup(group string, seen map[string]bool, visiting map[string]bool, out *[]Endpoint) error {
	if visiting[group] {
		return errors.Errorf(errors.KindValidation, "cyclic host group membership at %q", group)
	}
	visiting[group] = true
	defer delete(visiting, group)

	g, ok := r.groupByName[group]
	if !ok {
		return errors.Errorf(errors.KindValidation, "unknown host group %q", group)
	}

	for _, child := range g.Children {
		if strings.Contains(child, ":") {
			addr, ok := r.hostByNameIface[child]
			if !ok {
				return errors.Errorf(errors.KindValidation, "unknown endpoint %q in host group %q", child, group)
			}
			if !seen[addr] {
				seen[addr] = true
				*out = append(*out, Endpoint{Addr: addr})
			}
			continue
		}
		if n, ok := r.networkByName[child]; ok {
			key := n.Address + "/" + strconv.Itoa(n.PrefixLen)
			if !seen[key] {
				seen[key] = true
				*out = append(*out, Endpoint{Addr: n.Address, IsNetwork: true, PrefixLen: n.PrefixLen})
			}
			continue
		}
		if _, ok := r.groupByName[child]; ok {
			if err := r.flattenGroup(child, seen, visiting, out); err != nil {
				return err
			}
			continue
		}
		return errors.Errorf(errors.KindValidation, "unknown member %q of host group %q", child, group)
	}
	return nil
}

// CIDR renders an Endpoint as a dotted-quad or CIDR string suitable for a
// packet-filter address match.
func (e Endpoint) CIDR() string {
	if !e.IsNetwork {
		return e.Addr
	}
	if e.PrefixLen == 0 {
		return "0.0.0.0/0"
	}
	return e.Addr + "/" + strconv.Itoa(e.PrefixLen)
}
