// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package model defines the object model edited by the operator and
// consumed by the compiler: Host, Network, HostGroup, Service, Rule, and
// the composite FireSet (spec.md §3).
package model

import (
	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/netaddr"
	"github.com/awesome-security/firelet/internal/validation"
)

// Host is one interface of a physical firewall. Multiple Host rows share
// a Name to represent multiple interfaces; at least one row per Name must
// have IsManagement true, whose Address is used as the remote endpoint.
type Host struct {
	Name         string
	Iface        string
	Address      string
	IsManagement bool
}

// Network is a named IPv4 subnet. Address must equal the canonical network
// address for Address/PrefixLen; Normalize enforces this.
type Network struct {
	Name      string
	Address   string
	PrefixLen int
}

// Normalize recomputes Address as the canonical network address,
// returning true if the stored value had to be corrected (spec.md §3:
// "if not, the model is normalized on load and flagged").
func (n *Network) Normalize() (changed bool, err error) {
	canon, err := netaddr.NetworkOf(n.Address, n.PrefixLen)
	if err != nil {
		return false, err
	}
	changed = canon != n.Address
	n.Address = canon
	return changed, nil
}

// HostGroup is a named set of children, referenced by name against Host,
// Network, or other HostGroup tables at resolution time.
type HostGroup struct {
	Name     string
	Children []string
}

// Service names a protocol and port list. The reserved name "*" means
// "any protocol, any ports" and is synthesized by the compiler rather than
// stored in the table.
type Service struct {
	Name     string
	Protocol string // one of IP, TCP, UDP, OSPF, IS-IS, SCTP, AH, ESP, or ""
	Ports    string // comma-separated ports/ranges, "" means "any port"
}

// Rule is one row of the ordered rule table. Ordering within FireSet.Rules
// is semantically significant: firewalls process rules top-down.
type Rule struct {
	Enabled     string // "y" or "n"
	Name        string
	Src         string
	SrcService  string
	Dst         string
	DstService  string
	Action      string // "ACCEPT" or "DROP"
	LogLevel    int
	Description string
}

// Validate checks the field-level invariants from spec.md §4.3's compiler
// preconditions, independent of endpoint/service resolution.
func (r Rule) Validate() error {
	if err := validation.ValidateRuleName(r.Name); err != nil {
		return err
	}
	if err := validation.ValidateEnabledFlag(r.Enabled); err != nil {
		return errors.Attr(err, "rule", r.Name)
	}
	if err := validation.ValidateAction(r.Action); err != nil {
		return errors.Attr(err, "rule", r.Name)
	}
	if r.LogLevel < 0 {
		return errors.Attr(errors.Errorf(errors.KindValidation, "log_level must be >= 0, got %d", r.LogLevel), "rule", r.Name)
	}
	return nil
}

// FireSet is the five tables loaded as ordered sequences, plus the dirty
// flag gating compile/deploy (spec.md §3's lifecycle).
type FireSet struct {
	Rules      []Rule
	Hosts      []Host
	HostGroups []HostGroup
	Services   []Service
	Networks   []Network

	dirty bool
}

// New builds a FireSet from already-loaded tables. The FireSet starts
// clean: callers that construct it from a freshly-persisted snapshot
// should not need to save before compiling.
func New(rules []Rule, hosts []Host, hostGroups []HostGroup, services []Service, networks []Network) *FireSet {
	return &FireSet{Rules: rules, Hosts: hosts, HostGroups: hostGroups, Services: services, Networks: networks}
}

// Dirty reports whether the FireSet has unsaved edits.
func (f *FireSet) Dirty() bool { return f.dirty }

// MarkSaved clears the dirty flag (spec.md §3: "cleared on save").
func (f *FireSet) MarkSaved() { f.dirty = false }

// MarkDirty flags the FireSet as having unsaved edits, e.g. after a load
// normalizes a table row to its canonical form.
func (f *FireSet) MarkDirty() { f.dirty = true }

// RequireClean returns ConfigurationDirty-kind error if the FireSet has
// unsaved edits; compile and deploy both gate on this (spec.md §3, §7).
func (f *FireSet) RequireClean() error {
	if f.dirty {
		return errors.New(errors.KindConflict, "configuration has unsaved edits; save before compiling or deploying")
	}
	return nil
}

// --- editing operations (lib/flcore.py: FireSet.delete/rule_moveup/... ) ---

// DeleteRule removes rule at index rid.
func (f *FireSet) DeleteRule(rid int) error {
	if rid < 0 || rid >= len(f.Rules) {
		return errors.Errorf(errors.KindValidation, "no rule at index %d", rid)
	}
	f.Rules = append(f.Rules[:rid], f.Rules[rid+1:]...)
	f.dirty = true
	return nil
}

// MoveRuleUp swaps rule rid with its predecessor.
func (f *FireSet) MoveRuleUp(rid int) error {
	if rid <= 0 || rid >= len(f.Rules) {
		return errors.Errorf(errors.KindValidation, "cannot move rule %d up", rid)
	}
	f.Rules[rid-1], f.Rules[rid] = f.Rules[rid], f.Rules[rid-1]
	f.dirty = true
	return nil
}

// MoveRuleDown swaps rule rid with its successor.
func (f *FireSet) MoveRuleDown(rid int) error {
	if rid < 0 || rid >= len(f.Rules)-1 {
		return errors.Errorf(errors.KindValidation, "cannot move rule %d down", rid)
	}
	f.Rules[rid+1], f.Rules[rid] = f.Rules[rid], f.Rules[rid+1]
	f.dirty = true
	return nil
}

// EnableRule sets rule rid's Enabled field to "y".
func (f *FireSet) EnableRule(rid int) error {
	if rid < 0 || rid >= len(f.Rules) {
		return errors.Errorf(errors.KindValidation, "no rule at index %d", rid)
	}
	f.Rules[rid].Enabled = "y"
	f.dirty = true
	return nil
}

// DisableRule sets rule rid's Enabled field to "n".
func (f *FireSet) DisableRule(rid int) error {
	if rid < 0 || rid >= len(f.Rules) {
		return errors.Errorf(errors.KindValidation, "no rule at index %d", rid)
	}
	f.Rules[rid].Enabled = "n"
	f.dirty = true
	return nil
}

// ManagementAddress returns the management address for host name, or a
// KindValidation error if no row for name is flagged IsManagement.
func (f *FireSet) ManagementAddress(name string) (string, error) {
	for _, h := range f.Hosts {
		if h.Name == name && h.IsManagement {
			return h.Address, nil
		}
	}
	return "", errors.Errorf(errors.KindValidation, "no management address for host %q", name)
}

// HostNames returns the distinct set of host names in the table (a host
// with multiple interface rows appears once), in first-seen order.
func (f *FireSet) HostNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, h := range f.Hosts {
		if !seen[h.Name] {
			seen[h.Name] = true
			names = append(names, h.Name)
		}
	}
	return names
}
