// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package remoteparse parses the two command outputs fetched from a
// firewall host during reconciliation: "iptables-save" and "ip addr
// show" (spec.md §4.6), mirroring firelet/flssh.py's
// parse_iptables_save/parse_ip_addr_show.
package remoteparse

import "strings"

// IPTablesSave is the parsed "iptables-save" output, split by table.
// Only lines belonging to the well-known built-in chains are kept.
type IPTablesSave struct {
	Nat    []string
	Filter []string
}

var forwardedChainPrefixes = []string{
	"-A PREROUTING", "-A POSTROUTING", "-A OUTPUT", "-A INPUT", "-A FORWARD",
}

func isRelevantRule(line string) bool {
	for _, p := range forwardedChainPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// block returns the lines between the first occurrence of tag and the
// following "COMMIT" line, exclusive of both, or nil if tag never
// appears.
func block(lines []string, tag string) []string {
	start := -1
	for i, l := range lines {
		if l == tag {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	for i := start + 1; i < len(lines); i++ {
		if lines[i] == "COMMIT" {
			return lines[start+1 : i]
		}
	}
	return nil
}

// ParseIPTablesSave extracts the *nat and *filter tables' FORWARD/INPUT/
// OUTPUT/PRE|POSTROUTING rule lines from an iptables-save dump.
func ParseIPTablesSave(lines []string) IPTablesSave {
	var out IPTablesSave
	for _, l := range block(lines, "*nat") {
		if isRelevantRule(l) {
			out.Nat = append(out.Nat, l)
		}
	}
	for _, l := range block(lines, "*filter") {
		if isRelevantRule(l) {
			out.Filter = append(out.Filter, l)
		}
	}
	return out
}

// Interface is one parsed interface's addresses from "ip addr show".
type Interface struct {
	Name string
	IPv4 string // dotted-quad/prefix, e.g. "10.0.0.1/24", or "" if absent
	IPv6 string
}

// ParseIPAddrShow parses "ip addr show" output into per-interface
// addresses. The first line (kernel loopback index header in some
// formats) is not treated as an interface boundary; any other line not
// starting with two leading spaces begins a new interface block.
func ParseIPAddrShow(lines []string) map[string]Interface {
	out := make(map[string]Interface)
	var cur *Interface

	flush := func() {
		if cur != nil {
			out[cur.Name] = *cur
		}
	}

	for i, line := range lines {
		if i == 0 {
			continue
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "  ") {
			flush()
			fields := strings.Fields(line)
			name := ""
			if len(fields) > 1 {
				name = strings.TrimSuffix(fields[1], ":")
			}
			cur = &Interface{Name: name}
			continue
		}
		if cur == nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "    inet "):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				cur.IPv4 = fields[1]
			}
		case strings.HasPrefix(line, "    inet6 "):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				cur.IPv6 = fields[1]
			}
		}
	}
	flush()
	return out
}

// IPv4Address strips the prefix length from an "ip addr show" IPv4
// field, e.g. "10.0.0.1/24" -> "10.0.0.1".
func (i Interface) IPv4Address() string {
	if idx := strings.IndexByte(i.IPv4, '/'); idx >= 0 {
		return i.IPv4[:idx]
	}
	return i.IPv4
}

// IPv6Address strips the prefix length from an "ip addr show" IPv6
// field, e.g. "fe80::1/64" -> "fe80::1".
func (i Interface) IPv6Address() string {
	if idx := strings.IndexByte(i.IPv6, '/'); idx >= 0 {
		return i.IPv6[:idx]
	}
	return i.IPv6
}
