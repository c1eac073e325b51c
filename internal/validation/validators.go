// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package validation holds the identifier and field validators shared by
// the object model and the rule compiler.
package validation

import (
	"regexp"
	"strings"

	"github.com/awesome-security/firelet/internal/errors"
)

var (
	// ruleNameRegex enforces spec.md §3's rule name constraint
	// ([A-Za-z0-9_-]+), previously documented but never validated in the
	// original implementation.
	ruleNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// interfaceNameRegex bounds interface names the way real NICs and
	// VLAN sub-interfaces are named.
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]{1,15}$`)

	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidateRuleName validates a Rule.Name field.
func ValidateRuleName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "rule name cannot be empty")
	}
	if !ruleNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid rule name %q: must match [A-Za-z0-9_-]+", name)
	}
	return nil
}

// ValidateInterfaceName validates a network interface name.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return errors.New(errors.KindValidation, "interface name cannot be empty")
	}
	if !interfaceNameRegex.MatchString(name) {
		return errors.Errorf(errors.KindValidation, "invalid interface name %q", name)
	}
	for _, c := range dangerousChars {
		if strings.Contains(name, c) {
			return errors.Errorf(errors.KindValidation, "interface name %q contains dangerous character %q", name, c)
		}
	}
	return nil
}

// ValidateEnabledFlag validates the Rule.Enabled field ('y' or 'n').
func ValidateEnabledFlag(v string) error {
	if v != "y" && v != "n" {
		return errors.Errorf(errors.KindValidation, `enabled field must be "y" or "n", got %q`, v)
	}
	return nil
}

// ValidateAction validates the Rule.Action field.
func ValidateAction(v string) error {
	if v != "ACCEPT" && v != "DROP" {
		return errors.Errorf(errors.KindValidation, `action field must be "ACCEPT" or "DROP", got %q`, v)
	}
	return nil
}

// validProtocols mirrors spec.md §3's Service.protocol enumeration.
var validProtocols = map[string]bool{
	"IP": true, "TCP": true, "UDP": true, "OSPF": true,
	"IS-IS": true, "SCTP": true, "AH": true, "ESP": true,
}

// ValidateProtocol validates a Service.protocol value.
func ValidateProtocol(p string) error {
	if p == "" {
		return nil
	}
	if !validProtocols[p] {
		return errors.Errorf(errors.KindValidation, "unknown protocol %q", p)
	}
	return nil
}
