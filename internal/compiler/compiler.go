// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package compiler turns a FireSet's enabled rules into an ordered list
// of iptables directive strings (spec.md §4.3), mirroring
// lib/flcore.py's FireSet.compile(). It performs no rule-graph
// optimization: each enabled rule expands independently, in table order.
package compiler

import (
	"fmt"
	"strings"

	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/model"
	"github.com/awesome-security/firelet/internal/resolver"
	"github.com/awesome-security/firelet/internal/validation"
)

// Directive is one compiled "-A FORWARD ..." line, tagged with the rule
// it came from so the slicer and reconciliation logging can attribute it.
type Directive struct {
	Rule string
	Text string
}

// Compile resolves and expands fs's enabled rules into directives.
// Disabled rules are skipped entirely, matching the original's behavior
// of never emitting a placeholder for them.
func Compile(fs *model.FireSet) ([]Directive, error) {
	if err := fs.RequireClean(); err != nil {
		return nil, err
	}

	res := resolver.New(fs)
	services := make(map[string]model.Service, len(fs.Services)+1)
	for _, s := range fs.Services {
		services[s.Name] = s
	}
	services["*"] = model.Service{Name: "*"} // any protocol, any ports

	var out []Directive
	for _, rule := range fs.Rules {
		if rule.Enabled == "n" {
			continue
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}

		directives, err := compileRule(rule, res, services)
		if err != nil {
			return nil, errors.Attr(err, "rule", rule.Name)
		}
		out = append(out, directives...)
	}
	return out, nil
}

func compileRule(rule model.Rule, res *resolver.Resolver, services map[string]model.Service) ([]Directive, error) {
	srcs, err := res.Resolve(rule.Src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "resolving src %q", rule.Src)
	}
	dsts, err := res.Resolve(rule.Dst)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "resolving dst %q", rule.Dst)
	}

	srcServ, ok := services[rule.SrcService]
	if !ok {
		return nil, errors.Errorf(errors.KindValidation, "unknown service %q", rule.SrcService)
	}
	dstServ, ok := services[rule.DstService]
	if !ok {
		return nil, errors.Errorf(errors.KindValidation, "unknown service %q", rule.DstService)
	}
	if err := validation.ValidateProtocol(srcServ.Protocol); err != nil {
		return nil, err
	}
	if err := validation.ValidateProtocol(dstServ.Protocol); err != nil {
		return nil, err
	}
	if srcServ.Protocol != "" && dstServ.Protocol != "" && srcServ.Protocol != dstServ.Protocol {
		return nil, errors.Errorf(errors.KindValidation, "source and destination protocol must match")
	}

	proto := ""
	switch {
	case dstServ.Protocol != "":
		proto = fmt.Sprintf(" -p %s", strings.ToLower(dstServ.Protocol))
	case srcServ.Protocol != "":
		proto = fmt.Sprintf(" -p %s", strings.ToLower(srcServ.Protocol))
	}

	sports := portClause("--sport", srcServ.Ports)
	dports := portClause("--dport", dstServ.Ports)

	var out []Directive
	for _, s := range srcs {
		for _, d := range dsts {
			srcClause := ""
			if s.CIDR() != "" && s.CIDR() != "0.0.0.0/0" {
				srcClause = fmt.Sprintf(" -s %s", s.CIDR())
			}
			dstClause := ""
			if d.CIDR() != "" && d.CIDR() != "0.0.0.0/0" {
				dstClause = fmt.Sprintf(" -d %s", d.CIDR())
			}

			base := fmt.Sprintf("-A FORWARD%s%s%s%s%s", proto, srcClause, sports, dstClause, dports)
			if rule.LogLevel > 0 {
				out = append(out, Directive{
					Rule: rule.Name,
					Text: fmt.Sprintf("%s --log-level %d --log-prefix %s -j LOG", base, rule.LogLevel, rule.Name),
				})
			}
			out = append(out, Directive{Rule: rule.Name, Text: fmt.Sprintf("%s -j %s", base, rule.Action)})
		}
	}
	return out, nil
}

// portClause renders a comma-separated port list as an iptables match
// clause, adding "-m multiport" only when more than one port/range is
// listed, matching the original's punctuation-based heuristic.
func portClause(flag, ports string) string {
	if ports == "" {
		return ""
	}
	multi := ""
	if strings.Contains(ports, ",") {
		multi = " -m multiport"
	}
	return fmt.Sprintf("%s %s %s", multi, flag, ports)
}

// String renders directives joined by newlines, the form the CLI's
// compile and slice subcommands print.
func String(directives []Directive) string {
	lines := make([]string, len(directives))
	for i, d := range directives {
		lines[i] = d.Text
	}
	return strings.Join(lines, "\n")
}
