package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awesome-security/firelet/internal/compiler"
	"github.com/awesome-security/firelet/internal/model"
)

func TestSliceAddressSubstringMatch(t *testing.T) {
	directives := []compiler.Directive{
		{Rule: "r1", Text: "-A FORWARD -s 10.0.0.1 -j ACCEPT"},
		{Rule: "r2", Text: "-A FORWARD -d 10.0.0.2 -j DROP"},
		{Rule: "r3", Text: "-A FORWARD -j ACCEPT"},
	}
	hosts := []model.Host{
		{Name: "fw1", Iface: "eth0", Address: "10.0.0.1"},
		{Name: "fw2", Iface: "eth0", Address: "10.0.0.2"},
	}

	sliced := Slice(directives, hosts, nil)

	assert.Len(t, sliced["fw1"]["eth0"], 1)
	assert.Equal(t, "r1", sliced["fw1"]["eth0"][0].Rule)

	assert.Len(t, sliced["fw2"]["eth0"], 1)
	assert.Equal(t, "r2", sliced["fw2"]["eth0"][0].Rule)
}

func TestSliceEveryHostGetsAnEntryEvenWithNoMatches(t *testing.T) {
	hosts := []model.Host{{Name: "fw1", Iface: "eth0", Address: "10.0.0.1"}}
	sliced := Slice(nil, hosts, nil)

	ifaces, ok := sliced["fw1"]
	assert.True(t, ok)
	assert.Contains(t, ifaces, "eth0")
	assert.Empty(t, ifaces["eth0"])
}

type alwaysMatch struct{}

func (alwaysMatch) Matches(compiler.Directive, model.Host) bool { return true }

func TestSliceCustomStrategy(t *testing.T) {
	directives := []compiler.Directive{{Rule: "r1", Text: "anything"}}
	hosts := []model.Host{{Name: "fw1", Iface: "eth0", Address: "10.0.0.1"}}

	sliced := Slice(directives, hosts, alwaysMatch{})
	assert.Len(t, sliced["fw1"]["eth0"], 1)
}
