// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awesome-security/firelet/internal/model"
	"github.com/awesome-security/firelet/internal/remoteparse"
)

func fixtureFireSet() *model.FireSet {
	return model.New(nil, []model.Host{
		{Name: "fw1", Iface: "eth0", Address: "10.0.0.1", IsManagement: true},
	}, nil, nil, nil)
}

func TestCheckPasses(t *testing.T) {
	fs := fixtureFireSet()
	states := map[string]HostState{
		"fw1": {
			Hostname:  "fw1",
			Reachable: true,
			Interfaces: map[string]remoteparse.Interface{
				"eth0": {Name: "eth0", IPv4: "10.0.0.1/24"},
			},
		},
	}
	assert.NoError(t, Check(fs, states))
}

func TestCheckHostUnavailable(t *testing.T) {
	fs := fixtureFireSet()
	err := Check(fs, map[string]HostState{})
	assert.Error(t, err)
}

func TestCheckMissingInterface(t *testing.T) {
	fs := fixtureFireSet()
	states := map[string]HostState{
		"fw1": {Hostname: "fw1", Reachable: true, Interfaces: map[string]remoteparse.Interface{}},
	}
	assert.Error(t, Check(fs, states))
}

func TestCheckAddressMismatch(t *testing.T) {
	fs := fixtureFireSet()
	states := map[string]HostState{
		"fw1": {
			Hostname:  "fw1",
			Reachable: true,
			Interfaces: map[string]remoteparse.Interface{
				"eth0": {Name: "eth0", IPv4: "10.0.0.99/24"},
			},
		},
	}
	assert.Error(t, Check(fs, states))
}

func TestCheckAcceptsIPv6Match(t *testing.T) {
	fs := model.New(nil, []model.Host{
		{Name: "fw1", Iface: "eth0", Address: "fe80::1", IsManagement: true},
	}, nil, nil, nil)
	states := map[string]HostState{
		"fw1": {
			Hostname:  "fw1",
			Reachable: true,
			Interfaces: map[string]remoteparse.Interface{
				"eth0": {Name: "eth0", IPv6: "fe80::1/64"},
			},
		},
	}
	assert.NoError(t, Check(fs, states))
}
