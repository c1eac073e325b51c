// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesome-security/firelet/internal/model"
)

func fixtureFireSet() *model.FireSet {
	return model.New(
		nil,
		[]model.Host{
			{Name: "fw1", Iface: "eth0", Address: "10.0.0.1", IsManagement: true},
			{Name: "fw2", Iface: "eth0", Address: "10.0.0.2", IsManagement: true},
		},
		[]model.HostGroup{
			{Name: "firewalls", Children: []string{"fw1:eth0", "fw2:eth0"}},
			{Name: "everything", Children: []string{"firewalls", "lan"}},
			{Name: "cycle-a", Children: []string{"cycle-b"}},
			{Name: "cycle-b", Children: []string{"cycle-a"}},
		},
		nil,
		[]model.Network{
			{Name: "lan", Address: "192.168.1.0", PrefixLen: 24},
		},
	)
}

func TestResolveWildcard(t *testing.T) {
	r := New(fixtureFireSet())
	eps, err := r.Resolve("*")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "0.0.0.0/0", eps[0].CIDR())
}

func TestResolveHostInterface(t *testing.T) {
	r := New(fixtureFireSet())
	eps, err := r.Resolve("fw1:eth0")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "10.0.0.1", eps[0].CIDR())
}

func TestResolveNetwork(t *testing.T) {
	r := New(fixtureFireSet())
	eps, err := r.Resolve("lan")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "192.168.1.0/24", eps[0].CIDR())
}

func TestResolveHostGroupFlattensRecursively(t *testing.T) {
	r := New(fixtureFireSet())
	eps, err := r.Resolve("everything")
	require.NoError(t, err)

	var cidrs []string
	for _, e := range eps {
		cidrs = append(cidrs, e.CIDR())
	}
	assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2", "192.168.1.0/24"}, cidrs)
}

func TestResolveCyclicHostGroup(t *testing.T) {
	r := New(fixtureFireSet())
	_, err := r.Resolve("cycle-a")
	assert.Error(t, err)
}

func TestResolveUnknownEndpoint(t *testing.T) {
	r := New(fixtureFireSet())
	_, err := r.Resolve("does-not-exist")
	assert.Error(t, err)
}
