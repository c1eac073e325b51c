// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesome-security/firelet/internal/model"
)

func TestSaveAndLoadFireSetRoundTrips(t *testing.T) {
	dir := t.TempDir()

	original := model.New(
		[]model.Rule{
			{Enabled: "y", Name: "allow_web", Src: "lan", SrcService: "*", Dst: "*", DstService: "http", Action: "ACCEPT", LogLevel: 2, Description: "web traffic"},
		},
		[]model.Host{
			{Name: "fw1", Iface: "eth0", Address: "10.0.0.1", IsManagement: true},
		},
		[]model.HostGroup{
			{Name: "firewalls", Children: []string{"fw1:eth0"}},
		},
		[]model.Service{
			{Name: "http", Protocol: "TCP", Ports: "80"},
		},
		[]model.Network{
			{Name: "lan", Address: "192.168.1.0", PrefixLen: 24},
		},
	)

	require.NoError(t, SaveFireSet(dir, original))
	assert.False(t, original.Dirty())

	loaded, err := LoadFireSet(dir)
	require.NoError(t, err)

	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "allow_web", loaded.Rules[0].Name)
	assert.Equal(t, 2, loaded.Rules[0].LogLevel)

	require.Len(t, loaded.Hosts, 1)
	assert.Equal(t, "10.0.0.1", loaded.Hosts[0].Address)
	assert.True(t, loaded.Hosts[0].IsManagement)

	require.Len(t, loaded.HostGroups, 1)
	assert.Equal(t, []string{"fw1:eth0"}, loaded.HostGroups[0].Children)

	require.Len(t, loaded.Services, 1)
	assert.Equal(t, "TCP", loaded.Services[0].Protocol)

	require.Len(t, loaded.Networks, 1)
	assert.Equal(t, 24, loaded.Networks[0].PrefixLen)
}

func TestLoadFireSetEmptyDirReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	fs, err := LoadFireSet(dir)
	require.NoError(t, err)
	assert.Empty(t, fs.Rules)
	assert.Empty(t, fs.Hosts)
}

func TestLoadNetworksNormalizesAndFlagsFireSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveNetworks(dir, []model.Network{
		{Name: "lan", Address: "192.168.1.5", PrefixLen: 24},
	}))

	networks, normalized, err := LoadNetworks(dir)
	require.NoError(t, err)
	require.True(t, normalized)
	require.Len(t, networks, 1)
	assert.Equal(t, "192.168.1.0", networks[0].Address)

	fs, err := LoadFireSet(dir)
	require.NoError(t, err)
	assert.True(t, fs.Dirty())
}
