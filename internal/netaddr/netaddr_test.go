package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkOf(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		prefixLen int
		want      string
		wantErr   bool
	}{
		{name: "already canonical", addr: "10.0.0.0", prefixLen: 24, want: "10.0.0.0"},
		{name: "needs masking", addr: "10.0.0.5", prefixLen: 24, want: "10.0.0.0"},
		{name: "host route", addr: "192.168.1.1", prefixLen: 32, want: "192.168.1.1"},
		{name: "default route", addr: "1.2.3.4", prefixLen: 0, want: "0.0.0.0"},
		{name: "invalid address", addr: "not-an-ip", prefixLen: 24, wantErr: true},
		{name: "ipv6 rejected", addr: "::1", prefixLen: 64, wantErr: true},
		{name: "prefix too large", addr: "10.0.0.1", prefixLen: 33, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NetworkOf(tt.addr, tt.prefixLen)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContainsHost(t *testing.T) {
	ok, err := ContainsHost("10.0.0.0", 24, "10.0.0.42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ContainsHost("10.0.0.0", 24, "10.0.1.42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContainsNetwork(t *testing.T) {
	ok, err := ContainsNetwork("10.0.0.0", 16, "10.0.5.0", 24)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ContainsNetwork("10.0.0.0", 24, "10.0.0.0", 16)
	require.NoError(t, err)
	assert.False(t, ok, "a less specific network cannot be contained by a more specific one")
}

func TestMustNetworkOfPanics(t *testing.T) {
	assert.Panics(t, func() { MustNetworkOf("bad", 24) })
}
