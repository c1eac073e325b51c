// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSessionRunReadsFixtures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iptables-save-fw1"), []byte("*filter\nCOMMIT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ip-addr-show-fw1"), []byte("1: lo\n2: eth0\n    inet 10.0.0.1/24\n"), 0o644))

	session := NewMock(dir, "fw1")

	lines, err := session.Run(context.Background(), "sudo /sbin/iptables-save")
	require.NoError(t, err)
	assert.Equal(t, []string{"*filter", "COMMIT"}, lines)

	lines, err = session.Run(context.Background(), "/bin/ip addr show")
	require.NoError(t, err)
	assert.Equal(t, []string{"1: lo", "2: eth0", "    inet 10.0.0.1/24"}, lines)
}

func TestMockSessionRunUnsupportedCommand(t *testing.T) {
	session := NewMock(t.TempDir(), "fw1")
	_, err := session.Run(context.Background(), "rm -rf /")
	assert.Error(t, err)
}

func TestMockSessionDeliverWritesShadowFile(t *testing.T) {
	dir := t.TempDir()
	session := NewMock(dir, "fw1")

	require.NoError(t, session.Deliver(context.Background(), "/tmp/newiptables", "*filter\nCOMMIT"))

	primary, err := os.ReadFile(filepath.Join(dir, "iptables-save-fw1"))
	require.NoError(t, err)
	assert.Equal(t, "*filter\nCOMMIT\n", string(primary))

	shadow, err := os.ReadFile(filepath.Join(dir, "iptables-save-fw1-x"))
	require.NoError(t, err)
	assert.Equal(t, string(primary), string(shadow))
}

func TestMockSessionApplyIsNoop(t *testing.T) {
	session := NewMock(t.TempDir(), "fw1")
	assert.NoError(t, session.Apply(context.Background()))
}

func TestPoolOpenCachesSessions(t *testing.T) {
	calls := 0
	pool := NewPool(func(ctx context.Context, hostname, addr string) (Session, error) {
		calls++
		return NewMock(t.TempDir(), hostname), nil
	})
	defer pool.Close()

	ctx := context.Background()
	s1, err := pool.Open(ctx, "fw1", "10.0.0.1")
	require.NoError(t, err)
	s2, err := pool.Open(ctx, "fw1", "10.0.0.1")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, calls)
}
