// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHCLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
remote_user = "netops"
fetch_timeout_seconds = 45
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "netops", cfg.RemoteUser)
	assert.Equal(t, 45, cfg.FetchTimeoutSeconds)
	assert.Equal(t, Defaults().RepoDir, cfg.RepoDir)
	assert.Equal(t, Defaults().MetricsAddr, cfg.MetricsAddr)
}

func TestLoadJSONFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.conf")
	require.NoError(t, os.WriteFile(path, []byte(`{"remote_user":"admin"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.RemoteUser)
}

func TestSecureStringMasksInJSON(t *testing.T) {
	b, err := json.Marshal(SecureString("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, `"(hidden)"`, string(b))

	b, err = json.Marshal(SecureString(""))
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))
}
