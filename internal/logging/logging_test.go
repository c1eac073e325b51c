// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutputIncludesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSONOutput: true, Output: &buf})

	l.Info("deploy complete", "host", "fw1", "directives", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "deploy complete", entry["message"])
	assert.Equal(t, "fw1", entry["host"])
	assert.Equal(t, float64(3), entry["directives"])
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSONOutput: true, Output: &buf}).WithComponent("orchestrator")

	l.Warn("host unreachable")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "orchestrator", entry["component"])
}

func TestWithHostAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSONOutput: true, Output: &buf}).WithHost("fw1")

	l.Warn("host unreachable")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "fw1", entry["host"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", JSONOutput: true, Output: &buf})

	l.Debug("should be dropped")
	l.Info("should also be dropped")
	assert.Empty(t, strings.TrimSpace(buf.String()))

	l.Warn("should appear")
	assert.NotEmpty(t, strings.TrimSpace(buf.String()))
}
