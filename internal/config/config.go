// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the deploy-time configuration: remote session
// deadlines, the SSH user, the table/fixture directories, and the
// metrics listen address. Loading follows grimm-is-flywall's
// internal/config/load_basic.go: HCL via hashicorp/hcl/v2 + gohcl, with
// a JSON fallback when the file doesn't parse as HCL.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/awesome-security/firelet/internal/errors"
)

// SecureString hides its value in JSON/log output, used for SSH key
// passphrases. Mirrors the teacher's config.SecureString.
type SecureString string

func (s SecureString) String() string {
	if s == "" {
		return ""
	}
	return "(hidden)"
}

// MarshalJSON masks the value wherever config is serialized for logs or
// an API response.
func (s SecureString) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	return []byte(`"(hidden)"`), nil
}

// UnmarshalText lets gohcl decode plain HCL strings into SecureString.
func (s *SecureString) UnmarshalText(text []byte) error {
	*s = SecureString(text)
	return nil
}

// Config is the deploy-time configuration root.
type Config struct {
	RepoDir       string `hcl:"repo_dir,optional" json:"repo_dir"`
	FixtureDir    string `hcl:"fixture_dir,optional" json:"fixture_dir"`
	RemoteUser    string `hcl:"remote_user,optional" json:"remote_user"`
	KeyPassphrase SecureString `hcl:"key_passphrase,optional" json:"key_passphrase"`
	MetricsAddr   string `hcl:"metrics_addr,optional" json:"metrics_addr"`

	FetchTimeoutSeconds   int `hcl:"fetch_timeout_seconds,optional" json:"fetch_timeout_seconds"`
	DeliverTimeoutSeconds int `hcl:"deliver_timeout_seconds,optional" json:"deliver_timeout_seconds"`
	ApplyTimeoutSeconds   int `hcl:"apply_timeout_seconds,optional" json:"apply_timeout_seconds"`
}

// Defaults returns a Config with every field at its production default.
func Defaults() Config {
	return Config{
		RepoDir:               "firewall",
		FixtureDir:            "fixtures",
		RemoteUser:            "firelet",
		MetricsAddr:           ":9110",
		FetchTimeoutSeconds:   30,
		DeliverTimeoutSeconds: 30,
		ApplyTimeoutSeconds:   30,
	}
}

// FetchTimeout, DeliverTimeout, ApplyTimeout convert the HCL int fields
// into time.Duration for the orchestrator.
func (c Config) FetchTimeout() time.Duration   { return time.Duration(c.FetchTimeoutSeconds) * time.Second }
func (c Config) DeliverTimeout() time.Duration { return time.Duration(c.DeliverTimeoutSeconds) * time.Second }
func (c Config) ApplyTimeout() time.Duration   { return time.Duration(c.ApplyTimeoutSeconds) * time.Second }

// Load reads path as JSON if it ends in ".json", as HCL if it ends in
// ".hcl", and otherwise as HCL falling back to JSON if HCL parsing fails,
// then fills any zero-valued field from Defaults().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.KindUnavailable, "reading config file %s", path)
	}

	cfg, err := decode(data, path)
	if err != nil {
		return Config{}, err
	}

	return applyDefaults(cfg), nil
}

func decode(data []byte, path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return decodeJSON(data)
	}
	if ext == ".hcl" {
		return decodeHCL(data, path)
	}

	if cfg, hclErr := decodeHCL(data, path); hclErr == nil {
		return cfg, nil
	}
	cfg, jsonErr := decodeJSON(data)
	if jsonErr != nil {
		return Config{}, errors.Wrapf(jsonErr, errors.KindValidation, "parsing config %s as HCL or JSON", path)
	}
	return cfg, nil
}

func decodeHCL(data []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return Config{}, errors.Wrapf(fmt.Errorf("%s", diags.Error()), errors.KindValidation, "parsing HCL")
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return Config{}, errors.Wrapf(fmt.Errorf("%s", diags.Error()), errors.KindValidation, "decoding HCL")
	}
	return cfg, nil
}

func decodeJSON(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, errors.KindValidation, "decoding JSON config")
	}
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	d := Defaults()
	if cfg.RepoDir == "" {
		cfg.RepoDir = d.RepoDir
	}
	if cfg.FixtureDir == "" {
		cfg.FixtureDir = d.FixtureDir
	}
	if cfg.RemoteUser == "" {
		cfg.RemoteUser = d.RemoteUser
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = d.MetricsAddr
	}
	if cfg.FetchTimeoutSeconds == 0 {
		cfg.FetchTimeoutSeconds = d.FetchTimeoutSeconds
	}
	if cfg.DeliverTimeoutSeconds == 0 {
		cfg.DeliverTimeoutSeconds = d.DeliverTimeoutSeconds
	}
	if cfg.ApplyTimeoutSeconds == 0 {
		cfg.ApplyTimeoutSeconds = d.ApplyTimeoutSeconds
	}
	return cfg
}
