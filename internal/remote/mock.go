// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package remote

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/awesome-security/firelet/internal/errors"
)

// MockSession replays/records fixture files instead of talking to a real
// host, grounded on firelet/flssh.py's MockSSHConnector: used in demo
// mode and in tests that must not touch the network.
type MockSession struct {
	hostname string
	dir      string
}

// NewMock returns a MockSession rooted at dir, the fixture directory
// holding "iptables-save-<hostname>" and "ip-addr-show-<hostname>"
// files.
func NewMock(dir, hostname string) *MockSession {
	return &MockSession{hostname: hostname, dir: dir}
}

// DialMock is a Pool opener that constructs MockSessions, ignoring addr
// since fixtures are keyed by hostname alone.
func DialMock(dir string) func(ctx context.Context, hostname, addr string) (Session, error) {
	return func(ctx context.Context, hostname, addr string) (Session, error) {
		return NewMock(dir, hostname), nil
	}
}

// Run implements Session for the two commands the orchestrator issues
// during reconciliation: "sudo /sbin/iptables-save" and
// "/bin/ip addr show". Any other command is an error, matching the
// original's NotImplementedError.
func (m *MockSession) Run(ctx context.Context, cmd string) ([]string, error) {
	var fixture string
	switch cmd {
	case "sudo /sbin/iptables-save":
		fixture = filepath.Join(m.dir, "iptables-save-"+m.hostname)
	case "/bin/ip addr show":
		fixture = filepath.Join(m.dir, "ip-addr-show-"+m.hostname)
	default:
		return nil, errors.Errorf(errors.KindInternal, "mock session: unsupported command %q", cmd)
	}

	data, err := os.ReadFile(fixture)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "reading fixture %s", fixture)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines, nil
}

// Deliver writes content to "iptables-save-<hostname>" and mirrors it to
// a "-x" shadow file, matching MockSSHConnector.deliver_confs writing
// both the live and shadow fixture.
func (m *MockSession) Deliver(ctx context.Context, path, content string) error {
	primary := filepath.Join(m.dir, "iptables-save-"+m.hostname)
	shadow := filepath.Join(m.dir, "iptables-save-"+m.hostname+"-x")

	if err := os.WriteFile(primary, []byte(content+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "writing fixture %s", primary)
	}
	if err := os.WriteFile(shadow, []byte(content+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "writing shadow fixture %s", shadow)
	}
	return nil
}

// Apply is a no-op: the fixture file already reflects the delivered
// ruleset, matching MockSSHConnector.apply_remote_confs, which has "no
// way to test the iptables-restore" and simply returns.
func (m *MockSession) Apply(ctx context.Context) error { return nil }

// Close is a no-op: mock sessions hold no real resources.
func (m *MockSession) Close() error { return nil }
