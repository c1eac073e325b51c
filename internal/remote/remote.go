// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package remote manages the per-host command sessions used to fetch a
// firewall's current state and deliver a new ruleset to it (spec.md
// §4.5). Session is implemented by LiveSession, an SSH-backed session
// grounded on the x/crypto/ssh dial pattern in Brightgate's
// common/ssh/tunnel.go, and MockSession, a fixture-file session grounded
// on firelet/flssh.py's MockSSHConnector used for demos and tests.
package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/logging"
)

// Session is one open connection to a firewall host: run a single command
// and read its output lines, or stream a multi-line file to it.
type Session interface {
	// Run executes cmd on the host and returns its stdout split into
	// lines, trailing newline stripped.
	Run(ctx context.Context, cmd string) ([]string, error)
	// Deliver writes content as a file the host will later load with a
	// follow-up Apply.
	Deliver(ctx context.Context, path, content string) error
	// Apply loads the ruleset most recently written by Deliver,
	// mirroring the original's separate apply_remote_confs step.
	Apply(ctx context.Context) error
	Close() error
}

// Pool is a hostname-keyed set of open Sessions, opened lazily and
// reused across the fetch/deliver/apply stages of a single deploy.
type Pool struct {
	mu       sync.Mutex
	sessions map[string]Session
	opener   func(ctx context.Context, hostname, addr string) (Session, error)
	log      *logging.Logger
}

// NewPool builds a Pool that opens new sessions via opener.
func NewPool(opener func(ctx context.Context, hostname, addr string) (Session, error)) *Pool {
	return &Pool{
		sessions: make(map[string]Session),
		opener:   opener,
		log:      logging.Default().WithComponent("remote"),
	}
}

// Open returns the pool's existing session for hostname, dialing addr
// and caching it if none exists yet.
func (p *Pool) Open(ctx context.Context, hostname, addr string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.sessions[hostname]; ok {
		return s, nil
	}
	s, err := p.opener(ctx, hostname, addr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening session to %s (%s)", hostname, addr)
	}
	p.sessions[hostname] = s
	return s, nil
}

// Close closes every open session, tolerating individual close errors
// (a firewall that already dropped the connection shouldn't fail the
// whole teardown).
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for hostname, s := range p.sessions {
		if err := s.Close(); err != nil {
			p.log.Warn("error closing session", "host", hostname, "error", err.Error())
		}
	}
	p.sessions = make(map[string]Session)
}

// LiveSession is a Session backed by a real SSH connection.
type LiveSession struct {
	client   *ssh.Client
	hostname string
}

// LiveConfig controls how LiveSession dials out.
type LiveConfig struct {
	User    string
	Signer  ssh.Signer
	Timeout time.Duration
}

// DialLive opens an SSH session to addr:22 as cfg.User, labelled with
// hostname in errors, trusting any host
// key (the operator is expected to pin addresses to known management
// networks at the config layer rather than via host key verification).
func DialLive(ctx context.Context, hostname, addr string, cfg LiveConfig) (Session, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(cfg.Signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	client, err := ssh.Dial("tcp", addr+":22", clientCfg)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "dialing %s (%s)", hostname, addr)
	}
	return &LiveSession{client: client, hostname: hostname}, nil
}

// watchDeadline closes session the moment ctx is done, unblocking whatever
// blocking call is in flight on it, and returns a func to stop the watcher
// once the call has returned on its own. Grounded on Brightgate's
// common/ssh/tunnel.go, which tears down its tunnel session the same way
// on a cancelled dial context.
func watchDeadline(ctx context.Context, session *ssh.Session) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Run implements Session.
func (s *LiveSession) Run(ctx context.Context, cmd string) ([]string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "opening ssh session on %s", s.hostname)
	}
	defer session.Close()
	stop := watchDeadline(ctx, session)
	defer stop()

	out, err := session.Output(cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), errors.KindTimeout, "running %q on %s", cmd, s.hostname)
		}
		return nil, errors.Wrapf(err, errors.KindUnavailable, "running %q on %s", cmd, s.hostname)
	}
	return splitLines(string(out)), nil
}

// Deliver implements Session by streaming content to a remote "cat > path".
func (s *LiveSession) Deliver(ctx context.Context, path, content string) error {
	session, err := s.client.NewSession()
	if err != nil {
		return errors.Wrapf(err, errors.KindUnavailable, "opening ssh session on %s", s.hostname)
	}
	defer session.Close()
	stop := watchDeadline(ctx, session)
	defer stop()

	session.Stdin = strings.NewReader(content)
	if err := session.Run(fmt.Sprintf("cat > %s", path)); err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), errors.KindTimeout, "delivering %s to %s", path, s.hostname)
		}
		return errors.Wrapf(err, errors.KindUnavailable, "delivering %s to %s", path, s.hostname)
	}
	return nil
}

// Apply implements Session by running iptables-restore against the file
// most recently written by Deliver.
func (s *LiveSession) Apply(ctx context.Context) error {
	_, err := s.Run(ctx, "/sbin/iptables-restore < /tmp/newiptables")
	return err
}

// Close implements Session.
func (s *LiveSession) Close() error { return s.client.Close() }

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
