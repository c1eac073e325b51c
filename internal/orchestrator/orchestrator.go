// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package orchestrator runs the end-to-end deploy pipeline: dirty check,
// compile, fan-out fetch of host state, interface reconciliation,
// per-host slicing, fan-out delivery, and fan-out apply (spec.md §4.8),
// mirroring lib/flcore.py's FireSet.deploy(). Each fan-out stage uses a
// sync.WaitGroup with a mutex-guarded result map, the concurrency
// pattern grimm-is-flywall's internal/notification/dispatcher.go uses
// for per-channel sends (golang.org/x/sync/errgroup is never imported
// anywhere in the reference pack).
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/awesome-security/firelet/internal/compiler"
	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/logging"
	"github.com/awesome-security/firelet/internal/metrics"
	"github.com/awesome-security/firelet/internal/model"
	"github.com/awesome-security/firelet/internal/reconcile"
	"github.com/awesome-security/firelet/internal/remote"
	"github.com/awesome-security/firelet/internal/remoteparse"
	"github.com/awesome-security/firelet/internal/slicer"
)

// Deadlines bounds each pipeline step's wall-clock time.
type Deadlines struct {
	Fetch   time.Duration
	Deliver time.Duration
	Apply   time.Duration
}

func (d Deadlines) orDefaults() Deadlines {
	if d.Fetch == 0 {
		d.Fetch = 30 * time.Second
	}
	if d.Deliver == 0 {
		d.Deliver = 30 * time.Second
	}
	if d.Apply == 0 {
		d.Apply = 30 * time.Second
	}
	return d
}

// Orchestrator drives a single deploy's fan-out stages against a Pool.
type Orchestrator struct {
	pool      *remote.Pool
	deadlines Deadlines
	log       *logging.Logger
	metrics   *metrics.Registry
}

// New builds an Orchestrator delivering over pool.
func New(pool *remote.Pool, deadlines Deadlines) *Orchestrator {
	return &Orchestrator{
		pool:      pool,
		deadlines: deadlines.orDefaults(),
		log:       logging.Default().WithComponent("orchestrator"),
		metrics:   metrics.Get(),
	}
}

// Result is the outcome of one full deploy.
type Result struct {
	Directives []compiler.Directive
	Sliced     slicer.Sliced
	// FetchedState is each host's fetched interface/iptables state, as
	// of the reconciliation check that gated this deploy.
	FetchedState map[string]reconcile.HostState
}

// Deploy runs the full pipeline: compile -> fetch -> reconcile -> slice
// -> deliver -> apply. Reconciliation failure aborts before any
// delivery happens, matching the original's "all or nothing" interface
// check.
func (o *Orchestrator) Deploy(ctx context.Context, fs *model.FireSet) (*Result, error) {
	deployID := uuid.NewString()
	o.log.Info("starting deploy", "deploy_id", deployID, "hosts", len(fs.HostNames()))

	if err := fs.RequireClean(); err != nil {
		return nil, err
	}

	var compiled []compiler.Directive
	if err := o.timeStep("compile", func() error {
		var err error
		compiled, err = compiler.Compile(fs)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "compile")
	}
	o.metrics.DirectiveCount.Set(float64(len(compiled)))

	var states map[string]reconcile.HostState
	if err := o.timeStep("fetch", func() error {
		states = o.fetchAll(ctx, fs)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := o.timeStep("reconcile", func() error { return reconcile.Check(fs, states) }); err != nil {
		return nil, err
	}

	sliced := slicer.Slice(compiled, fs.Hosts, nil)

	if err := o.timeStep("deliver", func() error { return o.deliverAll(ctx, fs, sliced) }); err != nil {
		return nil, err
	}

	if err := o.timeStep("apply", func() error { return o.applyAll(ctx, fs) }); err != nil {
		return nil, err
	}

	return &Result{Directives: compiled, Sliced: sliced, FetchedState: states}, nil
}

func (o *Orchestrator) timeStep(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	o.metrics.StepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return err
}

// fetchAll fans out "ip addr show" and "iptables-save" across every
// distinct host, recording reachability per host.
func (o *Orchestrator) fetchAll(ctx context.Context, fs *model.FireSet) map[string]reconcile.HostState {
	ctx, cancel := context.WithTimeout(ctx, o.deadlines.Fetch)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	states := make(map[string]reconcile.HostState)

	for _, name := range fs.HostNames() {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := o.fetchHost(ctx, fs, name)
			mu.Lock()
			states[name] = state
			mu.Unlock()

			result := "ok"
			reachableVal := 1.0
			if !state.Reachable {
				result = "unreachable"
				reachableVal = 0.0
			}
			o.metrics.HostOutcome.WithLabelValues("fetch", name, result).Inc()
			o.metrics.HostReachable.WithLabelValues(name).Set(reachableVal)
		}()
	}
	wg.Wait()

	return states
}

func (o *Orchestrator) fetchHost(ctx context.Context, fs *model.FireSet, name string) reconcile.HostState {
	hostLog := o.log.WithHost(name)

	addr, err := fs.ManagementAddress(name)
	if err != nil {
		hostLog.Warn("no management address", "error", err.Error())
		return reconcile.HostState{Hostname: name, Reachable: false}
	}

	session, err := o.pool.Open(ctx, name, addr)
	if err != nil {
		hostLog.Warn("host unreachable", "error", err.Error())
		return reconcile.HostState{Hostname: name, Reachable: false}
	}

	ifaceLines, err := session.Run(ctx, "/bin/ip addr show")
	if err != nil {
		hostLog.Warn("ip addr show failed", "error", err.Error())
		return reconcile.HostState{Hostname: name, Reachable: false}
	}

	iptablesLines, err := session.Run(ctx, "sudo /sbin/iptables-save")
	if err != nil {
		hostLog.Warn("iptables-save failed", "error", err.Error())
		return reconcile.HostState{Hostname: name, Reachable: false}
	}

	return reconcile.HostState{
		Hostname:   name,
		Reachable:  true,
		Interfaces: remoteparse.ParseIPAddrShow(ifaceLines),
		IPTables:   remoteparse.ParseIPTablesSave(iptablesLines),
	}
}

// deliverAll writes each host's sliced ruleset, in the "# Created by
// Firelet for host <name>" / "*filter" / rules / "COMMIT" shape the
// original assembled in SSHConnector.deliver_confs.
func (o *Orchestrator) deliverAll(ctx context.Context, fs *model.FireSet, sliced slicer.Sliced) error {
	ctx, cancel := context.WithTimeout(ctx, o.deadlines.Deliver)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, name := range fs.HostNames() {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := fs.ManagementAddress(name)
			if err == nil {
				var session remote.Session
				session, err = o.pool.Open(ctx, name, addr)
				if err == nil {
					err = o.deliverHost(ctx, session, name, sliced[name])
				}
			}

			result := "ok"
			if err != nil {
				result = "error"
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.Attr(err, "host", name)
				}
				mu.Unlock()
			}
			o.metrics.HostOutcome.WithLabelValues("deliver", name, result).Inc()
		}()
	}
	wg.Wait()

	return firstErr
}

func (o *Orchestrator) deliverHost(ctx context.Context, session remote.Session, name string, ifaces map[string][]compiler.Directive) error {
	content := fmt.Sprintf("# Created by Firelet for host %s\n*filter\n", name)
	for _, directives := range ifaces {
		for _, d := range directives {
			content += d.Text + "\n"
		}
	}
	content += "COMMIT"

	return session.Deliver(ctx, "/tmp/newiptables", content)
}

// applyAll runs "iptables-restore < /tmp/newiptables" on every host.
func (o *Orchestrator) applyAll(ctx context.Context, fs *model.FireSet) error {
	ctx, cancel := context.WithTimeout(ctx, o.deadlines.Apply)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, name := range fs.HostNames() {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := fs.ManagementAddress(name)
			if err == nil {
				var session remote.Session
				session, err = o.pool.Open(ctx, name, addr)
				if err == nil {
					err = session.Apply(ctx)
				}
			}

			result := "ok"
			if err != nil {
				result = "error"
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.Attr(err, "host", name)
				}
				mu.Unlock()
			}
			o.metrics.HostOutcome.WithLabelValues("apply", name, result).Inc()
		}()
	}
	wg.Wait()

	return firstErr
}
