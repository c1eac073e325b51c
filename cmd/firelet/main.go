// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command firelet compiles, slices, and deploys a firewall policy
// described by a set of CSV tables, and serves a Prometheus /metrics
// endpoint while a deploy is in flight.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awesome-security/firelet/internal/compiler"
	"github.com/awesome-security/firelet/internal/config"
	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/logging"
	"github.com/awesome-security/firelet/internal/metrics"
	"github.com/awesome-security/firelet/internal/model"
	"github.com/awesome-security/firelet/internal/orchestrator"
	"github.com/awesome-security/firelet/internal/remote"
	"github.com/awesome-security/firelet/internal/slicer"
	"github.com/awesome-security/firelet/internal/tables"
)

func main() {
	repoDir := flag.String("repo", "", "directory holding the policy CSV tables (default: the config's repo_dir, else firewall)")
	configPath := flag.String("config", "", "path to the deploy config file (HCL or JSON)")
	mockDir := flag.String("mock-dir", "", "use fixture-file sessions rooted at this directory instead of live SSH")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: firelet [-repo dir] [-config file] [-mock-dir dir] <compile|slice|deploy>")
		os.Exit(2)
	}

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal("loading config", err)
		}
		cfg = loaded
	}
	if *repoDir != "" {
		cfg.RepoDir = *repoDir
	}

	logging.Init(logging.Config{Level: "info"})
	log := logging.Default().WithComponent("cli")

	fs, err := tables.LoadFireSet(cfg.RepoDir)
	if err != nil {
		fatal("loading policy tables", err)
	}

	switch args[0] {
	case "compile":
		directives, err := compiler.Compile(fs)
		if err != nil {
			fatal("compiling", err)
		}
		fmt.Println(compiler.String(directives))

	case "slice":
		directives, err := compiler.Compile(fs)
		if err != nil {
			fatal("compiling", err)
		}
		sliced := slicer.Slice(directives, fs.Hosts, nil)
		for host, ifaces := range sliced {
			for iface, ds := range ifaces {
				fmt.Printf("# host=%s iface=%s\n", host, iface)
				fmt.Println(compiler.String(ds))
			}
		}

	case "deploy":
		runDeploy(fs, cfg, *mockDir, log)

	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		os.Exit(2)
	}
}

func runDeploy(fs *model.FireSet, cfg config.Config, mockDir string, log *logging.Logger) {
	var opener func(ctx context.Context, hostname, addr string) (remote.Session, error)
	if mockDir != "" {
		opener = remote.DialMock(mockDir)
	} else {
		opener = func(ctx context.Context, hostname, addr string) (remote.Session, error) {
			return nil, fmt.Errorf("live SSH deploy requires a configured signer; pass -mock-dir for fixture-based deploys")
		}
	}

	pool := remote.NewPool(opener)
	defer pool.Close()

	orch := orchestrator.New(pool, orchestrator.Deadlines{
		Fetch:   cfg.FetchTimeout(),
		Deliver: cfg.DeliverTimeout(),
		Apply:   cfg.ApplyTimeout(),
	})

	stopMetrics := serveMetrics(cfg.MetricsAddr, log)
	defer stopMetrics()

	result, err := orch.Deploy(context.Background(), fs)
	if err != nil {
		fatal("deploying", err)
	}
	log.Info("deploy complete", "directives", len(result.Directives), "hosts", len(result.Sliced))
}

func serveMetrics(addr string, log *logging.Logger) func() {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Get().Registerer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", "error", err.Error())
		}
	}()
	return func() { srv.Close() }
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "firelet: %s: %v\n", action, err)
	os.Exit(errors.ExitCode(err))
}
