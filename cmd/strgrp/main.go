// Copyright 2025 The strgrp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main groups similar strings read from stdin.

strgrp clusters strings whose longest-common-subsequence similarity clears a
threshold. Each input line joins the best matching group, or starts a new one
when no group is close enough. Once the input ends the groups are printed, one
key followed by its tab-indented members:

	$ printf 'ANZ ATM 10 HIGH ST\nANZ ATM 12 HIGH ST\nBP PETROL\n' | strgrp
	ANZ ATM 10 HIGH ST:
		ANZ ATM 10 HIGH ST
		ANZ ATM 12 HIGH ST

	BP PETROL:
		BP PETROL

# Modes

The default mode groups every line automatically. With -c each ambiguous
line is shown together with its candidate groups and the user picks one:

	strgrp -c -t 0.8

With -s strgrp becomes a MessagePack IPC server on stdin/stdout, for
programs that want to group strings incrementally (see package server).

# Adaptive thresholds

-dynamic n lets each group with at least n members tighten its own threshold
to its least similar pair minus a small slack, so dense groups stop absorbing
loosely related strings:

	strgrp -t 0.85 -dynamic 3 < descriptions.txt

# Configuration

Defaults come from config.toml under the user config dir (created on first
run) or the file given with -config. Flags override the file:

	[engine]
	threshold = 0.85
	dynamic_size = 0
	parallel = false
	workers = 0
	max_groups = 0
	max_items = 0
	max_key_len = 4096

	[server]
	max_key_len = 1024
	ranked_limit = 16

	[cli]
	ranked_limit = 5
	interactive = false
	unicode_nfc = false
	fold_case = false
	collapse_space = false

# Metrics

-metrics addr serves Prometheus metrics on /metrics and a /healthz probe
while strgrp runs.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/strgrp/internal/cli"
	"github.com/bastiangx/strgrp/internal/logger"
	"github.com/bastiangx/strgrp/pkg/config"
	"github.com/bastiangx/strgrp/pkg/metrics"
	"github.com/bastiangx/strgrp/pkg/server"
	"github.com/bastiangx/strgrp/pkg/strgrp"
)

const (
	Version = "0.3.0"
	AppName = "strgrp"
	gh      = "https://github.com/bastiangx/strgrp"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Ask before joining ambiguous groups")
	serverMode := flag.Bool("s", false, "Serve MessagePack IPC on stdin/stdout")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	threshold := flag.Float64("t", defaults.Engine.Threshold, "Similarity threshold in [0, 1]")
	dynamic := flag.Int("dynamic", defaults.Engine.DynamicSize, "Group size at which thresholds adapt (0 disables)")
	parallel := flag.Bool("parallel", defaults.Engine.Parallel, "Score groups in parallel")
	workers := flag.Int("workers", defaults.Engine.Workers, "Parallel scoring goroutines (0 means GOMAXPROCS)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)
	if *debugMode {
		log.SetReportTimestamp(true)
	}

	cfg, loadedFrom, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(loadedFrom))

	// explicitly set flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.Engine.Threshold = *threshold
		case "dynamic":
			cfg.Engine.DynamicSize = *dynamic
		case "parallel":
			cfg.Engine.Parallel = *parallel
		case "workers":
			cfg.Engine.Workers = *workers
		case "c":
			cfg.CLI.Interactive = *cliMode
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	opts := cfg.EngineOptions()
	if *metricsAddr != "" {
		stop := serveMetrics(*metricsAddr)
		defer stop()
		opts = append(opts, strgrp.WithObserver(metrics.New()))
	}

	if *serverMode {
		runServer(cfg, opts)
		return
	}
	runCLI(cfg, opts)
}

func newEngine[T any](cfg *config.Config, opts []strgrp.Option) *strgrp.Engine[T] {
	log.Debug("Engine options",
		"threshold", cfg.Engine.Threshold,
		"dynamic", cfg.Engine.DynamicSize,
		"parallel", cfg.Engine.Parallel,
		"workers", cfg.Engine.Workers)

	e, err := strgrp.NewDynamic[T](cfg.Engine.Threshold, cfg.Engine.DynamicSize, opts...)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func runCLI(cfg *config.Config, opts []strgrp.Option) {
	e := newEngine[int](cfg, opts)
	h := cli.NewInputHandler(e, os.Stdin, os.Stderr, cli.Options{
		RankedLimit: cfg.CLI.RankedLimit,
		Interactive: cfg.CLI.Interactive,
		Normalize:   cfg.KeyNormalization(),
	})

	start := time.Now()
	if err := h.Start(); err != nil {
		log.Fatalf("CLI error: %v", err)
	}
	log.Debugf("Grouped %d strings into %d groups in %v", h.Processed(), e.Len(), time.Since(start))

	if err := e.Fprint(os.Stdout); err != nil {
		log.Fatalf("Writing groups: %v", err)
	}
}

func runServer(cfg *config.Config, opts []strgrp.Option) {
	e := newEngine[msgpack.RawMessage](cfg, opts)
	srv := server.NewServer(e, os.Stdin, os.Stdout, server.Options{
		MaxKeyLen:   cfg.Server.MaxKeyLen,
		RankedLimit: cfg.Server.RankedLimit,
	})

	showStartupInfo(cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(addr string) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Debugf("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("Metrics shutdown: %v", err)
		}
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ strgrp ] Groups similar strings")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo goes to stderr; stdout carries the IPC stream.
func showStartupInfo(cfg *config.Config) {
	l := logger.NewWithConfig(os.Stderr, AppName, log.InfoLevel, false, false, log.TextFormatter)
	l.Infof("Version: %s", Version)
	l.Infof("Process ID: [ %d ]", os.Getpid())
	l.Info("engine", "threshold", cfg.Engine.Threshold, "dynamic", cfg.Engine.DynamicSize, "parallel", cfg.Engine.Parallel)
	l.Info("status: ready")
}
