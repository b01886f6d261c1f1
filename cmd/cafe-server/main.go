// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/barista-cafe/cafe/lib/cafe"
	"github.com/barista-cafe/cafe/lib/clock"
	"github.com/barista-cafe/cafe/lib/config"
	"github.com/barista-cafe/cafe/lib/process"
	"github.com/barista-cafe/cafe/lib/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to cafe.yaml (overrides CAFE_CONFIG)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		os.Stdout.WriteString(version.Full() + "\n")
		return
	}

	if err := run(configPath); err != nil {
		process.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return err
	}
	defer listener.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := cafe.NewServer(cafe.Options{
		SessionPoolSize:          cfg.SessionPoolSize,
		WorkerPoolSize:           cfg.WorkerPoolSize,
		CapacityCeiling:          cfg.CapacityCeiling,
		SchedulerRequeueInterval: cfg.SchedulerRequeueInterval,
		Clock:                    clock.Real(),
		Logger:                   logger,
	})

	reporter := srv.StatsReporter(cfg.StatsInterval, os.Stdout)
	statsDone := make(chan struct{})
	go func() {
		reporter.Run(ctx.Done())
		close(statsDone)
	}()

	logger.Info("cafe-server listening", "address", cfg.ListenAddress)

	err = srv.Run(ctx, listener)

	<-statsDone
	return err
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("CAFE_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}
