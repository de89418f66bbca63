package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/internal/config"
	"github.com/lox/pokerequity/internal/metrics"
	"github.com/lox/pokerequity/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"pokerequity.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to, host:port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Workers  int    `short:"w" long:"workers" help:"Goroutines per batch simulation (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Workers > 0 {
		cfg.Engine.Workers = CLI.Workers
	}

	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	tuning, err := cfg.Tuning()
	if err != nil {
		logger.Error("Invalid engine configuration", "error", err)
		ctx.Exit(1)
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		logger.Error("Invalid server configuration", "error", err)
		ctx.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithDefaults(tuning),
		analysis.WithRecorder(metrics.NewRecorder(reg)),
	}
	if cfg.Engine.Workers > 0 {
		opts = append(opts, analysis.WithWorkers(cfg.Engine.Workers))
	}
	calc := analysis.NewCalculator(opts...)

	srv := server.NewServer(calc, logger,
		server.WithPresets(cfg.Presets),
		server.WithGatherer(reg),
		server.WithRequestTimeout(timeout),
		server.WithMaxMessageSize(cfg.Server.MaxMessageSize),
	)

	addr := cfg.Address()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}
	logger.Info("Starting equity server",
		"addr", addr,
		"presets", len(cfg.Presets),
		"requestTimeout", timeout)

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	if err := srv.Start(addr); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
