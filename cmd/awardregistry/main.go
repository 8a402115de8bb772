package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awardregistry/internal/platform/config"
	"awardregistry/internal/platform/logger"
	"awardregistry/internal/registry"
)

// main wires the registry from the environment and holds it until the process
// is signalled. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootstrap, _ := logger.New(logger.Config{}, os.Stderr)
		bootstrap.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)
	if err != nil {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	reg, err := registry.Build(buildCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to build registry", "error", err)
		os.Exit(1)
	}

	if price, err := reg.Service.GetEthPrice(ctx); err == nil {
		log.Info("price feed reachable", "eth_price", price)
	}

	<-ctx.Done()
	log.Info("shutting down")
	reg.Close()
}
