package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	apiserver "github.com/cognitriage/cognitriage/internal/api_server"
	"github.com/cognitriage/cognitriage/internal/config"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/pkg/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		panic(err)
	}

	logger := log.InitFromLevel(cfg.Service.LogLevel)
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	zap.S().Info("Starting API service")
	defer zap.S().Info("API service stopped")

	dataStore := store.NewStore()
	defer dataStore.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	go func() {
		listener, err := newListener(cfg.Service.Address)
		if err != nil {
			zap.S().Fatalf("creating listener: %s", err)
		}

		server := apiserver.New(cfg, dataStore, listener)
		if err := server.Run(ctx); err != nil {
			zap.S().Fatalf("Error running server: %s", err)
		}
		cancel()
	}()

	go func() {
		listener, err := newListener(cfg.Service.MetricsAddress)
		if err != nil {
			zap.S().Fatalf("creating metrics listener: %s", err)
		}

		metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
		if err := metricsServer.Run(ctx); err != nil {
			zap.S().Fatalf("Error running metrics server: %s", err)
		}
		cancel()
	}()

	<-ctx.Done()
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
