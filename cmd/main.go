package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"mentorlive/internal"
	"mentorlive/observability"
	"mentorlive/runtime"
	"mentorlive/runtime/workers"
	"mentorlive/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core wiring: registry is the emitter, coordinator owns state,
	// dispatcher serializes every command.
	monitor := observability.NewMonitoringManager(log)
	registry := transport.NewRegistry(log, monitor)
	coordinator := runtime.NewCoordinator(log, registry)
	dispatcher := runtime.NewDispatcher(log, coordinator, config.BufferSize, monitor)
	server := transport.NewServer(log, registry, dispatcher, config.ConnectionBufferSize)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervision: the dispatch loop and the stats logger restart on
	// crash; everything else is request-scoped.
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(dispatcher)
	sup.Add(workers.NewMonitoringWorker(log, monitor, config.MetricInterval))
	go sup.Run(ctx)

	if config.DebugPort > 0 {
		internal.StartDebugServer(log, config.DebugPort, dispatcher, monitor)
	}

	// 5. WebSocket server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Signaling server listening", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
