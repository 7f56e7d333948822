package main

import (
	"bate-papo/infrastructure/rest/server"
	"bate-papo/internal"
	"bate-papo/observability"
	"bate-papo/repositories"
	"bate-papo/runtime/workers"
	"bate-papo/services"
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the server.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires storage, the chat service, the sweep worker and the REST server,
// then blocks until a signal or a server failure.
// Deferred cleanup runs before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	participantRepository := repositories.NewParticipantRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	defer func() {
		if err := messageRepository.Close(); err != nil {
			log.Warn("Releasing message sequence failed", "error", err)
		}
	}()

	chatService := services.NewChatService(log, participantRepository, messageRepository,
		services.WithInactivityThreshold(config.InactivityThreshold))

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervised expiry sweep
	metrics := observability.NewMetrics()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewExpirySweepWorker(log, chatService, config.SweepInterval,
		workers.WithSweepMetrics(metrics)))
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 5. REST server
	chatServer := server.NewChatServer(log, chatService, server.WithMetrics(metrics))
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting REST server", "address", config.Address(), "at", time.Now().UTC())
		if err := chatServer.Start(config.Address()); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("REST server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code, runErr := exitOK, error(nil)
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := chatServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("REST server shutdown failed", "error", err)
	}
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return code, runErr
}
