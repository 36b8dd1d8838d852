package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/logger"
	"taskhub/internal/userapi/config"
	"taskhub/internal/userapi/keys"
	"taskhub/internal/userapi/server"
	"taskhub/internal/userapi/store"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	logger.Init("user-api")

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	// The signing keypair lives only in memory; a restart invalidates all
	// outstanding tokens.
	kp, err := keys.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate signing keypair", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "signing keypair generated")

	s, err := store.Seeded()
	if err != nil {
		slog.ErrorContext(ctx, "failed to seed store", "error", err)
		os.Exit(1)
	}

	e := server.New(s, kp, cfg.TokenTTL)

	go func() {
		address := fmt.Sprintf(":%s", cfg.Port)
		slog.InfoContext(ctx, "starting user-api", "address", address, "token_ttl", cfg.TokenTTL)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.InfoContext(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "server exited properly")
}

// runHealthcheck performs a health check against the local server
func runHealthcheck() error {
	port := os.Getenv("USER_API_PORT")
	if port == "" {
		port = "3001"
	}

	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}

	return nil
}
