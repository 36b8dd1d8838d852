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

	"taskhub/internal/gateway/config"
	"taskhub/internal/gateway/keycache"
	"taskhub/internal/gateway/metrics"
	"taskhub/internal/gateway/server"
	"taskhub/internal/logger"
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

	appLogger := logger.Init("gateway")

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"user_service_url", cfg.UserServiceURL,
		"task_service_url", cfg.TaskServiceURL,
		"key_fetch_interval", cfg.KeyFetchInterval)

	// The verification key is fetched in the background; protected routes
	// answer 503 until the first successful fetch.
	keys := keycache.New()
	fetcher := keycache.NewFetcher(keys, cfg.UserServiceURL, cfg.KeyFetchInterval, appLogger)

	fetchCtx, cancelFetch := context.WithCancel(ctx)
	defer cancelFetch()
	go func() {
		fetcher.Run(fetchCtx)
		if _, ok := keys.Get(); ok {
			metrics.SetKeyReady()
		}
	}()

	handler, err := server.New(server.Config{
		UserServiceURL: cfg.UserServiceURL,
		TaskServiceURL: cfg.TaskServiceURL,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, keys, appLogger)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build server", "error", err)
		os.Exit(1)
	}

	address := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming subscriptions stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "starting gateway", "address", address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.InfoContext(ctx, "shutting down server...")

	cancelFetch()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "server exited properly")
}

// runHealthcheck performs a health check against the local server
func runHealthcheck() error {
	port := os.Getenv("GATEWAY_PORT")
	if port == "" {
		port = "3000"
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
