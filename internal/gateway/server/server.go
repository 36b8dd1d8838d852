// Package server provides the HTTP server setup for the gateway.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"taskhub/internal/gateway/bridge"
	"taskhub/internal/gateway/keycache"
	"taskhub/internal/gateway/middleware"
	"taskhub/internal/gateway/proxy"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Services map[string]string `json:"services"`
}

// Config holds server configuration.
type Config struct {
	UserServiceURL string
	TaskServiceURL string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates the gateway's HTTP handler: public auth routes, protected REST
// routes, and the GraphQL route whose WebSocket upgrades go through the auth
// bridge instead of the edge guard.
func New(cfg Config, keys *keycache.Cache, logger *slog.Logger) (http.Handler, error) {
	userURL, err := url.Parse(cfg.UserServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid user service URL: %w", err)
	}
	taskURL, err := url.Parse(cfg.TaskServiceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid task service URL: %w", err)
	}

	verifier := middleware.NewVerifier(keys, logger)

	authProxy := proxy.New(userURL, "Auth service", logger)
	userProxy := proxy.New(userURL, "User service", logger)
	taskProxy := proxy.New(taskURL, "Task service", logger)

	mux := http.NewServeMux()

	// Public authentication routes. Identity headers are scrubbed so they can
	// only ever originate from the verifier.
	mux.Handle("/auth/", middleware.StripIdentity(authProxy))

	// Protected REST routes.
	mux.Handle("/api/", verifier.Middleware(userProxy))

	// GraphQL: queries and mutations carry a bearer token and go through the
	// edge guard. Subscription upgrades cannot carry one, so the bridge lifts
	// the credential out of the handshake and the connection is forwarded
	// regardless; admission is the task service's responsibility.
	mux.Handle("/graphql", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bridge.IsUpgrade(r) {
			if !bridge.Authorize(r) {
				logger.Warn("could not extract credential from websocket handshake, forwarding unauthenticated")
			}
			taskProxy.ServeHTTP(w, r)
			return
		}
		verifier.Middleware(taskProxy).ServeHTTP(w, r)
	}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(HealthResponse{
			Status:  "healthy",
			Service: "gateway",
			Services: map[string]string{
				"user-service": cfg.UserServiceURL,
				"task-service": cfg.TaskServiceURL,
			},
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.SecurityHeaders(handler)

	// h2c lets backends that speak HTTP/2 cleartext be fronted without TLS;
	// HTTP/1.1 traffic, including WebSocket upgrades, passes through untouched.
	return h2c.NewHandler(handler, &http2.Server{}), nil
}
