// Package proxy forwards admitted requests to the backend services.
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"taskhub/internal/gateway/metrics"
	"taskhub/internal/gateway/middleware"
)

// New creates a reverse proxy to target. Upstream failures surface as 502
// with the gateway's JSON error shape. WebSocket upgrades are tunneled
// through transparently, which the task service relies on for subscriptions.
func New(target *url.URL, serviceName string, logger *slog.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("backend proxy error",
				"service", serviceName,
				"path", r.URL.Path,
				"error", err)
			metrics.RecordProxyError(serviceName)
			middleware.WriteJSONError(w, http.StatusBadGateway, serviceName+" unavailable.")
		},
	}
}
