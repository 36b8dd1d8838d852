// Package server wires the task service's Echo instance.
package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskhub/internal/taskapi/bus"
	"taskhub/internal/taskapi/graph"
	"taskhub/internal/taskapi/handler"
	"taskhub/internal/taskapi/store"
	"taskhub/internal/taskapi/ws"
)

// New builds the task service server around the shared store and event bus.
func New(s *store.Store, b *bus.Bus, logger *slog.Logger) (*echo.Echo, error) {
	schema, err := graph.NewSchema(graph.Deps{
		Store:  s,
		Bus:    b,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	gqlHandler := handler.NewGraphQLHandler(schema, s)
	wsHandler := ws.NewHandler(schema, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":        "healthy",
			"service":       "task-api",
			"subscriptions": b.Len(),
		})
	})

	// Queries and mutations over HTTP; subscription upgrades over WebSocket.
	e.POST("/graphql", gqlHandler.Handle)
	e.GET("/graphql", echo.WrapHandler(wsHandler))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e, nil
}
