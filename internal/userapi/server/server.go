// Package server wires the user service's Echo instance.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"taskhub/internal/userapi/handler"
	"taskhub/internal/userapi/keys"
	"taskhub/internal/userapi/store"
	"taskhub/internal/userapi/token"
)

// New builds the user service server.
func New(s *store.Store, kp *keys.Keypair, tokenTTL time.Duration) *echo.Echo {
	issuer := token.NewIssuer(kp.Private(), tokenTTL)

	authHandler := handler.NewAuthHandler(s, issuer, kp.PublicPEM(), slog.Default())
	userHandler := handler.NewUserHandler(s)
	teamHandler := handler.NewTeamHandler(s)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(securityHeaders())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "OK",
			"service":   "user-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Public authentication routes; everything else is reached through the
	// gateway, which attaches the verified identity headers.
	e.GET("/auth/public-key", authHandler.PublicKey)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)

	e.GET("/api/users", userHandler.List)
	e.GET("/api/users/:id", userHandler.Get)
	e.GET("/api/teams", teamHandler.List)
	e.POST("/api/teams", teamHandler.Create)
	e.GET("/api/teams/:id", teamHandler.Get)

	return e
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	})
}

func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cache-Control", "no-store")
			return next(c)
		}
	}
}
