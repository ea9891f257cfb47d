package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aetherhyt/HyStreamAlerts/internal/app"
	apperrors "github.com/aetherhyt/HyStreamAlerts/internal/errors"
	"github.com/aetherhyt/HyStreamAlerts/internal/platform/config"
	"github.com/aetherhyt/HyStreamAlerts/internal/platform/correlation"
)

// webhookHandler handles inbound platform webhook requests.
type webhookHandler interface {
	HandleWebhook(c echo.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.App
	webhook   webhookHandler
	startTime time.Time
}

func NewServer(cfg *config.Config, application *app.App, webhook webhookHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       application,
		webhook:   webhook,
		startTime: time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// correlationMiddleware stamps every request with a correlation id so log
// lines emitted while handling it can be tied together.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
