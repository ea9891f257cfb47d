package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Inbound platform webhook. POST only; other methods get echo's 405.
	s.echo.POST(s.config.WebhookPath, s.webhook.HandleWebhook)

	// Subscriber configuration API
	s.echo.GET("/api/subscribers/:uuid", s.handleSubscriberStatus)
	s.echo.PUT("/api/subscribers/:uuid/enabled", s.handleSetEnabled)
	s.echo.PUT("/api/subscribers/:uuid/broadcast", s.handleSetBroadcastID)
	s.echo.PUT("/api/subscribers/:uuid/chat", s.handleSetChatIDs)
	s.echo.POST("/api/subscribers/:uuid/connect/alerts", s.handleConnectAlerts)
	s.echo.POST("/api/subscribers/:uuid/connect/chat", s.handleConnectChat)
	s.echo.POST("/api/subscribers/:uuid/disconnect", s.handleDisconnect)
}
