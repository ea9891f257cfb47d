package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aetherhyt/HyStreamAlerts/internal/platform/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness verifies the persistence target is reachable. Providers
// reconnect on their own and have no readiness notion.
func (s *Server) handleReadiness(c echo.Context) error {
	if err := s.checkDataDir(); err != nil {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "data_dir",
			"error":        err.Error(),
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) checkDataDir() error {
	dir := filepath.Dir(s.config.DataFile)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
