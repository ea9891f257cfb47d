package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aetherhyt/HyStreamAlerts/internal/app"
	apperrors "github.com/aetherhyt/HyStreamAlerts/internal/errors"
)

func subscriberID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("subscriber id must be a UUID")
	}
	return id, nil
}

func (s *Server) handleSubscriberStatus(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.app.Status(id))
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleSetEnabled(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	var req enabledRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("body must be {\"enabled\": bool}")
	}

	s.app.Store.SetEnabled(id, req.Enabled)
	return c.JSON(http.StatusOK, s.app.Status(id))
}

type connectionIDRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSetBroadcastID(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	var req connectionIDRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("body must be {\"id\": string}")
	}

	s.app.Store.SetBroadcastID(id, req.ID)
	return c.JSON(http.StatusOK, s.app.Status(id))
}

func (s *Server) handleSetChatIDs(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	var req connectionIDRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("body must be {\"id\": string}")
	}

	s.app.Store.SetChatIDs(id, req.ID)
	return c.JSON(http.StatusOK, s.app.Status(id))
}

// providerRequest optionally names the provider; an empty body or empty
// name selects the capability's default.
type providerRequest struct {
	Provider string `json:"provider"`
}

func (s *Server) handleConnectAlerts(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	var req providerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("body must be {\"provider\": string}")
	}

	if err := s.app.ConnectAlerts(id, req.Provider, app.StaticResolver(id)); err != nil {
		return connectError(err)
	}
	return c.JSON(http.StatusOK, s.app.Status(id))
}

func (s *Server) handleConnectChat(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	var req providerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("body must be {\"provider\": string}")
	}

	if err := s.app.ConnectChat(id, req.Provider, app.StaticResolver(id)); err != nil {
		return connectError(err)
	}
	return c.JSON(http.StatusOK, s.app.Status(id))
}

func (s *Server) handleDisconnect(c echo.Context) error {
	id, err := subscriberID(c)
	if err != nil {
		return err
	}

	s.app.Disconnect(id)
	return c.JSON(http.StatusOK, s.app.Status(id))
}

func connectError(err error) error {
	switch {
	case errors.Is(err, app.ErrUnknownProvider):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, app.ErrNoConnectionID):
		return apperrors.ValidationError(err.Error())
	default:
		return apperrors.InternalError("connecting subscriber", err)
	}
}
