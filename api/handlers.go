package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
)

// MaxListLimit caps the limit query parameter of the session list.
const MaxListLimit = 500

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionsResponse is a page of stored sessions, newest first.
type SessionsResponse struct {
	Count    int               `json:"count"`
	Sessions []*session.Record `json:"sessions"`
}

// StatsResponse summarizes the session store.
type StatsResponse struct {
	StoredSessions int `json:"stored_sessions"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	count, err := s.driver.Count(c.Context())
	if err != nil {
		s.logger.Error("failed to count sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count sessions"})
	}

	return c.JSON(StatsResponse{StoredSessions: count})
}

// handleListSessions returns the most recently started sessions.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", storage.DefaultListLimit)
	if limit < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
	}
	limit = min(limit, MaxListLimit)

	records, err := s.driver.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list sessions"})
	}

	if records == nil {
		records = []*session.Record{}
	}

	return c.JSON(SessionsResponse{
		Count:    len(records),
		Sessions: records,
	})
}

// handleGetSession returns a single session by its message id.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	rec, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}

		s.logger.Error("failed to get session", zap.String("message_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get session"})
	}

	return c.JSON(rec)
}
