// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/service"
	"skillswap/internal/validation"
	"skillswap/internal/view"

	"github.com/gofiber/fiber/v2"
)

// sessionEntry decorates a session with its live, derived flags.
type sessionEntry struct {
	models.Session
	Joinable     bool `json:"joinable"`
	UpcomingSoon bool `json:"upcoming_soon"`
}

func decorateSessions(sessions []models.Session, now time.Time) []sessionEntry {
	out := make([]sessionEntry, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionEntry{
			Session:      sessions[i],
			Joinable:     view.Joinable(&sessions[i], now),
			UpcomingSoon: view.UpcomingSoon(&sessions[i], now),
		})
	}
	return out
}

// GetMySessions handles GET /api/sessions
// Returns the viewer's sessions partitioned into previous/current/next,
// restricted to counterparts in the accepted-connection set.
func (s *Server) GetMySessions(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	buckets, err := s.sessionService.Categorized(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	now := time.Now()
	return c.JSON(fiber.Map{
		"previous": decorateSessions(buckets.Previous, now),
		"current":  decorateSessions(buckets.Current, now),
		"next":     decorateSessions(buckets.Next, now),
	})
}

// ScheduleSession handles POST /api/sessions
func (s *Server) ScheduleSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		ParticipantID   uint   `json:"participant_id"`
		SkillName       string `json:"skill_name"`
		SessionType     string `json:"session_type"`
		ScheduledAt     string `json:"scheduled_at"`
		DurationMinutes int    `json:"duration_minutes"`
		MeetingLink     string `json:"meeting_link"`
		Location        string `json:"location"`
		Notes           string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if verr := validation.ValidateSkillName(req.SkillName); verr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(verr.Error()))
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("scheduled_at must be an RFC 3339 timestamp"))
	}

	session, err := s.sessionService.Schedule(ctx, userID, service.ScheduleInput{
		ParticipantID:   req.ParticipantID,
		SkillName:       req.SkillName,
		SessionType:     models.SessionType(req.SessionType),
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		Location:        req.Location,
		Notes:           req.Notes,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishUserEvent(session.ParticipantID, EventSessionRequested, fiber.Map{
		"session_id": session.ID,
		"from_user":  userID,
		"skill_name": session.SkillName,
	})

	return c.Status(fiber.StatusCreated).JSON(session)
}

// ConfirmSession handles POST /api/sessions/:id/confirm
func (s *Server) ConfirmSession(c *fiber.Ctx) error {
	return s.transitionSession(c, s.sessionService.Confirm, EventSessionConfirmed)
}

// DeclineSession handles POST /api/sessions/:id/decline
func (s *Server) DeclineSession(c *fiber.Ctx) error {
	return s.transitionSession(c, s.sessionService.Decline, EventSessionDeclined)
}

// StartSession handles POST /api/sessions/:id/start
// Only allowed inside the joinable window around the scheduled time.
func (s *Server) StartSession(c *fiber.Ctx) error {
	return s.transitionSession(c, s.sessionService.Start, EventSessionStarted)
}

// CompleteSession handles POST /api/sessions/:id/complete
func (s *Server) CompleteSession(c *fiber.Ctx) error {
	return s.transitionSession(c, s.sessionService.Complete, EventSessionCompleted)
}

// CancelSession handles POST /api/sessions/:id/cancel
func (s *Server) CancelSession(c *fiber.Ctx) error {
	return s.transitionSession(c, s.sessionService.Cancel, EventSessionCancelled)
}

// transitionSession runs one session lifecycle transition and notifies
// the counterpart over the websocket hub.
func (s *Server) transitionSession(
	c *fiber.Ctx,
	transition func(ctx context.Context, viewerID, sessionID uint) (*models.Session, error),
	event string,
) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	session, err := transition(ctx, userID, sessionID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if counterpart := session.Counterpart(userID); counterpart != 0 {
		s.publishUserEvent(counterpart, event, fiber.Map{
			"session_id": session.ID,
			"by_user":    userID,
			"status":     session.Status,
		})
	}

	return c.JSON(session)
}

// GetSession handles GET /api/sessions/:id
func (s *Server) GetSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	session, err := s.sessionService.Get(ctx, userID, sessionID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	now := time.Now()
	return c.JSON(sessionEntry{
		Session:      *session,
		Joinable:     view.Joinable(session, now),
		UpcomingSoon: view.UpcomingSoon(session, now),
	})
}
