// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"skillswap/internal/models"
	"skillswap/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetContacts handles GET /api/connections
// Returns the viewer's merged contact list across all edge streams.
func (s *Server) GetContacts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	contacts, err := s.connectionService.Contacts(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(contacts)
}

// GetSentRequests handles GET /api/connections/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	edges, err := s.connectionService.SentRequests(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(edges)
}

// GetReceivedRequests handles GET /api/connections/requests/received
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	edges, err := s.connectionService.ReceivedRequests(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(edges)
}

// SendConnectionRequest handles POST /api/connections/requests/:userId
func (s *Server) SendConnectionRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		SkillName string `json:"skill_name"`
		Message   string `json:"message"`
	}
	// Body is optional; a bare request carries no skill or message.
	_ = c.BodyParser(&req)

	if verr := validation.ValidateSkillName(req.SkillName); verr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(verr.Error()))
	}

	edge, err := s.connectionService.Send(ctx, userID, targetUserID, req.SkillName, req.Message)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishUserEvent(targetUserID, EventConnectionRequestReceived, fiber.Map{
		"request_id": edge.ID,
		"from_user":  userID,
		"skill_name": edge.SkillName,
	})

	return c.Status(fiber.StatusCreated).JSON(edge)
}

// AcceptConnectionRequest handles POST /api/connections/requests/:requestId/accept
func (s *Server) AcceptConnectionRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	edge, err := s.connectionService.Accept(ctx, userID, requestID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishUserEvent(edge.Initiator(), EventConnectionAccepted, fiber.Map{
		"request_id": edge.ID,
		"by_user":    userID,
	})

	return c.JSON(edge)
}

// RejectConnectionRequest handles POST /api/connections/requests/:requestId/reject
func (s *Server) RejectConnectionRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	edge, err := s.connectionService.Reject(ctx, userID, requestID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	s.publishUserEvent(edge.Initiator(), EventConnectionRejected, fiber.Map{
		"request_id": edge.ID,
		"by_user":    userID,
	})

	return c.JSON(edge)
}

// CompleteConnection handles POST /api/connections/requests/:requestId/complete
// Either party can close out an accepted connection once the exchange is done.
func (s *Server) CompleteConnection(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	edge, err := s.connectionService.Complete(ctx, userID, requestID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if counterpart := edge.Counterpart(userID); counterpart != 0 {
		s.publishUserEvent(counterpart, EventConnectionCompleted, fiber.Map{
			"request_id": edge.ID,
			"by_user":    userID,
		})
	}

	return c.JSON(edge)
}

// GetConnectionStatus handles GET /api/connections/status/:userId
// Resolves one of none/pending_sent/pending_received/connected toward the target.
func (s *Server) GetConnectionStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	state, edge, err := s.connectionService.StatusWith(ctx, userID, targetUserID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{
		"status": state,
		"edge":   edge,
	})
}

// RemoveConnection handles DELETE /api/connections/:userId
func (s *Server) RemoveConnection(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if rmErr := s.connectionService.Remove(ctx, userID, targetUserID); rmErr != nil {
		return models.RespondWithError(c, mapServiceError(rmErr), rmErr)
	}

	s.publishUserEvent(targetUserID, EventConnectionRemoved, fiber.Map{
		"by_user": userID,
	})

	return c.JSON(fiber.Map{"message": "Connection removed"})
}
