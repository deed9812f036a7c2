package service

import (
	"context"

	"skillswap/internal/models"
	"skillswap/internal/observability"
	"skillswap/internal/realtime"
	"skillswap/internal/repository"
	"skillswap/internal/view"
)

// ConnectionService provides connection-request and contact business logic.
type ConnectionService struct {
	connRepo  repository.ConnectionRepository
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	bus       realtime.Bus
}

// NewConnectionService returns a new ConnectionService.
func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, notifRepo repository.NotificationRepository, bus realtime.Bus) *ConnectionService {
	return &ConnectionService{
		connRepo:  connRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		bus:       bus,
	}
}

// Send creates a connection request from viewerID to targetUserID.
// Local preconditions are checked before any store write: a signed-in
// viewer and distinct endpoints.
func (s *ConnectionService) Send(ctx context.Context, viewerID, targetUserID uint, skillName, message string) (*models.ConnectionEdge, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}
	if viewerID == targetUserID {
		return nil, models.NewSelfReferenceError()
	}

	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	existing, err := s.connRepo.GetBetweenUsers(ctx, viewerID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.ConnectionStatusAccepted:
			return nil, models.NewValidationError("You are already connected")
		case models.ConnectionStatusPending:
			if existing.Initiator() == viewerID {
				return nil, models.NewValidationError("Connection request already sent")
			}
			return nil, models.NewValidationError("You already have a pending request from this user")
		}
	}

	edge := &models.ConnectionEdge{
		SenderID:    &viewerID,
		RecipientID: &targetUserID,
		Status:      models.ConnectionStatusPending,
		SkillName:   skillName,
		Message:     message,
	}
	if err := s.connRepo.Create(ctx, edge); err != nil {
		observability.RecordConnectionMutation("send", "error")
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:  targetUserID,
		Type:         models.NotificationTypeConnectionRequest,
		Status:       models.NotificationStatusPending,
		SenderID:     viewerID,
		Message:      message,
		SkillName:    skillName,
		ConnectionID: &edge.ID,
	})

	observability.RecordConnectionMutation("send", "ok")
	s.publish(ctx, realtime.CollectionConnections)
	return s.connRepo.GetByID(ctx, edge.ID)
}

// Accept marks a pending request accepted. Only the receiving side may
// accept.
func (s *ConnectionService) Accept(ctx context.Context, viewerID, edgeID uint) (*models.ConnectionEdge, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}

	edge, err := s.connRepo.GetByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.Target() != viewerID {
		return nil, models.NewUnauthorizedError("You can only accept requests sent to you")
	}
	if edge.Status != models.ConnectionStatusPending {
		return nil, models.NewValidationError("Connection request is not pending")
	}

	if err := s.connRepo.UpdateStatus(ctx, edgeID, models.ConnectionStatusAccepted); err != nil {
		observability.RecordConnectionMutation("accept", "error")
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:  edge.Initiator(),
		Type:         models.NotificationTypeConnectionUpdate,
		Status:       models.NotificationStatusAccepted,
		SenderID:     viewerID,
		SkillName:    edge.SkillName,
		ConnectionID: &edge.ID,
	})

	observability.RecordConnectionMutation("accept", "ok")
	s.publish(ctx, realtime.CollectionConnections)
	return s.connRepo.GetByID(ctx, edgeID)
}

// Reject marks a pending request rejected. The row is kept so the pair's
// history stays queryable; rejected edges never surface as contacts.
func (s *ConnectionService) Reject(ctx context.Context, viewerID, edgeID uint) (*models.ConnectionEdge, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}

	edge, err := s.connRepo.GetByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.Target() != viewerID {
		return nil, models.NewUnauthorizedError("You can only reject requests sent to you")
	}
	if edge.Status != models.ConnectionStatusPending {
		return nil, models.NewValidationError("Connection request is not pending")
	}

	if err := s.connRepo.UpdateStatus(ctx, edgeID, models.ConnectionStatusRejected); err != nil {
		observability.RecordConnectionMutation("reject", "error")
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:  edge.Initiator(),
		Type:         models.NotificationTypeConnectionUpdate,
		Status:       models.NotificationStatusRejected,
		SenderID:     viewerID,
		SkillName:    edge.SkillName,
		ConnectionID: &edge.ID,
	})

	observability.RecordConnectionMutation("reject", "ok")
	s.publish(ctx, realtime.CollectionConnections)
	return s.connRepo.GetByID(ctx, edgeID)
}

// Complete closes out an accepted connection. Either endpoint may do it.
func (s *ConnectionService) Complete(ctx context.Context, viewerID, edgeID uint) (*models.ConnectionEdge, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}

	edge, err := s.connRepo.GetByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.Counterpart(viewerID) == 0 {
		return nil, models.NewUnauthorizedError("You are not part of this connection")
	}
	if edge.Status != models.ConnectionStatusAccepted {
		return nil, models.NewValidationError("Only accepted connections can be completed")
	}

	if err := s.connRepo.UpdateStatus(ctx, edgeID, models.ConnectionStatusCompleted); err != nil {
		observability.RecordConnectionMutation("complete", "error")
		return nil, err
	}

	observability.RecordConnectionMutation("complete", "ok")
	s.publish(ctx, realtime.CollectionConnections)
	return s.connRepo.GetByID(ctx, edgeID)
}

// Remove deletes the accepted connection between the viewer and the
// target user.
func (s *ConnectionService) Remove(ctx context.Context, viewerID, targetUserID uint) error {
	if viewerID == 0 {
		return models.NewAuthRequiredError()
	}

	edge, err := s.connRepo.GetBetweenUsers(ctx, viewerID, targetUserID)
	if err != nil {
		return err
	}
	if edge == nil || edge.Status != models.ConnectionStatusAccepted {
		return models.NewNotFoundError("Connection", targetUserID)
	}

	if err := s.connRepo.Delete(ctx, edge.ID); err != nil {
		observability.RecordConnectionMutation("remove", "error")
		return err
	}

	observability.RecordConnectionMutation("remove", "ok")
	s.publish(ctx, realtime.CollectionConnections)
	return nil
}

// reconcile loads all stored edge streams for the viewer into a fresh
// reconciler. Streams that fail to load are left dropped so the rest
// still merge.
func (s *ConnectionService) reconcile(ctx context.Context, viewerID uint) (*view.Reconciler, error) {
	r := view.NewReconciler(viewerID)

	loads := []struct {
		stream view.Stream
		query  func(context.Context, uint) ([]models.ConnectionEdge, error)
	}{
		{view.StreamBySender, s.connRepo.ListBySender},
		{view.StreamByRecipient, s.connRepo.ListByRecipient},
		{view.StreamByLegacyUser, s.connRepo.ListByLegacyUser},
		{view.StreamByLegacyConnected, s.connRepo.ListByLegacyConnected},
	}

	var firstErr error
	for _, l := range loads {
		edges, err := l.query(ctx, viewerID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.Apply(l.stream, edges)
	}

	if !r.Loaded() && firstErr != nil {
		return nil, firstErr
	}
	return r, nil
}

// Contacts returns the viewer's merged contact list across all edge
// streams, newest first.
func (s *ConnectionService) Contacts(ctx context.Context, viewerID uint) ([]view.Contact, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}

	r, err := s.reconcile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return r.Contacts(), nil
}

// SentRequests returns the viewer's outgoing requests still pending an
// answer, reconciled across both edge schemas.
func (s *ConnectionService) SentRequests(ctx context.Context, viewerID uint) ([]models.ConnectionEdge, error) {
	return s.pendingRequests(ctx, viewerID, true)
}

// ReceivedRequests returns pending requests awaiting the viewer's answer.
func (s *ConnectionService) ReceivedRequests(ctx context.Context, viewerID uint) ([]models.ConnectionEdge, error) {
	return s.pendingRequests(ctx, viewerID, false)
}

func (s *ConnectionService) pendingRequests(ctx context.Context, viewerID uint, sent bool) ([]models.ConnectionEdge, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}

	r, err := s.reconcile(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConnectionEdge, 0)
	for _, contact := range r.Contacts() {
		if contact.Status != models.ConnectionStatusPending {
			continue
		}
		if sent == (contact.Edge.Initiator() == viewerID) {
			out = append(out, contact.Edge)
		}
	}
	return out, nil
}

// StatusWith resolves the viewer's connection state toward another user.
func (s *ConnectionService) StatusWith(ctx context.Context, viewerID, targetUserID uint) (view.ConnectionState, *models.ConnectionEdge, error) {
	if viewerID == 0 {
		return view.StateNone, nil, models.NewAuthRequiredError()
	}
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return view.StateNone, nil, err
	}

	r, err := s.reconcile(ctx, viewerID)
	if err != nil {
		return view.StateNone, nil, err
	}
	state, edge := r.StatusWith(targetUserID)
	return state, edge, nil
}

// AcceptedSet returns the viewer's accepted counterpart ids, used as the
// session visibility filter.
func (s *ConnectionService) AcceptedSet(ctx context.Context, viewerID uint) (map[uint]bool, error) {
	r, err := s.reconcile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return r.AcceptedSet(), nil
}

// notify stamps sender display fields and writes the notification.
// Notification failures never fail the triggering mutation.
func (s *ConnectionService) notify(ctx context.Context, n *models.Notification) {
	if sender, err := s.userRepo.GetByID(ctx, n.SenderID); err == nil && sender != nil {
		n.SenderName = sender.DisplayName
		if n.SenderName == "" {
			n.SenderName = sender.Username
		}
		n.SenderPhoto = sender.PhotoURL
	}
	if err := s.notifRepo.Create(ctx, n); err == nil {
		s.publish(ctx, realtime.CollectionNotifications)
	}
}

func (s *ConnectionService) publish(ctx context.Context, collection string) {
	publishChange(ctx, s.bus, collection)
}
