package service

import (
	"context"

	"skillswap/internal/models"
	"skillswap/internal/realtime"
	"skillswap/internal/repository"
	"skillswap/internal/view"
)

// NotificationService provides notification business logic. Every
// mutation is owner-scoped: touching another user's notification is a
// store denial, not a not-found.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	bus       realtime.Bus
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notifRepo repository.NotificationRepository, bus realtime.Bus) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, bus: bus}
}

// List returns the viewer's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, viewerID uint, limit int) ([]models.Notification, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}
	return s.notifRepo.ListByRecipient(ctx, viewerID, limit)
}

// UnreadCount returns how many of the viewer's notifications still need
// attention under the normalized read rule.
func (s *NotificationService) UnreadCount(ctx context.Context, viewerID uint) (int, error) {
	if viewerID == 0 {
		return 0, models.NewAuthRequiredError()
	}
	items, err := s.notifRepo.ListByRecipient(ctx, viewerID, 0)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range items {
		if view.Unread(&items[i]) {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notification read, writing whichever read-state
// schema the row carries. Marking an already-read row is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, viewerID, notificationID uint) (*models.Notification, error) {
	n, err := s.owned(ctx, viewerID, notificationID)
	if err != nil {
		return nil, err
	}
	if !view.Unread(n) {
		return n, nil
	}

	if n.Read != nil {
		t := true
		n.Read = &t
	} else {
		n.Status = models.NotificationStatusRead
	}
	if err := s.notifRepo.Update(ctx, n); err != nil {
		return nil, err
	}

	s.publish(ctx)
	return n, nil
}

// MarkAllRead marks every unread notification of the viewer read.
func (s *NotificationService) MarkAllRead(ctx context.Context, viewerID uint) error {
	if viewerID == 0 {
		return models.NewAuthRequiredError()
	}
	if err := s.notifRepo.MarkAllRead(ctx, viewerID); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// UpdateStatus records the viewer's answer to an actionable
// notification. Only accepted and rejected are answers; re-reading or
// un-reading goes through MarkRead. Answering implies the row was seen,
// so a legacy read boolean is flipped along with the status.
func (s *NotificationService) UpdateStatus(ctx context.Context, viewerID, notificationID uint, status string) (*models.Notification, error) {
	switch status {
	case models.NotificationStatusAccepted, models.NotificationStatusRejected:
	default:
		return nil, models.NewValidationError("Invalid notification status")
	}

	n, err := s.owned(ctx, viewerID, notificationID)
	if err != nil {
		return nil, err
	}

	n.Status = status
	if n.Read != nil {
		t := true
		n.Read = &t
	}
	if err := s.notifRepo.Update(ctx, n); err != nil {
		return nil, err
	}

	s.publish(ctx)
	return n, nil
}

// Delete removes one notification of the viewer.
func (s *NotificationService) Delete(ctx context.Context, viewerID, notificationID uint) error {
	if _, err := s.owned(ctx, viewerID, notificationID); err != nil {
		return err
	}
	if err := s.notifRepo.Delete(ctx, notificationID); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// DeleteAll clears the viewer's notifications.
func (s *NotificationService) DeleteAll(ctx context.Context, viewerID uint) error {
	if viewerID == 0 {
		return models.NewAuthRequiredError()
	}
	if err := s.notifRepo.DeleteAllForRecipient(ctx, viewerID); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

func (s *NotificationService) owned(ctx context.Context, viewerID, notificationID uint) (*models.Notification, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}
	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != viewerID {
		return nil, models.NewStoreDeniedError(nil)
	}
	return n, nil
}

func (s *NotificationService) publish(ctx context.Context) {
	publishChange(ctx, s.bus, realtime.CollectionNotifications)
}
