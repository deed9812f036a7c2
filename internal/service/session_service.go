package service

import (
	"context"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/realtime"
	"skillswap/internal/repository"
	"skillswap/internal/view"
)

// SessionService provides skill-session scheduling business logic.
type SessionService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	notifRepo   repository.NotificationRepository
	connections *ConnectionService
	bus         realtime.Bus
	now         func() time.Time
}

// NewSessionService returns a new SessionService.
func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, notifRepo repository.NotificationRepository, connections *ConnectionService, bus realtime.Bus) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		connections: connections,
		bus:         bus,
		now:         time.Now,
	}
}

// ScheduleInput carries the fields needed to propose a session.
type ScheduleInput struct {
	ParticipantID   uint
	SkillName       string
	SessionType     models.SessionType
	ScheduledAt     time.Time
	DurationMinutes int
	MeetingLink     string
	Location        string
	Notes           string
}

// Schedule proposes a session with a connected user. Sessions can only
// be scheduled between accepted connections.
func (s *SessionService) Schedule(ctx context.Context, viewerID uint, in ScheduleInput) (*models.Session, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}
	if viewerID == in.ParticipantID {
		return nil, models.NewSelfReferenceError()
	}
	if in.ScheduledAt.IsZero() {
		return nil, models.NewValidationError("Scheduled time is required")
	}
	if in.ScheduledAt.Before(s.now()) {
		return nil, models.NewValidationError("Scheduled time must be in the future")
	}

	participant, err := s.userRepo.GetByID(ctx, in.ParticipantID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.connections.AcceptedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !accepted[in.ParticipantID] {
		return nil, models.NewValidationError("You can only schedule sessions with accepted connections")
	}

	organizer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 60
	}
	if in.SessionType == "" {
		in.SessionType = models.SessionTypeVideo
	}

	session := &models.Session{
		OrganizerID:      viewerID,
		ParticipantID:    in.ParticipantID,
		OrganizerName:    displayName(organizer),
		OrganizerPhoto:   organizer.PhotoURL,
		ParticipantName:  displayName(participant),
		ParticipantPhoto: participant.PhotoURL,
		SkillName:        in.SkillName,
		SessionType:      in.SessionType,
		ScheduledAt:      in.ScheduledAt,
		DurationMinutes:  in.DurationMinutes,
		Status:           models.SessionStatusPending,
		MeetingLink:      in.MeetingLink,
		Location:         in.Location,
		Notes:            in.Notes,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	n := &models.Notification{
		RecipientID: in.ParticipantID,
		Type:        models.NotificationTypeSessionRequest,
		Status:      models.NotificationStatusPending,
		SenderID:    viewerID,
		SenderName:  displayName(organizer),
		SenderPhoto: organizer.PhotoURL,
		SkillName:   in.SkillName,
		SessionID:   &session.ID,
	}
	if err := s.notifRepo.Create(ctx, n); err == nil {
		s.publish(ctx, realtime.CollectionNotifications)
	}

	s.publish(ctx, realtime.CollectionSessions)
	return session, nil
}

// Confirm accepts a proposed session. Only the invited participant may
// confirm.
func (s *SessionService) Confirm(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	session, err := s.member(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ParticipantID != viewerID {
		return nil, models.NewUnauthorizedError("Only the invited participant can confirm a session")
	}
	if session.Status != models.SessionStatusPending {
		return nil, models.NewValidationError("Session is not pending")
	}
	return s.transition(ctx, session, models.SessionStatusConfirmed)
}

// Decline cancels a proposed session. Only the invited participant may
// decline.
func (s *SessionService) Decline(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	session, err := s.member(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.ParticipantID != viewerID {
		return nil, models.NewUnauthorizedError("Only the invited participant can decline a session")
	}
	if session.Status != models.SessionStatusPending {
		return nil, models.NewValidationError("Session is not pending")
	}
	return s.transition(ctx, session, models.SessionStatusCancelled)
}

// Start moves a confirmed session into progress. Either party may start
// it, but only inside the joinable window around its scheduled time.
func (s *SessionService) Start(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	session, err := s.member(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if !view.Joinable(session, s.now()) {
		return nil, models.NewValidationError("Session is not joinable right now")
	}
	return s.transition(ctx, session, models.SessionStatusInProgress)
}

// Complete marks a session finished. Either party may complete a
// confirmed or in-progress session.
func (s *SessionService) Complete(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	session, err := s.member(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusConfirmed && session.Status != models.SessionStatusInProgress {
		return nil, models.NewValidationError("Only confirmed or in-progress sessions can be completed")
	}
	return s.transition(ctx, session, models.SessionStatusCompleted)
}

// Cancel cancels a session that has not finished. Either party may
// cancel.
func (s *SessionService) Cancel(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	session, err := s.member(ctx, viewerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusCompleted || session.Status == models.SessionStatusCancelled {
		return nil, models.NewValidationError("Session is already closed")
	}
	return s.transition(ctx, session, models.SessionStatusCancelled)
}

// Categorized returns the viewer's sessions bucketed into previous,
// current-day, and upcoming, after the accepted-connection visibility
// filter.
func (s *SessionService) Categorized(ctx context.Context, viewerID uint) (view.Buckets, error) {
	if viewerID == 0 {
		return view.Buckets{}, models.NewAuthRequiredError()
	}

	sessions, err := s.sessionRepo.ListForUser(ctx, viewerID)
	if err != nil {
		return view.Buckets{}, err
	}
	accepted, err := s.connections.AcceptedSet(ctx, viewerID)
	if err != nil {
		return view.Buckets{}, err
	}
	return view.Categorize(sessions, viewerID, accepted, s.now()), nil
}

// Get returns one session the viewer is part of.
func (s *SessionService) Get(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	return s.member(ctx, viewerID, sessionID)
}

func (s *SessionService) member(ctx context.Context, viewerID, sessionID uint) (*models.Session, error) {
	if viewerID == 0 {
		return nil, models.NewAuthRequiredError()
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Counterpart(viewerID) == 0 {
		return nil, models.NewStoreDeniedError(nil)
	}
	return session, nil
}

func (s *SessionService) transition(ctx context.Context, session *models.Session, status models.SessionStatus) (*models.Session, error) {
	if err := s.sessionRepo.UpdateStatus(ctx, session.ID, status); err != nil {
		return nil, err
	}
	session.Status = status
	s.publish(ctx, realtime.CollectionSessions)
	return session, nil
}

func (s *SessionService) publish(ctx context.Context, collection string) {
	publishChange(ctx, s.bus, collection)
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
