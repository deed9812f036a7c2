package service

import (
	"context"
	"testing"
	"time"

	"skillswap/internal/models"
)

type sessionRepoStub struct {
	createFn       func(context.Context, *models.Session) error
	getByIDFn      func(context.Context, uint) (*models.Session, error)
	listForUserFn  func(context.Context, uint) ([]models.Session, error)
	updateFn       func(context.Context, *models.Session) error
	updateStatusFn func(context.Context, uint, models.SessionStatus) error
	deleteFn       func(context.Context, uint) error
}

func (s *sessionRepoStub) Create(ctx context.Context, session *models.Session) error {
	return s.createFn(ctx, session)
}
func (s *sessionRepoStub) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sessionRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.Session, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *sessionRepoStub) Update(ctx context.Context, session *models.Session) error {
	return s.updateFn(ctx, session)
}
func (s *sessionRepoStub) UpdateStatus(ctx context.Context, sessionID uint, status models.SessionStatus) error {
	return s.updateStatusFn(ctx, sessionID, status)
}
func (s *sessionRepoStub) Delete(ctx context.Context, sessionID uint) error {
	return s.deleteFn(ctx, sessionID)
}

func noopSessionRepo() *sessionRepoStub {
	return &sessionRepoStub{
		createFn:       func(context.Context, *models.Session) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Session, error) { return &models.Session{ID: id}, nil },
		listForUserFn:  func(context.Context, uint) ([]models.Session, error) { return nil, nil },
		updateFn:       func(context.Context, *models.Session) error { return nil },
		updateStatusFn: func(context.Context, uint, models.SessionStatus) error { return nil },
		deleteFn:       func(context.Context, uint) error { return nil },
	}
}

// connectionsWithAccepted builds a ConnectionService whose reconciler
// sees the given users as accepted counterparts of viewer 1.
func connectionsWithAccepted(accepted ...uint) *ConnectionService {
	repo := noopConnRepo()
	repo.listBySenderFn = func(context.Context, uint) ([]models.ConnectionEdge, error) {
		edges := make([]models.ConnectionEdge, 0, len(accepted))
		for i, id := range accepted {
			cp := id
			edges = append(edges, models.ConnectionEdge{
				ID: uint(i + 1), SenderID: ref(1), RecipientID: &cp,
				Status: models.ConnectionStatusAccepted, CreatedAt: time.Now(),
			})
		}
		return edges, nil
	}
	return NewConnectionService(repo, noopUserRepo(), noopNotifRepo(), nil)
}

func newSessionService(repo *sessionRepoStub, connections *ConnectionService, at time.Time) *SessionService {
	svc := NewSessionService(repo, noopUserRepo(), noopNotifRepo(), connections, nil)
	svc.now = func() time.Time { return at }
	return svc
}

func TestSessionServiceScheduleRequiresAcceptedConnection(t *testing.T) {
	now := time.Now()
	svc := newSessionService(noopSessionRepo(), connectionsWithAccepted(), now)

	_, err := svc.Schedule(context.Background(), 1, ScheduleInput{
		ParticipantID: 2,
		SkillName:     "guitar",
		ScheduledAt:   now.Add(24 * time.Hour),
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestSessionServiceScheduleNotifiesParticipant(t *testing.T) {
	now := time.Now()
	repo := noopSessionRepo()
	repo.createFn = func(_ context.Context, s *models.Session) error {
		s.ID = 99
		return nil
	}

	connections := connectionsWithAccepted(2)
	notif := noopNotifRepo()
	var created *models.Notification
	notif.createFn = func(_ context.Context, n *models.Notification) error {
		created = n
		return nil
	}

	svc := NewSessionService(repo, noopUserRepo(), notif, connections, nil)
	svc.now = func() time.Time { return now }

	session, err := svc.Schedule(context.Background(), 1, ScheduleInput{
		ParticipantID: 2,
		SkillName:     "guitar",
		ScheduledAt:   now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status != models.SessionStatusPending {
		t.Fatalf("new sessions start pending, got %q", session.Status)
	}
	if created == nil || created.Type != models.NotificationTypeSessionRequest || created.RecipientID != 2 {
		t.Fatalf("expected session_request for participant: %#v", created)
	}
	if created.SessionID == nil || *created.SessionID != 99 {
		t.Fatalf("notification should reference session 99: %#v", created)
	}
}

func TestSessionServiceScheduleSelf(t *testing.T) {
	svc := newSessionService(noopSessionRepo(), connectionsWithAccepted(1), time.Now())
	_, err := svc.Schedule(context.Background(), 1, ScheduleInput{
		ParticipantID: 1,
		ScheduledAt:   time.Now().Add(time.Hour),
	})
	assertAppErrorCode(t, err, "SELF_REFERENCE")
}

func TestSessionServiceConfirmOnlyParticipant(t *testing.T) {
	repo := noopSessionRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Session, error) {
		return &models.Session{ID: 5, OrganizerID: 1, ParticipantID: 2, Status: models.SessionStatusPending}, nil
	}

	svc := newSessionService(repo, connectionsWithAccepted(2), time.Now())
	_, err := svc.Confirm(context.Background(), 1, 5)
	assertAppErrorCode(t, err, "UNAUTHORIZED")

	session, err := svc.Confirm(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status != models.SessionStatusConfirmed {
		t.Fatalf("expected confirmed, got %q", session.Status)
	}
}

func TestSessionServiceStartOutsideWindow(t *testing.T) {
	now := time.Now()
	repo := noopSessionRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Session, error) {
		return &models.Session{
			ID: 5, OrganizerID: 1, ParticipantID: 2,
			Status:      models.SessionStatusConfirmed,
			ScheduledAt: now.Add(2 * time.Hour),
		}, nil
	}

	svc := newSessionService(repo, connectionsWithAccepted(2), now)
	_, err := svc.Start(context.Background(), 1, 5)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestSessionServiceStartInsideWindow(t *testing.T) {
	now := time.Now()
	repo := noopSessionRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Session, error) {
		return &models.Session{
			ID: 5, OrganizerID: 1, ParticipantID: 2,
			Status:      models.SessionStatusConfirmed,
			ScheduledAt: now.Add(10 * time.Minute),
		}, nil
	}

	svc := newSessionService(repo, connectionsWithAccepted(2), now)
	session, err := svc.Start(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status != models.SessionStatusInProgress {
		t.Fatalf("expected in_progress, got %q", session.Status)
	}
}

func TestSessionServiceMemberScoped(t *testing.T) {
	repo := noopSessionRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Session, error) {
		return &models.Session{ID: 5, OrganizerID: 1, ParticipantID: 2, Status: models.SessionStatusConfirmed}, nil
	}

	svc := newSessionService(repo, connectionsWithAccepted(2), time.Now())
	_, err := svc.Cancel(context.Background(), 3, 5)
	assertAppErrorCode(t, err, "STORE_DENIED")
}

func TestSessionServiceCategorizedFiltersByAcceptance(t *testing.T) {
	now := time.Now()
	repo := noopSessionRepo()
	repo.listForUserFn = func(context.Context, uint) ([]models.Session, error) {
		return []models.Session{
			{ID: 1, OrganizerID: 1, ParticipantID: 2, Status: models.SessionStatusConfirmed, ScheduledAt: now.Add(2 * time.Hour)},
			{ID: 2, OrganizerID: 1, ParticipantID: 9, Status: models.SessionStatusConfirmed, ScheduledAt: now.Add(3 * time.Hour)},
		}, nil
	}

	svc := newSessionService(repo, connectionsWithAccepted(2), now)
	buckets, err := svc.Categorized(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := len(buckets.Previous) + len(buckets.Current) + len(buckets.Next)
	if total != 1 {
		t.Fatalf("session with unconnected counterpart must be invisible, got %d visible", total)
	}
}
