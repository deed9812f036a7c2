package server

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"skillswap/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionApp(s *Server, viewerID uint) *fiber.App {
	app := fiber.New()
	grp := app.Group("/api/sessions", asUser(viewerID))
	grp.Get("/", s.GetMySessions)
	grp.Post("/", s.ScheduleSession)
	grp.Post("/:id/confirm", s.ConfirmSession)
	grp.Post("/:id/decline", s.DeclineSession)
	grp.Post("/:id/start", s.StartSession)
	grp.Post("/:id/complete", s.CompleteSession)
	grp.Post("/:id/cancel", s.CancelSession)
	grp.Get("/:id", s.GetSession)
	return app
}

// acceptedPair wires users 1 and 2 with an accepted connection so
// session scheduling and visibility pass the connection filter.
func acceptedPair() (*userRepoStub, *connRepoStub) {
	users := newUserRepoStub(
		&models.User{ID: 1, Username: "alice", DisplayName: "Alice"},
		&models.User{ID: 2, Username: "bob", DisplayName: "Bob"},
	)
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 1, SenderID: uintPtr(1), RecipientID: uintPtr(2),
		Status: models.ConnectionStatusAccepted,
	})
	return users, conns
}

func TestDecorateSessions_Flags(t *testing.T) {
	now := time.Now()
	sessions := []models.Session{
		{ID: 1, Status: models.SessionStatusConfirmed, ScheduledAt: now.Add(5 * time.Minute)},
		{ID: 2, Status: models.SessionStatusConfirmed, ScheduledAt: now.Add(2 * time.Hour)},
		{ID: 3, Status: models.SessionStatusPending, ScheduledAt: now.Add(5 * time.Minute)},
		{ID: 4, Status: models.SessionStatusConfirmed, ScheduledAt: now.Add(-45 * time.Minute)},
	}

	out := decorateSessions(sessions, now)
	require.Len(t, out, 4)

	// Confirmed and inside the join window.
	assert.True(t, out[0].Joinable)
	assert.True(t, out[0].UpcomingSoon)
	// Too far out to join, not soon either.
	assert.False(t, out[1].Joinable)
	assert.False(t, out[1].UpcomingSoon)
	// Pending sessions are never joinable, but still upcoming.
	assert.False(t, out[2].Joinable)
	assert.True(t, out[2].UpcomingSoon)
	// Join window closed 30 minutes after start.
	assert.False(t, out[3].Joinable)
	assert.False(t, out[3].UpcomingSoon)
}

func TestScheduleSession_Creates(t *testing.T) {
	users, conns := acceptedPair()
	sessions := newSessionRepoStub()
	notifs := newNotifRepoStub()
	s := newTestServer(t, testDeps{users: users, conns: conns, sessions: sessions, notifs: notifs}, nil)
	app := newSessionApp(s, 1)

	body := fmt.Sprintf(`{"participant_id":2,"skill_name":"Guitar","scheduled_at":%q}`,
		time.Now().Add(48*time.Hour).Format(time.RFC3339))
	resp := doRequest(t, app, "POST", "/api/sessions/", strings.NewReader(body))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.Session
	decodeBody(t, resp, &created)
	assert.Equal(t, uint(1), created.OrganizerID)
	assert.Equal(t, uint(2), created.ParticipantID)
	assert.Equal(t, models.SessionStatusPending, created.Status)
	assert.Equal(t, models.SessionTypeVideo, created.SessionType)
	assert.Equal(t, 60, created.DurationMinutes)

	// The invitee is notified of the proposed session.
	got, err := notifs.ListByRecipient(nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationTypeSessionRequest, got[0].Type)
}

func TestScheduleSession_BadTimestamp(t *testing.T) {
	users, conns := acceptedPair()
	s := newTestServer(t, testDeps{users: users, conns: conns}, nil)
	app := newSessionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/sessions/",
		strings.NewReader(`{"participant_id":2,"scheduled_at":"tomorrow at noon"}`))
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScheduleSession_RequiresAcceptedConnection(t *testing.T) {
	users := newUserRepoStub(
		&models.User{ID: 1}, &models.User{ID: 2},
	)
	// Only a pending request between them.
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 1, SenderID: uintPtr(1), RecipientID: uintPtr(2),
		Status: models.ConnectionStatusPending,
	})
	s := newTestServer(t, testDeps{users: users, conns: conns}, nil)
	app := newSessionApp(s, 1)

	body := fmt.Sprintf(`{"participant_id":2,"scheduled_at":%q}`,
		time.Now().Add(48*time.Hour).Format(time.RFC3339))
	resp := doRequest(t, app, "POST", "/api/sessions/", strings.NewReader(body))
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConfirmSession_OnlyParticipant(t *testing.T) {
	sessions := newSessionRepoStub(&models.Session{
		ID: 1, OrganizerID: 1, ParticipantID: 2,
		Status: models.SessionStatusPending, ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	s := newTestServer(t, testDeps{sessions: sessions}, nil)

	// The organizer cannot confirm their own proposal.
	resp := doRequest(t, newSessionApp(s, 1), "POST", "/api/sessions/1/confirm", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, newSessionApp(s, 2), "POST", "/api/sessions/1/confirm", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var confirmed models.Session
	decodeBody(t, resp, &confirmed)
	assert.Equal(t, models.SessionStatusConfirmed, confirmed.Status)
}

func TestStartSession_OnlyInsideJoinWindow(t *testing.T) {
	sessions := newSessionRepoStub(
		&models.Session{ID: 1, OrganizerID: 1, ParticipantID: 2,
			Status: models.SessionStatusConfirmed, ScheduledAt: time.Now().Add(5 * time.Minute)},
		&models.Session{ID: 2, OrganizerID: 1, ParticipantID: 2,
			Status: models.SessionStatusConfirmed, ScheduledAt: time.Now().Add(6 * time.Hour)},
	)
	s := newTestServer(t, testDeps{sessions: sessions}, nil)
	app := newSessionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/sessions/1/start", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var started models.Session
	decodeBody(t, resp, &started)
	assert.Equal(t, models.SessionStatusInProgress, started.Status)

	resp = doRequest(t, app, "POST", "/api/sessions/2/start", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionAccess_NonMemberDenied(t *testing.T) {
	sessions := newSessionRepoStub(&models.Session{
		ID: 1, OrganizerID: 1, ParticipantID: 2,
		Status: models.SessionStatusConfirmed, ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	s := newTestServer(t, testDeps{sessions: sessions}, nil)

	resp := doRequest(t, newSessionApp(s, 9), "GET", "/api/sessions/1", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetMySessions_BucketsAndVisibility(t *testing.T) {
	users, conns := acceptedPair()
	now := time.Now()
	sessions := newSessionRepoStub(
		// Accepted counterpart: one in each bucket.
		&models.Session{ID: 1, OrganizerID: 1, ParticipantID: 2,
			Status: models.SessionStatusCompleted, ScheduledAt: now.AddDate(0, 0, -7)},
		&models.Session{ID: 2, OrganizerID: 2, ParticipantID: 1,
			Status: models.SessionStatusConfirmed, ScheduledAt: now},
		&models.Session{ID: 3, OrganizerID: 1, ParticipantID: 2,
			Status: models.SessionStatusPending, ScheduledAt: now.AddDate(0, 0, 7)},
		// Counterpart without an accepted connection stays hidden.
		&models.Session{ID: 4, OrganizerID: 1, ParticipantID: 9,
			Status: models.SessionStatusConfirmed, ScheduledAt: now.AddDate(0, 0, 7)},
	)
	s := newTestServer(t, testDeps{users: users, conns: conns, sessions: sessions}, nil)
	app := newSessionApp(s, 1)

	resp := doRequest(t, app, "GET", "/api/sessions/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Previous []sessionEntry `json:"previous"`
		Current  []sessionEntry `json:"current"`
		Next     []sessionEntry `json:"next"`
	}
	decodeBody(t, resp, &out)
	require.Len(t, out.Previous, 1)
	require.Len(t, out.Current, 1)
	require.Len(t, out.Next, 1)
	assert.Equal(t, uint(1), out.Previous[0].ID)
	assert.Equal(t, uint(2), out.Current[0].ID)
	assert.Equal(t, uint(3), out.Next[0].ID)
}
