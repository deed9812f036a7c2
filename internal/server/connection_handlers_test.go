package server

import (
	"strings"
	"testing"

	"skillswap/internal/models"
	"skillswap/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func newConnectionApp(s *Server, viewerID uint) *fiber.App {
	app := fiber.New()
	grp := app.Group("/api/connections", asUser(viewerID))
	grp.Get("/", s.GetContacts)
	grp.Get("/requests/sent", s.GetSentRequests)
	grp.Get("/requests/received", s.GetReceivedRequests)
	grp.Post("/requests/:userId", s.SendConnectionRequest)
	grp.Post("/requests/:requestId/accept", s.AcceptConnectionRequest)
	grp.Post("/requests/:requestId/reject", s.RejectConnectionRequest)
	grp.Post("/requests/:requestId/complete", s.CompleteConnection)
	grp.Get("/status/:userId", s.GetConnectionStatus)
	grp.Delete("/:userId", s.RemoveConnection)
	return app
}

func TestSendConnectionRequest_CreatesEdgeAndNotification(t *testing.T) {
	users := newUserRepoStub(
		&models.User{ID: 1, Username: "alice"},
		&models.User{ID: 2, Username: "bob"},
	)
	notifs := newNotifRepoStub()
	s := newTestServer(t, testDeps{users: users, notifs: notifs}, nil)
	app := newConnectionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/connections/requests/2",
		strings.NewReader(`{"skill_name":"Guitar","message":"teach me"}`))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var edge models.ConnectionEdge
	decodeBody(t, resp, &edge)
	assert.Equal(t, models.ConnectionStatusPending, edge.Status)
	assert.Equal(t, uint(1), edge.Initiator())
	assert.Equal(t, uint(2), edge.Target())
	assert.Equal(t, "Guitar", edge.SkillName)

	// The recipient got a pending connection-request notification.
	got, err := notifs.ListByRecipient(nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationTypeConnectionRequest, got[0].Type)
	assert.Equal(t, models.NotificationStatusPending, got[0].Status)
}

func TestSendConnectionRequest_SelfIsRejected(t *testing.T) {
	users := newUserRepoStub(&models.User{ID: 1, Username: "alice"})
	s := newTestServer(t, testDeps{users: users}, nil)
	app := newConnectionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/connections/requests/1", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSendConnectionRequest_InvalidSkillName(t *testing.T) {
	users := newUserRepoStub(
		&models.User{ID: 1}, &models.User{ID: 2},
	)
	s := newTestServer(t, testDeps{users: users}, nil)
	app := newConnectionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/connections/requests/2",
		strings.NewReader(`{"skill_name":"  padded  "}`))
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAcceptConnectionRequest_OnlyRecipientMayAccept(t *testing.T) {
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 10, SenderID: uintPtr(1), RecipientID: uintPtr(2),
		Status: models.ConnectionStatusPending,
	})
	s := newTestServer(t, testDeps{conns: conns}, nil)

	// The sender cannot accept their own request.
	resp := doRequest(t, newConnectionApp(s, 1), "POST", "/api/connections/requests/10/accept", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The recipient can.
	resp = doRequest(t, newConnectionApp(s, 2), "POST", "/api/connections/requests/10/accept", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var edge models.ConnectionEdge
	decodeBody(t, resp, &edge)
	assert.Equal(t, models.ConnectionStatusAccepted, edge.Status)
}

func TestAcceptConnectionRequest_LegacyEdgeTargetMayAccept(t *testing.T) {
	// A legacy-schema row resolves its target through the old field pair.
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 11, UserID: uintPtr(3), ConnectedUserID: uintPtr(4),
		Status: models.ConnectionStatusPending,
	})
	s := newTestServer(t, testDeps{conns: conns}, nil)

	resp := doRequest(t, newConnectionApp(s, 4), "POST", "/api/connections/requests/11/accept", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var edge models.ConnectionEdge
	decodeBody(t, resp, &edge)
	assert.Equal(t, models.ConnectionStatusAccepted, edge.Status)
}

func TestGetConnectionStatus_Directional(t *testing.T) {
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 20, SenderID: uintPtr(1), RecipientID: uintPtr(2),
		Status: models.ConnectionStatusPending,
	})
	s := newTestServer(t, testDeps{conns: conns}, nil)

	var out struct {
		Status view.ConnectionState `json:"status"`
	}

	resp := doRequest(t, newConnectionApp(s, 1), "GET", "/api/connections/status/2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Equal(t, view.StatePendingSent, out.Status)

	resp = doRequest(t, newConnectionApp(s, 2), "GET", "/api/connections/status/1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Equal(t, view.StatePendingReceived, out.Status)

	resp = doRequest(t, newConnectionApp(s, 1), "GET", "/api/connections/status/99", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &out)
	assert.Equal(t, view.StateNone, out.Status)
}

func TestGetContacts_MergesOverlappingStreams(t *testing.T) {
	// The same relationship stored under both schemas must surface as a
	// single contact, with accepted winning over pending.
	conns := newConnRepoStub(
		&models.ConnectionEdge{ID: 1, SenderID: uintPtr(1), RecipientID: uintPtr(2),
			Status: models.ConnectionStatusPending},
		&models.ConnectionEdge{ID: 2, UserID: uintPtr(2), ConnectedUserID: uintPtr(1),
			Status: models.ConnectionStatusAccepted},
	)
	users := newUserRepoStub(&models.User{ID: 1}, &models.User{ID: 2})
	s := newTestServer(t, testDeps{conns: conns, users: users}, nil)

	resp := doRequest(t, newConnectionApp(s, 1), "GET", "/api/connections/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var contacts []view.Contact
	decodeBody(t, resp, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.ConnectionStatusAccepted, contacts[0].Edge.Status)
}

func TestPendingRequestLists_SplitByDirection(t *testing.T) {
	conns := newConnRepoStub(
		// Outgoing, current schema.
		&models.ConnectionEdge{ID: 1, SenderID: uintPtr(1), RecipientID: uintPtr(2),
			Status: models.ConnectionStatusPending},
		// Incoming, legacy schema.
		&models.ConnectionEdge{ID: 2, UserID: uintPtr(3), ConnectedUserID: uintPtr(1),
			Status: models.ConnectionStatusPending},
		// Accepted edges show in neither list.
		&models.ConnectionEdge{ID: 3, SenderID: uintPtr(1), RecipientID: uintPtr(4),
			Status: models.ConnectionStatusAccepted},
	)
	s := newTestServer(t, testDeps{conns: conns}, nil)
	app := newConnectionApp(s, 1)

	var edges []models.ConnectionEdge

	resp := doRequest(t, app, "GET", "/api/connections/requests/sent", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &edges)
	require.Len(t, edges, 1)
	assert.Equal(t, uint(1), edges[0].ID)

	resp = doRequest(t, app, "GET", "/api/connections/requests/received", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &edges)
	require.Len(t, edges, 1)
	assert.Equal(t, uint(2), edges[0].ID)
}

func TestRemoveConnection(t *testing.T) {
	conns := newConnRepoStub(&models.ConnectionEdge{
		ID: 30, SenderID: uintPtr(1), RecipientID: uintPtr(2),
		Status: models.ConnectionStatusAccepted,
	})
	s := newTestServer(t, testDeps{conns: conns}, nil)

	resp := doRequest(t, newConnectionApp(s, 1), "DELETE", "/api/connections/2", nil)
	resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	remaining, err := conns.GetBetweenUsers(nil, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, remaining)
}

func TestConnectionRequest_BadIDIsRejected(t *testing.T) {
	s := newTestServer(t, testDeps{}, nil)
	app := newConnectionApp(s, 1)

	resp := doRequest(t, app, "POST", "/api/connections/requests/zero/accept", nil)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
