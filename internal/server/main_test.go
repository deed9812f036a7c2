package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"skillswap/internal/config"
	"skillswap/internal/featureflags"
	"skillswap/internal/models"
	"skillswap/internal/realtime"
	"skillswap/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// ---- repository stubs ----

type userRepoStub struct {
	mu    sync.Mutex
	users map[uint]*models.User

	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uint(len(s.users) + 1)
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *userRepoStub) List(_ context.Context, _, _ int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *userRepoStub) SearchBySkill(_ context.Context, _ string, _ int) ([]models.User, error) {
	return nil, nil
}

type connRepoStub struct {
	mu     sync.Mutex
	edges  map[uint]*models.ConnectionEdge
	nextID uint
}

func newConnRepoStub(edges ...*models.ConnectionEdge) *connRepoStub {
	s := &connRepoStub{edges: make(map[uint]*models.ConnectionEdge), nextID: 1}
	for _, e := range edges {
		if e.ID == 0 {
			e.ID = s.nextID
		}
		s.edges[e.ID] = e
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s
}

func (s *connRepoStub) Create(_ context.Context, edge *models.ConnectionEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge.ID = s.nextID
	s.nextID++
	s.edges[edge.ID] = edge
	return nil
}

func (s *connRepoStub) GetByID(_ context.Context, id uint) (*models.ConnectionEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.edges[id]; ok {
		return e, nil
	}
	return nil, models.NewNotFoundError("Connection", id)
}

func (s *connRepoStub) GetBetweenUsers(_ context.Context, a, b uint) (*models.ConnectionEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if (e.Initiator() == a && e.Target() == b) || (e.Initiator() == b && e.Target() == a) {
			return e, nil
		}
	}
	return nil, nil
}

func (s *connRepoStub) listWhere(match func(*models.ConnectionEdge) bool) []models.ConnectionEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConnectionEdge
	for _, e := range s.edges {
		if match(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (s *connRepoStub) ListBySender(_ context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return s.listWhere(func(e *models.ConnectionEdge) bool {
		return e.SenderID != nil && *e.SenderID == userID
	}), nil
}

func (s *connRepoStub) ListByRecipient(_ context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return s.listWhere(func(e *models.ConnectionEdge) bool {
		return e.RecipientID != nil && *e.RecipientID == userID
	}), nil
}

func (s *connRepoStub) ListByLegacyUser(_ context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return s.listWhere(func(e *models.ConnectionEdge) bool {
		return e.UserID != nil && *e.UserID == userID
	}), nil
}

func (s *connRepoStub) ListByLegacyConnected(_ context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return s.listWhere(func(e *models.ConnectionEdge) bool {
		return e.ConnectedUserID != nil && *e.ConnectedUserID == userID
	}), nil
}

func (s *connRepoStub) UpdateStatus(_ context.Context, edgeID uint, status models.ConnectionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.edges[edgeID]; ok {
		e.Status = status
		return nil
	}
	return models.NewNotFoundError("Connection", edgeID)
}

func (s *connRepoStub) Delete(_ context.Context, edgeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, edgeID)
	return nil
}

type notifRepoStub struct {
	mu     sync.Mutex
	notifs map[uint]*models.Notification
	nextID uint
}

func newNotifRepoStub(notifs ...*models.Notification) *notifRepoStub {
	s := &notifRepoStub{notifs: make(map[uint]*models.Notification), nextID: 1}
	for _, n := range notifs {
		if n.ID == 0 {
			n.ID = s.nextID
		}
		s.notifs[n.ID] = n
		if n.ID >= s.nextID {
			s.nextID = n.ID + 1
		}
	}
	return s
}

func (s *notifRepoStub) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.nextID
	s.nextID++
	s.notifs[n.ID] = n
	return nil
}

func (s *notifRepoStub) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifs[id]; ok {
		return n, nil
	}
	return nil, models.NewNotFoundError("Notification", id)
}

func (s *notifRepoStub) ListByRecipient(_ context.Context, recipientID uint, _ int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifs {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *notifRepoStub) Update(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifs[n.ID] = n
	return nil
}

func (s *notifRepoStub) MarkAllRead(_ context.Context, recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifs {
		if n.RecipientID == recipientID {
			n.Status = models.NotificationStatusRead
			n.Read = nil
		}
	}
	return nil
}

func (s *notifRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notifs, id)
	return nil
}

func (s *notifRepoStub) DeleteAllForRecipient(_ context.Context, recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifs {
		if n.RecipientID == recipientID {
			delete(s.notifs, id)
		}
	}
	return nil
}

type sessionRepoStub struct {
	mu       sync.Mutex
	sessions map[uint]*models.Session
	nextID   uint
}

func newSessionRepoStub(sessions ...*models.Session) *sessionRepoStub {
	s := &sessionRepoStub{sessions: make(map[uint]*models.Session), nextID: 1}
	for _, sess := range sessions {
		if sess.ID == 0 {
			sess.ID = s.nextID
		}
		s.sessions[sess.ID] = sess
		if sess.ID >= s.nextID {
			s.nextID = sess.ID + 1
		}
	}
	return s
}

func (s *sessionRepoStub) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextID
	s.nextID++
	s.sessions[sess.ID] = sess
	return nil
}

func (s *sessionRepoStub) GetByID(_ context.Context, id uint) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, models.NewNotFoundError("Session", id)
}

func (s *sessionRepoStub) ListForUser(_ context.Context, userID uint) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.OrganizerID == userID || sess.ParticipantID == userID {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (s *sessionRepoStub) Update(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *sessionRepoStub) UpdateStatus(_ context.Context, sessionID uint, status models.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.Status = status
		return nil
	}
	return models.NewNotFoundError("Session", sessionID)
}

func (s *sessionRepoStub) Delete(_ context.Context, sessionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ---- server harness ----

type testDeps struct {
	users    *userRepoStub
	conns    *connRepoStub
	notifs   *notifRepoStub
	sessions *sessionRepoStub
}

// newTestServer assembles a Server on in-memory stubs. Redis is optional;
// tests that need it pass a client backed by miniredis.
func newTestServer(t *testing.T, deps testDeps, redisClient *redis.Client) *Server {
	t.Helper()
	if deps.users == nil {
		deps.users = newUserRepoStub()
	}
	if deps.conns == nil {
		deps.conns = newConnRepoStub()
	}
	if deps.notifs == nil {
		deps.notifs = newNotifRepoStub()
	}
	if deps.sessions == nil {
		deps.sessions = newSessionRepoStub()
	}

	cfg := &config.Config{
		JWTSecret: "test-secret-0123456789abcdef0123456789abcdef",
		Port:      "0",
	}

	s := &Server{
		config:          cfg,
		redis:           redisClient,
		userRepo:        deps.users,
		connRepo:        deps.conns,
		notifRepo:       deps.notifs,
		sessionRepo:     deps.sessions,
		featureFlags:    featureflags.NewManager(""),
		consumedTickets: make(map[string]consumedTicketEntry),
	}
	s.bus = realtime.NewMemoryBus()
	s.hub = realtime.NewHub()
	s.userService = service.NewUserService(deps.users, s.bus)
	s.connectionService = service.NewConnectionService(deps.conns, deps.users, deps.notifs, s.bus)
	s.notificationService = service.NewNotificationService(deps.notifs, s.bus)
	s.sessionService = service.NewSessionService(deps.sessions, deps.users, deps.notifs, s.connectionService, s.bus)
	return s
}

// asUser injects an authenticated viewer, standing in for AuthRequired.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
