// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"skillswap/internal/models"
	"skillswap/internal/observability"
	"skillswap/internal/realtime"
	"skillswap/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsTicketTTL bounds how long an issued ticket can sit unused.
const wsTicketTTL = 60 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Tickets are short-lived,
// single-use credentials so browser websocket clients never put a JWT
// in a query string.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("ticket store unavailable")))
	}

	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// viewState is the per-connection derived state. All mutation happens on
// the feed's dispatch goroutine, so no locking is needed; the client's
// send channel handles the hop to the write pump.
type viewState struct {
	client     *realtime.Client
	reconciler *view.Reconciler
	notifs     *view.NotificationView
	sessions   []models.Session
}

func (v *viewState) push(msgType string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("failed to marshal %s snapshot: %v", msgType, err)
		return
	}
	v.client.TrySend(msg)
}

func (v *viewState) pushContacts() {
	v.push("contacts_snapshot", fiber.Map{
		"loaded":   v.reconciler.Loaded(),
		"contacts": v.reconciler.Contacts(),
	})
}

func (v *viewState) pushNotifications() {
	v.push("notifications_snapshot", fiber.Map{
		"loaded":        v.notifs.Loaded(),
		"unread_count":  v.notifs.UnreadCount(),
		"notifications": v.notifs.All(),
	})
}

// pushSessions re-buckets against the current accepted set, so a
// connection change can move sessions in or out of view.
func (v *viewState) pushSessions(viewerID uint) {
	now := time.Now()
	buckets := view.Categorize(v.sessions, viewerID, v.reconciler.AcceptedSet(), now)
	v.push("sessions_snapshot", fiber.Map{
		"previous": decorateSessions(buckets.Previous, now),
		"current":  decorateSessions(buckets.Current, now),
		"next":     decorateSessions(buckets.Next, now),
	})
}

// WebsocketHandler returns the websocket handler that streams merged
// view snapshots. Authentication is handled by route middleware and
// userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.WebSocketConnectionsTotal.Inc()
		defer observability.WebSocketConnectionsTotal.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil || s.feed == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		// The single-use ticket did its job once the upgrade completed.
		s.consumeWSTicket(context.Background(), conn.Locals("wsTicket"))

		state := &viewState{
			client:     client,
			reconciler: view.NewReconciler(uid),
			notifs:     view.NewNotificationView(),
		}

		subs := s.subscribeViews(uid, state)
		defer func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}()

		// Start pumps
		go client.WritePump()
		client.ReadPump()
	})
}

// subscribeViews registers this connection's snapshot queries: the four
// connection-edge streams, the notification stream, and the session
// stream. Each query failure degrades only its own stream; the others
// keep updating the merged view.
func (s *Server) subscribeViews(uid uint, state *viewState) []*realtime.Subscription {
	edgeQuery := func(q func(context.Context, uint) ([]models.ConnectionEdge, error)) realtime.Query[models.ConnectionEdge] {
		return func(ctx context.Context) ([]models.ConnectionEdge, error) {
			return q(ctx, uid)
		}
	}
	onEdges := func(stream view.Stream) func([]models.ConnectionEdge) {
		return func(edges []models.ConnectionEdge) {
			state.reconciler.Apply(stream, edges)
			state.pushContacts()
			// Accepted-set changes alter session visibility.
			state.pushSessions(uid)
		}
	}

	streams := []struct {
		stream view.Stream
		query  func(context.Context, uint) ([]models.ConnectionEdge, error)
		legacy bool
	}{
		{view.StreamBySender, s.connRepo.ListBySender, false},
		{view.StreamByRecipient, s.connRepo.ListByRecipient, false},
		{view.StreamByLegacyUser, s.connRepo.ListByLegacyUser, true},
		{view.StreamByLegacyConnected, s.connRepo.ListByLegacyConnected, true},
	}

	// The legacy_edges flag lets operators finish the schema migration:
	// once all rows carry the current field pair the legacy streams can
	// be switched off without a deploy.
	legacyEnabled := s.featureFlags == nil || s.featureFlags.Enabled("legacy_edges", uid)

	var subs []*realtime.Subscription
	for _, st := range streams {
		if st.legacy && !legacyEnabled {
			continue
		}
		subs = append(subs, realtime.Subscribe(s.feed, realtime.CollectionConnections,
			edgeQuery(st.query), onEdges(st.stream)))
	}

	subs = append(subs, realtime.Subscribe(s.feed, realtime.CollectionNotifications,
		func(ctx context.Context) ([]models.Notification, error) {
			return s.notifRepo.ListByRecipient(ctx, uid, 0)
		},
		func(items []models.Notification) {
			state.notifs.Apply(items)
			state.pushNotifications()
		}))

	subs = append(subs, realtime.Subscribe(s.feed, realtime.CollectionSessions,
		func(ctx context.Context) ([]models.Session, error) {
			return s.sessionRepo.ListForUser(ctx, uid)
		},
		func(items []models.Session) {
			state.sessions = items
			state.pushSessions(uid)
		}))

	return subs
}
