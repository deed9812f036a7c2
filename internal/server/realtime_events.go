package server

import (
	"encoding/json"
	"log"

	"skillswap/internal/observability"
)

// Event type constants prevent typos in event names. Events are hints
// pushed over the websocket hub; the authoritative state always arrives
// through the snapshot feed.
const (
	EventConnectionRequestReceived = "connection_request_received"
	EventConnectionAccepted        = "connection_accepted"
	EventConnectionRejected        = "connection_rejected"
	EventConnectionCompleted       = "connection_completed"
	EventConnectionRemoved         = "connection_removed"
	EventSessionRequested          = "session_requested"
	EventSessionConfirmed          = "session_confirmed"
	EventSessionDeclined           = "session_declined"
	EventSessionStarted            = "session_started"
	EventSessionCompleted          = "session_completed"
	EventSessionCancelled          = "session_cancelled"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	observability.RecordWebSocketEvent(eventType)
	s.hub.Broadcast(userID, string(eventJSON))
}
