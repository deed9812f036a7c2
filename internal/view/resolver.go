package view

import "skillswap/internal/models"

// ConnectionState is the relationship between the viewer and one
// counterpart as rendered by the connect affordance.
type ConnectionState string

const (
	StateNone            ConnectionState = "none"
	StatePendingSent     ConnectionState = "pending_sent"
	StatePendingReceived ConnectionState = "pending_received"
	StateConnected       ConnectionState = "connected"
)

// sentStreams and receivedStreams split the four subscriptions by
// direction. Legacy user_id rows held the requesting side, so the
// legacy-user stream counts as sent.
var (
	sentStreams     = []Stream{StreamBySender, StreamByLegacyUser}
	receivedStreams = []Stream{StreamByRecipient, StreamByLegacyConnected}
)

// StatusWith resolves the viewer's connection state toward one
// counterpart, plus the backing edge if any. Sent edges are checked
// before received ones, so the result is deterministic for a fixed
// reconciler state.
func (r *Reconciler) StatusWith(counterpartID uint) (ConnectionState, *models.ConnectionEdge) {
	if counterpartID == 0 || counterpartID == r.viewerID {
		return StateNone, nil
	}

	if state, edge := r.resolveDirection(sentStreams, counterpartID, StatePendingSent); state != StateNone {
		return state, edge
	}
	if state, edge := r.resolveDirection(receivedStreams, counterpartID, StatePendingReceived); state != StateNone {
		return state, edge
	}

	// No active edge. Surface an inactive one (rejected, completed) if
	// present so callers can still inspect it.
	for s := Stream(0); s < streamCount; s++ {
		for i := range r.snapshots[s] {
			if counterpart(s, &r.snapshots[s][i]) == counterpartID {
				return StateNone, &r.snapshots[s][i]
			}
		}
	}
	return StateNone, nil
}

// resolveDirection scans one direction's streams. Accepted wins over
// pending; anything else does not produce a state.
func (r *Reconciler) resolveDirection(streams []Stream, counterpartID uint, pendingState ConnectionState) (ConnectionState, *models.ConnectionEdge) {
	var pending *models.ConnectionEdge
	for _, s := range streams {
		for i := range r.snapshots[s] {
			edge := &r.snapshots[s][i]
			if counterpart(s, edge) != counterpartID {
				continue
			}
			switch edge.Status {
			case models.ConnectionStatusAccepted:
				return StateConnected, edge
			case models.ConnectionStatusPending:
				if pending == nil {
					pending = edge
				}
			}
		}
	}
	if pending != nil {
		return pendingState, pending
	}
	return StateNone, nil
}
