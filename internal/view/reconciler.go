// Package view derives read-mostly client views from store snapshots:
// contact reconciliation, notification read-state normalization, and
// session categorization.
package view

import (
	"sort"
	"time"

	"skillswap/internal/models"
)

// Stream identifies one of the overlapping connection-edge subscriptions.
// Two query shapes exist per schema because rows written before the
// schema migration carry the legacy field pair.
type Stream int

const (
	// StreamBySender matches edges where the viewer is the sender.
	StreamBySender Stream = iota
	// StreamByRecipient matches edges where the viewer is the recipient.
	StreamByRecipient
	// StreamByLegacyUser matches legacy rows where the viewer is user_id.
	StreamByLegacyUser
	// StreamByLegacyConnected matches legacy rows where the viewer is connected_user_id.
	StreamByLegacyConnected

	streamCount
)

// Contact is one merged entry of the reconciled contact list.
type Contact struct {
	CounterpartID uint                    `json:"counterpart_id"`
	Status        models.ConnectionStatus `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	Edge          models.ConnectionEdge   `json:"edge"`
}

// Reconciler folds the four connection-edge subscription streams into a
// single deduplicated contact list keyed by counterpart user id.
//
// Each Apply replaces that stream's snapshot wholesale (the store delivers
// full matching sets, not diffs). The merge is an explicit reducer over
// the retained snapshots: streams are folded in arrival order, and an
// accepted entry is never displaced by a non-accepted one, so the result
// does not depend on how the four callbacks interleave.
type Reconciler struct {
	viewerID  uint
	snapshots [streamCount][]models.ConnectionEdge
	arrivals  [streamCount]int
	seq       int
	loaded    bool
}

// NewReconciler creates a reconciler for the given viewer. A zero
// viewerID means signed out; every view then stays empty.
func NewReconciler(viewerID uint) *Reconciler {
	return &Reconciler{viewerID: viewerID}
}

// Apply records the latest full snapshot for one stream.
func (r *Reconciler) Apply(stream Stream, edges []models.ConnectionEdge) {
	if stream < 0 || stream >= streamCount {
		return
	}
	r.seq++
	r.snapshots[stream] = append([]models.ConnectionEdge(nil), edges...)
	r.arrivals[stream] = r.seq
	r.loaded = true
}

// Drop clears one stream's contribution, used when the store denies that
// query. The other streams keep emitting a best-effort merged result.
func (r *Reconciler) Drop(stream Stream) {
	if stream < 0 || stream >= streamCount {
		return
	}
	r.snapshots[stream] = nil
	r.arrivals[stream] = 0
}

// Loaded latches true once any stream has emitted and never resets.
func (r *Reconciler) Loaded() bool {
	return r.loaded
}

// counterpart derives the other party per the stream's query shape.
// Returns 0 when the field is missing.
func counterpart(stream Stream, edge *models.ConnectionEdge) uint {
	switch stream {
	case StreamBySender:
		return edge.Target()
	case StreamByRecipient:
		return edge.Initiator()
	case StreamByLegacyUser:
		if edge.ConnectedUserID != nil {
			return *edge.ConnectedUserID
		}
	case StreamByLegacyConnected:
		if edge.UserID != nil {
			return *edge.UserID
		}
	}
	return 0
}

// merge reduces the retained snapshots into one entry per counterpart.
// Accepted is sticky; otherwise the later-arriving stream wins.
func (r *Reconciler) merge() map[uint]Contact {
	order := make([]Stream, 0, streamCount)
	for s := Stream(0); s < streamCount; s++ {
		if r.arrivals[s] > 0 {
			order = append(order, s)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return r.arrivals[order[i]] < r.arrivals[order[j]]
	})

	merged := make(map[uint]Contact)
	for _, s := range order {
		for i := range r.snapshots[s] {
			edge := r.snapshots[s][i]
			cp := counterpart(s, &edge)
			if cp == 0 || cp == r.viewerID || r.viewerID == 0 {
				continue
			}
			if prev, ok := merged[cp]; ok &&
				prev.Status == models.ConnectionStatusAccepted &&
				edge.Status != models.ConnectionStatusAccepted {
				continue
			}
			merged[cp] = Contact{
				CounterpartID: cp,
				Status:        edge.Status,
				CreatedAt:     edge.CreatedAt,
				Edge:          edge,
			}
		}
	}
	return merged
}

// Contacts returns the active contact list, newest first. Rejected edges
// are excluded here but still participate in StatusWith.
func (r *Reconciler) Contacts() []Contact {
	merged := r.merge()
	out := make([]Contact, 0, len(merged))
	for _, c := range merged {
		if c.Status == models.ConnectionStatusRejected {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CounterpartID > out[j].CounterpartID
	})
	return out
}

// AcceptedSet returns the counterpart ids the viewer is connected to,
// the visibility input for session categorization.
func (r *Reconciler) AcceptedSet() map[uint]bool {
	accepted := make(map[uint]bool)
	for cp, c := range r.merge() {
		if c.Status == models.ConnectionStatusAccepted {
			accepted[cp] = true
		}
	}
	return accepted
}
