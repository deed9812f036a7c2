package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skillswap/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func edge(id, sender, recipient uint, status models.ConnectionStatus, created time.Time) models.ConnectionEdge {
	return models.ConnectionEdge{
		ID:          id,
		SenderID:    uintPtr(sender),
		RecipientID: uintPtr(recipient),
		Status:      status,
		CreatedAt:   created,
	}
}

func legacyEdge(id, user, connected uint, status models.ConnectionStatus, created time.Time) models.ConnectionEdge {
	return models.ConnectionEdge{
		ID:              id,
		UserID:          uintPtr(user),
		ConnectedUserID: uintPtr(connected),
		Status:          status,
		CreatedAt:       created,
	}
}

func TestReconciler_OneEntryPerCounterpart(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)

	// Same logical pair {1,7} surfaces through three streams.
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusPending, now),
	})
	r.Apply(StreamByLegacyUser, []models.ConnectionEdge{
		legacyEdge(11, 1, 7, models.ConnectionStatusPending, now.Add(-time.Hour)),
	})
	r.Apply(StreamByRecipient, []models.ConnectionEdge{
		edge(12, 7, 1, models.ConnectionStatusPending, now.Add(-2*time.Hour)),
	})

	contacts := r.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, uint(7), contacts[0].CounterpartID)
}

func TestReconciler_AcceptedIsSticky(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)

	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusAccepted, now),
	})
	// A later-arriving stale batch must not displace the accepted entry.
	r.Apply(StreamByLegacyUser, []models.ConnectionEdge{
		legacyEdge(11, 1, 7, models.ConnectionStatusPending, now),
	})

	contacts := r.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, models.ConnectionStatusAccepted, contacts[0].Status)
	require.Equal(t, uint(10), contacts[0].Edge.ID)
}

func TestReconciler_LastWriteWinsWithoutAccepted(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)

	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusPending, now),
	})
	r.Apply(StreamByLegacyUser, []models.ConnectionEdge{
		legacyEdge(11, 1, 7, models.ConnectionStatusRejected, now),
	})

	// Rejected arrived last and neither side is accepted, so it wins
	// and drops out of the active list.
	require.Empty(t, r.Contacts())

	// Re-applying the first stream flips it back to pending.
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusPending, now),
	})
	contacts := r.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, models.ConnectionStatusPending, contacts[0].Status)
}

func TestReconciler_ArrivalOrderDoesNotBreakAccepted(t *testing.T) {
	now := time.Now()
	accepted := []models.ConnectionEdge{edge(10, 1, 7, models.ConnectionStatusAccepted, now)}
	pending := []models.ConnectionEdge{edge(12, 7, 1, models.ConnectionStatusPending, now)}

	// Whichever order the two streams land in, accepted survives.
	orders := [][2]func(*Reconciler){
		{
			func(r *Reconciler) { r.Apply(StreamBySender, accepted) },
			func(r *Reconciler) { r.Apply(StreamByRecipient, pending) },
		},
		{
			func(r *Reconciler) { r.Apply(StreamByRecipient, pending) },
			func(r *Reconciler) { r.Apply(StreamBySender, accepted) },
		},
	}
	for _, order := range orders {
		r := NewReconciler(1)
		order[0](r)
		order[1](r)
		contacts := r.Contacts()
		require.Len(t, contacts, 1)
		require.Equal(t, models.ConnectionStatusAccepted, contacts[0].Status)
	}
}

func TestReconciler_SkipsSelfAndMissingCounterpart(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)

	half := models.ConnectionEdge{ID: 20, SenderID: uintPtr(1), Status: models.ConnectionStatusPending, CreatedAt: now}
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 1, models.ConnectionStatusPending, now), // self-reference
		half, // missing recipient
		edge(11, 1, 5, models.ConnectionStatusPending, now),
	})

	contacts := r.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, uint(5), contacts[0].CounterpartID)
}

func TestReconciler_SignedOutViewerEmitsNothing(t *testing.T) {
	r := NewReconciler(0)
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusAccepted, time.Now()),
	})
	require.Empty(t, r.Contacts())
}

func TestReconciler_ContactsOrderedNewestFirst(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 5, models.ConnectionStatusAccepted, now.Add(-2*time.Hour)),
		edge(11, 1, 6, models.ConnectionStatusPending, now),
		edge(12, 1, 7, models.ConnectionStatusAccepted, now.Add(-time.Hour)),
	})

	contacts := r.Contacts()
	require.Len(t, contacts, 3)
	require.Equal(t, uint(6), contacts[0].CounterpartID)
	require.Equal(t, uint(7), contacts[1].CounterpartID)
	require.Equal(t, uint(5), contacts[2].CounterpartID)
}

func TestReconciler_RejectedExcludedButRetained(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 7, models.ConnectionStatusRejected, now),
	})

	require.Empty(t, r.Contacts())

	state, backing := r.StatusWith(7)
	require.Equal(t, StateNone, state)
	require.NotNil(t, backing)
	require.Equal(t, uint(10), backing.ID)
}

func TestReconciler_DroppedStreamDegradesAlone(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 5, models.ConnectionStatusAccepted, now),
	})
	r.Apply(StreamByRecipient, []models.ConnectionEdge{
		edge(11, 6, 1, models.ConnectionStatusAccepted, now),
	})

	r.Drop(StreamByRecipient)

	contacts := r.Contacts()
	require.Len(t, contacts, 1)
	require.Equal(t, uint(5), contacts[0].CounterpartID)
	require.True(t, r.Loaded())
}

func TestReconciler_LoadedLatches(t *testing.T) {
	r := NewReconciler(1)
	require.False(t, r.Loaded())

	r.Apply(StreamBySender, nil)
	require.True(t, r.Loaded())

	r.Drop(StreamBySender)
	require.True(t, r.Loaded())
}

func TestReconciler_AcceptedSet(t *testing.T) {
	now := time.Now()
	r := NewReconciler(1)
	r.Apply(StreamBySender, []models.ConnectionEdge{
		edge(10, 1, 5, models.ConnectionStatusAccepted, now),
		edge(11, 1, 6, models.ConnectionStatusPending, now),
	})
	r.Apply(StreamByRecipient, []models.ConnectionEdge{
		edge(12, 7, 1, models.ConnectionStatusAccepted, now),
	})

	accepted := r.AcceptedSet()
	require.Equal(t, map[uint]bool{5: true, 7: true}, accepted)
}
