package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"skillswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Integration(t *testing.T) {
	repo := NewSessionRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	organizer := &models.User{Username: fmt.Sprintf("s1_%d", ts), Email: fmt.Sprintf("s1_%d@e.com", ts)}
	participant := &models.User{Username: fmt.Sprintf("s2_%d", ts), Email: fmt.Sprintf("s2_%d@e.com", ts)}
	testDB.Create(organizer)
	testDB.Create(participant)

	t.Run("Create and ListForUser", func(t *testing.T) {
		session := &models.Session{
			OrganizerID:     organizer.ID,
			ParticipantID:   participant.ID,
			SkillName:       "spanish",
			Status:          models.SessionStatusPending,
			SessionType:     models.SessionTypeVideo,
			ScheduledAt:     time.Now().Add(48 * time.Hour),
			DurationMinutes: 60,
		}
		require.NoError(t, repo.Create(ctx, session))

		asOrganizer, err := repo.ListForUser(ctx, organizer.ID)
		assert.NoError(t, err)
		assert.Len(t, asOrganizer, 1)

		asParticipant, err := repo.ListForUser(ctx, participant.ID)
		assert.NoError(t, err)
		assert.Len(t, asParticipant, 1)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		sessions, err := repo.ListForUser(ctx, organizer.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sessions)

		err = repo.UpdateStatus(ctx, sessions[0].ID, models.SessionStatusConfirmed)
		assert.NoError(t, err)

		got, err := repo.GetByID(ctx, sessions[0].ID)
		assert.NoError(t, err)
		assert.Equal(t, models.SessionStatusConfirmed, got.Status)
	})

	t.Run("Update reschedules", func(t *testing.T) {
		sessions, err := repo.ListForUser(ctx, organizer.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sessions)

		session := sessions[0]
		newTime := time.Now().Add(72 * time.Hour).Truncate(time.Second)
		session.ScheduledAt = newTime
		require.NoError(t, repo.Update(ctx, &session))

		got, err := repo.GetByID(ctx, session.ID)
		assert.NoError(t, err)
		assert.WithinDuration(t, newTime, got.ScheduledAt, time.Second)
	})

	t.Run("Delete", func(t *testing.T) {
		sessions, err := repo.ListForUser(ctx, organizer.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sessions)

		require.NoError(t, repo.Delete(ctx, sessions[0].ID))

		_, err = repo.GetByID(ctx, sessions[0].ID)
		require.Error(t, err)
	})
}
