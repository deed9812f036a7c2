package seed

import (
	"fmt"
	"log"
	"time"

	"skillswap/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	EdgesPerUser    int
	SessionsPerUser int
	ShouldClean     bool

	// LegacyEdgePercent is how many connection edges are written with
	// the pre-migration field pair (0-100).
	LegacyEdgePercent int
}

// DefaultOptions returns a small but representative data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:          25,
		EdgesPerUser:      4,
		SessionsPerUser:   3,
		LegacyEdgePercent: 30,
	}
}

// Run populates the database with demo users, a connection mesh mixing
// both edge schemas, notifications in both read-state schemas, and
// sessions spread across past, today, and future.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts = DefaultOptions()
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean tables: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users (password %q)", len(users), seedPassword)

	edges, err := seedConnectionMesh(f, users, opts)
	if err != nil {
		return err
	}
	log.Printf("seeded %d connection edges", edges)

	notifs, err := seedNotifications(f, users)
	if err != nil {
		return err
	}
	log.Printf("seeded %d notifications", notifs)

	sessions, err := seedSessions(f, users, opts)
	if err != nil {
		return err
	}
	log.Printf("seeded %d sessions", sessions)

	return nil
}

// seedConnectionMesh links each user to a handful of later users so no
// pair is generated twice. Status skews toward accepted; a slice of
// edges is written with the legacy schema per LegacyEdgePercent.
func seedConnectionMesh(f *Factory, users []*models.User, opts Options) (int, error) {
	statuses := []models.ConnectionStatus{
		models.ConnectionStatusAccepted,
		models.ConnectionStatusAccepted,
		models.ConnectionStatusAccepted,
		models.ConnectionStatusPending,
		models.ConnectionStatusRejected,
		models.ConnectionStatusCompleted,
	}

	count := 0
	for i, user := range users {
		for n := 0; n < opts.EdgesPerUser; n++ {
			j := i + 1 + n
			if j >= len(users) {
				break
			}
			status := statuses[f.rand.Intn(len(statuses))]
			legacy := f.rand.Intn(100) < opts.LegacyEdgePercent

			from, to := user.ID, users[j].ID
			if f.rand.Intn(2) == 0 {
				from, to = to, from
			}

			if _, err := f.CreateEdge(from, to, status, legacy); err != nil {
				return count, fmt.Errorf("create edge %d->%d: %w", from, to, err)
			}
			count++
		}
	}
	return count, nil
}

func seedNotifications(f *Factory, users []*models.User) (int, error) {
	types := []models.NotificationType{
		models.NotificationTypeConnectionRequest,
		models.NotificationTypeConnectionUpdate,
		models.NotificationTypeSessionRequest,
	}

	count := 0
	for _, recipient := range users {
		n := 2 + f.rand.Intn(4)
		for k := 0; k < n; k++ {
			sender := users[f.rand.Intn(len(users))]
			if sender.ID == recipient.ID {
				continue
			}
			if _, err := f.CreateNotification(recipient, sender, types[f.rand.Intn(len(types))]); err != nil {
				return count, fmt.Errorf("create notification for user %d: %w", recipient.ID, err)
			}
			count++
		}
	}
	return count, nil
}

// seedSessions spreads each user's sessions across the three calendar
// buckets so the categorized view has content everywhere.
func seedSessions(f *Factory, users []*models.User, opts Options) (int, error) {
	count := 0
	for i, organizer := range users {
		for n := 0; n < opts.SessionsPerUser; n++ {
			j := i + 1 + n
			if j >= len(users) {
				break
			}

			var scheduledAt time.Time
			switch n % 3 {
			case 0: // previous
				scheduledAt = time.Now().AddDate(0, 0, -(2 + f.rand.Intn(30)))
			case 1: // current day
				scheduledAt = time.Now().Add(time.Duration(1+f.rand.Intn(6)) * time.Hour)
			default: // next
				scheduledAt = time.Now().AddDate(0, 0, 2+f.rand.Intn(21))
			}

			if _, err := f.CreateSession(organizer, users[j], scheduledAt); err != nil {
				return count, fmt.Errorf("create session %d/%d: %w", organizer.ID, users[j].ID, err)
			}
			count++
		}
	}
	return count, nil
}

func clean(db *gorm.DB) error {
	// Children first so FK constraints hold on engines without cascade.
	for _, table := range []string{"sessions", "notifications", "connection_edges", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
