// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"skillswap/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is the shared demo password for every seeded account.
const seedPassword = "SeedAccount12!"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and integration tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand

	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt hash shared across users keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		hash = []byte("")
	}

	return &Factory{
		db:           db,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// BuildUser constructs a user with realistic profile fields and a
// couple of catalog skills on each side of the exchange.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.rand.Intn(1000)))

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(fmt.Sprintf("%s.%s%d@%s", first, last, f.rand.Intn(1000), gofakeit.DomainName())),
		Password:     f.passwordHash,
		DisplayName:  first + " " + last,
		PhotoURL:     fmt.Sprintf("https://i.pravatar.cc/300?u=%s", username),
		Bio:          gofakeit.Sentence(12),
		SkillsOffer:  f.skillList(1 + f.rand.Intn(3)),
		SkillsWanted: f.skillList(1 + f.rand.Intn(3)),
		CreatedAt:    f.pastTime(180),
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildEdge constructs a connection edge between two users. When legacy
// is set, the row carries the old user_id/connected_user_id pair instead
// of sender_id/recipient_id, mirroring rows written before the schema
// migration.
func (f *Factory) BuildEdge(from, to uint, status models.ConnectionStatus, legacy bool) *models.ConnectionEdge {
	edge := &models.ConnectionEdge{
		Status:    status,
		SkillName: randomSkill(f.rand),
		Message:   gofakeit.Sentence(8),
		CreatedAt: f.pastTime(60),
	}
	if legacy {
		edge.UserID = &from
		edge.ConnectedUserID = &to
	} else {
		edge.SenderID = &from
		edge.RecipientID = &to
	}
	return edge
}

// CreateEdge builds and persists a connection edge.
func (f *Factory) CreateEdge(from, to uint, status models.ConnectionStatus, legacy bool) (*models.ConnectionEdge, error) {
	edge := f.BuildEdge(from, to, status, legacy)
	if err := f.db.Create(edge).Error; err != nil {
		return nil, err
	}
	return edge, nil
}

// BuildNotification constructs a notification for the recipient about
// the sender. Roughly half the rows use the legacy boolean read flag
// and the other half the status enum, so both read-state schemas are
// present in seeded data.
func (f *Factory) BuildNotification(recipient, sender *models.User, nType models.NotificationType) *models.Notification {
	n := &models.Notification{
		RecipientID: recipient.ID,
		Type:        nType,
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName,
		SenderPhoto: sender.PhotoURL,
		Message:     gofakeit.Sentence(10),
		SkillName:   randomSkill(f.rand),
		CreatedAt:   f.pastTime(30),
	}

	if f.rand.Intn(2) == 0 {
		// Legacy schema: boolean read flag only.
		read := f.rand.Intn(3) != 0
		n.Read = &read
	} else {
		statuses := []string{
			models.NotificationStatusPending,
			models.NotificationStatusRead,
			models.NotificationStatusAccepted,
			models.NotificationStatusRejected,
		}
		n.Status = statuses[f.rand.Intn(len(statuses))]
	}
	return n
}

// CreateNotification builds and persists a notification.
func (f *Factory) CreateNotification(recipient, sender *models.User, nType models.NotificationType) (*models.Notification, error) {
	n := f.BuildNotification(recipient, sender, nType)
	if err := f.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// BuildSession constructs a session between organizer and participant
// scheduled at the given time with a status plausible for that time.
func (f *Factory) BuildSession(organizer, participant *models.User, scheduledAt time.Time) *models.Session {
	status := models.SessionStatusConfirmed
	switch {
	case scheduledAt.Before(time.Now().AddDate(0, 0, -1)):
		past := []models.SessionStatus{
			models.SessionStatusCompleted,
			models.SessionStatusCompleted,
			models.SessionStatusCancelled,
		}
		status = past[f.rand.Intn(len(past))]
	case f.rand.Intn(3) == 0:
		status = models.SessionStatusPending
	}

	types := []models.SessionType{models.SessionTypeVideo, models.SessionTypeVideo, models.SessionTypePhone, models.SessionTypeInPerson}
	sType := types[f.rand.Intn(len(types))]

	session := &models.Session{
		OrganizerID:      organizer.ID,
		ParticipantID:    participant.ID,
		OrganizerName:    organizer.DisplayName,
		OrganizerPhoto:   organizer.PhotoURL,
		ParticipantName:  participant.DisplayName,
		ParticipantPhoto: participant.PhotoURL,
		SkillName:        randomSkill(f.rand),
		SessionType:      sType,
		ScheduledAt:      scheduledAt,
		DurationMinutes:  30 * (1 + f.rand.Intn(4)),
		Status:           status,
		Notes:            gofakeit.Sentence(6),
	}
	if sType == models.SessionTypeVideo {
		session.MeetingLink = fmt.Sprintf("https://meet.example.com/%s", gofakeit.UUID())
	}
	if sType == models.SessionTypeInPerson {
		session.Location = gofakeit.City() + " public library"
	}
	return session
}

// CreateSession builds and persists a session.
func (f *Factory) CreateSession(organizer, participant *models.User, scheduledAt time.Time) (*models.Session, error) {
	session := f.BuildSession(organizer, participant, scheduledAt)
	if err := f.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// skillList picks n distinct catalog skills as a comma-separated list.
func (f *Factory) skillList(n int) string {
	skills, err := AllSkills()
	if err != nil || len(skills) == 0 {
		return "Guitar"
	}
	picked := make(map[string]struct{}, n)
	var out []string
	for len(out) < n && len(out) < len(skills) {
		s := skills[f.rand.Intn(len(skills))]
		if _, dup := picked[s]; dup {
			continue
		}
		picked[s] = struct{}{}
		out = append(out, s)
	}
	return strings.Join(out, ", ")
}

// pastTime returns a random instant up to maxDays in the past.
func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
