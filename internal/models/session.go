package models

import "time"

// SessionStatus represents the lifecycle state of a scheduled session.
type SessionStatus string

const (
	// SessionStatusPending indicates a proposed session awaiting confirmation.
	SessionStatusPending SessionStatus = "pending"
	// SessionStatusConfirmed indicates the counterpart confirmed the session.
	SessionStatusConfirmed SessionStatus = "confirmed"
	// SessionStatusInProgress indicates a session someone has joined.
	SessionStatusInProgress SessionStatus = "in_progress"
	// SessionStatusCompleted indicates a finished session.
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusCancelled indicates a cancelled session.
	SessionStatusCancelled SessionStatus = "cancelled"
)

// SessionType is how the two parties meet.
type SessionType string

const (
	SessionTypeVideo    SessionType = "video"
	SessionTypePhone    SessionType = "phone"
	SessionTypeInPerson SessionType = "in_person"
)

// Session represents a scheduled or completed meeting between two
// connected users. Names and photos are denormalized so lists render
// without a join.
type Session struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	OrganizerID      uint          `gorm:"not null;index:idx_sessions_organizer" json:"organizer_id"`
	ParticipantID    uint          `gorm:"not null;index:idx_sessions_participant" json:"participant_id"`
	OrganizerName    string        `json:"organizer_name"`
	OrganizerPhoto   string        `json:"organizer_photo,omitempty"`
	ParticipantName  string        `json:"participant_name"`
	ParticipantPhoto string        `json:"participant_photo,omitempty"`
	SkillName        string        `json:"skill_name"`
	SessionType      SessionType   `gorm:"type:varchar(20);default:'video'" json:"session_type"`
	ScheduledAt      time.Time     `gorm:"not null;index:idx_sessions_scheduled" json:"scheduled_at"`
	DurationMinutes  int           `gorm:"default:60" json:"duration_minutes"`
	Status           SessionStatus `gorm:"type:varchar(20);default:'pending';index:idx_sessions_status" json:"status"`
	MeetingLink      string        `json:"meeting_link,omitempty"`
	Location         string        `json:"location,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Session) TableName() string {
	return "sessions"
}

// Counterpart returns the other participant relative to viewerID,
// or 0 when the viewer is not part of the session.
func (s *Session) Counterpart(viewerID uint) uint {
	switch viewerID {
	case s.OrganizerID:
		return s.ParticipantID
	case s.ParticipantID:
		return s.OrganizerID
	default:
		return 0
	}
}
