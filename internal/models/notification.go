package models

import "time"

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	// NotificationTypeSessionRequest asks the recipient to confirm a session.
	NotificationTypeSessionRequest NotificationType = "session_request"
	// NotificationTypeConnectionRequest asks the recipient to answer a connection request.
	NotificationTypeConnectionRequest NotificationType = "connection_request"
	// NotificationTypeConnectionUpdate reports the outcome of a request the recipient sent.
	NotificationTypeConnectionUpdate NotificationType = "connection_update"
)

// Values Status takes under the newer schema. Empty status means unread.
const (
	NotificationStatusPending  = "pending"
	NotificationStatusUnread   = "unread"
	NotificationStatusRead     = "read"
	NotificationStatusAccepted = "accepted"
	NotificationStatusRejected = "rejected"
)

// Notification represents a delivered event needing user attention.
//
// Read state is stored in two shapes: old rows carry the Read boolean,
// newer rows carry Status (pending/accepted/rejected, with "unread" and
// empty meaning not yet seen). view.Unread normalizes the two.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient" json:"recipient_id"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Status      string           `gorm:"type:varchar(20)" json:"status,omitempty"`
	Read        *bool            `json:"read,omitempty"`
	SenderID    uint             `json:"sender_id"`
	SenderName  string           `json:"sender_name"`
	SenderPhoto string           `json:"sender_photo,omitempty"`
	Message     string           `json:"message"`
	SkillName   string           `json:"skill_name,omitempty"`
	ConnectionID *uint           `json:"connection_id,omitempty"`
	SessionID    *uint           `json:"session_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
