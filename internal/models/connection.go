package models

import "time"

// ConnectionStatus represents the status of a connection edge.
type ConnectionStatus string

const (
	// ConnectionStatusPending indicates a request awaiting the recipient's answer.
	ConnectionStatusPending ConnectionStatus = "pending"
	// ConnectionStatusAccepted indicates an accepted connection.
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	// ConnectionStatusRejected indicates a declined request.
	ConnectionStatusRejected ConnectionStatus = "rejected"
	// ConnectionStatusCompleted indicates a connection both parties closed out.
	ConnectionStatusCompleted ConnectionStatus = "completed"
)

// ConnectionEdge represents a relationship request between two users.
//
// Two field pairs can carry the endpoints: the current schema uses
// SenderID/RecipientID, rows written before the schema migration use
// UserID/ConnectedUserID. Exactly one pair is set per row; readers must
// handle both until the migration is finished.
type ConnectionEdge struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	SenderID    *uint            `gorm:"index:idx_connection_edges_sender" json:"sender_id,omitempty"`
	RecipientID *uint            `gorm:"index:idx_connection_edges_recipient" json:"recipient_id,omitempty"`
	// Legacy pair. UserID held the requesting side in old rows.
	UserID          *uint            `gorm:"index:idx_connection_edges_user" json:"user_id,omitempty"`
	ConnectedUserID *uint            `gorm:"index:idx_connection_edges_connected" json:"connected_user_id,omitempty"`
	Status          ConnectionStatus `gorm:"type:varchar(20);default:'pending';index:idx_connection_edges_status" json:"status"`
	Message         string           `json:"message,omitempty"`
	SkillName       string           `json:"skill_name,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// Relationships
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

// TableName specifies the table name for GORM
func (ConnectionEdge) TableName() string {
	return "connection_edges"
}

// Initiator returns the requesting side of the edge across both schemas,
// or 0 when the row carries neither pair.
func (e *ConnectionEdge) Initiator() uint {
	if e.SenderID != nil {
		return *e.SenderID
	}
	if e.UserID != nil {
		return *e.UserID
	}
	return 0
}

// Target returns the receiving side of the edge across both schemas,
// or 0 when the row carries neither pair.
func (e *ConnectionEdge) Target() uint {
	if e.RecipientID != nil {
		return *e.RecipientID
	}
	if e.ConnectedUserID != nil {
		return *e.ConnectedUserID
	}
	return 0
}

// Counterpart resolves the other party of the edge relative to viewerID.
// Returns 0 when the viewer is on neither side or the edge is incomplete.
func (e *ConnectionEdge) Counterpart(viewerID uint) uint {
	initiator, target := e.Initiator(), e.Target()
	switch viewerID {
	case initiator:
		return target
	case target:
		return initiator
	default:
		return 0
	}
}
