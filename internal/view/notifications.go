package view

import (
	"sort"

	"skillswap/internal/models"
)

// Unread reports whether a notification still needs attention. This is
// the single place that reconciles the two read-state schemas: rows with
// the legacy boolean use it directly, newer rows are unread while their
// status is empty, pending, or the literal "unread".
func Unread(n *models.Notification) bool {
	if n.Read != nil {
		return !*n.Read
	}
	switch n.Status {
	case "", "pending", "unread":
		return true
	default:
		return false
	}
}

// NotificationView holds the viewer's current notification snapshot and
// exposes derived filters over it. State only changes via Apply, so a
// mutation becomes visible on the snapshot after the write, never before.
type NotificationView struct {
	items  []models.Notification
	loaded bool
}

func NewNotificationView() *NotificationView {
	return &NotificationView{}
}

// Apply replaces the snapshot wholesale and re-sorts newest first.
func (v *NotificationView) Apply(snapshot []models.Notification) {
	items := append([]models.Notification(nil), snapshot...)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	v.items = items
	v.loaded = true
}

// Loaded latches true after the first snapshot.
func (v *NotificationView) Loaded() bool {
	return v.loaded
}

// All returns the current snapshot, newest first.
func (v *NotificationView) All() []models.Notification {
	return v.items
}

// UnreadCount counts notifications still needing attention.
func (v *NotificationView) UnreadCount() int {
	count := 0
	for i := range v.items {
		if Unread(&v.items[i]) {
			count++
		}
	}
	return count
}

// ByType filters the snapshot to one notification type.
func (v *NotificationView) ByType(t models.NotificationType) []models.Notification {
	out := make([]models.Notification, 0)
	for i := range v.items {
		if v.items[i].Type == t {
			out = append(out, v.items[i])
		}
	}
	return out
}

// ByReadState filters the snapshot by normalized read state.
func (v *NotificationView) ByReadState(unread bool) []models.Notification {
	out := make([]models.Notification, 0)
	for i := range v.items {
		if Unread(&v.items[i]) == unread {
			out = append(out, v.items[i])
		}
	}
	return out
}

// Recent returns the newest n notifications.
func (v *NotificationView) Recent(n int) []models.Notification {
	if n < 0 {
		n = 0
	}
	if n > len(v.items) {
		n = len(v.items)
	}
	return v.items[:n]
}
