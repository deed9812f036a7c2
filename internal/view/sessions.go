package view

import (
	"sort"
	"time"

	"skillswap/internal/models"
)

// Buckets partitions a viewer's sessions relative to a reference time.
type Buckets struct {
	Previous []models.Session `json:"previous"`
	Current  []models.Session `json:"current"`
	Next     []models.Session `json:"next"`
}

// Joinable window around the scheduled time for confirmed sessions.
const (
	joinEarly = 15 * time.Minute
	joinLate  = 30 * time.Minute
)

func sessionClosed(s *models.Session) bool {
	return s.Status == models.SessionStatusCompleted || s.Status == models.SessionStatusCancelled
}

// Categorize partitions sessions into previous/current/next calendar
// buckets for the viewer. Sessions whose counterpart is not in the
// viewer's accepted-connection set are invisible, whatever their state.
// Completed and cancelled sessions always land in previous.
func Categorize(sessions []models.Session, viewerID uint, accepted map[uint]bool, now time.Time) Buckets {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var b Buckets
	for i := range sessions {
		s := sessions[i]
		cp := s.Counterpart(viewerID)
		if cp == 0 || !accepted[cp] {
			continue
		}
		switch {
		case sessionClosed(&s) || s.ScheduledAt.Before(dayStart):
			b.Previous = append(b.Previous, s)
		case s.ScheduledAt.Before(dayEnd):
			b.Current = append(b.Current, s)
		default:
			b.Next = append(b.Next, s)
		}
	}

	// Previous newest first, today's and upcoming soonest first.
	sort.SliceStable(b.Previous, func(i, j int) bool {
		return b.Previous[i].ScheduledAt.After(b.Previous[j].ScheduledAt)
	})
	sort.SliceStable(b.Current, func(i, j int) bool {
		return b.Current[i].ScheduledAt.Before(b.Current[j].ScheduledAt)
	})
	sort.SliceStable(b.Next, func(i, j int) bool {
		return b.Next[i].ScheduledAt.Before(b.Next[j].ScheduledAt)
	})
	return b
}

// Joinable reports whether a confirmed session can be joined right now,
// from 15 minutes before to 30 minutes after its scheduled time.
func Joinable(s *models.Session, now time.Time) bool {
	if s.Status != models.SessionStatusConfirmed {
		return false
	}
	opens := s.ScheduledAt.Add(-joinEarly)
	closes := s.ScheduledAt.Add(joinLate)
	return !now.Before(opens) && !now.After(closes)
}

// UpcomingSoon reports whether a session starts within the next hour.
func UpcomingSoon(s *models.Session, now time.Time) bool {
	d := s.ScheduledAt.Sub(now)
	return d > 0 && d <= time.Hour
}
