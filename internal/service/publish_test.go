package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"skillswap/internal/middleware"
	"skillswap/internal/realtime"
)

type failingBus struct{ err error }

func (b *failingBus) Publish(context.Context, string) error { return b.err }
func (b *failingBus) Subscribe(context.Context, func(string)) error {
	return nil
}

func TestPublishChangeLogsFailureWithoutSurfacing(t *testing.T) {
	var buf bytes.Buffer
	prev := middleware.Logger
	middleware.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	defer func() { middleware.Logger = prev }()

	publishChange(context.Background(), &failingBus{err: errors.New("redis down")}, realtime.CollectionNotifications)

	out := buf.String()
	if !strings.Contains(out, "change signal publish failed") {
		t.Fatalf("publish failure not logged: %q", out)
	}
	if !strings.Contains(out, realtime.CollectionNotifications) {
		t.Fatalf("log line should name the collection: %q", out)
	}
}

func TestPublishChangeNilBusIsNoop(t *testing.T) {
	// Services run without a bus in some tests and redis-less dev.
	publishChange(context.Background(), nil, realtime.CollectionUsers)
}

func TestMutationSucceedsWhenPublishFails(t *testing.T) {
	prev := middleware.Logger
	middleware.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	defer func() { middleware.Logger = prev }()

	svc := NewNotificationService(noopNotifRepo(), &failingBus{err: errors.New("redis down")})
	if err := svc.MarkAllRead(context.Background(), 7); err != nil {
		t.Fatalf("write must not fail on a dropped change signal: %v", err)
	}
}
