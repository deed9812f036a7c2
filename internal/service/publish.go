package service

import (
	"context"
	"log/slog"

	"skillswap/internal/middleware"
	"skillswap/internal/realtime"
)

// publishChange emits a change signal for a collection. A failed publish
// is logged, not returned: the write already succeeded, and subscribers
// catch up on the next signal for the collection.
func publishChange(ctx context.Context, bus realtime.Bus, collection string) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, collection); err != nil {
		logger := middleware.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "change signal publish failed",
			"collection", collection,
			"error", err,
		)
	}
}
