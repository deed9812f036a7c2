package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"skillswap/internal/observability"
)

// feedQueueSize bounds pending dispatch jobs. Signals past the bound are
// dropped; the subscriber catches up on the next one.
const feedQueueSize = 256

// Query runs a one-shot read of the full current matching set.
type Query[T any] func(ctx context.Context) ([]T, error)

// Subscription cancels snapshot delivery when unsubscribed. Query
// results that land after Unsubscribe are dropped, never delivered.
type Subscription struct {
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}

type feedSubscriber struct {
	collection string
	run        func(ctx context.Context)
	cancelled  atomic.Bool
}

// Feed turns change signals into snapshot deliveries. Every subscriber
// registers a query for one collection; whenever that collection
// signals, the query re-runs and the subscriber receives the full
// result. All callbacks are dispatched from a single goroutine, so each
// one runs to completion before the next.
type Feed struct {
	bus    Bus
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[uint64]*feedSubscriber
	nextID uint64

	jobs chan func(context.Context)
}

func NewFeed(bus Bus, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		bus:    bus,
		logger: logger,
		subs:   make(map[uint64]*feedSubscriber),
		jobs:   make(chan func(context.Context), feedQueueSize),
	}
}

// Start wires the feed to its bus and launches the dispatch loop.
func (f *Feed) Start(ctx context.Context) error {
	if err := f.bus.Subscribe(ctx, func(collection string) {
		f.signal(collection)
	}); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-f.jobs:
				job(ctx)
			}
		}
	}()
	return nil
}

func (f *Feed) signal(collection string) {
	f.mu.Lock()
	pending := make([]*feedSubscriber, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.collection == collection {
			pending = append(pending, sub)
		}
	}
	f.mu.Unlock()

	for _, sub := range pending {
		f.enqueue(sub)
	}
}

func (f *Feed) enqueue(sub *feedSubscriber) {
	select {
	case f.jobs <- sub.run:
	default:
		f.logger.Warn("feed queue full, dropping signal", "collection", sub.collection)
	}
}

func (f *Feed) remove(id uint64) {
	f.mu.Lock()
	delete(f.subs, id)
	f.mu.Unlock()
}

// Subscribe registers a query against one collection and delivers the
// full matching set now and after every change signal. A failing query
// degrades this subscription to no output for that signal without
// touching sibling subscriptions; it retries on the next signal.
func Subscribe[T any](f *Feed, collection string, query Query[T], onSnapshot func([]T)) *Subscription {
	sub := &feedSubscriber{collection: collection}
	sub.run = func(ctx context.Context) {
		if sub.cancelled.Load() {
			return
		}
		items, err := query(ctx)
		if err != nil {
			observability.RecordFeedQueryFailure(collection)
			f.logger.Warn("feed query failed",
				"collection", collection,
				"error", err,
			)
			return
		}
		if sub.cancelled.Load() {
			return
		}
		observability.RecordFeedSnapshot(collection)
		onSnapshot(items)
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[id] = sub
	f.mu.Unlock()

	// Initial snapshot so subscribers never wait for the first change.
	f.enqueue(sub)

	return &Subscription{cancel: func() {
		sub.cancelled.Store(true)
		f.remove(id)
	}}
}
