// Package realtime carries store change signals and snapshot feeds to
// subscribers. Writers publish a signal per mutated collection; feeds
// re-run their queries and deliver the full current matching set.
package realtime

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const changePrefix = "store:changed:"

// Collections that emit change signals.
const (
	CollectionConnections   = "connections"
	CollectionNotifications = "notifications"
	CollectionSessions      = "sessions"
	CollectionUsers         = "users"
)

// Bus distributes change signals per collection.
type Bus interface {
	// Publish signals that a collection changed.
	Publish(ctx context.Context, collection string) error
	// Subscribe delivers every change signal to onChange until ctx ends.
	Subscribe(ctx context.Context, onChange func(collection string)) error
}

// ChangeChannel derives the Redis channel name for a collection.
func ChangeChannel(collection string) string {
	return changePrefix + collection
}

// RedisBus fans change signals out across processes via Redis pub/sub.
// A nil client degrades every call to a no-op, matching redis-less dev.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, collection string) error {
	if b.rdb == nil {
		return nil
	}
	return b.rdb.Publish(ctx, ChangeChannel(collection), collection).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, onChange func(collection string)) error {
	if b.rdb == nil {
		return nil
	}
	sub := b.rdb.PSubscribe(ctx, changePrefix+"*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				collection := strings.TrimPrefix(msg.Channel, changePrefix)
				if collection == "" || collection == msg.Channel {
					log.Printf("invalid change channel: %s", msg.Channel)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in ChangeSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onChange(collection)
				}()
			}
		}
	}()

	return nil
}

// MemoryBus is an in-process bus for tests and single-node deployments.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []func(string)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(_ context.Context, collection string) error {
	b.mu.RLock()
	handlers := append(([]func(string))(nil), b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(collection)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, onChange func(collection string)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, func(collection string) {
		if ctx.Err() != nil {
			return
		}
		onChange(collection)
	})
	b.mu.Unlock()
	return nil
}
