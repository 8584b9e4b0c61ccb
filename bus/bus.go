// Package bus propagates transient event envelopes between participants
// through the shared store.
//
// It provides best-effort delivery with no guarantees regarding ordering,
// durability, or retries. The bus is not a message broker: listeners act on
// first delivery only, and the canonical state always lives in the room
// record.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"watch-party/contract"
	"watch-party/domain/event"
)

// KeyPrefix is shared with the repository garbage collector, which sweeps
// lingering event keys at startup.
const KeyPrefix = "event:"

// DefaultExpiry is how long a published event stays in the store before the
// publisher deletes it. Deletion is cleanup, not a correctness requirement.
const DefaultExpiry = 5 * time.Second

type Bus struct {
	store  contract.KeyValueStore
	log    *slog.Logger
	expiry time.Duration
}

func New(store contract.KeyValueStore, log *slog.Logger, expiry time.Duration) *Bus {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Bus{store: store, log: log, expiry: expiry}
}

// Publish writes a self-describing event record and schedules its own
// best-effort deletion. The key combines a padded timestamp with a random
// suffix so rapid successive publishes from one participant never collide.
func (b *Bus) Publish(roomCode string, t event.Type, payload any) error {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", t, err)
		}
		data = encoded
	}

	env := event.Envelope{
		Type:      t,
		Data:      data,
		RoomCode:  roomCode,
		Timestamp: time.Now().UTC(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", t, err)
	}

	key := fmt.Sprintf("%s%019d:%s", KeyPrefix, time.Now().UnixNano(), uuid.NewString())
	if err := b.store.Put(key, raw); err != nil {
		return fmt.Errorf("publish %s: %w", t, err)
	}

	time.AfterFunc(b.expiry, func() {
		if err := b.store.Delete(key); err != nil {
			b.log.Debug("Event cleanup failed", "key", key, "error", err)
		}
	})
	return nil
}

// Subscribe routes incoming event envelopes for roomCode to handler until
// ctx is cancelled. Events for other rooms are discarded; malformed payloads
// are dropped silently so a single bad record cannot take the session down.
func (b *Bus) Subscribe(ctx context.Context, roomCode string, handler func(event.Envelope)) {
	b.store.Watch(ctx, KeyPrefix, func(key string, value []byte) {
		var env event.Envelope
		if err := json.Unmarshal(value, &env); err != nil {
			b.log.Debug("Dropping malformed event", "key", key)
			return
		}
		if env.RoomCode != roomCode {
			return
		}
		handler(env)
	})
}
