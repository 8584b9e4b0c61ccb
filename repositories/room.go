package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"watch-party/bus"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/errors"
)

const roomKeyPrefix = "room:"

// RetentionWindow is how long a room record survives before the startup
// garbage collector reclaims it.
const RetentionWindow = time.Hour

// RoomRepository persists room records as whole JSON documents keyed by
// room code.
type RoomRepository struct {
	store contract.KeyValueStore
	log   *slog.Logger
}

func NewRoomRepository(store contract.KeyValueStore, log *slog.Logger) *RoomRepository {
	return &RoomRepository{store: store, log: log}
}

func roomKey(code string) string {
	return roomKeyPrefix + code
}

// Save overwrites the full room record. Last writer wins: two participants
// saving concurrently silently drop one mutation. There is no version
// detection or merge; this is accepted for rooms of at most four casual
// participants.
func (r *RoomRepository) Save(room domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	return r.store.Put(roomKey(room.Code), raw)
}

func (r *RoomRepository) Load(code string) (domain.Room, error) {
	raw, found, err := r.store.Get(roomKey(code))
	if err != nil {
		return domain.Room{}, fmt.Errorf("load room %s: %w", code, err)
	}
	if !found {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return domain.Room{}, fmt.Errorf("decode room %s: %w", code, err)
	}
	return room, nil
}

func (r *RoomRepository) Delete(code string) error {
	return r.store.Delete(roomKey(code))
}

// GarbageCollect reclaims rooms older than the retention window and sweeps
// every lingering event key (events from a crashed participant that never
// ran its cleanup timer). Run once at startup. A failure on one record never
// aborts collection of the others.
func (r *RoomRepository) GarbageCollect() error {
	cutoff := time.Now().Add(-RetentionWindow)

	roomKeys, err := r.store.KeysWithPrefix(roomKeyPrefix)
	if err != nil {
		return fmt.Errorf("enumerate rooms: %w", err)
	}
	for _, key := range roomKeys {
		raw, found, err := r.store.Get(key)
		if err != nil || !found {
			r.log.Warn("Skipping unreadable room record", "key", key, "error", err)
			continue
		}
		var room domain.Room
		if err := json.Unmarshal(raw, &room); err != nil {
			r.log.Warn("Skipping undecodable room record", "key", key, "error", err)
			continue
		}
		if room.CreatedAt.Before(cutoff) {
			r.log.Info("Reclaiming expired room", "code", room.Code, "createdAt", room.CreatedAt)
			if err := r.store.Delete(key); err != nil {
				r.log.Warn("Failed to reclaim room", "key", key, "error", err)
			}
		}
	}

	eventKeys, err := r.store.KeysWithPrefix(bus.KeyPrefix)
	if err != nil {
		return fmt.Errorf("enumerate events: %w", err)
	}
	for _, key := range eventKeys {
		if err := r.store.Delete(key); err != nil {
			r.log.Warn("Failed to sweep event key", "key", key, "error", err)
		}
	}
	return nil
}
