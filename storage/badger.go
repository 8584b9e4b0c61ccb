// Package storage adapts BadgerDB to the shared key/value substrate the
// participants communicate through.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	badgerpb "github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"
)

// Store wraps a Badger database shared by all participants. Every value is
// wrapped in a small envelope carrying the writer id so that Watch can drop
// same-writer echo: a participant never observes its own writes, mirroring
// the substrate's notification semantics.
type Store struct {
	db     *badger.DB
	log    *slog.Logger
	writer uuid.UUID
}

func New(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log, writer: uuid.New()}
}

type valueEnvelope struct {
	Writer uuid.UUID       `json:"writer"`
	Data   json.RawMessage `json:"data"`
}

func (s *Store) Put(key string, value []byte) error {
	wrapped, err := json.Marshal(valueEnvelope{Writer: s.writer, Data: value})
	if err != nil {
		return fmt.Errorf("wrap value for %q: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), wrapped)
	})
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var env valueEnvelope
			if err := json.Unmarshal(val, &env); err != nil {
				return err
			}
			data = append([]byte(nil), env.Data...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Watch streams external changes under prefix to fn until ctx is cancelled.
// Deletions and same-writer updates are filtered out. Delivery is
// best-effort: a participant that is not watching simply misses the
// notification.
func (s *Store) Watch(ctx context.Context, prefix string, fn func(key string, value []byte)) {
	matches := []badgerpb.Match{{Prefix: []byte(prefix)}}

	go func() {
		err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				if len(kv.Value) == 0 {
					// deletion or expiry, not a broadcast
					continue
				}
				var env valueEnvelope
				if err := json.Unmarshal(kv.Value, &env); err != nil {
					s.log.Debug("Dropping unreadable store value", "key", string(kv.Key))
					continue
				}
				if env.Writer == s.writer {
					continue
				}
				fn(string(kv.Key), env.Data)
			}
			return nil
		}, matches)
		if err != nil && ctx.Err() == nil {
			s.log.Warn("Store watch terminated", "prefix", prefix, "error", err)
		}
	}()
}
