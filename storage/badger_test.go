package storage

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Put_Get_Roundtrip(t *testing.T) {
	req := require.New(t)
	store := New(openTestDB(t), slog.Default())

	req.NoError(store.Put("room:AAAAAA", []byte(`{"code":"AAAAAA"}`)))

	value, found, err := store.Get("room:AAAAAA")
	req.NoError(err)
	req.True(found)
	req.JSONEq(`{"code":"AAAAAA"}`, string(value))
}

func Test_Get_Missing(t *testing.T) {
	req := require.New(t)
	store := New(openTestDB(t), slog.Default())

	value, found, err := store.Get("room:ZZZZZZ")
	req.NoError(err)
	req.False(found)
	req.Nil(value)
}

func Test_Delete(t *testing.T) {
	req := require.New(t)
	store := New(openTestDB(t), slog.Default())

	req.NoError(store.Put("room:AAAAAA", []byte("{}")))
	req.NoError(store.Delete("room:AAAAAA"))

	_, found, err := store.Get("room:AAAAAA")
	req.NoError(err)
	req.False(found)
}

func Test_KeysWithPrefix(t *testing.T) {
	req := require.New(t)
	store := New(openTestDB(t), slog.Default())

	req.NoError(store.Put("room:AAAAAA", []byte("{}")))
	req.NoError(store.Put("room:BBBBBB", []byte("{}")))
	req.NoError(store.Put("event:001", []byte("{}")))

	keys, err := store.KeysWithPrefix("room:")
	req.NoError(err)
	req.ElementsMatch([]string{"room:AAAAAA", "room:BBBBBB"}, keys)
}

func Test_Watch_DropsOwnWrites(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	// two participants sharing one substrate
	alice := New(db, slog.Default())
	bob := New(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []string
	alice.Watch(ctx, "k:", func(key string, value []byte) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, key+"="+string(value))
	})

	// subscription startup is asynchronous
	time.Sleep(100 * time.Millisecond)

	req.NoError(alice.Put("k:own", []byte("mine")))
	req.NoError(bob.Put("k:other", []byte("theirs")))

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Equal([]string{"k:other=theirs"}, received)
}

func Test_Watch_IgnoresDeletions(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	alice := New(db, slog.Default())
	bob := New(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	count := 0
	alice.Watch(ctx, "k:", func(string, []byte) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})
	time.Sleep(100 * time.Millisecond)

	req.NoError(bob.Put("k:1", []byte("v")))
	req.NoError(bob.Delete("k:1"))

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// the deletion itself must not surface as a second notification
	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	req.Equal(1, count)
}

func Test_Watch_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	alice := New(db, slog.Default())
	bob := New(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	count := 0
	alice.Watch(ctx, "k:", func(string, []byte) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})
	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(100 * time.Millisecond)

	req.NoError(bob.Put("k:late", []byte("v")))
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Equal(0, count)
}
