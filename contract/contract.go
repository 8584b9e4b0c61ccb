//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"watch-party/domain"
)

// KeyValueStore is the shared substrate every participant reads and writes.
// It offers no ordering across keys, no multi-key atomicity, and delivers
// change notifications only for writes made by OTHER participants: a store
// never echoes its own writes back through Watch.
type KeyValueStore interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
	KeysWithPrefix(prefix string) ([]string, error)
	// Watch invokes fn for every external change to a key under prefix
	// until ctx is cancelled. Missed notifications are acceptable: the
	// canonical state is always recoverable from the room record.
	Watch(ctx context.Context, prefix string, fn func(key string, value []byte))
}

// Player is the local video player capability. Implementations are external
// collaborators (a real embedded player, or the simulated console player).
type Player interface {
	Load(videoID string)
	Play()
	Pause()
	SeekTo(seconds float64)
	CurrentTime() float64
}

// PlayerState is reported by the player's state-change callback.
type PlayerState int

const (
	StateOther PlayerState = iota
	StatePlaying
	StatePaused
)

// ErrorAutoHide is how long a rendered error stays visible on renderers
// that support dismissal.
const ErrorAutoHide = 5 * time.Second

// Renderer receives room and chat updates for display. Errors are
// non-fatal notices; autoHide is advisory, renderers that cannot retract
// output ignore it.
type Renderer interface {
	RenderRoom(room domain.Room, isHost bool)
	RenderMessage(message domain.Message)
	RenderError(message string, autoHide time.Duration)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
