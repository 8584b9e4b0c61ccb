// Package services implements the participant-facing operations of the
// watch party: membership, chat, and playback synchronization.
package services

import (
	"context"
	"sync"

	"watch-party/domain"
)

// SessionRef holds the single active session of this participant together
// with its lifetime context. Leaving the room cancels the context, which is
// the only cancellation path: it deterministically stops the event
// subscription and the drift-correction worker before the session is torn
// down.
type SessionRef struct {
	mu      sync.RWMutex
	session *domain.Session
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewSessionRef() *SessionRef {
	return &SessionRef{}
}

// Begin installs a fresh session and returns its lifetime context. Any
// previous session is ended first.
func (r *SessionRef) Begin(parent context.Context, session *domain.Session) context.Context {
	r.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
	r.ctx, r.cancel = context.WithCancel(parent)
	return r.ctx
}

// Get returns the active session, or nil when the participant is not in a
// room.
func (r *SessionRef) Get() *domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// Context returns the active session's lifetime context, or nil.
func (r *SessionRef) Context() context.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx
}

// End cancels the session context and clears the session.
func (r *SessionRef) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.session = nil
	r.ctx = nil
	r.cancel = nil
}
