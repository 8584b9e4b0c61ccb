package domain

import (
	"sync"
)

// Role distinguishes the authoritative participant from reconciling ones.
type Role int

const (
	Follower Role = iota
	Host
)

// Session is the local, per-participant state. It is never shared through
// the store. The mutex covers concurrent access from the event subscription
// goroutine and the drift-correction ticker.
type Session struct {
	mu sync.Mutex

	User User
	room Room
	role Role

	// lastAuthoritativeTime is the playback position of the most recent
	// host broadcast, in seconds.
	lastAuthoritativeTime float64
}

func NewSession(user User, room Room, role Role) *Session {
	return &Session{User: user, room: room, role: role}
}

func (s *Session) IsHost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role == Host
}

// Promote flips the session role to Host. Used when a reloaded room record
// names the local user as host after a failover.
func (s *Session) Promote() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = Host
}

// Room returns a snapshot of the last known room state.
func (s *Session) Room() Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// UpdateRoom replaces the local room snapshot.
func (s *Session) UpdateRoom(room Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
}

func (s *Session) SetAuthoritativeTime(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAuthoritativeTime = seconds
}

func (s *Session) AuthoritativeTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthoritativeTime
}
