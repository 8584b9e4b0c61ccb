// Package domain contains core concepts of the watch party system.
// No runtime, storage, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a room participant. Immutable after creation.
type User struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joinedAt"`
}

func NewUser(nickname string) User {
	return User{
		ID:       uuid.New(),
		Nickname: nickname,
		JoinedAt: time.Now().UTC(),
	}
}
