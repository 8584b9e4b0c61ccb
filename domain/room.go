package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"watch-party/errors"
)

// MaxUsers caps room membership.
const MaxUsers = 4

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed size of a room code.
const CodeLength = 6

// Room is the canonical shared record of a watch party. It is persisted as a
// whole: every mutation is a full overwrite of the stored record.
type Room struct {
	Code       string    `json:"code"`
	HostUserID uuid.UUID `json:"host"`
	Users      []User    `json:"users"`
	Video      *Video    `json:"video,omitempty"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewRoom creates a room with its creator as sole member and host.
func NewRoom(code string, host User) Room {
	return Room{
		Code:       code,
		HostUserID: host.ID,
		Users:      []User{host},
		CreatedAt:  time.Now().UTC(),
	}
}

// GenerateRoomCode returns a 6-character uppercase alphanumeric code drawn
// uniformly: bytes above the largest multiple of the alphabet size are
// rejected and redrawn, so the modulo never skews towards the alphabet
// head. Uniqueness is not checked against existing rooms; a collision is an
// accepted low-probability risk at this scale.
func GenerateRoomCode() string {
	const limit = 256 - 256%len(codeAlphabet)

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(code) < CodeLength {
		// crypto/rand never fails on supported platforms
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code)
}

// NormalizeRoomCode canonicalizes user input: codes are case-insensitive on
// input, uppercase canonical.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Room) IsFull() bool {
	return len(r.Users) >= MaxUsers
}

func (r *Room) AddUser(u User) error {
	if r.IsFull() {
		return errors.ErrRoomFull
	}
	r.Users = append(r.Users, u)
	return nil
}

// RemoveUser drops the user from the membership list. If the departing user
// was host and members remain, the oldest remaining member (head of the
// join-ordered list) becomes host. Returns false when the user was not a
// member.
func (r *Room) RemoveUser(id uuid.UUID) bool {
	before := len(r.Users)
	r.Users = lo.Filter(r.Users, func(u User, _ int) bool {
		return u.ID != id
	})
	if len(r.Users) == before {
		return false
	}
	if r.HostUserID == id && len(r.Users) > 0 {
		r.HostUserID = r.Users[0].ID
	}
	return true
}

func (r *Room) HasUser(id uuid.UUID) bool {
	return lo.ContainsBy(r.Users, func(u User) bool { return u.ID == id })
}

func (r *Room) AppendMessage(m Message) {
	r.Messages = append(r.Messages, m)
}
