package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"watch-party/errors"
)

func Test_GenerateRoomCode_Format(t *testing.T) {
	req := require.New(t)
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)

	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		req.Regexp(pattern, code)
	}
}

func Test_GenerateRoomCode_CoversFullAlphabet(t *testing.T) {
	req := require.New(t)

	// with rejection sampling every alphabet character stays reachable;
	// 2000 codes make a missing character vanishingly unlikely
	seen := make(map[rune]bool)
	for i := 0; i < 2000; i++ {
		for _, r := range GenerateRoomCode() {
			seen[r] = true
		}
	}
	req.Len(seen, len(codeAlphabet))
}

func Test_NormalizeRoomCode(t *testing.T) {
	req := require.New(t)
	req.Equal("AB12CD", NormalizeRoomCode("  ab12cd "))
	req.Equal("AB12CD", NormalizeRoomCode("AB12CD"))
}

func Test_NewRoom_CreatorIsHost(t *testing.T) {
	req := require.New(t)
	host := NewUser("Alice")
	room := NewRoom("AAAAAA", host)

	req.Equal("AAAAAA", room.Code)
	req.Equal(host.ID, room.HostUserID)
	req.Len(room.Users, 1)
	req.True(room.HasUser(host.ID))
	req.False(room.IsFull())
}

func Test_AddUser_Capacity(t *testing.T) {
	req := require.New(t)
	room := NewRoom("AAAAAA", NewUser("Alice"))

	req.NoError(room.AddUser(NewUser("Bob")))
	req.NoError(room.AddUser(NewUser("Clara")))
	req.NoError(room.AddUser(NewUser("Dan")))
	req.True(room.IsFull())

	err := room.AddUser(NewUser("Eve"))
	req.ErrorIs(err, errors.ErrRoomFull)
	req.Len(room.Users, MaxUsers)
}

func Test_RemoveUser_HostHandover(t *testing.T) {
	req := require.New(t)
	alice := NewUser("Alice")
	bob := NewUser("Bob")
	clara := NewUser("Clara")
	room := NewRoom("AAAAAA", alice)
	req.NoError(room.AddUser(bob))
	req.NoError(room.AddUser(clara))

	// the departing host hands over to the oldest remaining member
	req.True(room.RemoveUser(alice.ID))
	req.Equal(bob.ID, room.HostUserID)
	req.Len(room.Users, 2)

	// removing a follower leaves the host untouched
	req.True(room.RemoveUser(clara.ID))
	req.Equal(bob.ID, room.HostUserID)
}

func Test_RemoveUser_Unknown(t *testing.T) {
	req := require.New(t)
	alice := NewUser("Alice")
	room := NewRoom("AAAAAA", alice)

	req.False(room.RemoveUser(NewUser("Ghost").ID))
	req.Len(room.Users, 1)
	req.Equal(alice.ID, room.HostUserID)
}
