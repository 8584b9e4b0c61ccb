package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"watch-party/contract"
	"watch-party/domain"
)

func Test_ConsoleRenderer_Room(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewConsoleRenderer(&out)

	alice := domain.NewUser("Alice")
	room := domain.NewRoom("AB12CD", alice)
	require.NoError(t, room.AddUser(domain.NewUser("Bob")))

	renderer.RenderRoom(room, true)

	req.Contains(out.String(), "Room AB12CD")
	req.Contains(out.String(), "you are the host")
	req.Contains(out.String(), "Alice")
	req.Contains(out.String(), "Bob")
	req.Contains(out.String(), "HOST")
}

func Test_ConsoleRenderer_Messages(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewConsoleRenderer(&out)

	renderer.RenderMessage(domain.NewMessage("Alice", "hello"))
	renderer.RenderMessage(domain.NewSystemMessage("Bob joined the room"))

	req.Contains(out.String(), "Alice")
	req.Contains(out.String(), "hello")
	req.Contains(out.String(), "-- Bob joined the room --")
}

func Test_ConsoleRenderer_Error(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	renderer := NewConsoleRenderer(&out)

	// the duration is advisory; terminal output is never retracted
	renderer.RenderError("room not found", contract.ErrorAutoHide)

	req.Contains(out.String(), "room not found")
}
