package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"watch-party/contract"
)

func Test_ConsolePlayer_Lifecycle(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	player := NewConsolePlayer(&out)

	var readyCalls int
	var states []contract.PlayerState
	player.SetHandlers(
		func() { readyCalls++ },
		func(s contract.PlayerState) { states = append(states, s) },
	)

	player.Load("dQw4w9WgXcQ")
	player.Load("dQw4w9WgXcQ")
	// the ready callback fires on the first cue only
	req.Equal(1, readyCalls)

	player.Play()
	player.Play() // already playing, no second transition
	player.Pause()
	req.Equal([]contract.PlayerState{contract.StatePlaying, contract.StatePaused}, states)
}

func Test_ConsolePlayer_PositionTracksWallClock(t *testing.T) {
	req := require.New(t)
	player := NewConsolePlayer(&bytes.Buffer{})

	player.Load("dQw4w9WgXcQ")
	player.SeekTo(10)
	req.InDelta(10.0, player.CurrentTime(), 0.01)

	player.Play()
	time.Sleep(50 * time.Millisecond)
	req.Greater(player.CurrentTime(), 10.0)

	player.Pause()
	frozen := player.CurrentTime()
	time.Sleep(50 * time.Millisecond)
	req.InDelta(frozen, player.CurrentTime(), 0.001)
}

func Test_ConsolePlayer_PlayWithoutVideo(t *testing.T) {
	req := require.New(t)
	player := NewConsolePlayer(&bytes.Buffer{})

	var states []contract.PlayerState
	player.SetHandlers(func() {}, func(s contract.PlayerState) { states = append(states, s) })

	// nothing cued, nothing to play
	player.Play()
	req.Empty(states)
	req.InDelta(0.0, player.CurrentTime(), 0.001)
}
