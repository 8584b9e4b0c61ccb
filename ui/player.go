package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"

	"watch-party/contract"
)

// ConsolePlayer simulates a video player on the wall clock: while playing,
// the position advances with real time. It fulfils the player capability
// the synchronizer drives, including the ready and state-change callbacks a
// real embedded player would fire.
type ConsolePlayer struct {
	mu sync.Mutex

	out      io.Writer
	videoID  string
	playing  bool
	position float64
	anchor   time.Time

	onReady       func()
	onStateChange func(contract.PlayerState)
}

func NewConsolePlayer(out io.Writer) *ConsolePlayer {
	return &ConsolePlayer{out: out}
}

// SetHandlers wires the ready and state-change callbacks. Must be called
// before the player is driven.
func (p *ConsolePlayer) SetHandlers(onReady func(), onStateChange func(contract.PlayerState)) {
	p.mu.Lock()
	p.onReady = onReady
	p.onStateChange = onStateChange
	p.mu.Unlock()
}

func (p *ConsolePlayer) Load(videoID string) {
	p.mu.Lock()
	first := p.videoID == ""
	p.videoID = videoID
	p.playing = false
	p.position = 0
	ready := p.onReady
	p.mu.Unlock()

	fmt.Fprintln(p.out, color.Comment.Sprintf("[player] cued video %s", videoID))
	if first && ready != nil {
		ready()
	}
}

func (p *ConsolePlayer) Play() {
	p.mu.Lock()
	if p.playing || p.videoID == "" {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.anchor = time.Now()
	notify := p.onStateChange
	p.mu.Unlock()

	fmt.Fprintln(p.out, color.Comment.Sprint("[player] playing"))
	if notify != nil {
		notify(contract.StatePlaying)
	}
}

func (p *ConsolePlayer) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.position += time.Since(p.anchor).Seconds()
	p.playing = false
	notify := p.onStateChange
	p.mu.Unlock()

	fmt.Fprintln(p.out, color.Comment.Sprint("[player] paused"))
	if notify != nil {
		notify(contract.StatePaused)
	}
}

func (p *ConsolePlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	p.position = seconds
	p.anchor = time.Now()
	p.mu.Unlock()

	fmt.Fprintln(p.out, color.Comment.Sprintf("[player] seeked to %.1fs", seconds))
}

func (p *ConsolePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.position + time.Since(p.anchor).Seconds()
	}
	return p.position
}
