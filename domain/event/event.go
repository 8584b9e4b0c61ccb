// Package event defines the transient notification envelopes exchanged
// through the shared store. Envelopes are signals, not state: except for
// live chat delivery, the authoritative data always lives in the room
// record.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"watch-party/errors"
)

type Type string

const (
	RoomUpdated Type = "room_updated"
	VideoLoaded Type = "video_loaded"
	VideoPlay   Type = "video_play"
	VideoPause  Type = "video_pause"
	MessageSent Type = "message_sent"
)

// Envelope is written once under an event key and self-deletes shortly
// after. Listeners only act on first delivery.
type Envelope struct {
	Type      Type            `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RoomCode  string          `json:"roomCode"`
	Timestamp time.Time       `json:"timestamp"`
}

// VideoLoadedPayload carries the id of the video the host just cued.
type VideoLoadedPayload struct {
	VideoID string `json:"videoId"`
}

// PlaybackPayload carries the authoritative playback position of a
// play/pause broadcast.
type PlaybackPayload struct {
	Time float64 `json:"time"`
}

// Decode unmarshals the envelope payload into T.
func Decode[T any](e Envelope) (T, error) {
	var payload T
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return payload, nil
}
