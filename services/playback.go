package services

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"watch-party/bus"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/errors"
	"watch-party/repositories"
	"watch-party/runtime/workers"
)

// DefaultDriftThreshold is the maximum tolerated divergence, in seconds,
// between a follower's position and the last known authoritative time.
const DefaultDriftThreshold = 2.0

// DefaultSyncInterval is the follower polling cadence for drift correction.
const DefaultSyncInterval = 2 * time.Second

// PlaybackService keeps playback in rough synchrony. The host broadcasts
// authoritative play/pause/load events; followers reconcile against them,
// both event-driven and on a polling cadence. Position is synchronized via
// periodic authoritative snapshots plus event corrections rather than
// continuous streaming, trading precision for simplicity with no server.
type PlaybackService struct {
	log        *slog.Logger
	rooms      *repositories.RoomRepository
	bus        *bus.Bus
	player     contract.Player
	sessions   *SessionRef
	supervisor contract.ISupervisor

	syncInterval   time.Duration
	driftThreshold float64
}

func NewPlaybackService(
	log *slog.Logger,
	rooms *repositories.RoomRepository,
	eventBus *bus.Bus,
	player contract.Player,
	sessions *SessionRef,
	supervisor contract.ISupervisor,
	syncInterval time.Duration,
	driftThreshold float64,
) *PlaybackService {
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}
	if driftThreshold <= 0 {
		driftThreshold = DefaultDriftThreshold
	}
	return &PlaybackService{
		log:            log,
		rooms:          rooms,
		bus:            eventBus,
		player:         player,
		sessions:       sessions,
		supervisor:     supervisor,
		syncInterval:   syncInterval,
		driftThreshold: driftThreshold,
	}
}

// LoadVideo is the host-only entry point for cueing a new video: it
// persists the video on the room record, broadcasts video_loaded, and loads
// the video locally.
func (p *PlaybackService) LoadVideo(rawURL string) error {
	session := p.sessions.Get()
	if session == nil {
		return errors.ErrNoSession
	}
	if !session.IsHost() {
		return errors.ErrNotHost
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.ErrEmptyURL
	}
	videoID, err := domain.ExtractVideoID(rawURL)
	if err != nil {
		return err
	}

	code := session.Room().Code
	room, err := p.rooms.Load(code)
	if err != nil {
		return fmt.Errorf("load video: %w", err)
	}
	room.Video = &domain.Video{VideoID: videoID, LoadedAt: time.Now().UTC()}
	if err := p.rooms.Save(room); err != nil {
		return fmt.Errorf("load video: %w", err)
	}
	session.UpdateRoom(room)

	if err := p.bus.Publish(code, event.VideoLoaded, event.VideoLoadedPayload{VideoID: videoID}); err != nil {
		p.log.Warn("Failed to announce video", "code", code, "error", err)
	}
	if err := p.bus.Publish(code, event.RoomUpdated, room); err != nil {
		p.log.Warn("Failed to announce room update", "code", code, "error", err)
	}

	p.player.Load(videoID)
	p.log.Info("Video loaded", "code", code, "videoId", videoID)
	return nil
}

// HandlePlayerReady starts drift-correction polling for followers. The
// worker lives on the session context and dies with it.
func (p *PlaybackService) HandlePlayerReady() {
	session := p.sessions.Get()
	if session == nil || session.IsHost() {
		return
	}
	ctx := p.sessions.Context()
	if ctx == nil {
		return
	}
	p.supervisor.Start(ctx, workers.NewDriftWorker(p.log, p, p.syncInterval))
}

// HandlePlayerStateChange broadcasts the host's play/pause transitions with
// the current position. Follower transitions are never broadcast.
func (p *PlaybackService) HandlePlayerStateChange(state contract.PlayerState) {
	session := p.sessions.Get()
	if session == nil || !session.IsHost() {
		return
	}

	position := p.player.CurrentTime()
	code := session.Room().Code
	switch state {
	case contract.StatePlaying:
		p.publishPlayback(code, event.VideoPlay, position)
	case contract.StatePaused:
		p.publishPlayback(code, event.VideoPause, position)
	}
}

// HandleVideoLoaded cues a host-announced video locally without
// re-publishing.
func (p *PlaybackService) HandleVideoLoaded(env event.Envelope) {
	session := p.sessions.Get()
	if session == nil || session.IsHost() {
		return
	}
	payload, err := event.Decode[event.VideoLoadedPayload](env)
	if err != nil {
		p.log.Debug("Dropping malformed video_loaded payload", "error", err)
		return
	}
	p.player.Load(payload.VideoID)
}

// HandleVideoPlay seeks to the authoritative position and resumes.
func (p *PlaybackService) HandleVideoPlay(env event.Envelope) {
	p.reconcile(env, func() { p.player.Play() })
}

// HandleVideoPause seeks to the authoritative position and pauses.
func (p *PlaybackService) HandleVideoPause(env event.Envelope) {
	p.reconcile(env, func() { p.player.Pause() })
}

// SyncTick is one drift-correction step: when the local position diverges
// from the last known authoritative time beyond the threshold, the player
// is forcibly re-seeked. Play/pause state is left untouched.
func (p *PlaybackService) SyncTick() {
	session := p.sessions.Get()
	if session == nil || session.IsHost() {
		return
	}
	if session.Room().Video == nil {
		return
	}

	authoritative := session.AuthoritativeTime()
	local := p.player.CurrentTime()
	if math.Abs(local-authoritative) > p.driftThreshold {
		p.log.Debug("Correcting drift", "local", local, "authoritative", authoritative)
		p.player.SeekTo(authoritative)
	}
}

func (p *PlaybackService) reconcile(env event.Envelope, apply func()) {
	session := p.sessions.Get()
	if session == nil || session.IsHost() {
		return
	}
	payload, err := event.Decode[event.PlaybackPayload](env)
	if err != nil {
		p.log.Debug("Dropping malformed playback payload", "type", env.Type, "error", err)
		return
	}
	p.player.SeekTo(payload.Time)
	apply()
	session.SetAuthoritativeTime(payload.Time)
}

func (p *PlaybackService) publishPlayback(code string, t event.Type, position float64) {
	if err := p.bus.Publish(code, t, event.PlaybackPayload{Time: position}); err != nil {
		p.log.Warn("Failed to broadcast playback state", "type", t, "code", code, "error", err)
	}
}
