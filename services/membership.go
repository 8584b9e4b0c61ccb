package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"watch-party/bus"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/errors"
	"watch-party/repositories"
)

// MembershipService creates, joins and leaves rooms, and keeps the local
// session in step with the shared room record.
type MembershipService struct {
	log      *slog.Logger
	rooms    *repositories.RoomRepository
	bus      *bus.Bus
	player   contract.Player
	renderer contract.Renderer
	sessions *SessionRef

	// route delivers incoming bus envelopes for the active room; wired by
	// the composition root once the router exists.
	route func(event.Envelope)
}

func NewMembershipService(
	log *slog.Logger,
	rooms *repositories.RoomRepository,
	eventBus *bus.Bus,
	player contract.Player,
	renderer contract.Renderer,
	sessions *SessionRef,
) *MembershipService {
	return &MembershipService{
		log:      log,
		rooms:    rooms,
		bus:      eventBus,
		player:   player,
		renderer: renderer,
		sessions: sessions,
	}
}

// SetRouter installs the envelope dispatcher used for the room
// subscription.
func (m *MembershipService) SetRouter(route func(event.Envelope)) {
	m.route = route
}

// CreateRoom generates a fresh room with the caller as sole member and
// host, persists it, and activates a host session.
func (m *MembershipService) CreateRoom(ctx context.Context, nickname string) (*domain.Session, error) {
	nickname = strings.TrimSpace(nickname)
	if err := validateCreateRoom(nickname); err != nil {
		return nil, err
	}

	user := domain.NewUser(nickname)
	room := domain.NewRoom(domain.GenerateRoomCode(), user)
	notice := domain.NewSystemMessage(fmt.Sprintf("Room created! Share code: %s", room.Code))
	room.AppendMessage(notice)

	if err := m.rooms.Save(room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	session := domain.NewSession(user, room, domain.Host)
	m.activate(ctx, session, room.Code)

	m.renderer.RenderMessage(notice)
	m.renderer.RenderRoom(room, true)
	m.log.Info("Room created", "code", room.Code, "host", nickname)
	return session, nil
}

// JoinRoom appends the caller to an existing room. The stored record is
// never mutated when the room is full. The joiner is catching up, not
// originating state: the stored chat history is replayed locally, and if
// the room already carries a video the local player cues it immediately,
// neither with a rebroadcast.
func (m *MembershipService) JoinRoom(ctx context.Context, nickname, code string) (*domain.Session, error) {
	nickname = strings.TrimSpace(nickname)
	code = domain.NormalizeRoomCode(code)
	if err := validateJoinRoom(nickname, code); err != nil {
		return nil, err
	}

	room, err := m.rooms.Load(code)
	if err != nil {
		return nil, err
	}
	if room.IsFull() {
		return nil, errors.ErrRoomFull
	}

	user := domain.NewUser(nickname)
	if err := room.AddUser(user); err != nil {
		return nil, err
	}
	notice := domain.NewSystemMessage(fmt.Sprintf("%s joined the room", nickname))
	room.AppendMessage(notice)

	if err := m.rooms.Save(room); err != nil {
		return nil, fmt.Errorf("join room %s: %w", code, err)
	}
	if err := m.bus.Publish(code, event.RoomUpdated, room); err != nil {
		m.log.Warn("Failed to announce join", "code", code, "error", err)
	}

	// a genuine join is never host; the comparison matters for rehydration
	role := lo.Ternary(room.HostUserID == user.ID, domain.Host, domain.Follower)
	session := domain.NewSession(user, room, role)
	m.activate(ctx, session, code)

	// the join notice is already the last entry of the history
	for _, msg := range room.Messages {
		m.renderer.RenderMessage(msg)
	}
	m.renderer.RenderRoom(room, session.IsHost())
	if room.Video != nil {
		m.player.Load(room.Video.VideoID)
	}
	m.log.Info("Joined room", "code", code, "nickname", nickname)
	return session, nil
}

// LeaveRoom removes the caller from the room. The last member deletes the
// room outright; otherwise a departing host hands over to the oldest
// remaining member. Ending the session cancels its context, which stops the
// drift worker and the event subscription before local state is cleared.
func (m *MembershipService) LeaveRoom() error {
	session := m.sessions.Get()
	if session == nil {
		return nil
	}
	code := session.Room().Code

	room, err := m.rooms.Load(code)
	if err != nil {
		// fall back to the local snapshot, the shared record may be gone
		m.log.Debug("Leaving with stale room record", "code", code, "error", err)
		room = session.Room()
	}

	room.RemoveUser(session.User.ID)
	if len(room.Users) == 0 {
		if err := m.rooms.Delete(code); err != nil {
			m.log.Warn("Failed to delete empty room", "code", code, "error", err)
		}
	} else {
		notice := domain.NewSystemMessage(fmt.Sprintf("%s left the room", session.User.Nickname))
		room.AppendMessage(notice)
		if err := m.rooms.Save(room); err != nil {
			m.log.Warn("Failed to save room on leave", "code", code, "error", err)
		}
		if err := m.bus.Publish(code, event.RoomUpdated, room); err != nil {
			m.log.Warn("Failed to announce leave", "code", code, "error", err)
		}
	}

	m.sessions.End()
	m.log.Info("Left room", "code", code, "nickname", session.User.Nickname)
	return nil
}

// HandleRoomUpdated refreshes the local snapshot from the authoritative
// record. When a host departure re-elected the local user, the session is
// promoted so its playback actions become authoritative.
func (m *MembershipService) HandleRoomUpdated(event.Envelope) {
	session := m.sessions.Get()
	if session == nil {
		return
	}

	room, err := m.rooms.Load(session.Room().Code)
	if err != nil {
		m.log.Debug("Room refresh failed", "code", session.Room().Code, "error", err)
		return
	}

	session.UpdateRoom(room)
	if room.HostUserID == session.User.ID && !session.IsHost() {
		session.Promote()
		m.log.Info("Promoted to host", "code", room.Code)
	}
	m.renderer.RenderRoom(room, session.IsHost())
}

func (m *MembershipService) activate(ctx context.Context, session *domain.Session, code string) {
	sessionCtx := m.sessions.Begin(ctx, session)
	if m.route != nil {
		m.bus.Subscribe(sessionCtx, code, m.route)
	}
}
