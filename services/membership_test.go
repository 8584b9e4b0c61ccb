package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"watch-party/bus"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/errors"
	"watch-party/mocks"
	"watch-party/repositories"
	"watch-party/storage"
)

type membershipEnv struct {
	ctrl       *gomock.Controller
	store      *storage.Store
	rooms      *repositories.RoomRepository
	bus        *bus.Bus
	player     *mocks.MockPlayer
	renderer   *mocks.MockRenderer
	sessions   *SessionRef
	membership *MembershipService
}

func newMembershipEnv(t *testing.T) *membershipEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctrl := gomock.NewController(t)
	store := storage.New(db, log)
	rooms := repositories.NewRoomRepository(store, log)
	eventBus := bus.New(store, log, time.Minute)
	player := mocks.NewMockPlayer(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	sessions := NewSessionRef()
	t.Cleanup(sessions.End)

	return &membershipEnv{
		ctrl:       ctrl,
		store:      store,
		rooms:      rooms,
		bus:        eventBus,
		player:     player,
		renderer:   renderer,
		sessions:   sessions,
		membership: NewMembershipService(log, rooms, eventBus, player, renderer, sessions),
	}
}

// allowRendering relaxes the renderer mock for tests that assert on state,
// not on display calls.
func (e *membershipEnv) allowRendering() {
	e.renderer.EXPECT().RenderMessage(gomock.Any()).AnyTimes()
	e.renderer.EXPECT().RenderRoom(gomock.Any(), gomock.Any()).AnyTimes()
}

// publishedEnvelopes decodes every event record currently in the store.
func publishedEnvelopes(t *testing.T, store *storage.Store) []event.Envelope {
	t.Helper()
	keys, err := store.KeysWithPrefix(bus.KeyPrefix)
	require.NoError(t, err)

	var envelopes []event.Envelope
	for _, key := range keys {
		raw, found, err := store.Get(key)
		require.NoError(t, err)
		require.True(t, found)
		var env event.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		envelopes = append(envelopes, env)
	}
	return envelopes
}

func Test_CreateRoom(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)
	env.allowRendering()

	session, err := env.membership.CreateRoom(context.Background(), "Alice")
	req.NoError(err)
	req.True(session.IsHost())

	room := session.Room()
	req.Len(room.Code, domain.CodeLength)
	req.Len(room.Users, 1)
	req.Equal("Alice", room.Users[0].Nickname)
	req.Equal(room.Users[0].ID, room.HostUserID)

	stored, err := env.rooms.Load(room.Code)
	req.NoError(err)
	req.Equal(room, stored)

	req.Len(stored.Messages, 1)
	req.True(stored.Messages[0].IsSystem)
	req.Equal("Room created! Share code: "+room.Code, stored.Messages[0].Content)
}

func Test_CreateRoom_EmptyNickname(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	_, err := env.membership.CreateRoom(context.Background(), "   ")
	req.ErrorIs(err, errors.ErrEmptyNickname)
	req.Nil(env.sessions.Get())
}

func Test_JoinRoom_UnknownCode(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	_, err := env.membership.JoinRoom(context.Background(), "Bob", "ZZZZZZ")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_JoinRoom_NormalizesCode(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)
	env.allowRendering()

	req.NoError(env.rooms.Save(domain.NewRoom("AB12CD", domain.NewUser("Alice"))))

	session, err := env.membership.JoinRoom(context.Background(), "Bob", "  ab12cd ")
	req.NoError(err)
	req.Equal("AB12CD", session.Room().Code)
	req.False(session.IsHost())
}

func Test_JoinRoom_FullNeverMutates(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	room := domain.NewRoom("AAAAAA", domain.NewUser("Alice"))
	req.NoError(room.AddUser(domain.NewUser("Bob")))
	req.NoError(room.AddUser(domain.NewUser("Clara")))
	req.NoError(room.AddUser(domain.NewUser("Dan")))
	req.NoError(env.rooms.Save(room))

	_, err := env.membership.JoinRoom(context.Background(), "Eve", "AAAAAA")
	req.ErrorIs(err, errors.ErrRoomFull)

	stored, err := env.rooms.Load("AAAAAA")
	req.NoError(err)
	req.Equal(room, stored)
	req.Nil(env.sessions.Get())
}

func Test_JoinRoom_CuesExistingVideoWithoutRebroadcast(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)
	env.allowRendering()

	room := domain.NewRoom("AAAAAA", domain.NewUser("Alice"))
	room.Video = &domain.Video{VideoID: "dQw4w9WgXcQ", LoadedAt: time.Now().UTC()}
	req.NoError(env.rooms.Save(room))

	env.player.EXPECT().Load("dQw4w9WgXcQ").Times(1)

	_, err := env.membership.JoinRoom(context.Background(), "Bob", "AAAAAA")
	req.NoError(err)

	// catching up is local: the join announces the membership change only
	for _, envlp := range publishedEnvelopes(t, env.store) {
		req.Equal(event.RoomUpdated, envlp.Type)
	}
}

func Test_JoinRoom_ReplaysChatHistory(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)
	env.renderer.EXPECT().RenderRoom(gomock.Any(), gomock.Any()).AnyTimes()

	room := domain.NewRoom("AAAAAA", domain.NewUser("Alice"))
	room.AppendMessage(domain.NewSystemMessage("Room created! Share code: AAAAAA"))
	room.AppendMessage(domain.NewMessage("Alice", "anyone around?"))
	room.AppendMessage(domain.NewMessage("Alice", "starting soon"))
	req.NoError(env.rooms.Save(room))

	var rendered []domain.Message
	env.renderer.EXPECT().
		RenderMessage(gomock.Any()).
		Do(func(msg domain.Message) { rendered = append(rendered, msg) }).
		Times(4)

	_, err := env.membership.JoinRoom(context.Background(), "Bob", "AAAAAA")
	req.NoError(err)

	// the stored history first, the fresh join notice last
	req.Len(rendered, 4)
	req.Equal("anyone around?", rendered[1].Content)
	req.Equal("starting soon", rendered[2].Content)
	req.True(rendered[3].IsSystem)
	req.Equal("Bob joined the room", rendered[3].Content)
}

func Test_LeaveRoom_LastUserDeletesRoom(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)
	env.allowRendering()

	session, err := env.membership.CreateRoom(context.Background(), "Alice")
	req.NoError(err)
	code := session.Room().Code

	req.NoError(env.membership.LeaveRoom())

	_, err = env.rooms.Load(code)
	req.ErrorIs(err, errors.ErrRoomNotFound)
	req.Nil(env.sessions.Get())
}

func Test_LeaveRoom_HostHandover(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	alice := domain.NewUser("Alice")
	bob := domain.NewUser("Bob")
	room := domain.NewRoom("AAAAAA", alice)
	req.NoError(room.AddUser(bob))
	req.NoError(env.rooms.Save(room))

	env.sessions.Begin(context.Background(), domain.NewSession(alice, room, domain.Host))

	req.NoError(env.membership.LeaveRoom())

	stored, err := env.rooms.Load("AAAAAA")
	req.NoError(err)
	req.Equal(bob.ID, stored.HostUserID)
	req.Len(stored.Users, 1)

	last := stored.Messages[len(stored.Messages)-1]
	req.True(last.IsSystem)
	req.Equal("Alice left the room", last.Content)
}

func Test_LeaveRoom_NoSession(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	req.NoError(env.membership.LeaveRoom())
}

func Test_HandleRoomUpdated_PromotesNewHost(t *testing.T) {
	req := require.New(t)
	env := newMembershipEnv(t)

	bob := domain.NewUser("Bob")
	stale := domain.NewRoom("AAAAAA", domain.NewUser("Alice"))
	req.NoError(stale.AddUser(bob))

	// the authoritative record now names Bob as host
	current := stale
	current.Users = []domain.User{bob}
	current.HostUserID = bob.ID
	req.NoError(env.rooms.Save(current))

	env.sessions.Begin(context.Background(), domain.NewSession(bob, stale, domain.Follower))
	env.renderer.EXPECT().RenderRoom(gomock.Any(), true).Times(1)

	env.membership.HandleRoomUpdated(event.Envelope{Type: event.RoomUpdated, RoomCode: "AAAAAA"})

	session := env.sessions.Get()
	req.True(session.IsHost())
	req.Equal(current, session.Room())
}
