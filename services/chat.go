package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"

	"watch-party/bus"
	"watch-party/contract"
	"watch-party/domain"
	"watch-party/domain/event"
	"watch-party/errors"
	"watch-party/moderation"
	"watch-party/repositories"
)

// ChatService appends chat messages to the shared room record and relays
// them as events for immediate display on the other participants.
type ChatService struct {
	log       *slog.Logger
	rooms     *repositories.RoomRepository
	bus       *bus.Bus
	renderer  contract.Renderer
	sessions  *SessionRef
	moderator *moderation.Moderator
	index     *repositories.MessageIndex
}

func NewChatService(
	log *slog.Logger,
	rooms *repositories.RoomRepository,
	eventBus *bus.Bus,
	renderer contract.Renderer,
	sessions *SessionRef,
	moderator *moderation.Moderator,
	index *repositories.MessageIndex,
) *ChatService {
	return &ChatService{
		log:       log,
		rooms:     rooms,
		bus:       eventBus,
		renderer:  renderer,
		sessions:  sessions,
		moderator: moderator,
		index:     index,
	}
}

// Send moderates, persists, broadcasts and locally renders one chat
// message. Empty content or a missing session is a silent no-op.
func (c *ChatService) Send(content string) error {
	content = strings.TrimSpace(content)
	session := c.sessions.Get()
	if content == "" || session == nil {
		return nil
	}

	content = c.moderator.Censor(content)

	info := whatlanggo.Detect(content)
	c.log.Debug("Outgoing message",
		"lang", whatlanggo.LangToString(info.Lang),
		"confidence", info.Confidence,
	)

	code := session.Room().Code
	room, err := c.rooms.Load(code)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	msg := domain.NewMessage(session.User.Nickname, content)
	room.AppendMessage(msg)
	if err := c.rooms.Save(room); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	session.UpdateRoom(room)

	// live delivery piggybacks on the event payload for low latency; the
	// history is already in the room record
	if err := c.bus.Publish(code, event.MessageSent, msg); err != nil {
		c.log.Warn("Failed to relay message", "code", code, "error", err)
	}

	c.renderer.RenderMessage(msg)
	c.indexMessage(code, msg)
	return nil
}

// HandleMessageSent renders a relayed chat message unless its sender
// nickname matches the local one, which was already rendered on send.
// De-duplication is keyed on nickname, so two participants sharing a
// nickname suppress each other's messages.
func (c *ChatService) HandleMessageSent(env event.Envelope) {
	session := c.sessions.Get()
	if session == nil {
		return
	}

	msg, err := event.Decode[domain.Message](env)
	if err != nil {
		c.log.Debug("Dropping malformed chat payload", "error", err)
		return
	}
	if msg.Sender == session.User.Nickname {
		return
	}

	c.renderer.RenderMessage(msg)
	c.indexMessage(env.RoomCode, msg)
}

// Search queries the local chat history index for the active room.
func (c *ChatService) Search(ctx context.Context, terms string) ([]repositories.SearchHit, uint64, error) {
	session := c.sessions.Get()
	if session == nil {
		return nil, 0, errors.ErrNoSession
	}
	return c.index.Search(ctx, terms, session.Room().Code, 0)
}

func (c *ChatService) indexMessage(code string, msg domain.Message) {
	if err := c.index.Index(code, msg); err != nil {
		c.log.Warn("Failed to index message", "code", code, "error", err)
	}
}
