package services

import (
	"watch-party/domain/event"
)

// Router dispatches incoming bus envelopes to the service handlers. Unknown
// event types are ignored.
type Router struct {
	membership *MembershipService
	playback   *PlaybackService
	chat       *ChatService
}

func NewRouter(membership *MembershipService, playback *PlaybackService, chat *ChatService) *Router {
	r := &Router{membership: membership, playback: playback, chat: chat}
	membership.SetRouter(r.Route)
	return r
}

func (r *Router) Route(env event.Envelope) {
	switch env.Type {
	case event.RoomUpdated:
		r.membership.HandleRoomUpdated(env)
	case event.VideoLoaded:
		r.playback.HandleVideoLoaded(env)
	case event.VideoPlay:
		r.playback.HandleVideoPlay(env)
	case event.VideoPause:
		r.playback.HandleVideoPause(env)
	case event.MessageSent:
		r.chat.HandleMessageSent(env)
	}
}
