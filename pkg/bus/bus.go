package bus

import (
	"context"
	"time"
)

type EventKind string

const (
	EventText     EventKind = "text"
	EventCommand  EventKind = "command"
	EventCallback EventKind = "callback"
)

// InboundEvent is one user action delivered by a transport channel.
type InboundEvent struct {
	Channel   string
	UserID    string
	ChatID    string
	Kind      EventKind
	Text      string // message text, or command name without the slash
	Data      string // callback payload for EventCallback
	MessageID int    // message the callback was attached to, 0 otherwise
	Timestamp time.Time
}

// Button is one labeled inline action.
type Button struct {
	Label string
	Data  string
}

// OutboundMessage is a render request for a transport channel.
// EditMessageID asks the channel to edit that message in place instead of
// sending a new one; channels may fall back to sending.
type OutboundMessage struct {
	Channel       string
	ChatID        string
	Text          string
	Keyboard      [][]Button
	EditMessageID int
}

type MessageBus struct {
	inbound  chan InboundEvent
	outbound chan OutboundMessage
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundEvent, 100),
		outbound: make(chan OutboundMessage, 100),
	}
}

func (mb *MessageBus) PublishInbound(ev InboundEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	mb.inbound <- ev
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundEvent, bool) {
	select {
	case ev := <-mb.inbound:
		return ev, true
	case <-ctx.Done():
		return InboundEvent{}, false
	}
}

func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.outbound <- msg
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-mb.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

func (mb *MessageBus) Close() {
	close(mb.inbound)
	close(mb.outbound)
}
