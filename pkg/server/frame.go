package server

import (
	"github.com/haivivi/splittyping/pkg/chatstate"
	"github.com/haivivi/splittyping/pkg/jsontime"
)

// Frame types.
const (
	// TypeMessage is an incoming user message, checked for toggle commands.
	TypeMessage = "message"
	// TypeReply is an incoming generated reply to deliver.
	TypeReply = "reply"

	// TypeCommandReply answers a toggle command.
	TypeCommandReply = "command_reply"
	// TypeFragment carries one paced fragment of a reply.
	TypeFragment = "fragment"
	// TypeDone follows the last fragment of a delivery.
	TypeDone = "done"
	// TypePassthrough carries a reply that was not split.
	TypePassthrough = "passthrough"
	// TypeError reports a rejected frame or a failed delivery.
	TypeError = "error"
)

// Frame is the JSON message exchanged over the WebSocket.
type Frame struct {
	Type       string         `json:"type"`
	ChatType   string         `json:"chat_type,omitempty"`
	ChatID     string         `json:"chat_id,omitempty"`
	Text       string         `json:"text,omitempty"`
	Index      int            `json:"index,omitempty"`
	Total      int            `json:"total,omitempty"`
	DeliveryID string         `json:"delivery_id,omitempty"`
	Error      string         `json:"error,omitempty"`
	SentAt     jsontime.Milli `json:"sent_at,omitzero"`
}

// chat returns the chat the frame addresses. The chat type defaults to
// person.
func (f *Frame) chat() chatstate.ChatID {
	typ := f.ChatType
	if typ == "" {
		typ = chatstate.TypePerson
	}
	return chatstate.ChatID{Type: typ, ID: f.ChatID}
}

// replyTo returns an outgoing frame addressed to the same chat as f.
func (f *Frame) replyTo(typ string) Frame {
	c := f.chat()
	return Frame{
		Type:     typ,
		ChatType: c.Type,
		ChatID:   c.ID,
		SentAt:   jsontime.NowMilli(),
	}
}
