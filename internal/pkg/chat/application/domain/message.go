package chat

import (
	"strings"
	"time"
)

// MessageType tags the content of a message.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeAudio MessageType = "audio"
	MessageTypeFile  MessageType = "file"
	MessageTypeLink  MessageType = "link"
)

// Valid reports whether t is one of the recognized type tags.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeAudio, MessageTypeFile, MessageTypeLink:
		return true
	}
	return false
}

// MessageStatus is the delivery state of a message. It only ever advances:
// sent -> delivered -> read.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageStatusSent:
		return 0
	case MessageStatusDelivered:
		return 1
	case MessageStatusRead:
		return 2
	}
	return -1
}

// CanAdvance reports whether a transition from s to next respects the
// monotonic sent -> delivered -> read ordering.
func (s MessageStatus) CanAdvance(next MessageStatus) bool {
	return s.rank() >= 0 && next.rank() > s.rank()
}

// Message is an immutable log entry in a conversation. Only Status may change
// after creation, and only forwards.
type Message struct {
	ID             string        `db:"id"`
	ConversationID string        `db:"conversation_id"`
	SenderID       string        `db:"sender_id"`
	Content        string        `db:"content"`
	MsgType        MessageType   `db:"msg_type"`
	Attachments    []string      `db:"attachments"`
	Status         MessageStatus `db:"status"`
	CreatedAt      time.Time     `db:"created_at"`
}

// NewMessage builds a message ready to persist. CreatedAt must carry the
// submission timestamp from the envelope, not the persistence time, so that
// queueing delay never reorders a conversation.
func NewMessage(conversationID string, e Envelope) (*Message, error) {
	if conversationID == "" {
		return nil, ErrConversationMissing
	}
	content := strings.TrimSpace(e.Content)
	if content == "" {
		return nil, ErrMissingContent
	}
	if !e.MessageType.Valid() {
		return nil, ErrInvalidMessageType
	}
	if e.Timestamp.IsZero() {
		return nil, ErrMissingTimestamp
	}

	attachments := e.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return &Message{
		ConversationID: conversationID,
		SenderID:       e.SenderID,
		Content:        content,
		MsgType:        e.MessageType,
		Attachments:    attachments,
		Status:         MessageStatusSent,
		CreatedAt:      e.Timestamp,
	}, nil
}
