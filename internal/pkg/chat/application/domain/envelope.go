package chat

import (
	"strings"
	"time"
)

// MessageChannel is the single well-known broker channel all chat envelopes
// travel on. There is no per-conversation partitioning.
const MessageChannel = "message"

// Envelope is the transient wire form of a message between the ingestion API
// and the fan-out worker. It is never persisted verbatim; the worker turns it
// into a Message after resolving the conversation.
type Envelope struct {
	SenderID    string      `json:"senderId"`
	ReceiverID  string      `json:"receiverId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	Attachments []string    `json:"attachments,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Validate checks the fields the worker depends on. A failing envelope is
// malformed on the wire and must be dropped, not retried.
func (e Envelope) Validate() error {
	if e.SenderID == "" || e.ReceiverID == "" {
		return ErrEmptyParticipant
	}
	if e.SenderID == e.ReceiverID {
		return ErrSameParticipant
	}
	if strings.TrimSpace(e.Content) == "" {
		return ErrMissingContent
	}
	if !e.MessageType.Valid() {
		return ErrInvalidMessageType
	}
	if e.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}
