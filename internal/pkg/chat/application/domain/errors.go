package chat

import "errors"

// Domain-level errors for the chat delivery pipeline
var (
	ErrSameParticipant     = errors.New("chat: sender and receiver cannot be the same")
	ErrEmptyParticipant    = errors.New("chat: participant id must not be empty")
	ErrMissingContent      = errors.New("chat: message content is required")
	ErrInvalidMessageType  = errors.New("chat: unrecognized message type")
	ErrMissingTimestamp    = errors.New("chat: envelope timestamp is required")
	ErrStatusRegression    = errors.New("chat: message status cannot move backwards")
	ErrConversationMissing = errors.New("chat: conversation not found")
)
