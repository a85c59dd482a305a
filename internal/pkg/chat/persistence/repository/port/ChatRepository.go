package repository

import (
	"context"
	"errors"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
)

// Typed repository errors so use cases can branch without knowing the driver.
var (
	// ErrConversationNotFound signals a pair lookup miss.
	ErrConversationNotFound = errors.New("repository: conversation not found")
	// ErrConversationExists signals the unique constraint on the sorted pair
	// rejected an insert; the caller lost a find-or-create race and should
	// re-fetch instead of failing.
	ErrConversationExists = errors.New("repository: conversation already exists for pair")
	// ErrMessageNotFound signals a message id lookup miss.
	ErrMessageNotFound = errors.New("repository: message not found")
)

// ChatRepository defines persistence operations for the chat delivery pipeline.
type ChatRepository interface {
	// CreateConversation inserts a conversation for the canonical pair and
	// returns its generated id. Returns ErrConversationExists when the pair
	// is already present.
	CreateConversation(ctx context.Context, c chat.Conversation) (string, error)

	// GetConversationByPair looks up the conversation for a canonical
	// (low, high) pair. Returns ErrConversationNotFound on a miss.
	GetConversationByPair(ctx context.Context, low, high string) (*chat.Conversation, error)

	// SaveMessage persists a message and returns its generated id. The
	// message's CreatedAt is stored as-is.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// GetMessagesByConversation returns a page of a conversation's messages
	// ordered by CreatedAt, oldest-first when oldestFirst is true.
	GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int, oldestFirst bool) ([]chat.Message, error)

	// CountMessages returns the total number of messages in a conversation.
	CountMessages(ctx context.Context, conversationID string) (int64, error)

	// ListConversationsForSubject returns every conversation the subject
	// participates in, each with its most recent message attached.
	ListConversationsForSubject(ctx context.Context, subjectID string) ([]chat.ConversationSummary, error)

	// AdvanceMessageStatus moves a message's status forward. Regressions are
	// rejected with chat.ErrStatusRegression; unknown ids with ErrMessageNotFound.
	AdvanceMessageStatus(ctx context.Context, messageID string, next chat.MessageStatus) error
}
