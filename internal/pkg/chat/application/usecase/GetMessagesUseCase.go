package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesInput identifies a conversation by the caller and their peer and
// selects a page of its history.
type GetMessagesInput struct {
	SubjectID   string
	PeerID      string
	Page        int
	Limit       int
	OldestFirst bool
}

// GetMessagesOutput is one page of a conversation's history. Total counts the
// whole conversation, not the page.
type GetMessagesOutput struct {
	Messages []chat.Message
	Total    int64
	Page     int
	Limit    int
}

// GetMessagesUseCase reads paginated history for the conversation between two
// subjects. A missing conversation is not an error: the pair simply has no
// history yet.
type GetMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessagesUseCase(repo repository.ChatRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) (*GetMessagesOutput, error) {
	low, high, err := chat.CanonicalPair(in.SubjectID, in.PeerID)
	if err != nil {
		return nil, err
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}

	out := &GetMessagesOutput{Page: page, Limit: limit}

	conv, err := uc.Repo.GetConversationByPair(ctx, low, high)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Repo.GetMessagesByConversation(ctx, conv.ID, limit, (page-1)*limit, in.OldestFirst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	total, err := uc.Repo.CountMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	out.Messages = msgs
	out.Total = total
	return out, nil
}
