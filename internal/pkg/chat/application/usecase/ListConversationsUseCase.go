package usecase

import (
	"context"
	"fmt"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the subject whose conversations are listed.
type ListConversationsInput struct {
	SubjectID string
}

// ListConversationsUseCase returns every conversation the subject takes part
// in, newest first, each with its most recent message attached.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.ConversationSummary, error) {
	if in.SubjectID == "" {
		return nil, chat.ErrEmptyParticipant
	}
	summaries, err := uc.Repo.ListConversationsForSubject(ctx, in.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summaries, nil
}
