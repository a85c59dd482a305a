package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// AdvanceMessageStatusUseCase moves a message forward through the delivery
// states. The store enforces monotonicity; a regression or same-state request
// comes back as ErrStatusRegression, never a silent overwrite.
type AdvanceMessageStatusUseCase struct {
	Repo repository.ChatRepository
}

func NewAdvanceMessageStatusUseCase(repo repository.ChatRepository) *AdvanceMessageStatusUseCase {
	return &AdvanceMessageStatusUseCase{Repo: repo}
}

func (uc *AdvanceMessageStatusUseCase) Execute(ctx context.Context, messageID string, next chat.MessageStatus) error {
	if messageID == "" {
		return repository.ErrMessageNotFound
	}
	err := uc.Repo.AdvanceMessageStatus(ctx, messageID, next)
	if err == nil ||
		errors.Is(err, chat.ErrStatusRegression) ||
		errors.Is(err, repository.ErrMessageNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
