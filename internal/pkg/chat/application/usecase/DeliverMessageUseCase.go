package usecase

import (
	"context"
	"fmt"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// DeliverMessageUseCase turns a dequeued envelope into a durable message:
// resolve the conversation for the pair, then persist with the envelope's
// submission timestamp so queueing delay never changes perceived send order.
type DeliverMessageUseCase struct {
	Resolver *ResolveConversationUseCase
	Repo     repository.ChatRepository
}

func NewDeliverMessageUseCase(resolver *ResolveConversationUseCase, repo repository.ChatRepository) *DeliverMessageUseCase {
	return &DeliverMessageUseCase{Resolver: resolver, Repo: repo}
}

// Execute persists the envelope and returns the stored message. Validation
// errors come back as domain errors; store failures are wrapped in
// ErrPersistence.
func (uc *DeliverMessageUseCase) Execute(ctx context.Context, env chat.Envelope) (*chat.Message, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	conv, err := uc.Resolver.Execute(ctx, ResolveConversationInput{IDA: env.SenderID, IDB: env.ReceiverID})
	if err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(conv.ID, env)
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
