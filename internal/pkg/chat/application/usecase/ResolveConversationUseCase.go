package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/amantiwari57/freelance-backend/internal/infrastructure/cache/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

const pairCacheTTL = 12 * time.Hour

// ResolveConversationInput carries the unordered participant pair.
type ResolveConversationInput struct {
	IDA string
	IDB string
}

// ResolveConversationUseCase maps an unordered participant pair to its single
// canonical conversation, creating it lazily on first contact. Two concurrent
// first-contact resolutions are arbitrated by the store's unique constraint:
// the loser re-fetches the winner's row instead of erroring.
//
// The cache is optional and best-effort; it only short-circuits the pair
// lookup and never substitutes for the store.
type ResolveConversationUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewResolveConversationUseCase(repo repository.ChatRepository, cache cacheport.Cache) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo, Cache: cache}
}

func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (*chat.Conversation, error) {
	low, high, err := chat.CanonicalPair(in.IDA, in.IDB)
	if err != nil {
		return nil, err
	}

	if id := uc.cachedID(ctx, low, high); id != "" {
		return &chat.Conversation{ID: id, ParticipantLow: low, ParticipantHi: high}, nil
	}

	conv, err := uc.Repo.GetConversationByPair(ctx, low, high)
	if err == nil {
		uc.cacheID(ctx, low, high, conv.ID)
		return conv, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	id, err := uc.Repo.CreateConversation(ctx, chat.Conversation{
		ParticipantLow: low,
		ParticipantHi:  high,
		CreatedAt:      time.Now().UTC(),
	})
	if errors.Is(err, repository.ErrConversationExists) {
		// Lost the first-contact race; the winner's row is authoritative.
		conv, err = uc.Repo.GetConversationByPair(ctx, low, high)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		uc.cacheID(ctx, low, high, conv.ID)
		return conv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.cacheID(ctx, low, high, id)
	return &chat.Conversation{ID: id, ParticipantLow: low, ParticipantHi: high}, nil
}

func pairCacheKey(low, high string) string {
	return "chat:conv:" + low + ":" + high
}

func (uc *ResolveConversationUseCase) cachedID(ctx context.Context, low, high string) string {
	if uc.Cache == nil {
		return ""
	}
	id, err := uc.Cache.Get(ctx, pairCacheKey(low, high))
	if err != nil {
		return ""
	}
	return id
}

func (uc *ResolveConversationUseCase) cacheID(ctx context.Context, low, high, id string) {
	if uc.Cache == nil || id == "" {
		return
	}
	_ = uc.Cache.Set(ctx, pairCacheKey(low, high), id, pairCacheTTL)
}
