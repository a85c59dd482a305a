package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

func TestResolveConversationIdempotentAcrossOrder(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveConversationUseCase(repo, nil)
	ctx := context.Background()

	first, err := uc.Execute(ctx, ResolveConversationInput{IDA: "u1", IDB: "u2"})
	require.NoError(t, err)
	second, err := uc.Execute(ctx, ResolveConversationInput{IDA: "u2", IDB: "u1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.conversations, 1)
	assert.Equal(t, []string{"u1", "u2"}, first.Participants())
}

func TestResolveConversationRejectsSelf(t *testing.T) {
	uc := NewResolveConversationUseCase(newFakeRepo(), nil)

	_, err := uc.Execute(context.Background(), ResolveConversationInput{IDA: "u1", IDB: "u1"})
	require.ErrorIs(t, err, chat.ErrSameParticipant)
}

func TestResolveConversationLosesCreateRace(t *testing.T) {
	repo := newFakeRepo()
	// Simulate a concurrent first-contact: the competing resolver wins the
	// insert between our lookup miss and our create.
	repo.beforeCreate = func(r *fakeRepo) error {
		r.beforeCreate = nil
		r.conversations[pairKey("u1", "u2")] = chat.Conversation{
			ID:             "conv-winner",
			ParticipantLow: "u1",
			ParticipantHi:  "u2",
		}
		return repository.ErrConversationExists
	}
	uc := NewResolveConversationUseCase(repo, nil)

	conv, err := uc.Execute(context.Background(), ResolveConversationInput{IDA: "u2", IDB: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "conv-winner", conv.ID, "race loser must adopt the winner's conversation")
	assert.Len(t, repo.conversations, 1)
}

func TestResolveConversationUsesCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	uc := NewResolveConversationUseCase(repo, cache)
	ctx := context.Background()

	first, err := uc.Execute(ctx, ResolveConversationInput{IDA: "u1", IDB: "u2"})
	require.NoError(t, err)

	lookupsBefore := repo.getPairCalls
	second, err := uc.Execute(ctx, ResolveConversationInput{IDA: "u2", IDB: "u1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, lookupsBefore, repo.getPairCalls, "cache hit must not touch the store")
}

func TestResolveConversationWrapsStoreErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.getErr = errors.New("connection refused")
	uc := NewResolveConversationUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ResolveConversationInput{IDA: "u1", IDB: "u2"})
	require.ErrorIs(t, err, ErrPersistence)
}
