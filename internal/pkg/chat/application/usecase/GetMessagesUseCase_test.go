package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
)

func seedConversation(t *testing.T, repo *fakeRepo, low, high string, n int) string {
	t.Helper()
	id, err := repo.CreateConversation(context.Background(), chat.Conversation{
		ParticipantLow: low,
		ParticipantHi:  high,
	})
	require.NoError(t, err)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := repo.SaveMessage(context.Background(), chat.Message{
			ConversationID: id,
			SenderID:       low,
			Content:        "m",
			MsgType:        chat.MessageTypeText,
			Status:         chat.MessageStatusSent,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	return id
}

func TestGetMessagesNoConversationYet(t *testing.T) {
	uc := NewGetMessagesUseCase(newFakeRepo())

	out, err := uc.Execute(context.Background(), GetMessagesInput{SubjectID: "u1", PeerID: "u2"})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	assert.Zero(t, out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 20, out.Limit)
}

func TestGetMessagesNewestFirstByDefault(t *testing.T) {
	repo := newFakeRepo()
	seedConversation(t, repo, "u1", "u2", 3)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{SubjectID: "u2", PeerID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Messages, 3)
	assert.True(t, out.Messages[0].CreatedAt.After(out.Messages[2].CreatedAt))
	assert.EqualValues(t, 3, out.Total)
}

func TestGetMessagesPagination(t *testing.T) {
	repo := newFakeRepo()
	seedConversation(t, repo, "u1", "u2", 5)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{
		SubjectID:   "u1",
		PeerID:      "u2",
		Page:        2,
		Limit:       2,
		OldestFirst: true,
	})
	require.NoError(t, err)
	require.Len(t, out.Messages, 2)
	assert.EqualValues(t, 5, out.Total)
	// Page 2 of an oldest-first listing holds messages 3 and 4.
	assert.True(t, out.Messages[0].CreatedAt.Before(out.Messages[1].CreatedAt))
}

func TestGetMessagesRejectsSelf(t *testing.T) {
	uc := NewGetMessagesUseCase(newFakeRepo())

	_, err := uc.Execute(context.Background(), GetMessagesInput{SubjectID: "u1", PeerID: "u1"})
	require.ErrorIs(t, err, chat.ErrSameParticipant)
}

func TestListConversationsWithLastMessage(t *testing.T) {
	repo := newFakeRepo()
	seedConversation(t, repo, "u1", "u2", 2)
	seedConversation(t, repo, "u1", "u3", 0)
	seedConversation(t, repo, "u4", "u5", 1)
	uc := NewListConversationsUseCase(repo)

	summaries, err := uc.Execute(context.Background(), ListConversationsInput{SubjectID: "u1"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	for _, s := range summaries {
		assert.True(t, s.Conversation.Includes("u1"))
		if s.Conversation.Includes("u2") {
			require.NotNil(t, s.LastMessage)
			assert.Equal(t, s.Conversation.ID, s.LastMessage.ConversationID)
		} else {
			assert.Nil(t, s.LastMessage)
		}
	}
}
