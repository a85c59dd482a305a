package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/usecase"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/adapter"
)

// ListConversationsController serves all conversations of the authenticated
// caller with each conversation's most recent message attached.
type ListConversationsController struct {
	Verifier authport.Verifier
	UC       *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, verifier authport.Verifier) *ListConversationsController {
	repo := adapter.NewPgChatRepository(pool)
	return &ListConversationsController{Verifier: verifier, UC: usecase.NewListConversationsUseCase(repo)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errMsg := extractBearerToken(c)
		if errMsg != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}
		subjectID, err := h.Verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{SubjectID: subjectID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			entry := gin.H{
				"id":           s.Conversation.ID,
				"participants": s.Conversation.Participants(),
				"createdAt":    s.Conversation.CreatedAt,
				"lastMessage":  nil,
			}
			if s.LastMessage != nil {
				entry["lastMessage"] = messageJSON(*s.LastMessage)
			}
			out = append(out, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"conversations": out,
		})
	}
}
