package controller

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/usecase"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/adapter"
)

// GetMessagesController serves the paginated history of the conversation
// between the authenticated caller and a peer (one controller per endpoint).
type GetMessagesController struct {
	Verifier authport.Verifier
	UC       *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool, verifier authport.Verifier) *GetMessagesController {
	repo := adapter.NewPgChatRepository(pool)
	return &GetMessagesController{Verifier: verifier, UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
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

		receiverID := c.Param("receiverId")
		if receiverID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "receiver id is required"})
			return
		}

		page := 1
		if v := c.Query("page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				page = n
			}
		}
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		// Newest-first by default; order=asc flips to oldest-first.
		oldestFirst := c.Query("order") == "asc"

		in := usecase.GetMessagesInput{
			SubjectID:   subjectID,
			PeerID:      receiverID,
			Page:        page,
			Limit:       limit,
			OldestFirst: oldestFirst,
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, in)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		msgs := make([]gin.H, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, messageJSON(m))
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"messages": msgs,
			"pagination": gin.H{
				"page":          out.Page,
				"limit":         out.Limit,
				"totalPages":    int(math.Ceil(float64(out.Total) / float64(out.Limit))),
				"totalMessages": out.Total,
			},
		})
	}
}

func messageJSON(m chat.Message) gin.H {
	return gin.H{
		"id":             m.ID,
		"conversationId": m.ConversationID,
		"senderId":       m.SenderID,
		"content":        m.Content,
		"messageType":    m.MsgType,
		"attachments":    m.Attachments,
		"status":         m.Status,
		"createdAt":      m.CreatedAt,
	}
}
