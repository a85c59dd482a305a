package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
)

// SendMessageController handles the ingestion endpoint (one controller per
// endpoint). It authenticates, validates, stamps the envelope and hands it to
// the broker. It never writes to the store directly: the fan-out worker is the
// single writer.
type SendMessageController struct {
	Verifier authport.Verifier
	Broker   brokerport.Broker
}

func NewSendMessageController(verifier authport.Verifier, broker brokerport.Broker) *SendMessageController {
	return &SendMessageController{Verifier: verifier, Broker: broker}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	ReceiverID  string   `json:"receiverId"`
	Content     string   `json:"content"`
	MessageType string   `json:"messageType"`
	Attachments []string `json:"attachments"`
}

// Handle returns a gin handler that publishes exactly one envelope per
// accepted call. Publish failure surfaces as 503; the caller resubmits.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errMsg := extractBearerToken(c)
		if errMsg != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}
		senderID, err := h.Verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.ReceiverID == "" || req.Content == "" || req.MessageType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields: receiverId, content, or messageType"})
			return
		}
		if !chat.MessageType(req.MessageType).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid messageType"})
			return
		}
		if req.ReceiverID == senderID {
			c.JSON(http.StatusBadRequest, gin.H{"error": chat.ErrSameParticipant.Error()})
			return
		}

		env := chat.Envelope{
			SenderID:    senderID,
			ReceiverID:  req.ReceiverID,
			Content:     req.Content,
			MessageType: chat.MessageType(req.MessageType),
			Attachments: req.Attachments,
			Timestamp:   time.Now().UTC(),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode envelope"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Broker.Publish(ctx, chat.MessageChannel, payload); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to queue message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "message queued successfully",
		})
	}
}
