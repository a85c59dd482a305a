package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	"github.com/amantiwari57/freelance-backend/internal/infrastructure/realtime"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, broker brokerport.Broker, verifier authport.Verifier, registry *realtime.Registry, log zerolog.Logger) {
	sendCtl := controller.NewSendMessageController(verifier, broker)
	getCtl := controller.NewGetMessagesController(pool, verifier)
	listCtl := controller.NewListConversationsController(pool, verifier)
	socketCtl := controller.NewChatSocketController(verifier, registry, log)

	// POST /api/v1/messages/send -> queue a message for async delivery
	g.POST("/messages/send", sendCtl.Handle())

	// GET /api/v1/messages/conversation/:receiverId -> paginated history with a peer
	g.GET("/messages/conversation/:receiverId", getCtl.Handle())

	// GET /api/v1/messages/conversations -> all conversations with last message
	g.GET("/messages/conversations", listCtl.Handle())

	// GET /api/v1/chat/ws -> realtime delivery channel
	g.GET("/chat/ws", socketCtl.Handle())
}
