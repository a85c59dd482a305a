package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	"github.com/amantiwari57/freelance-backend/internal/infrastructure/realtime"
	httpHandler "github.com/amantiwari57/freelance-backend/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, broker brokerport.Broker, verifier authport.Verifier, registry *realtime.Registry, log zerolog.Logger) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, broker, verifier, registry, log)
}
