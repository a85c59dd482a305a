package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	v1 "github.com/amantiwari57/freelance-backend/cmd/api/router/v1"
	authadapter "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/adapter"
	brokeradapter "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/adapter"
	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	cacheadapter "github.com/amantiwari57/freelance-backend/internal/infrastructure/cache/adapter"
	cacheport "github.com/amantiwari57/freelance-backend/internal/infrastructure/cache/port"
	"github.com/amantiwari57/freelance-backend/internal/infrastructure/database"
	"github.com/amantiwari57/freelance-backend/internal/infrastructure/realtime"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/usecase"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/worker"
	repoadapter "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not an error in deployments that inject env directly.
		_, _ = os.Stderr.WriteString("warning: .env file not loaded\n")
	}

	log := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	var cache cacheport.Cache
	if rc, err := cacheadapter.NewRedisCacheFromEnv(); err != nil {
		log.Warn().Err(err).Msg("cache unavailable, conversation lookups go straight to the store")
	} else {
		cache = rc
		defer rc.Close()
	}

	broker, err := newBroker(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct broker")
	}
	defer broker.Close()

	verifier, err := authadapter.NewJWTVerifierFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct token verifier")
	}

	registry := realtime.NewRegistry()
	defer registry.Close()

	repo := repoadapter.NewPgChatRepository(pool)
	resolver := usecase.NewResolveConversationUseCase(repo, cache)
	deliver := usecase.NewDeliverMessageUseCase(resolver, repo)
	advance := usecase.NewAdvanceMessageStatusUseCase(repo)

	fanout := worker.NewFanoutWorker(broker, deliver, advance, registry, log)
	go func() {
		if err := fanout.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("fan-out worker stopped")
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, broker, verifier, registry, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", port).Msg("api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// newBroker picks the transport backend at startup. Both realizations honor
// the same publish/subscribe contract; nothing downstream knows which one is
// in play.
func newBroker(log zerolog.Logger) (brokerport.Broker, error) {
	switch driver := os.Getenv("BROKER_DRIVER"); driver {
	case "", "asynq":
		return brokeradapter.NewAsynqBrokerFromEnv(log)
	case "redislist":
		return brokeradapter.NewRedisListBrokerFromEnv(log)
	default:
		return nil, errors.New("unknown BROKER_DRIVER: " + driver)
	}
}
