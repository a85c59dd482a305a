package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	"github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/usecase"
)

const resubscribeBackoff = 2 * time.Second

// Broadcaster is the worker's view of the live session registry.
type Broadcaster interface {
	BroadcastTo(subjectIDs []string, payload []byte) int
	HasSessions(subjectID string) bool
}

// messageFrame is the serialized form pushed to live sessions.
type messageFrame struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	MessageType    string    `json:"messageType"`
	Attachments    []string  `json:"attachments"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FanoutWorker is the single subscriber on the message channel. For each
// envelope it resolves the conversation, persists the message, then delivers
// it to every live session of the sender and receiver. The loop is strictly
// sequential: per-conversation write ordering depends on it.
type FanoutWorker struct {
	broker   brokerport.Broker
	deliver  *usecase.DeliverMessageUseCase
	advance  *usecase.AdvanceMessageStatusUseCase
	sessions Broadcaster
	backoff  time.Duration
	log      zerolog.Logger
}

func NewFanoutWorker(broker brokerport.Broker, deliver *usecase.DeliverMessageUseCase, advance *usecase.AdvanceMessageStatusUseCase, sessions Broadcaster, log zerolog.Logger) *FanoutWorker {
	return &FanoutWorker{
		broker:   broker,
		deliver:  deliver,
		advance:  advance,
		sessions: sessions,
		backoff:  resubscribeBackoff,
		log:      log.With().Str("component", "fanout-worker").Logger(),
	}
}

// Run subscribes to the message channel and blocks until ctx is canceled.
// Transport-level subscription failures are retried with a fixed backoff; a
// single bad message never terminates the loop.
func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		err := w.broker.Subscribe(ctx, chat.MessageChannel, w.Handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.log.Error().Err(err).Msg("subscription ended, resubscribing")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff):
		}
	}
}

// Handle processes one raw payload from the broker. The return value is the
// ack decision: nil acknowledges the payload. Malformed envelopes and store
// failures are logged and acknowledged; the at-least-once gap after a
// successful dequeue is an accepted tradeoff, so nothing is re-published.
func (w *FanoutWorker) Handle(ctx context.Context, payload []byte) error {
	var env chat.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		w.log.Warn().Err(err).Msg("dropping undecodable envelope")
		return nil
	}
	if err := env.Validate(); err != nil {
		w.log.Warn().Err(err).
			Str("sender", env.SenderID).
			Str("receiver", env.ReceiverID).
			Msg("dropping malformed envelope")
		return nil
	}

	msg, err := w.deliver.Execute(ctx, env)
	if err != nil {
		if errors.Is(err, usecase.ErrPersistence) {
			w.log.Error().Err(err).
				Str("sender", env.SenderID).
				Str("receiver", env.ReceiverID).
				Msg("message lost: persistence failed after dequeue")
		} else {
			w.log.Warn().Err(err).Msg("dropping rejected envelope")
		}
		return nil
	}

	// The delivery receipt is recorded before the frame is serialized so
	// live sessions see the same status as the store.
	if w.sessions.HasSessions(env.ReceiverID) {
		if err := w.advance.Execute(ctx, msg.ID, chat.MessageStatusDelivered); err != nil {
			w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to record delivery receipt")
		} else {
			msg.Status = chat.MessageStatusDelivered
		}
	}

	frame, err := json.Marshal(messageFrame{Type: "message", Message: toPayload(*msg)})
	if err != nil {
		w.log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to encode fan-out frame")
		return nil
	}

	delivered := w.sessions.BroadcastTo([]string{env.SenderID, env.ReceiverID}, frame)
	w.log.Debug().
		Str("message_id", msg.ID).
		Str("conversation_id", msg.ConversationID).
		Int("delivered", delivered).
		Msg("message fanned out")
	return nil
}

func toPayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    string(m.MsgType),
		Attachments:    m.Attachments,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}
