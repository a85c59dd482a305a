package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// uniqueViolation is the Postgres error code raised by the unique index on the
// sorted participant pair.
const uniqueViolation = "23505"

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (participant_low, participant_high, created_at)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, c.ParticipantLow, c.ParticipantHi, createdAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", repository.ErrConversationExists
		}
		return "", err
	}
	return id, nil
}

func (r *PgChatRepository) GetConversationByPair(ctx context.Context, low, high string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, participant_low, participant_high, created_at
		FROM conversations
		WHERE participant_low = $1 AND participant_high = $2
	`, low, high).Scan(&c.ID, &c.ParticipantLow, &c.ParticipantHi, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, msg_type, attachments, status, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, string(m.MsgType), m.Attachments, string(m.Status), m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int, oldestFirst bool) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id, content, msg_type, attachments, status, created_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at `+order+`
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1::uuid`,
		conversationID,
	).Scan(&n)
	return n, err
}

func (r *PgChatRepository) ListConversationsForSubject(ctx context.Context, subjectID string) ([]chat.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.participant_low, c.participant_high, c.created_at,
		       m.id::text, m.sender_id, m.content, m.msg_type, m.attachments, m.status, m.created_at
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, msg_type, attachments, status, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		WHERE c.participant_low = $1 OR c.participant_high = $1
		ORDER BY c.created_at DESC
	`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.ConversationSummary
	for rows.Next() {
		var (
			s           chat.ConversationSummary
			msgID       *string
			senderID    *string
			content     *string
			msgType     *string
			attachments []string
			status      *string
			createdAt   *time.Time
		)
		if err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.ParticipantLow, &s.Conversation.ParticipantHi, &s.Conversation.CreatedAt,
			&msgID, &senderID, &content, &msgType, &attachments, &status, &createdAt,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			s.LastMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: s.Conversation.ID,
				SenderID:       *senderID,
				Content:        *content,
				MsgType:        chat.MessageType(*msgType),
				Attachments:    attachments,
				Status:         chat.MessageStatus(*status),
				CreatedAt:      *createdAt,
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) AdvanceMessageStatus(ctx context.Context, messageID string, next chat.MessageStatus) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	var current string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM messages WHERE id = $1::uuid`,
		messageID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	if !chat.MessageStatus(current).CanAdvance(next) {
		return chat.ErrStatusRegression
	}
	// Guarded by the current value so a concurrent advance cannot regress.
	_, err = r.pool.Exec(ctx,
		`UPDATE messages SET status = $3 WHERE id = $1::uuid AND status = $2`,
		messageID, current, string(next),
	)
	return err
}

func scanMessage(rows pgx.Rows) (chat.Message, error) {
	var (
		m       chat.Message
		msgType string
		status  string
	)
	if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &msgType, &m.Attachments, &status, &m.CreatedAt); err != nil {
		return chat.Message{}, err
	}
	m.MsgType = chat.MessageType(msgType)
	m.Status = chat.MessageStatus(status)
	return m, nil
}
