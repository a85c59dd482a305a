package usecase

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	cacheport "github.com/amantiwari57/freelance-backend/internal/infrastructure/cache/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
	repository "github.com/amantiwari57/freelance-backend/internal/pkg/chat/persistence/repository/port"
)

// fakeRepo is an in-memory ChatRepository with hooks for failure injection.
type fakeRepo struct {
	mu            sync.Mutex
	conversations map[string]chat.Conversation // keyed low + "|" + high
	messages      []chat.Message
	nextID        int

	getPairCalls int
	createCalls  int

	beforeCreate func(r *fakeRepo) error // optional; non-nil return aborts the insert
	getErr       error
	saveErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{conversations: make(map[string]chat.Conversation)}
}

func pairKey(low, high string) string { return low + "|" + high }

func (r *fakeRepo) genID(prefix string) string {
	r.nextID++
	return prefix + "-" + strconv.Itoa(r.nextID)
}

func (r *fakeRepo) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.beforeCreate != nil {
		if err := r.beforeCreate(r); err != nil {
			return "", err
		}
	}
	key := pairKey(c.ParticipantLow, c.ParticipantHi)
	if _, ok := r.conversations[key]; ok {
		return "", repository.ErrConversationExists
	}
	c.ID = r.genID("conv")
	r.conversations[key] = c
	return c.ID, nil
}

func (r *fakeRepo) GetConversationByPair(ctx context.Context, low, high string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getPairCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.conversations[pairKey(low, high)]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	return &c, nil
}

func (r *fakeRepo) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return "", r.saveErr
	}
	m.ID = r.genID("msg")
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *fakeRepo) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int, oldestFirst bool) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []chat.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if oldestFirst {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeRepo) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) ListConversationsForSubject(ctx context.Context, subjectID string) ([]chat.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.ConversationSummary
	for _, c := range r.conversations {
		if !c.Includes(subjectID) {
			continue
		}
		s := chat.ConversationSummary{Conversation: c}
		for i := range r.messages {
			m := r.messages[i]
			if m.ConversationID != c.ID {
				continue
			}
			if s.LastMessage == nil || m.CreatedAt.After(s.LastMessage.CreatedAt) {
				s.LastMessage = &m
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) AdvanceMessageStatus(ctx context.Context, messageID string, next chat.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID != messageID {
			continue
		}
		if !r.messages[i].Status.CanAdvance(next) {
			return chat.ErrStatusRegression
		}
		r.messages[i].Status = next
		return nil
	}
	return repository.ErrMessageNotFound
}

var _ repository.ChatRepository = (*fakeRepo)(nil)

// fakeCache is an in-memory cacheport.Cache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

var _ cacheport.Cache = (*fakeCache)(nil)
