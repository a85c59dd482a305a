package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	brokerport "github.com/amantiwari57/freelance-backend/internal/infrastructure/broker/port"
	chat "github.com/amantiwari57/freelance-backend/internal/pkg/chat/application/domain"
)

type fakeVerifier struct {
	subject string
	err     error
}

func (v *fakeVerifier) Verify(token string) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.subject, nil
}

type fakeBroker struct {
	mu         sync.Mutex
	published  [][]byte
	channels   []string
	publishErr error
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.channels = append(b.channels, channel)
	b.published = append(b.published, payload)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string, h brokerport.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *fakeBroker) Close() error { return nil }

func newSendRouter(verifier authport.Verifier, broker brokerport.Broker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/send", NewSendMessageController(verifier, broker).Handle())
	return r
}

func doSend(r *gin.Engine, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessageAccepted(t *testing.T) {
	broker := &fakeBroker{}
	r := newSendRouter(&fakeVerifier{subject: "u1"}, broker)

	before := time.Now().UTC()
	w := doSend(r, "Bearer good", `{"receiverId":"u2","content":"hi","messageType":"text"}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, broker.published, 1, "exactly one publish per accepted call")
	assert.Equal(t, []string{chat.MessageChannel}, broker.channels)

	var env chat.Envelope
	require.NoError(t, json.Unmarshal(broker.published[0], &env))
	assert.Equal(t, "u1", env.SenderID)
	assert.Equal(t, "u2", env.ReceiverID)
	assert.Equal(t, "hi", env.Content)
	assert.Equal(t, chat.MessageTypeText, env.MessageType)
	assert.False(t, env.Timestamp.Before(before), "envelope carries the submission timestamp")
}

func TestSendMessageWithAttachments(t *testing.T) {
	broker := &fakeBroker{}
	r := newSendRouter(&fakeVerifier{subject: "u1"}, broker)

	w := doSend(r, "Bearer good",
		`{"receiverId":"u2","content":"see files","messageType":"file","attachments":["s3://a","s3://b"]}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	var env chat.Envelope
	require.NoError(t, json.Unmarshal(broker.published[0], &env))
	assert.Equal(t, []string{"s3://a", "s3://b"}, env.Attachments)
}

func TestSendMessageUnauthorized(t *testing.T) {
	tests := []struct {
		name     string
		verifier *fakeVerifier
		auth     string
	}{
		{name: "missing header", verifier: &fakeVerifier{subject: "u1"}, auth: ""},
		{name: "not bearer", verifier: &fakeVerifier{subject: "u1"}, auth: "Basic abc"},
		{name: "rejected token", verifier: &fakeVerifier{err: authport.ErrInvalidToken}, auth: "Bearer bad"},
		{name: "expired token", verifier: &fakeVerifier{err: authport.ErrExpiredToken}, auth: "Bearer old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{}
			r := newSendRouter(tt.verifier, broker)

			w := doSend(r, tt.auth, `{"receiverId":"u2","content":"hi","messageType":"text"}`)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, broker.published, "rejected requests must not publish")
		})
	}
}

func TestSendMessageInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing receiver", body: `{"content":"hi","messageType":"text"}`},
		{name: "missing content", body: `{"receiverId":"u2","messageType":"text"}`},
		{name: "whitespace content", body: `{"receiverId":"u2","content":"   ","messageType":"text"}`},
		{name: "missing type", body: `{"receiverId":"u2","content":"hi"}`},
		{name: "bogus type", body: `{"receiverId":"u2","content":"hi","messageType":"bogus"}`},
		{name: "non-string attachments", body: `{"receiverId":"u2","content":"hi","messageType":"text","attachments":[1,2]}`},
		{name: "self receiver", body: `{"receiverId":"u1","content":"hi","messageType":"text"}`},
		{name: "not json", body: `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{}
			r := newSendRouter(&fakeVerifier{subject: "u1"}, broker)

			w := doSend(r, "Bearer good", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, broker.published, "rejected requests must not publish")
		})
	}
}

func TestSendMessageDeliveryFailed(t *testing.T) {
	broker := &fakeBroker{publishErr: errors.New("broker down")}
	r := newSendRouter(&fakeVerifier{subject: "u1"}, broker)

	w := doSend(r, "Bearer good", `{"receiverId":"u2","content":"hi","messageType":"text"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
