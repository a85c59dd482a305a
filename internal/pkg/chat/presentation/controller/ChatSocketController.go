package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	authport "github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
	"github.com/amantiwari57/freelance-backend/internal/infrastructure/realtime"
)

const defaultReadTimeout = 60 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Clients connect from browser origins we don't control.
		return true
	},
}

// ChatSocketController handles the realtime handshake. Authentication happens
// before registration: a session that fails verification is closed with a
// policy-violation code and never enters the registry.
type ChatSocketController struct {
	Verifier authport.Verifier
	Registry *realtime.Registry
	log      zerolog.Logger
}

func NewChatSocketController(verifier authport.Verifier, registry *realtime.Registry, log zerolog.Logger) *ChatSocketController {
	return &ChatSocketController{
		Verifier: verifier,
		Registry: registry,
		log:      log.With().Str("component", "chat-socket").Logger(),
	}
}

type ackFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
}

// Handle upgrades the HTTP connection, authenticates the credential from the
// token query parameter (or Authorization header) and keeps the session
// registered until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = extractBearerToken(c)
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		subjectID, err := ctl.Verifier.Verify(token)
		if err != nil {
			ctl.log.Warn().Err(err).Msg("websocket auth failed")
			deadline := time.Now().Add(time.Second)
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"), deadline)
			_ = ws.Close()
			return
		}

		conn := realtime.NewConnection(subjectID, ws)
		conn.Start()
		ctl.Registry.Register(conn)
		defer func() {
			ctl.Registry.Unregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected", SessionID: conn.ID()}); err == nil {
			_ = conn.Send(payload)
		}

		// The channel is delivery-only: inbound frames are drained for
		// keepalive and close detection, never interpreted.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.log.Debug().Err(err).Str("subject", subjectID).Msg("websocket read ended")
				}
				return
			}
		}
	}
}
