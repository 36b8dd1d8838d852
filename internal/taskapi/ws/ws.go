// Package ws serves GraphQL subscriptions over WebSocket using the
// graphql-transport-ws protocol.
//
// The subscriber's identity comes from the Authorization header the gateway
// bridge synthesized onto the upgrade request, or from the connection_init
// payload. The claims are decoded without signature verification: the edge is
// the trust boundary here. A connection with no usable credential is still
// accepted, but its subscriptions are tenant-less and never receive events.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/golang-jwt/jwt/v5"
	"github.com/graphql-go/graphql"

	"taskhub/internal/identity"
)

// graphql-transport-ws message types.
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type initPayload struct {
	Authorization string `json:"authorization"`
}

// Handler upgrades /graphql requests and runs subscription sessions.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

// NewHandler creates a subscription handler for the given schema.
func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

// ServeHTTP accepts the WebSocket connection and serves the session until
// the peer disconnects. Connections are never rejected for missing
// credentials.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uc := identityFromUpgrade(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"graphql-transport-ws", "graphql-ws"},
		// Origin policy is enforced at the gateway; behind the proxy the
		// browser Origin never matches this service's host.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s := &session{
		conn:   conn,
		schema: h.schema,
		logger: h.logger,
		uc:     uc,
		active: make(map[string]context.CancelFunc),
	}
	s.run(r.Context())
	conn.Close(websocket.StatusNormalClosure, "")
}

// session is one live subscription connection.
type session struct {
	conn   *websocket.Conn
	schema graphql.Schema
	logger *slog.Logger
	uc     *identity.UserContext

	writeMu sync.Mutex
	mu      sync.Mutex
	active  map[string]context.CancelFunc
}

func (s *session) run(parent context.Context) {
	// Cancelling this context tears down every operation the connection
	// opened, which deregisters their bus subscriptions.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, s.conn, &msg); err != nil {
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			if s.uc == nil {
				var p initPayload
				if err := json.Unmarshal(msg.Payload, &p); err == nil {
					s.uc = decodeBearer(p.Authorization)
				}
			}
			s.write(ctx, wsMessage{Type: msgConnectionAck})
		case msgPing:
			s.write(ctx, wsMessage{Type: msgPong})
		case msgSubscribe:
			s.startOperation(ctx, msg)
		case msgComplete:
			s.stopOperation(msg.ID)
		}
	}
}

func (s *session) startOperation(ctx context.Context, msg wsMessage) {
	var p subscribePayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Query == "" {
		s.writeError(ctx, msg.ID, "invalid subscribe payload")
		return
	}

	opCtx, cancel := context.WithCancel(ctx)
	if s.uc != nil {
		opCtx = identity.NewContext(opCtx, s.uc)
	}

	s.mu.Lock()
	if _, exists := s.active[msg.ID]; exists {
		s.mu.Unlock()
		cancel()
		s.writeError(ctx, msg.ID, "subscriber id already exists")
		return
	}
	s.active[msg.ID] = cancel
	s.mu.Unlock()

	results := graphql.Subscribe(graphql.Params{
		Schema:         s.schema,
		RequestString:  p.Query,
		VariableValues: p.Variables,
		OperationName:  p.OperationName,
		Context:        opCtx,
	})

	go func() {
		defer s.stopOperation(msg.ID)
		for res := range results {
			payload, err := json.Marshal(res)
			if err != nil {
				s.logger.Error("failed to encode subscription result", "error", err)
				continue
			}
			msgType := msgNext
			if res.HasErrors() && res.Data == nil {
				msgType = msgError
			}
			s.write(ctx, wsMessage{ID: msg.ID, Type: msgType, Payload: payload})
		}
		s.write(ctx, wsMessage{ID: msg.ID, Type: msgComplete})
	}()
}

func (s *session) stopOperation(id string) {
	s.mu.Lock()
	cancel, ok := s.active[id]
	if ok {
		delete(s.active, id)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *session) write(ctx context.Context, msg wsMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := wsjson.Write(ctx, s.conn, msg); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
	}
}

func (s *session) writeError(ctx context.Context, id, reason string) {
	payload, _ := json.Marshal([]map[string]string{{"message": reason}})
	s.write(ctx, wsMessage{ID: id, Type: msgError, Payload: payload})
}

// identityFromUpgrade decodes the credential the gateway bridge attached to
// the upgrade request. Returns nil for an unauthenticated connection.
func identityFromUpgrade(r *http.Request) *identity.UserContext {
	return decodeBearer(r.Header.Get("Authorization"))
}

// decodeBearer extracts claims from a bearer credential without verifying
// the signature; the gateway is trusted to have guarded the request path,
// and an unauthenticated connection is harmless (it receives no events).
func decodeBearer(header string) *identity.UserContext {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil
	}

	claims := &identity.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(raw), claims); err != nil {
		return nil
	}
	if claims.Subject == "" {
		return nil
	}
	return identity.FromClaims(claims)
}
