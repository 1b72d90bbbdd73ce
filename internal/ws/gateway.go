package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"amora-service/internal/models"
	"amora-service/internal/notifications"
	"amora-service/internal/observability"
	"amora-service/internal/repositories"
)

// TokenVerifier resolves a handshake credential to a verified user id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway owns the realtime channel: it authenticates handshakes,
// registers connections in the hub, and dispatches inbound envelopes to
// the message store or the signaling relay.
type Gateway struct {
	hub      *Hub
	messages repositories.MessageRepository
	verifier TokenVerifier
	notifier notifications.Publisher
}

// NewGateway constructs a Gateway.
func NewGateway(hub *Hub, messages repositories.MessageRepository, verifier TokenVerifier, notifier notifications.Publisher) *Gateway {
	return &Gateway{hub: hub, messages: messages, verifier: verifier, notifier: notifier}
}

// Handle upgrades the connection, binds it to the verified user identity
// and starts the pump pair. The identity always comes from the verified
// credential, never from a client-supplied parameter.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("amora-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := g.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newClient(g.hub, conn, userID)
	g.hub.Register(client)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	go func() {
		client.writePump()
		observability.IncWSEvent("ws_disconnect")
	}()
	go func() {
		client.readPump(g)
		observability.DecWSActive()
	}()
}

func (g *Gateway) validateToken(header string) (uuid.UUID, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return g.verifier.Verify(parts[1])
	}
	return uuid.Nil, fmt.Errorf("invalid token")
}

// dispatch classifies one inbound envelope and routes it. Runs on the
// read pump, so processing per connection is strictly sequential.
func (g *Gateway) dispatch(ctx context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed envelope")
		return
	}

	switch env.Event {
	case EventSendMessage:
		g.handleSendMessage(ctx, c, env.Data)
	case EventWebRtcSignal:
		g.handleWebRtcSignal(c, env.Data)
	case EventSystemEvent:
		// Opaque system events (anti-screenshot and the like) are
		// forwarded verbatim to every connection.
		observability.IncWSEvent("system_event")
		g.hub.Broadcast(raw)
	default:
		c.sendError("unknown event: " + env.Event)
	}
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var req SendMessagePayload
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("malformed SendMessage payload")
		return
	}
	if req.ConversationID == uuid.Nil {
		c.sendError("conversation_id is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.sendError("content must not be empty")
		return
	}

	msg := models.NewMessage(req.ConversationID, c.userID, req.Content, models.ParseMessageType(req.MessageType))
	msg.ReplyToID = req.ReplyToID
	if req.SelfDestructInSeconds != nil {
		var err error
		msg, err = msg.WithSelfDestruct(*req.SelfDestructInSeconds)
		if err != nil {
			c.sendError("self_destruct_in_seconds must be positive")
			return
		}
	}

	stored, err := g.messages.CreateMessage(ctx, msg)
	if err != nil {
		log.Printf("store message failed: %v", err)
		c.sendError("failed to store message")
		return
	}
	observability.IncWSEvent("message_created")

	frame, err := MarshalEnvelope(EventMessage, stored)
	if err != nil {
		log.Printf("marshal message frame failed: %v", err)
		return
	}
	g.hub.Broadcast(frame)

	if g.notifier != nil {
		// Best effort; push failures never affect the sender.
		_ = g.notifier.Publish(ctx, "notifications.message", notifications.NewMessageCreatedEvent(stored))
	}
}

func (g *Gateway) handleWebRtcSignal(c *Client, data json.RawMessage) {
	var signal WebRtcSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		c.sendError("malformed WebRtcSignal payload")
		return
	}
	if !validSignalType(signal.Type) {
		c.sendError("unknown signal type: " + signal.Type)
		return
	}
	if signal.TargetUserID == uuid.Nil {
		c.sendError("target_user_id is required")
		return
	}

	signal.SenderUserID = c.userID
	frame, err := MarshalEnvelope(EventWebRtcSignal, signal)
	if err != nil {
		log.Printf("marshal signal frame failed: %v", err)
		return
	}
	observability.IncWSEvent("webrtc_signal")
	g.hub.SendToUser(signal.TargetUserID, frame)
}
