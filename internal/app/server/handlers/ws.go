package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/TruyenGau/sosialNetwork-backend/internal/app/registry"
	"github.com/TruyenGau/sosialNetwork-backend/internal/app/server/ws"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/services"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WSHandler struct {
	log      *slog.Logger
	hub      *registry.Registry
	convs    *services.ConversationService
	messages *services.MessageService
}

func NewWSHandler(
	log *slog.Logger,
	hub *registry.Registry,
	convs *services.ConversationService,
	messages *services.MessageService,
) *WSHandler {
	return &WSHandler{
		log:      log,
		hub:      hub,
		convs:    convs,
		messages: messages,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten later
	},
}

// Handler upgrades the authenticated request and runs the connection's event
// loop. Events on one connection are handled one at a time; connections run
// concurrently.
func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		log.ErrorContext(r.Context(), "ws handler - missing user id after auth")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", logging.Err(err))
		return
	}

	// The session outlives the upgrade request.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()

	socket := ws.NewWebSocket(ctx, conn, log)
	client := ws.NewClient(ctx, socket, uuid.NewString(), userID)

	h.hub.Register(client)
	defer h.hub.Unregister(client)
	defer client.Close()

	log.InfoContext(ctx, "ws handler - connection established",
		logging.User(userID), logging.Connection(client.ID()))

	socket.ReadLoop(func(data []byte) {
		h.handleEvent(ctx, client, data)
	})

	log.InfoContext(ctx, "ws handler - connection closed",
		logging.User(userID), logging.Connection(client.ID()))
}

func (h *WSHandler) handleEvent(ctx context.Context, client contracts.Client, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendError(ctx, client, "malformed event")
		return
	}
	switch env.Event {
	case domain.EventJoinPrivate, domain.EventJoinGroup:
		h.handleJoin(ctx, client, env.Data)
	case domain.EventLeaveRoom:
		h.hub.Unsubscribe(client)
	case domain.EventSendMessage:
		h.handleSendMessage(ctx, client, env.Data)
	case domain.EventSendGroupMessage:
		h.handleSendGroupMessage(ctx, client, env.Data)
	default:
		h.sendError(ctx, client, "unknown event")
	}
}

func (h *WSHandler) handleJoin(ctx context.Context, client contracts.Client, data json.RawMessage) {
	var in domain.JoinRoomPayload
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" {
		h.sendError(ctx, client, "room_id required")
		return
	}
	roomID, err := uuid.Parse(in.RoomID)
	if err != nil {
		h.sendError(ctx, client, "invalid room_id")
		return
	}
	conv, err := h.convs.FindByID(ctx, roomID)
	if err != nil {
		h.sendError(ctx, client, "room not found")
		return
	}
	if !conv.HasMember(client.UserID()) {
		h.sendError(ctx, client, "you are not a member")
		return
	}

	h.hub.Subscribe(client, in.RoomID)
	h.push(ctx, client, domain.EventJoinedRoom, domain.JoinedRoomEvent{RoomID: in.RoomID})

	if conv.Kind == domain.KindGroup {
		frame, err := domain.EncodeEvent(domain.EventMemberJoined, domain.MemberJoinedEvent{
			RoomID: in.RoomID,
			UserID: client.UserID(),
		})
		if err != nil {
			return
		}
		for _, c := range h.hub.RoomConnections(in.RoomID) {
			if c.UserID() == client.UserID() {
				continue
			}
			_ = c.Send(ctx, frame)
		}
	}
}

func (h *WSHandler) handleSendMessage(ctx context.Context, client contracts.Client, data json.RawMessage) {
	var in domain.SendMessagePayload
	if err := json.Unmarshal(data, &in); err != nil || in.ReceiverID == "" || in.Content == "" {
		h.sendError(ctx, client, "receiver_id and content required")
		return
	}
	conv, err := h.convs.GetOrCreatePrivate(ctx, client.UserID(), in.ReceiverID)
	if err != nil {
		h.sendError(ctx, client, userMessage(err))
		return
	}
	if _, err := h.messages.Send(ctx, client.UserID(), conv.ID, in.Type, in.Content); err != nil {
		h.sendError(ctx, client, userMessage(err))
	}
}

func (h *WSHandler) handleSendGroupMessage(ctx context.Context, client contracts.Client, data json.RawMessage) {
	var in domain.SendGroupMessagePayload
	if err := json.Unmarshal(data, &in); err != nil || in.RoomID == "" || in.Content == "" {
		h.sendError(ctx, client, "room_id and content required")
		return
	}
	roomID, err := uuid.Parse(in.RoomID)
	if err != nil {
		h.sendError(ctx, client, "invalid room_id")
		return
	}
	if _, err := h.messages.Send(ctx, client.UserID(), roomID, in.Type, in.Content); err != nil {
		h.sendError(ctx, client, userMessage(err))
	}
}

// sendError reports a recoverable failure to the originating connection only.
// The connection stays open.
func (h *WSHandler) sendError(ctx context.Context, client contracts.Client, msg string) {
	h.push(ctx, client, domain.EventError, domain.ErrorEvent{Message: msg})
}

func (h *WSHandler) push(ctx context.Context, client contracts.Client, event string, payload any) {
	frame, err := domain.EncodeEvent(event, payload)
	if err != nil {
		h.log.ErrorContext(ctx, "ws handler - encode failed", logging.Err(err))
		return
	}
	_ = client.Send(ctx, frame)
}
