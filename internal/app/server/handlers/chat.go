package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/services"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/middleware"

	"github.com/google/uuid"
)

// ChatHandler serves the REST surface of the messaging core: room listings,
// pending request management, history and read state. All routes sit behind
// the auth middleware.
type ChatHandler struct {
	log      *slog.Logger
	convs    *services.ConversationService
	messages *services.MessageService
}

func NewChatHandler(log *slog.Logger, convs *services.ConversationService, messages *services.MessageService) *ChatHandler {
	return &ChatHandler{log: log, convs: convs, messages: messages}
}

type roomResponse struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	Name          string     `json:"name,omitempty"`
	Members       []string   `json:"members"`
	IsPending     bool       `json:"is_pending"`
	LastMessageID *uuid.UUID `json:"last_message_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toRoom(c *domain.Conversation) roomResponse {
	out := roomResponse{
		ID:        c.ID,
		Type:      string(c.Kind),
		Name:      c.Name,
		Members:   c.Members,
		IsPending: c.IsPending,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.LastMessageID != uuid.Nil {
		id := c.LastMessageID
		out.LastMessageID = &id
	}
	return out
}

func (h *ChatHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	convs, err := h.convs.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rooms := make([]roomResponse, 0, len(convs))
	for i := range convs {
		rooms = append(rooms, toRoom(&convs[i]))
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *ChatHandler) CreatePrivate(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var in struct {
		ReceiverID string `json:"receiver_id"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	conv, err := h.convs.GetOrCreatePrivate(r.Context(), userID, in.ReceiverID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoom(conv))
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var in struct {
		Name      string   `json:"name"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	conv, err := h.convs.CreateGroup(r.Context(), userID, in.MemberIDs, in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoom(conv))
}

func (h *ChatHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var in struct {
		RoomID    string   `json:"room_id"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	roomID, err := parseRoomID(in.RoomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.requireMember(w, r, roomID, userID); err != nil {
		return
	}
	conv, err := h.convs.AddMembers(r.Context(), roomID, in.MemberIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoom(conv))
}

func (h *ChatHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var in struct {
		RoomID   string `json:"room_id"`
		MemberID string `json:"member_id"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	roomID, err := parseRoomID(in.RoomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.requireMember(w, r, roomID, userID); err != nil {
		return
	}
	conv, err := h.convs.RemoveMember(r.Context(), roomID, in.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoom(conv))
}

func (h *ChatHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	reqs, err := h.convs.ListPendingRequests(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *ChatHandler) AcceptPending(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	roomID, err := roomIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.convs.AcceptPending(r.Context(), roomID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *ChatHandler) RejectPending(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	roomID, err := roomIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.convs.RejectPending(r.Context(), roomID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	roomID, err := roomIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.requireMember(w, r, roomID, userID); err != nil {
		return
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 30)
	msgs, err := h.messages.List(r.Context(), roomID, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]domain.MessageEvent, 0, len(msgs))
	for i := range msgs {
		out = append(out, domain.NewMessageEvent(&msgs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	var in struct {
		RoomID string `json:"room_id"`
	}
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	roomID, err := parseRoomID(in.RoomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.requireMember(w, r, roomID, userID); err != nil {
		return
	}
	if err := h.messages.MarkRead(r.Context(), roomID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	roomID, err := roomIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.requireMember(w, r, roomID, userID); err != nil {
		return
	}
	count, err := h.messages.UnreadCount(r.Context(), roomID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// requireMember loads the room and rejects non-members. On failure the
// response is already written and a non-nil error tells the caller to stop.
func (h *ChatHandler) requireMember(w http.ResponseWriter, r *http.Request, roomID uuid.UUID, userID string) error {
	conv, err := h.convs.FindByID(r.Context(), roomID)
	if err != nil {
		writeError(w, r, err)
		return err
	}
	if !conv.HasMember(userID) {
		writeError(w, r, domain.ErrPermissionDenied)
		return domain.ErrPermissionDenied
	}
	return nil
}

func roomIDFromPath(r *http.Request) (uuid.UUID, error) {
	return parseRoomID(r.PathValue("roomID"))
}

func parseRoomID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidConversationID
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
