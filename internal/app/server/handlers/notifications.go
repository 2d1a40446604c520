package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/services"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/middleware"

	"github.com/google/uuid"
)

type NotificationHandler struct {
	log      *slog.Logger
	notifs   *services.NotificationService
	presence *services.PresenceService
}

func NewNotificationHandler(log *slog.Logger, notifs *services.NotificationService, presence *services.PresenceService) *NotificationHandler {
	return &NotificationHandler{log: log, notifs: notifs, presence: presence}
}

type notificationResponse struct {
	ID        uuid.UUID               `json:"id"`
	FromID    string                  `json:"from_id"`
	Type      domain.NotificationType `json:"type"`
	RoomID    string                  `json:"room_id,omitempty"`
	Content   string                  `json:"content"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

func toNotification(n *domain.Notification) notificationResponse {
	out := notificationResponse{
		ID:        n.ID,
		FromID:    n.FromID,
		Type:      n.Type,
		Content:   n.Content,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.ConversationID != uuid.Nil {
		out.RoomID = n.ConversationID.String()
	}
	return out
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	notifs, err := h.notifs.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifs))
	for i := range notifs {
		out = append(out, toNotification(&notifs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("notificationID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
		return
	}
	if err := h.notifs.MarkRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.presence.OnlineUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"online": users})
}
