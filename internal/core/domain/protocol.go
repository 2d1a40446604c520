package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Inbound events carried over the duplex connection.
const (
	EventJoinPrivate      = "join_private"
	EventJoinGroup        = "join_group"
	EventLeaveRoom        = "leave_room"
	EventSendMessage      = "send_message"
	EventSendGroupMessage = "send_group_message"
)

// Outbound events pushed by the server.
const (
	EventReceiveMessage      = "receive_message"
	EventReceiveGroupMessage = "receive_group_message"
	EventMessageNotif        = "new_message_notification"
	EventGroupMessageNotif   = "new_group_message_notification"
	EventJoinedRoom          = "joined_room"
	EventMemberJoined        = "member_joined"
	EventNotification        = "notification"
	EventError               = "error"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent frames data into an envelope ready for a connection push.
func EncodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"room_id,omitempty"`
}

type SendMessagePayload struct {
	ReceiverID string      `json:"receiver_id"`
	Content    string      `json:"content"`
	Type       MessageKind `json:"type,omitempty"`
}

type SendGroupMessagePayload struct {
	RoomID  string      `json:"room_id"`
	Content string      `json:"content"`
	Type    MessageKind `json:"type,omitempty"`
}

// MessageEvent is the full payload delivered to every live connection of
// every conversation member.
type MessageEvent struct {
	ID             uuid.UUID   `json:"id"`
	RoomID         uuid.UUID   `json:"room_id"`
	SenderID       string      `json:"sender_id"`
	SenderName     string      `json:"sender_name,omitempty"`
	SenderAvatar   string      `json:"sender_avatar,omitempty"`
	Seq            int64       `json:"seq"`
	Type           MessageKind `json:"type"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

func NewMessageEvent(m *Message) MessageEvent {
	return MessageEvent{
		ID:           m.ID,
		RoomID:       m.ConversationID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Seq:          m.Seq,
		Type:         m.Kind,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
	}
}

// NotificationEvent is the lightweight alert pushed to members who are
// connected but not viewing the conversation.
type NotificationEvent struct {
	ID        uuid.UUID        `json:"id"`
	RoomID    string           `json:"room_id,omitempty"`
	SenderID  string           `json:"sender_id"`
	Type      NotificationType `json:"type"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
}

type JoinedRoomEvent struct {
	RoomID string `json:"room_id"`
}

type MemberJoinedEvent struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// ErrorEvent is non-fatal: it is reported to the originating connection only
// and never closes it.
type ErrorEvent struct {
	Message string `json:"message"`
}
