package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationKind string

const (
	KindPrivate ConversationKind = "private"
	KindGroup   ConversationKind = "group"
)

type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageVideo MessageKind = "video"
)

// ValidMessageKind reports whether k is one of the supported payload kinds.
// An empty kind is normalized to text by the caller before validation.
func ValidMessageKind(k MessageKind) bool {
	switch k {
	case MessageText, MessageImage, MessageVideo:
		return true
	}
	return false
}

type NotificationType string

const (
	NotifChatPrivate NotificationType = "CHAT_PRIVATE"
	NotifChatGroup   NotificationType = "CHAT_GROUP"
	NotifLike        NotificationType = "LIKE"
	NotifComment     NotificationType = "COMMENT"
	NotifGroupInvite NotificationType = "GROUP_INVITE"
)

// User carries the minimal profile attributes this core reads: display
// denormalization for enriched messages plus the durable presence flag.
// Full profile CRUD lives outside the messaging core.
type User struct {
	ID           string
	Name         string
	Avatar       string
	Online       bool
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// Conversation is a private (2-party) or group (N-party) message thread.
// A private conversation created before the recipient follows the sender is
// pending: hidden from the recipient's room list until they accept or reply.
type Conversation struct {
	ID              uuid.UUID
	Kind            ConversationKind
	Name            string // group only
	Members         []string
	IsPending       bool
	PendingApprover string // user who must accept; empty when not pending
	LastMessageID   uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasMember reports whether userID belongs to the conversation.
func (c *Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Message is immutable once persisted except for its read set. Seq is the
// per-conversation monotonic counter assigned by the store, never by the
// dispatcher: two senders in the same conversation may race.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       string
	Seq            int64
	Kind           MessageKind
	Content        string
	CreatedAt      time.Time

	// Denormalized at read time from the sender's profile.
	SenderName   string
	SenderAvatar string
}

// Notification is the durable record created for members not actively viewing
// the conversation a message landed in, and for non-chat producers.
type Notification struct {
	ID             uuid.UUID
	RecipientID    string
	FromID         string
	Type           NotificationType
	ConversationID uuid.UUID // zero for non-chat types
	Content        string    // snapshot, not a reference
	IsRead         bool
	CreatedAt      time.Time
}

// PendingRequest is the surfaced view of an unapproved incoming private
// conversation: who sent it and what the latest message said.
type PendingRequest struct {
	ConversationID uuid.UUID `json:"room_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	SenderAvatar   string    `json:"sender_avatar"`
	LastMessage    string    `json:"last_message"`
	LastMessageAt  time.Time `json:"last_message_at"`
}
