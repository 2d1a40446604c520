package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository exposes the slice of the profile store this core touches:
// display attributes for message enrichment and the durable presence flag.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// SetOnline flips the profile flag and stamps last_active_at. Presence is
	// best-effort: callers treat failures as log-and-continue.
	SetOnline(ctx context.Context, id string, online bool) error
}

// ConversationRepository handles room lifecycle and membership.
type ConversationRepository interface {
	// FindPrivateByPair looks up the unique private room for the unordered
	// pair. Returns (nil, nil) when absent.
	FindPrivateByPair(ctx context.Context, userA, userB string) (*Conversation, error)
	// CreatePrivate inserts the room under the pair's unique key. When a
	// concurrent create wins the race, the winner's row is returned, so two
	// racing first contacts resolve to one conversation.
	CreatePrivate(ctx context.Context, conv *Conversation) (*Conversation, error)
	CreateGroup(ctx context.Context, conv *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	AddMembers(ctx context.Context, id uuid.UUID, memberIDs []string) error
	RemoveMember(ctx context.Context, id uuid.UUID, memberID string) error
	// MarkPendingResolved clears the pending state. Idempotent: resolving an
	// already-resolved room is a no-op.
	MarkPendingResolved(ctx context.Context, id uuid.UUID) error
	// ListForUser returns the user's rooms ordered by most recent activity,
	// excluding private rooms still awaiting this user's approval.
	ListForUser(ctx context.Context, userID string) ([]Conversation, error)
	// ListPendingForUser returns private rooms awaiting this user's approval.
	ListPendingForUser(ctx context.Context, userID string) ([]Conversation, error)
}

// MessageRepository handles persistence and guaranteed ordering.
type MessageRepository interface {
	// SaveWithSequence assigns the next per-conversation sequence number,
	// inserts the message and advances the room's last-message pointer in one
	// transaction. Returns the assigned sequence.
	SaveWithSequence(ctx context.Context, msg *Message) (int64, error)
	// ListPage returns up to limit messages newest-first starting at offset,
	// enriched with sender display attributes.
	ListPage(ctx context.Context, convID uuid.UUID, limit, offset int) ([]Message, error)
	LastMessage(ctx context.Context, convID uuid.UUID) (*Message, error)
	// MarkRead adds readerID to the read set of every message in the room not
	// already containing it. Idempotent, no error on empty effect.
	MarkRead(ctx context.Context, convID uuid.UUID, readerID string) error
	UnreadCount(ctx context.Context, convID uuid.UUID, readerID string) (int, error)
}

// NotificationRepository handles the durable notification store.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, recipientID string) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
