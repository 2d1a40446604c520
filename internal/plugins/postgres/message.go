package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

/*
	-- Messages
	CREATE TABLE messages (
		id              UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id),
		sender_id       TEXT NOT NULL REFERENCES users(id),
		seq             BIGINT NOT NULL,
		kind            TEXT NOT NULL DEFAULT 'text',
		content         TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (conversation_id, seq)
	);

	CREATE TABLE message_reads (
		message_id UUID NOT NULL REFERENCES messages(id),
		user_id    TEXT NOT NULL REFERENCES users(id),
		PRIMARY KEY (message_id, user_id)
	);
*/

// SaveWithSequence assigns the next per-conversation sequence, inserts the
// message and advances the room's last-message pointer. The sequence row is
// updated first so concurrent senders serialize on it and ordering follows
// the store, not arrival order.
func (r *MessageRepo) SaveWithSequence(ctx context.Context, msg *domain.Message) (int64, error) {
	if msg.ConversationID == uuid.Nil {
		return 0, domain.ErrInvalidConversationID
	}
	exec := GetExecutor(ctx, r.db)
	var seq int64
	err := exec.QueryRowContext(ctx, `
		UPDATE conversation_sequences
		SET last_seq = last_seq + 1
		WHERE conversation_id = $1
		RETURNING last_seq
	`, msg.ConversationID).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrSequenceNotInitialized
		}
		return 0, err
	}
	if err := exec.QueryRowContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, seq, kind, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		seq,
		msg.Kind,
		msg.Content,
	).Scan(&msg.CreatedAt); err != nil {
		return 0, err
	}
	if _, err := exec.ExecContext(ctx, `
		UPDATE conversations
		SET last_message_id = $2, updated_at = now()
		WHERE id = $1
	`, msg.ConversationID, msg.ID); err != nil {
		return 0, err
	}
	return seq, nil
}

// ListPage returns up to limit messages newest-first, joined with the
// sender's display attributes. The caller reverses the page for rendering.
func (r *MessageRepo) ListPage(ctx context.Context, convID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	if convID == uuid.Nil {
		return nil, domain.ErrInvalidConversationID
	}
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.seq, m.kind, m.content, m.created_at,
		       COALESCE(u.name, ''), COALESCE(u.avatar, '')
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.seq DESC
		LIMIT $2 OFFSET $3
	`, convID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.Seq,
			&m.Kind,
			&m.Content,
			&m.CreatedAt,
			&m.SenderName,
			&m.SenderAvatar,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepo) LastMessage(ctx context.Context, convID uuid.UUID) (*domain.Message, error) {
	msgs, err := r.ListPage(ctx, convID, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[0], nil
}

// MarkRead is an anti-join insert: every message in the room the reader has
// not read yet gains a read row. Running it twice changes nothing.
func (r *MessageRepo) MarkRead(ctx context.Context, convID uuid.UUID, readerID string) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO message_reads (message_id, user_id)
		SELECT m.id, $2
		FROM messages m
		WHERE m.conversation_id = $1
		ON CONFLICT DO NOTHING
	`, convID, readerID)
	return err
}

func (r *MessageRepo) UnreadCount(ctx context.Context, convID uuid.UUID, readerID string) (int, error) {
	exec := GetExecutor(ctx, r.db)
	var n int
	err := exec.QueryRowContext(ctx, `
		SELECT count(*)
		FROM messages m
		WHERE m.conversation_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads r
			WHERE r.message_id = m.id AND r.user_id = $2
		  )
	`, convID, readerID).Scan(&n)
	return n, err
}
