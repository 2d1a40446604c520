package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

/*
	-- Conversations
	CREATE TABLE conversations (
		id               UUID PRIMARY KEY,
		kind             TEXT NOT NULL CHECK (kind IN ('private', 'group')),
		name             TEXT,
		pair_key         TEXT,            -- least(a,b) || ':' || greatest(a,b), private only
		is_pending       BOOLEAN NOT NULL DEFAULT false,
		pending_approver TEXT REFERENCES users(id),
		last_message_id  UUID,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX conversations_pair_key ON conversations (pair_key)
		WHERE pair_key IS NOT NULL;

	CREATE TABLE conversation_members (
		conversation_id UUID NOT NULL REFERENCES conversations(id),
		user_id         TEXT NOT NULL REFERENCES users(id),
		joined_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (conversation_id, user_id)
	);

	CREATE TABLE conversation_sequences (
		conversation_id UUID PRIMARY KEY REFERENCES conversations(id),
		last_seq        BIGINT NOT NULL DEFAULT 0
	);
*/

// pairKey canonicalizes the unordered member pair so the unique index sees
// (a,b) and (b,a) as the same room.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func (r *ConversationRepo) FindPrivateByPair(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, kind, COALESCE(name, ''), is_pending, COALESCE(pending_approver, ''),
		       last_message_id, created_at, updated_at
		FROM conversations
		WHERE pair_key = $1
	`, pairKey(userA, userB))
	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadMembers(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// CreatePrivate inserts under the pair's unique key. ON CONFLICT DO NOTHING
// returns no row when a concurrent create won; the winner's row is read back
// so both racers end up holding the same conversation.
func (r *ConversationRepo) CreatePrivate(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	if len(conv.Members) != 2 {
		return nil, domain.ErrInvalidConversationID
	}
	exec := GetExecutor(ctx, r.db)
	key := pairKey(conv.Members[0], conv.Members[1])

	var id uuid.UUID
	err := exec.QueryRowContext(ctx, `
		INSERT INTO conversations (id, kind, pair_key, is_pending, pending_approver)
		VALUES ($1, 'private', $2, $3, NULLIF($4, ''))
		ON CONFLICT (pair_key) WHERE pair_key IS NOT NULL DO NOTHING
		RETURNING id
	`, conv.ID, key, conv.IsPending, conv.PendingApprover).Scan(&id)
	switch {
	case err == nil:
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO conversation_sequences (conversation_id, last_seq)
			VALUES ($1, 0)
		`, id); err != nil {
			return nil, err
		}
		for _, m := range conv.Members {
			if _, err := exec.ExecContext(ctx, `
				INSERT INTO conversation_members (conversation_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, m); err != nil {
				return nil, err
			}
		}
		return r.GetByID(ctx, id)

	case errors.Is(err, sql.ErrNoRows):
		// Lost the race; hand back the winner.
		existing, err := r.FindPrivateByPair(ctx, conv.Members[0], conv.Members[1])
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrConversationNotFound
		}
		return existing, nil

	default:
		return nil, err
	}
}

func (r *ConversationRepo) CreateGroup(ctx context.Context, conv *domain.Conversation) error {
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO conversations (id, kind, name)
		VALUES ($1, 'group', NULLIF($2, ''))
	`, conv.ID, conv.Name); err != nil {
		return err
	}
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO conversation_sequences (conversation_id, last_seq)
		VALUES ($1, 0)
	`, conv.ID); err != nil {
		return err
	}
	for _, m := range conv.Members {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO conversation_members (conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, conv.ID, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	exec := GetExecutor(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, kind, COALESCE(name, ''), is_pending, COALESCE(pending_approver, ''),
		       last_message_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id)
	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	if err := r.loadMembers(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *ConversationRepo) AddMembers(ctx context.Context, id uuid.UUID, memberIDs []string) error {
	exec := GetExecutor(ctx, r.db)
	for _, m := range memberIDs {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO conversation_members (conversation_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, id, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *ConversationRepo) RemoveMember(ctx context.Context, id uuid.UUID, memberID string) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		DELETE FROM conversation_members
		WHERE conversation_id = $1 AND user_id = $2
	`, id, memberID)
	return err
}

func (r *ConversationRepo) MarkPendingResolved(ctx context.Context, id uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	// Resolving an already-resolved room is a no-op.
	_, err := exec.ExecContext(ctx, `
		UPDATE conversations
		SET is_pending = false, pending_approver = NULL, updated_at = now()
		WHERE id = $1 AND is_pending
	`, id)
	return err
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT c.id, c.kind, COALESCE(c.name, ''), c.is_pending, COALESCE(c.pending_approver, ''),
		       c.last_message_id, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_members me ON me.conversation_id = c.id
		WHERE me.user_id = $1
		  AND (c.kind = 'group' OR NOT c.is_pending OR c.pending_approver <> $1)
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	convs, err := collectConversations(rows)
	if err != nil {
		return nil, err
	}
	return convs, r.fillMembers(ctx, convs)
}

func (r *ConversationRepo) ListPendingForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT c.id, c.kind, COALESCE(c.name, ''), c.is_pending, COALESCE(c.pending_approver, ''),
		       c.last_message_id, c.created_at, c.updated_at
		FROM conversations c
		WHERE c.kind = 'private' AND c.is_pending AND c.pending_approver = $1
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	convs, err := collectConversations(rows)
	if err != nil {
		return nil, err
	}
	return convs, r.fillMembers(ctx, convs)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var c domain.Conversation
	var lastMsg uuid.NullUUID
	if err := row.Scan(
		&c.ID,
		&c.Kind,
		&c.Name,
		&c.IsPending,
		&c.PendingApprover,
		&lastMsg,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.LastMessageID = lastMsg.UUID
	return &c, nil
}

func collectConversations(rows *sql.Rows) ([]domain.Conversation, error) {
	defer rows.Close()
	var out []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ConversationRepo) loadMembers(ctx context.Context, conv *domain.Conversation) error {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT user_id FROM conversation_members
		WHERE conversation_id = $1
		ORDER BY joined_at
	`, conv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	conv.Members = conv.Members[:0]
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return err
		}
		conv.Members = append(conv.Members, m)
	}
	return rows.Err()
}

func (r *ConversationRepo) fillMembers(ctx context.Context, convs []domain.Conversation) error {
	for i := range convs {
		if err := r.loadMembers(ctx, &convs[i]); err != nil {
			return err
		}
	}
	return nil
}
