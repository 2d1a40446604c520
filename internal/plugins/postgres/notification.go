package postgres

import (
	"context"
	"database/sql"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

/*
	-- Notifications
	CREATE TABLE notifications (
		id              UUID PRIMARY KEY,
		recipient_id    TEXT NOT NULL REFERENCES users(id),
		from_id         TEXT NOT NULL REFERENCES users(id),
		type            TEXT NOT NULL,
		conversation_id UUID,
		content         TEXT NOT NULL DEFAULT '',
		is_read         BOOLEAN NOT NULL DEFAULT false,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX notifications_recipient ON notifications (recipient_id, created_at DESC);
*/

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	exec := GetExecutor(ctx, r.db)
	return exec.QueryRowContext(ctx, `
		INSERT INTO notifications (id, recipient_id, from_id, type, conversation_id, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`,
		n.ID,
		n.RecipientID,
		n.FromID,
		n.Type,
		uuid.NullUUID{UUID: n.ConversationID, Valid: n.ConversationID != uuid.Nil},
		n.Content,
	).Scan(&n.CreatedAt)
}

func (r *NotificationRepo) ListForUser(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, recipient_id, from_id, type, conversation_id, content, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var convID uuid.NullUUID
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.FromID,
			&n.Type,
			&convID,
			&n.Content,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.ConversationID = convID.UUID
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
