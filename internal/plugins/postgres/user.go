package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

/*
	-- Owned by the profile service; this core reads display attributes and
	-- writes only the presence columns.
	CREATE TABLE users (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		avatar         TEXT NOT NULL DEFAULT '',
		online         BOOLEAN NOT NULL DEFAULT false,
		last_active_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	user := &domain.User{ID: id}
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, `
		SELECT COALESCE(name, ''), COALESCE(avatar, ''), online, last_active_at, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.Name, &user.Avatar, &user.Online, &user.LastActiveAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) SetOnline(ctx context.Context, id string, online bool) error {
	if id == "" {
		return domain.ErrUserNotFound
	}
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE users
		SET online = $2, last_active_at = now()
		WHERE id = $1
	`, id, online)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
