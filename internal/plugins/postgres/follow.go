package postgres

import (
	"context"
	"database/sql"
)

// FollowRepo reads the follow graph owned by the social CRUD service. The
// messaging core only ever asks one question of it.
type FollowRepo struct {
	db *sql.DB
}

func NewFollowRepo(db *sql.DB) *FollowRepo {
	return &FollowRepo{db: db}
}

/*
	-- Owned by the follow-graph service; read-only here.
	CREATE TABLE follows (
		follower_id  TEXT NOT NULL REFERENCES users(id),
		following_id TEXT NOT NULL REFERENCES users(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (follower_id, following_id)
	);
*/

func (r *FollowRepo) Follows(ctx context.Context, followerID, followingID string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	var exists bool
	err := exec.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND following_id = $2
		)
	`, followerID, followingID).Scan(&exists)
	return exists, err
}
