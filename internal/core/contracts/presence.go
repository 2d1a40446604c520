package contracts

import (
	"context"
	"time"
)

// PresenceStore mirrors online state into a fast shared store so the contact
// list can be answered without touching the profile rows. Entries are TTL'd:
// a crashed process leaks nothing.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string, ttl time.Duration) error
	SetOffline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}
