package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"
)

// PresenceService applies the online/offline transitions the registry fires
// on a user's first connect and last disconnect. Writes are fire-and-forget:
// a failed store update is logged and never rolls back the in-memory state.
type PresenceService struct {
	log      *slog.Logger
	users    domain.UserRepository
	store    contracts.PresenceStore
	ttl      time.Duration
	deadline time.Duration
}

func NewPresenceService(log *slog.Logger, users domain.UserRepository, store contracts.PresenceStore, ttl time.Duration) *PresenceService {
	return &PresenceService{
		log:      log,
		users:    users,
		store:    store,
		ttl:      ttl,
		deadline: 5 * time.Second,
	}
}

// WentOnline is called from the registry on a user's first connection. It is
// detached from the triggering request's lifetime.
func (s *PresenceService) WentOnline(userID string) {
	s.apply(userID, true)
}

// WentOffline is called when the user's last connection closes.
func (s *PresenceService) WentOffline(userID string) {
	s.apply(userID, false)
}

func (s *PresenceService) apply(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deadline)
	defer cancel()

	if err := s.users.SetOnline(ctx, userID, online); err != nil {
		s.log.Error("presence - profile flag update failed",
			logging.User(userID), slog.Bool("online", online), logging.Err(err))
	}
	var err error
	if online {
		err = s.store.SetOnline(ctx, userID, s.ttl)
	} else {
		err = s.store.SetOffline(ctx, userID)
	}
	if err != nil {
		s.log.Error("presence - mirror update failed",
			logging.User(userID), slog.Bool("online", online), logging.Err(err))
	}
}

// OnlineUsers answers the contact list from the TTL'd mirror.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.store.OnlineUsers(ctx)
}
