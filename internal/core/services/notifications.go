package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"

	"github.com/google/uuid"
)

// NotificationService is the producer surface for non-chat notifications
// (likes, comments, group invites) and the read side for all of them. The
// contract is the same two steps the dispatcher uses: persist, then
// best-effort push. There is no active-room suppression for non-chat types
// since nothing is "viewed" for them.
type NotificationService struct {
	log      *slog.Logger
	repo     domain.NotificationRepository
	registry contracts.Registry
}

func NewNotificationService(log *slog.Logger, repo domain.NotificationRepository, registry contracts.Registry) *NotificationService {
	return &NotificationService{
		log:      log,
		repo:     repo,
		registry: registry,
	}
}

// Create persists the notification and pushes it to the recipient's live
// connections if any. The durable record is the contract; the push is
// best-effort.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.ErrorContext(ctx, "notifications - create failed",
			logging.User(n.RecipientID), logging.Err(err))
		return nil, err
	}

	frame, err := domain.EncodeEvent(domain.EventNotification, domain.NotificationEvent{
		ID:        n.ID,
		RoomID:    roomIDOrEmpty(n.ConversationID),
		SenderID:  n.FromID,
		Type:      n.Type,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	})
	if err == nil {
		for _, c := range s.registry.ConnectionsFor(n.RecipientID) {
			_ = c.Send(ctx, frame)
		}
	}
	return n, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	return s.repo.ListForUser(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func roomIDOrEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
