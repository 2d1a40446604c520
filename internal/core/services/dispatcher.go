package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher fans a persisted message out to every live connection of every
// conversation member, and separately creates one durable notification per
// member who is not actively viewing that conversation. Push delivery and
// notification creation are deliberately decoupled: a user watching the room
// never accrues an unread badge for it, while a user who is merely connected
// elsewhere, or fully offline, always gets a durable record.
type Dispatcher struct {
	log       *slog.Logger
	registry  contracts.Registry
	notifRepo domain.NotificationRepository
}

func NewDispatcher(log *slog.Logger, registry contracts.Registry, notifRepo domain.NotificationRepository) *Dispatcher {
	return &Dispatcher{
		log:       log,
		registry:  registry,
		notifRepo: notifRepo,
	}
}

// Dispatch is best-effort multicast: a failed push or a failed notification
// write affects only that member and is logged, never propagated to the
// sender or to other members.
func (d *Dispatcher) Dispatch(ctx context.Context, conv *domain.Conversation, msg *domain.Message) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("chat.conv_id", conv.ID.String()),
		attribute.Int("chat.members", len(conv.Members)),
	))
	defer span.End()

	messageEvent := domain.EventReceiveMessage
	notifEvent := domain.EventMessageNotif
	notifType := domain.NotifChatPrivate
	if conv.Kind == domain.KindGroup {
		messageEvent = domain.EventReceiveGroupMessage
		notifEvent = domain.EventGroupMessageNotif
		notifType = domain.NotifChatGroup
	}

	frame, err := domain.EncodeEvent(messageEvent, domain.NewMessageEvent(msg))
	if err != nil {
		span.RecordError(err)
		d.log.ErrorContext(ctx, "dispatcher - encode message failed", logging.Err(err))
		return
	}

	roomID := conv.ID.String()
	pushed := 0
	for _, member := range conv.Members {
		// Every live connection gets the message, the sender's own tabs
		// included.
		for _, c := range d.registry.ConnectionsFor(member) {
			if err := c.Send(ctx, frame); err != nil {
				d.log.DebugContext(ctx, "dispatcher - push skipped",
					logging.User(member), logging.Connection(c.ID()), logging.Err(err))
				continue
			}
			pushed++
		}

		if member == msg.SenderID {
			continue
		}
		if d.registry.ActiveRoom(member) == roomID {
			// Already watching the live stream; no badge.
			continue
		}
		d.notify(ctx, notifEvent, &domain.Notification{
			ID:             uuid.New(),
			RecipientID:    member,
			FromID:         msg.SenderID,
			Type:           notifType,
			ConversationID: conv.ID,
			Content:        msg.Content,
			CreatedAt:      time.Now(),
		})
	}
	span.SetAttributes(attribute.Int("chat.pushed", pushed))
}

// notify persists the durable record, then best-effort pushes the alert to
// the recipient's live connections. The record survives even when no
// connection is reachable.
func (d *Dispatcher) notify(ctx context.Context, event string, n *domain.Notification) {
	if err := d.notifRepo.Create(ctx, n); err != nil {
		d.log.ErrorContext(ctx, "dispatcher - notification write failed",
			logging.User(n.RecipientID), logging.Err(err))
		return
	}
	frame, err := domain.EncodeEvent(event, domain.NotificationEvent{
		ID:        n.ID,
		RoomID:    n.ConversationID.String(),
		SenderID:  n.FromID,
		Type:      n.Type,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		d.log.ErrorContext(ctx, "dispatcher - encode notification failed", logging.Err(err))
		return
	}
	for _, c := range d.registry.ConnectionsFor(n.RecipientID) {
		_ = c.Send(ctx, frame)
	}
}
