package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MessageService validates, persists and orders messages, then hands the
// persisted message to the dispatcher for fan-out.
type MessageService struct {
	log        *slog.Logger
	convRepo   domain.ConversationRepository
	msgRepo    domain.MessageRepository
	userRepo   domain.UserRepository
	gate       contracts.ContentGate
	dispatcher *Dispatcher
	txManager  contracts.TxManager
}

func NewMessageService(
	log *slog.Logger,
	convRepo domain.ConversationRepository,
	msgRepo domain.MessageRepository,
	userRepo domain.UserRepository,
	gate contracts.ContentGate,
	dispatcher *Dispatcher,
	txManager contracts.TxManager,
) *MessageService {
	if gate == nil {
		gate = contracts.AllowAll()
	}
	return &MessageService{
		log:        log,
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		userRepo:   userRepo,
		gate:       gate,
		dispatcher: dispatcher,
		txManager:  txManager,
	}
}

// Send persists a message into an existing conversation and dispatches it.
// The sender must be a member. A reply from the pending approver implicitly
// accepts the conversation. The returned message carries the assigned
// sequence and the sender's display attributes.
func (s *MessageService) Send(ctx context.Context, senderID string, convID uuid.UUID, kind domain.MessageKind, content string) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.String("chat.sender_id", senderID),
		attribute.String("chat.conv_id", convID.String()),
	))
	defer span.End()

	if content == "" {
		return nil, fmt.Errorf("%w: content required", domain.ErrValidation)
	}
	if kind == "" {
		kind = domain.MessageText
	}
	if !domain.ValidMessageKind(kind) {
		return nil, fmt.Errorf("%w: unsupported message type %q", domain.ErrValidation, kind)
	}

	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !conv.HasMember(senderID) {
		return nil, fmt.Errorf("%w: you are not a member of this conversation", domain.ErrPermissionDenied)
	}
	if !s.gate.Allow(ctx, senderID, content) {
		return nil, fmt.Errorf("%w: message rejected by moderation", domain.ErrPermissionDenied)
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       senderID,
		Kind:           kind,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		seq, txErr := s.msgRepo.SaveWithSequence(txCtx, msg)
		if txErr != nil {
			return txErr
		}
		msg.Seq = seq
		// A reply from the approver resolves the pending request.
		if conv.IsPending && conv.PendingApprover == senderID {
			if txErr := s.convRepo.MarkPendingResolved(txCtx, convID); txErr != nil {
				return txErr
			}
			conv.IsPending = false
			conv.PendingApprover = ""
		}
		return nil
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.ErrorContext(ctx, "messages - send - persist failed",
			logging.Conversation(convID.String()), logging.User(senderID), logging.Err(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("chat.seq", msg.Seq))

	// Enrich with minimal sender display attributes, denormalized at read time.
	if sender, err := s.userRepo.GetByID(ctx, senderID); err == nil {
		msg.SenderName = sender.Name
		msg.SenderAvatar = sender.Avatar
	} else {
		s.log.WarnContext(ctx, "messages - send - sender enrichment failed",
			logging.User(senderID), logging.Err(err))
	}

	s.dispatcher.Dispatch(ctx, conv, msg)

	s.log.InfoContext(ctx, "messages - send - delivered",
		logging.Conversation(convID.String()),
		logging.Message(msg.ID.String()),
		logging.Sequence(msg.Seq))
	return msg, nil
}

// List returns one page of history. Pagination is newest-first at the page
// level (page 1 holds the latest messages) while items inside a page are
// ascending by creation order, matching what a chat view renders.
func (s *MessageService) List(ctx context.Context, convID uuid.UUID, page, pageSize int) ([]domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.List", trace.WithAttributes(
		attribute.String("chat.conv_id", convID.String()),
		attribute.Int("chat.page", page),
	))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 30
	}
	msgs, err := s.msgRepo.ListPage(ctx, convID, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	// Repo returns newest-first; the page itself reads oldest to newest.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MarkRead adds the reader to every unread message in the conversation.
// Idempotent; marking an already-read conversation is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, convID uuid.UUID, readerID string) error {
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.msgRepo.MarkRead(txCtx, convID, readerID)
	}); err != nil {
		s.log.ErrorContext(ctx, "messages - mark read failed",
			logging.Conversation(convID.String()), logging.User(readerID), logging.Err(err))
		return err
	}
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, convID uuid.UUID, readerID string) (int, error) {
	return s.msgRepo.UnreadCount(ctx, convID, readerID)
}
