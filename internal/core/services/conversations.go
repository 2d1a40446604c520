package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"
	"github.com/TruyenGau/sosialNetwork-backend/pkg/logging"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("chat-core")

// ConversationService owns room lifecycle: lazy private room creation gated by
// the follow graph, explicit group creation, membership edits and the pending
// request flow.
type ConversationService struct {
	log       *slog.Logger
	repo      domain.ConversationRepository
	msgRepo   domain.MessageRepository
	userRepo  domain.UserRepository
	follows   contracts.FollowGraph
	txManager contracts.TxManager
}

func NewConversationService(
	log *slog.Logger,
	repo domain.ConversationRepository,
	msgRepo domain.MessageRepository,
	userRepo domain.UserRepository,
	follows contracts.FollowGraph,
	txManager contracts.TxManager,
) *ConversationService {
	return &ConversationService{
		log:       log,
		repo:      repo,
		msgRepo:   msgRepo,
		userRepo:  userRepo,
		follows:   follows,
		txManager: txManager,
	}
}

// GetOrCreatePrivate resolves the unique private room for the unordered pair,
// creating it on first contact. A new room starts pending unless the receiver
// already follows the sender: the receiver following means the sender is not
// a stranger, so the message is solicited. Creation is an atomic upsert on the
// pair key, so two racing first contacts resolve to one room.
func (s *ConversationService) GetOrCreatePrivate(ctx context.Context, senderID, receiverID string) (*domain.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationService.GetOrCreatePrivate", trace.WithAttributes(
		attribute.String("chat.sender_id", senderID),
		attribute.String("chat.receiver_id", receiverID),
	))
	defer span.End()

	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("%w: sender and receiver required", domain.ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot open a private chat with yourself", domain.ErrValidation)
	}

	conv, err := s.repo.FindPrivateByPair(ctx, senderID, receiverID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	// Pending iff the receiver does not follow the sender yet.
	following, err := s.follows.Follows(ctx, receiverID, senderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "follow graph query failed")
		s.log.ErrorContext(ctx, "conversations - follow lookup failed",
			logging.User(senderID), logging.Err(err))
		return nil, err
	}

	fresh := &domain.Conversation{
		ID:        uuid.New(),
		Kind:      domain.KindPrivate,
		Members:   []string{senderID, receiverID},
		IsPending: !following,
	}
	if fresh.IsPending {
		fresh.PendingApprover = receiverID
	}

	var created *domain.Conversation
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.repo.CreatePrivate(txCtx, fresh)
		return txErr
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create private failed")
		s.log.ErrorContext(ctx, "conversations - create private failed",
			logging.User(senderID), logging.Err(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "conversations - private room ready",
		logging.Conversation(created.ID.String()),
		slog.Bool("pending", created.IsPending))
	return created, nil
}

// CreateGroup creates a group room. The creator is always a member.
func (s *ConversationService) CreateGroup(ctx context.Context, creatorID string, memberIDs []string, name string) (*domain.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationService.CreateGroup")
	defer span.End()

	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one member required", domain.ErrValidation)
	}
	members := dedupe(append([]string{creatorID}, memberIDs...))

	conv := &domain.Conversation{
		ID:      uuid.New(),
		Kind:    domain.KindGroup,
		Name:    name,
		Members: members,
	}
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateGroup(txCtx, conv)
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "conversations - create group failed",
			logging.User(creatorID), logging.Err(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "conversations - group created",
		logging.Conversation(conv.ID.String()), slog.Int("members", len(members)))
	return conv, nil
}

func (s *ConversationService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ConversationService) AddMembers(ctx context.Context, id uuid.UUID, memberIDs []string) (*domain.Conversation, error) {
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("%w: member ids required", domain.ErrValidation)
	}
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.AddMembers(txCtx, id, dedupe(memberIDs))
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ConversationService) RemoveMember(ctx context.Context, id uuid.UUID, memberID string) (*domain.Conversation, error) {
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.RemoveMember(txCtx, id, memberID)
	}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// ListForUser returns the user's visible rooms, most recent activity first.
// Private rooms still awaiting this user's approval are excluded; they are
// surfaced through ListPendingRequests instead.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ListPendingRequests returns the unapproved incoming private rooms with the
// sender's profile and a last-message snippet.
func (s *ConversationService) ListPendingRequests(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	ctx, span := tracer.Start(ctx, "ConversationService.ListPendingRequests")
	defer span.End()

	rooms, err := s.repo.ListPendingForUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out := make([]domain.PendingRequest, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		req := domain.PendingRequest{ConversationID: room.ID}
		for _, m := range room.Members {
			if m != userID {
				req.SenderID = m
				break
			}
		}
		if sender, err := s.userRepo.GetByID(ctx, req.SenderID); err == nil {
			req.SenderName = sender.Name
			req.SenderAvatar = sender.Avatar
		}
		if last, err := s.msgRepo.LastMessage(ctx, room.ID); err == nil && last != nil {
			req.LastMessage = last.Content
			req.LastMessageAt = last.CreatedAt
		}
		out = append(out, req)
	}
	return out, nil
}

// AcceptPending clears the pending state. Only the designated approver may
// accept.
func (s *ConversationService) AcceptPending(ctx context.Context, id uuid.UUID, userID string) error {
	ctx, span := tracer.Start(ctx, "ConversationService.AcceptPending")
	defer span.End()

	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !conv.IsPending {
		return nil
	}
	if conv.PendingApprover != userID {
		return fmt.Errorf("%w: only the recipient can accept this request", domain.ErrPermissionDenied)
	}
	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.MarkPendingResolved(txCtx, id)
	}); err != nil {
		span.RecordError(err)
		return err
	}
	s.log.InfoContext(ctx, "conversations - pending accepted",
		logging.Conversation(id.String()), logging.User(userID))
	return nil
}

// RejectPending acknowledges a rejection without deleting the room: the
// conversation stays hidden from the recipient's list while pending, which is
// the observable behavior rejection needs.
func (s *ConversationService) RejectPending(ctx context.Context, id uuid.UUID, userID string) error {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if conv.IsPending && conv.PendingApprover != userID {
		return fmt.Errorf("%w: only the recipient can reject this request", domain.ErrPermissionDenied)
	}
	s.log.InfoContext(ctx, "conversations - pending rejected",
		logging.Conversation(id.String()), logging.User(userID))
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
