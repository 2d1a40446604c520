package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory stand-ins for the postgres and redis adapters. They honor the
// same contracts, including the pair-key upsert and the per-conversation
// sequence row created alongside each room.

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeClient struct {
	mu     sync.Mutex
	id     string
	userID string
	fail   bool
	frames [][]byte
}

func newFakeClient(id, userID string) *fakeClient {
	return &fakeClient{id: id, userID: userID}
}

func (c *fakeClient) ID() string     { return c.id }
func (c *fakeClient) UserID() string { return c.userID }

func (c *fakeClient) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() {}

func (c *fakeClient) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	online map[string]bool
	setErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:  make(map[string]*domain.User),
		online: make(map[string]bool),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetOnline(ctx context.Context, id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.online[id] = online
	return nil
}

type fakeMsgRepo struct {
	mu    sync.Mutex
	seqs  map[uuid.UUID]int64
	msgs  map[uuid.UUID][]domain.Message
	reads map[uuid.UUID]map[string]bool // message id -> reader set
}

func newFakeMsgRepo() *fakeMsgRepo {
	return &fakeMsgRepo{
		seqs:  make(map[uuid.UUID]int64),
		msgs:  make(map[uuid.UUID][]domain.Message),
		reads: make(map[uuid.UUID]map[string]bool),
	}
}

func (r *fakeMsgRepo) initSequence(convID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seqs[convID]; !ok {
		r.seqs[convID] = 0
	}
}

func (r *fakeMsgRepo) SaveWithSequence(ctx context.Context, msg *domain.Message) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seqs[msg.ConversationID]; !ok {
		return 0, domain.ErrSequenceNotInitialized
	}
	r.seqs[msg.ConversationID]++
	seq := r.seqs[msg.ConversationID]
	cp := *msg
	cp.Seq = seq
	r.msgs[msg.ConversationID] = append(r.msgs[msg.ConversationID], cp)
	return seq, nil
}

func (r *fakeMsgRepo) ListPage(ctx context.Context, convID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.msgs[convID]
	var out []domain.Message
	// Stored ascending by seq; page newest-first.
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *fakeMsgRepo) LastMessage(ctx context.Context, convID uuid.UUID) (*domain.Message, error) {
	msgs, err := r.ListPage(ctx, convID, 1, 0)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

func (r *fakeMsgRepo) MarkRead(ctx context.Context, convID uuid.UUID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs[convID] {
		if r.reads[m.ID] == nil {
			r.reads[m.ID] = make(map[string]bool)
		}
		r.reads[m.ID][readerID] = true
	}
	return nil
}

func (r *fakeMsgRepo) UnreadCount(ctx context.Context, convID uuid.UUID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs[convID] {
		if !r.reads[m.ID][readerID] {
			n++
		}
	}
	return n, nil
}

type fakeConvRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*domain.Conversation
	pairs map[string]uuid.UUID
	msgs  *fakeMsgRepo
}

func newFakeConvRepo(msgs *fakeMsgRepo) *fakeConvRepo {
	return &fakeConvRepo{
		rooms: make(map[uuid.UUID]*domain.Conversation),
		pairs: make(map[string]uuid.UUID),
		msgs:  msgs,
	}
}

func pairOf(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

func (r *fakeConvRepo) FindPrivateByPair(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pairs[pairOf(userA, userB)]
	if !ok {
		return nil, nil
	}
	return r.rooms[id], nil
}

func (r *fakeConvRepo) CreatePrivate(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairOf(conv.Members[0], conv.Members[1])
	if id, ok := r.pairs[key]; ok {
		// Concurrent create lost; hand back the winner's row.
		return r.rooms[id], nil
	}
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	r.pairs[key] = conv.ID
	r.rooms[conv.ID] = conv
	if r.msgs != nil {
		r.msgs.initSequence(conv.ID)
	}
	return conv, nil
}

func (r *fakeConvRepo) CreateGroup(ctx context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	r.rooms[conv.ID] = conv
	if r.msgs != nil {
		r.msgs.initSequence(conv.ID)
	}
	return nil
}

func (r *fakeConvRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return conv, nil
}

func (r *fakeConvRepo) AddMembers(ctx context.Context, id uuid.UUID, memberIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.rooms[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	for _, m := range memberIDs {
		if !conv.HasMember(m) {
			conv.Members = append(conv.Members, m)
		}
	}
	return nil
}

func (r *fakeConvRepo) RemoveMember(ctx context.Context, id uuid.UUID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.rooms[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	kept := conv.Members[:0]
	for _, m := range conv.Members {
		if m != memberID {
			kept = append(kept, m)
		}
	}
	conv.Members = kept
	return nil
}

func (r *fakeConvRepo) MarkPendingResolved(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.rooms[id]; ok {
		conv.IsPending = false
		conv.PendingApprover = ""
	}
	return nil
}

func (r *fakeConvRepo) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Conversation
	for _, conv := range r.rooms {
		if !conv.HasMember(userID) {
			continue
		}
		if conv.Kind == domain.KindPrivate && conv.IsPending && conv.PendingApprover == userID {
			continue
		}
		out = append(out, *conv)
	}
	return out, nil
}

func (r *fakeConvRepo) ListPendingForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Conversation
	for _, conv := range r.rooms {
		if conv.Kind == domain.KindPrivate && conv.IsPending && conv.PendingApprover == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

type fakeNotifRepo struct {
	mu        sync.Mutex
	created   []domain.Notification
	createErr error
}

func (r *fakeNotifRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotifRepo) ListForUser(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.created {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.created {
		if r.created[i].ID == id {
			r.created[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *fakeNotifRepo) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.created))
	copy(out, r.created)
	return out
}

type fakeFollows struct {
	mu    sync.Mutex
	edges map[string]bool // follower:following
}

func newFakeFollows() *fakeFollows {
	return &fakeFollows{edges: make(map[string]bool)}
}

func (f *fakeFollows) follow(follower, following string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[follower+":"+following] = true
}

func (f *fakeFollows) Follows(ctx context.Context, followerID, followingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[followerID+":"+followingID], nil
}

type fakePresenceStore struct {
	mu     sync.Mutex
	online map[string]bool
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{online: make(map[string]bool)}
}

func (s *fakePresenceStore) SetOnline(ctx context.Context, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID] = true
	return nil
}

func (s *fakePresenceStore) SetOffline(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.online, userID)
	return nil
}

func (s *fakePresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.online))
	for id := range s.online {
		out = append(out, id)
	}
	return out, nil
}
