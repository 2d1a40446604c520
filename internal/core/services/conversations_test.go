package services

import (
	"context"
	"sync"
	"testing"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConvService(t *testing.T) (*ConversationService, *fakeConvRepo, *fakeMsgRepo, *fakeFollows, *fakeUserRepo) {
	t.Helper()
	msgs := newFakeMsgRepo()
	convs := newFakeConvRepo(msgs)
	follows := newFakeFollows()
	users := newFakeUserRepo(
		&domain.User{ID: "alice", Name: "Alice", Avatar: "a.png"},
		&domain.User{ID: "bob", Name: "Bob", Avatar: "b.png"},
		&domain.User{ID: "carol", Name: "Carol"},
	)
	svc := NewConversationService(testLogger(), convs, msgs, users, follows, fakeTx{})
	return svc, convs, msgs, follows, users
}

func TestGetOrCreatePrivateValidation(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreatePrivate(ctx, "alice", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.GetOrCreatePrivate(ctx, "alice", "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetOrCreatePrivatePendingWhenNotFollowed(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, conv.IsPending)
	assert.Equal(t, "bob", conv.PendingApprover)
	assert.ElementsMatch(t, []string{"alice", "bob"}, conv.Members)
}

func TestGetOrCreatePrivateNotPendingWhenReceiverFollows(t *testing.T) {
	svc, _, _, follows, _ := newConvService(t)
	ctx := context.Background()

	// bob follows alice, so alice messaging bob is solicited.
	follows.follow("bob", "alice")

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, conv.IsPending)
	assert.Empty(t, conv.PendingApprover)
}

func TestGetOrCreatePrivateIdempotentAcrossDirections(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	first, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := svc.GetOrCreatePrivate(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreatePrivateConcurrentFirstContact(t *testing.T) {
	svc, convs, _, _, _ := newConvService(t)
	ctx := context.Background()

	const n = 16
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := svc.GetOrCreatePrivate(ctx, a, b)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, convs.rooms, 1)
}

func TestCreateGroupRequiresMembers(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	_, err := svc.CreateGroup(context.Background(), "alice", nil, "empty")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateGroupIncludesCreatorOnce(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)

	conv, err := svc.CreateGroup(context.Background(), "alice", []string{"bob", "alice", "carol", "bob"}, "trio")
	require.NoError(t, err)
	assert.Equal(t, domain.KindGroup, conv.Kind)
	assert.Equal(t, []string{"alice", "bob", "carol"}, conv.Members)
}

func TestPendingRoomHiddenFromApproverList(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)

	bobRooms, err := svc.ListForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobRooms)

	aliceRooms, err := svc.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceRooms, 1)
	assert.Equal(t, conv.ID, aliceRooms[0].ID)
}

func TestListPendingRequestsCarriesSenderAndSnippet(t *testing.T) {
	svc, _, msgs, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = msgs.SaveWithSequence(ctx, &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       "alice",
		Kind:           domain.MessageText,
		Content:        "hey there",
	})
	require.NoError(t, err)

	reqs, err := svc.ListPendingRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, conv.ID, reqs[0].ConversationID)
	assert.Equal(t, "alice", reqs[0].SenderID)
	assert.Equal(t, "Alice", reqs[0].SenderName)
	assert.Equal(t, "hey there", reqs[0].LastMessage)
}

func TestAcceptPendingOnlyByApprover(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)

	err = svc.AcceptPending(ctx, conv.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, svc.AcceptPending(ctx, conv.ID, "bob"))

	got, err := svc.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPending)

	// Accepting twice is a no-op, for anyone.
	assert.NoError(t, svc.AcceptPending(ctx, conv.ID, "alice"))
}

func TestRejectPendingKeepsRoomHidden(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)

	err = svc.RejectPending(ctx, conv.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, svc.RejectPending(ctx, conv.ID, "bob"))

	got, err := svc.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending)

	bobRooms, err := svc.ListForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobRooms)
}

func TestAddAndRemoveMembers(t *testing.T) {
	svc, _, _, _, _ := newConvService(t)
	ctx := context.Background()

	conv, err := svc.CreateGroup(ctx, "alice", []string{"bob"}, "pair")
	require.NoError(t, err)

	got, err := svc.AddMembers(ctx, conv.ID, []string{"carol", "carol"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, got.Members)

	got, err = svc.RemoveMember(ctx, conv.ID, "bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "carol"}, got.Members)
}
