package services

import (
	"context"
	"testing"

	"github.com/TruyenGau/sosialNetwork-backend/internal/app/registry"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCreatePersistsAndPushes(t *testing.T) {
	hub := registry.NewRegistry()
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(testLogger(), repo, hub)

	bob := newFakeClient("b1", "bob")
	hub.Register(bob)

	n, err := svc.Create(context.Background(), &domain.Notification{
		RecipientID: "bob",
		FromID:      "alice",
		Type:        domain.NotifLike,
		Content:     "alice liked your post",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	require.Len(t, repo.all(), 1)

	envs := decodeFrames(t, bob.sent())
	require.Len(t, envs, 1)
	assert.Equal(t, domain.EventNotification, envs[0].Event)
}

func TestNotificationCreateOfflineRecipient(t *testing.T) {
	hub := registry.NewRegistry()
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(testLogger(), repo, hub)

	_, err := svc.Create(context.Background(), &domain.Notification{
		RecipientID: "bob",
		FromID:      "alice",
		Type:        domain.NotifComment,
		Content:     "alice commented",
	})
	require.NoError(t, err)
	assert.Len(t, repo.all(), 1, "record survives without a reachable connection")
}

func TestNotificationMarkRead(t *testing.T) {
	hub := registry.NewRegistry()
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(testLogger(), repo, hub)

	n, err := svc.Create(context.Background(), &domain.Notification{
		RecipientID: "bob",
		FromID:      "alice",
		Type:        domain.NotifGroupInvite,
		Content:     "invited you",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), n.ID))
	listed, err := svc.ListForUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsRead)

	assert.ErrorIs(t, svc.MarkRead(context.Background(), uuid.New()), domain.ErrNotificationNotFound)
}
