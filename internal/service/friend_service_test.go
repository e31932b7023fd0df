package service

import (
	"context"
	"testing"

	"whisper/internal/models"
	"whisper/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFriendService(db *gorm.DB) *FriendService {
	return NewFriendService(db,
		repository.NewFriendRepository(db),
		repository.NewUserRepository(db))
}

func TestFriendService_AddFriend(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 100)
	target := createUser(t, db, "bob", 100)

	added, err := svc.AddFriend(ctx, owner.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, target.ID, added.ID)
	assert.Equal(t, int64(50), balance(t, db, owner.ID))

	// The edge is one-directional: bob did not gain a friend.
	var count int64
	db.Model(&models.Friendship{}).Where("owner_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
}

func TestFriendService_AddFriend_Self(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)

	owner := createUser(t, db, "alice", 100)
	_, err := svc.AddFriend(context.Background(), owner.ID, "alice")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
	assert.Equal(t, int64(100), balance(t, db, owner.ID))
}

func TestFriendService_AddFriend_UnknownUser(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)

	owner := createUser(t, db, "alice", 100)
	_, err := svc.AddFriend(context.Background(), owner.ID, "nobody")
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestFriendService_AddFriend_Duplicate(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 200)
	createUser(t, db, "bob", 100)

	_, err := svc.AddFriend(ctx, owner.ID, "bob")
	require.NoError(t, err)

	// The duplicate is rejected before any charge.
	_, err = svc.AddFriend(ctx, owner.ID, "bob")
	assertAppErrorCode(t, err, "ALREADY_DONE")
	assert.Equal(t, int64(150), balance(t, db, owner.ID))
}

func TestFriendService_AddFriend_InsufficientFunds(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 40)
	createUser(t, db, "bob", 100)

	_, err := svc.AddFriend(ctx, owner.ID, "bob")
	assertAppErrorCode(t, err, "INSUFFICIENT_FUNDS")

	var count int64
	db.Model(&models.Friendship{}).Count(&count)
	assert.Zero(t, count)
}

func TestFriendService_SendToFriend(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 100)
	target := createUser(t, db, "bob", 100)

	_, err := svc.AddFriend(ctx, owner.ID, "bob")
	require.NoError(t, err)

	message, err := svc.SendToFriend(ctx, owner.ID, "bob", "hi friend")
	require.NoError(t, err)
	require.NotNil(t, message.ReceiverID)
	assert.Equal(t, target.ID, *message.ReceiverID)
	assert.True(t, message.IsSenderRevealed)
	assert.True(t, message.IsNotification)
	assert.Equal(t, int64(30), balance(t, db, owner.ID))
}

func TestFriendService_SendToFriend_NotFriend(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 100)
	createUser(t, db, "bob", 100)

	_, err := svc.SendToFriend(ctx, owner.ID, "bob", "hi stranger")
	assertAppErrorCode(t, err, "FORBIDDEN")
	assert.Equal(t, int64(100), balance(t, db, owner.ID))
}

func TestFriendService_SendToFriend_OneDirectional(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 100)
	target := createUser(t, db, "bob", 100)

	_, err := svc.AddFriend(ctx, owner.ID, "bob")
	require.NoError(t, err)

	// bob never added alice, so bob cannot message alice.
	_, err = svc.SendToFriend(ctx, target.ID, "alice", "hi back")
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func TestFriendService_ListFriends(t *testing.T) {
	db := setupServiceDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	owner := createUser(t, db, "alice", 200)
	createUser(t, db, "bob", 100)
	createUser(t, db, "carol", 100)

	_, err := svc.AddFriend(ctx, owner.ID, "bob")
	require.NoError(t, err)
	_, err = svc.AddFriend(ctx, owner.ID, "carol")
	require.NoError(t, err)

	friends, err := svc.ListFriends(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, friends, 2)
}
