package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRankOrdering(t *testing.T) {
	admin := &RoomMember{AccessLevel: AccessAdmin}
	manager := &RoomMember{AccessLevel: AccessManager}
	user := &RoomMember{AccessLevel: AccessUser}

	assert.True(t, admin.AtLeast(AccessManager))
	assert.True(t, manager.AtLeast(AccessManager))
	assert.False(t, user.AtLeast(AccessManager))
	assert.False(t, manager.AtLeast(AccessAdmin))
	assert.False(t, IsValidAccessLevel("owner"))
}

func TestRoomIsFull(t *testing.T) {
	unlimited := &Room{PeopleLimit: 0}
	assert.False(t, unlimited.IsFull(1000))

	small := &Room{PeopleLimit: 2}
	assert.False(t, small.IsFull(1))
	assert.True(t, small.IsFull(2))
}

func TestChoices(t *testing.T) {
	assert.True(t, IsValidRoomType(RoomTypeCourse))
	assert.False(t, IsValidRoomType("secret"))

	url, ok := CategoryImage(RoomCategoryHiking)
	assert.True(t, ok)
	assert.NotEmpty(t, url)
	_, ok = CategoryImage("swimming")
	assert.False(t, ok)
}

func TestUserPasswordHashing(t *testing.T) {
	u := &UserInfo{Email: "alice@example.edu", RawPassword: "s3cret-pass"}
	require.NoError(t, u.BeforeSave(nil))

	assert.Equal(t, "alice", u.Username)
	assert.Empty(t, u.RawPassword)
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.Equal(t, ActingUser{Uuid: u.Uuid, Username: "alice"}, u.Actor())
}
