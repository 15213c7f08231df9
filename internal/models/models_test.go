package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserView_StripsSecrets(t *testing.T) {
	u := User{
		ID:              "u1",
		Name:            "Ann",
		Email:           "ann@example.com",
		PasswordHash:    "$2a$10$secret",
		SubscribedUsers: []string{"u2"},
		Subscribers:     3,
		Level:           "Beginner",
	}

	v := NewUserView(u, "tok")
	raw, err := json.Marshal(v)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$10$secret")
	assert.Contains(t, string(raw), `"token":"tok"`)
	assert.Contains(t, string(raw), `"_id":"u1"`)

	// the view must not alias the record's slice
	v.SubscribedUsers[0] = "changed"
	assert.Equal(t, "u2", u.SubscribedUsers[0])
}

func TestNewUserView_EmptyFields(t *testing.T) {
	raw, err := json.Marshal(NewUserView(User{ID: "u1"}, ""))
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"subscribedUsers":[]`)
	assert.NotContains(t, string(raw), "token")
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	raw, err := json.Marshal(User{ID: "u1", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"hash"`)
}

func TestLevelFor(t *testing.T) {
	levels := []Level{
		{Name: "Advanced", ThresholdScore: 250},
		{Name: "Beginner", ThresholdScore: 0},
		{Name: "Intermediate", ThresholdScore: 100},
	}

	assert.Equal(t, "Beginner", LevelFor(levels, 0, "none"))
	assert.Equal(t, "Intermediate", LevelFor(levels, 100, "none"))
	assert.Equal(t, "Intermediate", LevelFor(levels, 249, "none"))
	assert.Equal(t, "Advanced", LevelFor(levels, 1000, "none"))
	assert.Equal(t, "none", LevelFor(levels, -5, "none"))
	assert.Equal(t, "none", LevelFor(nil, 10, "none"))
}

func TestReactionValid(t *testing.T) {
	assert.True(t, ReactionLike.Valid())
	assert.True(t, ReactionDislike.Valid())
	assert.False(t, Reaction("love").Valid())
}
