// Package storetest holds the behaviour every store.Store implementation
// must share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UserCRUD", func(t *testing.T) { testUserCRUD(t, newStore(t)) })
	t.Run("UserDuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, newStore(t)) })
	t.Run("UserListAndCount", func(t *testing.T) { testListAndCount(t, newStore(t)) })
	t.Run("Subscriptions", func(t *testing.T) { testSubscriptions(t, newStore(t)) })
	t.Run("PostsAndComments", func(t *testing.T) { testPostsAndComments(t, newStore(t)) })
	t.Run("VideoReactions", func(t *testing.T) { testVideoReactions(t, newStore(t)) })
	t.Run("Levels", func(t *testing.T) { testLevels(t, newStore(t)) })
	t.Run("Events", func(t *testing.T) { testEvents(t, newStore(t)) })
}

// NewUser builds a user record with predictable timestamps.
func NewUser(name, email string, updated time.Time) *models.User {
	return &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash-" + name,
		Status:       "active",
		Level:        "Beginner",
		CreatedAt:    updated,
		UpdatedAt:    updated,
	}
}

func mustCreateUser(t *testing.T, s store.Store, name, email string, updated time.Time) models.User {
	t.Helper()
	u := NewUser(name, email, updated)
	require.NoError(t, s.Users().Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return *u
}

func testUserCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	created := mustCreateUser(t, s, "ann", "ann@example.com", base)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Name)
	assert.Equal(t, "hash-ann", got.PasswordHash)
	assert.Empty(t, got.SubscribedUsers)

	byEmail, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	got.Name = "Ann B"
	got.Admin = true
	got.Score = 42
	got.Subscribers = 99 // ignored by Update
	got.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, users.Update(ctx, got))

	updated, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.Name)
	assert.True(t, updated.Admin)
	assert.Equal(t, 42, updated.Score)
	assert.Equal(t, 0, updated.Subscribers)

	ghost := got
	ghost.ID = "missing-id"
	ghost.Email = "ghost@example.com"
	assert.True(t, errors.Is(users.Update(ctx, ghost), common.ErrNotFound))

	require.NoError(t, users.Delete(ctx, created.ID))
	_, err = users.GetByID(ctx, created.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.True(t, errors.Is(users.Delete(ctx, created.ID), common.ErrNotFound))

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	mustCreateUser(t, s, "ann", "ann@example.com", base)
	bob := mustCreateUser(t, s, "bob", "bob@example.com", base)

	err := users.Create(ctx, NewUser("ann2", "ann@example.com", base))
	assert.True(t, errors.Is(err, common.ErrDuplicateEmail), "got %v", err)

	bob.Email = "ann@example.com"
	err = users.Update(ctx, bob)
	assert.True(t, errors.Is(err, common.ErrDuplicateEmail), "got %v", err)
}

func testListAndCount(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	for i, email := range []string{"alpha@Example.com", "beta@example.com", "gamma@other.org", "delta@EXAMPLE.com"} {
		mustCreateUser(t, s, fmt.Sprintf("u%d", i), email, base.Add(time.Duration(i)*time.Minute))
	}

	total, err := users.Count(ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	n, err := users.Count(ctx, models.UserFilter{EmailContains: "example"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := users.List(ctx, models.UserFilter{EmailContains: "EXAMPLE", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	// most recently updated first
	assert.Equal(t, "delta@EXAMPLE.com", list[0].Email)
	assert.Equal(t, "beta@example.com", list[1].Email)
	assert.Equal(t, "alpha@Example.com", list[2].Email)

	page, err := users.List(ctx, models.UserFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "gamma@other.org", page[0].Email)
	assert.Equal(t, "beta@example.com", page[1].Email)

	empty, err := users.List(ctx, models.UserFilter{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)

	none, err := users.Count(ctx, models.UserFilter{EmailContains: "100%_"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)
}

func testSubscriptions(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	ann := mustCreateUser(t, s, "ann", "ann@example.com", base)
	bob := mustCreateUser(t, s, "bob", "bob@example.com", base)
	cat := mustCreateUser(t, s, "cat", "cat@example.com", base)

	added, err := users.AddSubscription(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = users.AddSubscription(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, added, "second add must not change the set")

	added, err = users.AddSubscription(ctx, ann.ID, cat.ID)
	require.NoError(t, err)
	assert.True(t, added)

	got, err := users.GetByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob.ID, cat.ID}, got.SubscribedUsers)

	removed, err := users.RemoveSubscription(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = users.RemoveSubscription(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = users.GetByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{cat.ID}, got.SubscribedUsers)

	require.NoError(t, users.AdjustSubscribers(ctx, bob.ID, 1))
	require.NoError(t, users.AdjustSubscribers(ctx, bob.ID, 1))
	require.NoError(t, users.AdjustSubscribers(ctx, bob.ID, -5))
	got, err = users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Subscribers)

	_, err = users.AddSubscription(ctx, bob.ID, cat.ID)
	require.NoError(t, err)
	n, err := users.RemoveSubscriber(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	for _, id := range []string{ann.ID, bob.ID} {
		got, err = users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got.SubscribedUsers)
	}
	n, err = users.RemoveSubscriber(ctx, cat.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = users.AddSubscription(ctx, "missing-id", bob.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = users.RemoveSubscription(ctx, "missing-id", bob.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.True(t, errors.Is(users.AdjustSubscribers(ctx, "missing-id", 1), common.ErrNotFound))
}

func testPostsAndComments(t *testing.T, s store.Store) {
	ctx := context.Background()

	ann := mustCreateUser(t, s, "ann", "ann@example.com", base)
	bob := mustCreateUser(t, s, "bob", "bob@example.com", base)

	p1 := &models.Post{UserID: ann.ID, Title: "one", Slug: "one", Photo: "one.png", CreatedAt: base, UpdatedAt: base}
	p2 := &models.Post{UserID: ann.ID, Title: "two", Slug: "two", CreatedAt: base.Add(time.Minute), UpdatedAt: base}
	p3 := &models.Post{UserID: bob.ID, Title: "three", Slug: "three", CreatedAt: base, UpdatedAt: base}
	for _, p := range []*models.Post{p1, p2, p3} {
		require.NoError(t, s.Posts().Create(ctx, p))
		require.NotEmpty(t, p.ID)
	}

	for _, c := range []*models.Comment{
		{PostID: p1.ID, UserID: bob.ID, Desc: "nice", CreatedAt: base},
		{PostID: p2.ID, UserID: bob.ID, Desc: "cool", CreatedAt: base},
		{PostID: p3.ID, UserID: ann.ID, Desc: "hey", CreatedAt: base},
	} {
		require.NoError(t, s.Comments().Create(ctx, c))
	}

	posts, err := s.Posts().ListByUser(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0].Title)
	assert.Equal(t, "one.png", posts[0].Photo)

	n, err := s.Comments().DeleteByPostIDs(ctx, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Posts().DeleteByIDs(ctx, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Posts().GetByID(ctx, p1.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	kept, err := s.Posts().GetByID(ctx, p3.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, kept.UserID)

	comments, err := s.Comments().ListByPost(ctx, p3.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hey", comments[0].Desc)

	n, err = s.Posts().DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = s.Comments().DeleteByPostIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func testVideoReactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	videos := s.Videos()

	owner := mustCreateUser(t, s, "ann", "ann@example.com", base)
	v := &models.Video{UserID: owner.ID, Title: "clip", VideoURL: "clip.mp4", CreatedAt: base}
	require.NoError(t, videos.Create(ctx, v))

	require.NoError(t, videos.SetReaction(ctx, v.ID, "u1", models.ReactionLike))
	require.NoError(t, videos.SetReaction(ctx, v.ID, "u1", models.ReactionLike))
	require.NoError(t, videos.SetReaction(ctx, v.ID, "u2", models.ReactionLike))

	got, err := videos.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, got.Likes)
	assert.Empty(t, got.Dislikes)

	require.NoError(t, videos.SetReaction(ctx, v.ID, "u1", models.ReactionDislike))

	got, err = videos.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got.Likes)
	assert.Equal(t, []string{"u1"}, got.Dislikes)

	err = videos.SetReaction(ctx, "missing-id", "u1", models.ReactionLike)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = videos.GetByID(ctx, "missing-id")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func testLevels(t *testing.T, s store.Store) {
	levels, err := s.Levels().List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, levels)
	for i := 1; i < len(levels); i++ {
		assert.LessOrEqual(t, levels[i-1].ThresholdScore, levels[i].ThresholdScore)
	}
}

func testEvents(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := "u1"

	for i, typ := range []string{"user.register", "user.update", "user.delete"} {
		e := &models.Event{Type: typ, Level: "info", Message: typ, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if i == 0 {
			e.UserID = &userID
		}
		require.NoError(t, s.Events().Create(ctx, e))
		require.NotEmpty(t, e.ID)
	}

	recent, err := s.Events().Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "user.delete", recent[0].Type)
	assert.Equal(t, "user.update", recent[1].Type)
	assert.Nil(t, recent[0].UserID)

	all, err := s.Events().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[2].UserID)
	assert.Equal(t, "u1", *all[2].UserID)
}
