package services

import (
	"context"
	"errors"
	"testing"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetReaction_Exclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "ann", "ann@example.com")
	viewer := env.register(t, "bob", "bob@example.com")

	v, err := env.videos.CreateVideo(ctx, owner.ID, "clip", "https://cdn/clip.mp4")
	require.NoError(t, err)

	require.NoError(t, env.videos.SetReaction(ctx, viewer.ID, v.ID, models.ReactionLike))
	got, err := env.videos.GetVideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{viewer.ID}, got.Likes)
	assert.Empty(t, got.Dislikes)

	require.NoError(t, env.videos.SetReaction(ctx, viewer.ID, v.ID, models.ReactionDislike))
	got, err = env.videos.GetVideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Likes, viewer.ID)
	assert.Equal(t, []string{viewer.ID}, got.Dislikes)
}

func TestSetReaction_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.videos.SetReaction(ctx, "u1", "missing", models.ReactionLike)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = env.videos.SetReaction(ctx, "u1", "missing", models.Reaction("love"))
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCreateVideo_RequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.videos.CreateVideo(context.Background(), "u1", "  ", "x.mp4")
	assert.True(t, errors.Is(err, common.ErrValidation))
}
