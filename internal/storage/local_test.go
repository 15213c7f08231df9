package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndRemove(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")

	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	ref, err := s.Save(ctx, "avatar.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "avatar.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Remove(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, s.Remove(ctx, ref))
}

func TestLocalStore_StaysInsideDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")

	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o600))

	require.NoError(t, s.Remove(ctx, "../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)

	ref, err := s.Save(ctx, "../../evil.png", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "evil.png", ref)
	_, err = os.Stat(filepath.Join(dir, "evil.png"))
	assert.NoError(t, err)
}

func TestLocalStore_SaveRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(ctx, "a.png", "", strings.NewReader("1"))
	require.NoError(t, err)
	_, err = s.Save(ctx, "a.png", "", strings.NewReader("2"))
	assert.Error(t, err)
}
