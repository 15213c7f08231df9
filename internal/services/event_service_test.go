package services

import (
	"context"
	"testing"
	"time"

	"github.com/isdelr/mediaverse-be/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService(t *testing.T) {
	ctx := context.Background()
	svc := NewEventService(memstore.New().Events())
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	uid := "u1"
	require.NoError(t, svc.CreateEvent(ctx, EventUserRegister, "info", "registered", &uid))
	require.NoError(t, svc.CreateEvent(ctx, EventUserDelete, "warn", "deleted", nil))

	events, err := svc.GetRecentEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventUserDelete, events[0].Type)
	assert.Equal(t, at, events[0].CreatedAt)
	require.NotNil(t, events[1].UserID)
	assert.Equal(t, "u1", *events[1].UserID)

	events, err = svc.GetRecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
