package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/mediaverse-be/internal/auth"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store/memstore"
	"github.com/stretchr/testify/require"
)

type fakeRemover struct {
	mu   sync.Mutex
	refs []string
}

func (f *fakeRemover) RemoveAsync(_ context.Context, refs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ref := range refs {
		if ref != "" {
			f.refs = append(f.refs, ref)
		}
	}
}

func (f *fakeRemover) removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refs...)
}

type testEnv struct {
	store   *memstore.Store
	tokens  *auth.TokenService
	remover *fakeRemover
	events  *EventService
	users   *UserService
	videos  *VideoService
	posts   *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memstore.New()
	tokens := auth.NewTokenService("test-secret", 0)
	remover := &fakeRemover{}
	events := NewEventService(st.Events())

	users := NewUserService(st, tokens, auth.NewHasher(4), remover, events)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	users.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &testEnv{
		store:   st,
		tokens:  tokens,
		remover: remover,
		events:  events,
		users:   users,
		videos:  NewVideoService(st.Videos()),
		posts:   NewPostService(st.Posts(), st.Comments()),
	}
}

func (e *testEnv) register(t *testing.T, name, email string) models.UserView {
	t.Helper()
	v, err := e.users.Register(context.Background(), name, email, "secret1", "")
	require.NoError(t, err)
	return v
}

func (e *testEnv) makeAdmin(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	u, err := e.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	u.Admin = true
	require.NoError(t, e.store.Users().Update(ctx, u))
}
