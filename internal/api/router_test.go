package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/isdelr/mediaverse-be/internal/api/handlers"
	"github.com/isdelr/mediaverse-be/internal/auth"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/services"
	"github.com/isdelr/mediaverse-be/internal/storage"
	"github.com/isdelr/mediaverse-be/internal/store/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler   http.Handler
	store     *memstore.Store
	remover   *storage.Remover
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memstore.New()
	dir := t.TempDir()
	files, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	remover := storage.NewRemover(files)

	tokens := auth.NewTokenService("router-secret", 0)
	events := services.NewEventService(st.Events())
	users := services.NewUserService(st, tokens, auth.NewHasher(4), remover, events)

	router := NewRouter(Deps{
		Logger:      zerolog.Nop(),
		Users:       users,
		Videos:      services.NewVideoService(st.Videos()),
		Posts:       services.NewPostService(st.Posts(), st.Comments()),
		Events:      events,
		Tokens:      tokens,
		Uploader:    handlers.NewUploader(files, remover, 1<<10),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{handler: router, store: st, remover: remover, uploadDir: dir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name, email string) models.UserView {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.UserView](t, rec)
}

func (s *testServer) promote(t *testing.T, id string, admin, editor bool) {
	t.Helper()
	ctx := context.Background()
	u, err := s.store.Users().GetByID(ctx, id)
	require.NoError(t, err)
	u.Admin, u.Editor = admin, editor
	require.NoError(t, s.store.Users().Update(ctx, u))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["message"]
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "ann", "email": "Ann@Example.com", "password": "secret1", "status": "hi",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	view := decode[models.UserView](t, rec)
	assert.Equal(t, "ann@example.com", view.Email)
	assert.NotEmpty(t, view.Token)
	assert.Equal(t, []string{}, view.SubscribedUsers)

	rec = s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "ann2", "email": "ann@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already registered", message(t, rec))

	rec = s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[models.UserView](t, rec).Token)
}

func TestRegisterShortPassword(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "ann", "email": "ann@example.com", "password": "abc",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decode[models.UserView](t, rec).Token)
}

func TestLoginMalformedEmail(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedUserLeavesSubscriptions(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	bob := s.register(t, "bob", "bob@example.com")

	rec := s.do(t, http.MethodPut, "/api/users/sub/"+bob.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/users/"+ann.ID, ann.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/find/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[models.UserView](t, rec).Subscribers)
}

func TestGoogleSignIn(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "gina", "email": "gina@example.com", "avatar": "https://img/g.png"}

	rec := s.do(t, http.MethodPost, "/api/users/signin/google", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[models.UserView](t, rec)

	rec = s.do(t, http.MethodPost, "/api/users/signin/google", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.ID, decode[models.UserView](t, rec).ID)
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")

	rec := s.do(t, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", message(t, rec))

	rec = s.do(t, http.MethodGet, "/api/users/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/profile", ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[models.UserView](t, rec)
	assert.Equal(t, ann.ID, profile.ID)
	assert.Empty(t, profile.Token)
}

func TestProfileFromCookie(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: ann.Token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	bob := s.register(t, "bob", "bob@example.com")

	rec := s.do(t, http.MethodPut, "/api/users/"+bob.ID, ann.Token, map[string]string{"name": "hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/"+ann.ID, ann.Token, map[string]string{"password": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/updateProfile/"+ann.ID, ann.Token, map[string]any{"name": "annie", "admin": true})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.UserView](t, rec)
	assert.Equal(t, "annie", updated.Name)
	assert.False(t, updated.Admin)
	assert.NotEmpty(t, updated.Token)

	s.promote(t, ann.ID, true, false)
	rec = s.do(t, http.MethodPut, "/api/users/missing", ann.Token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsersHeaders(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"amy", "ben", "cat"} {
		s.register(t, name, name+"@Example.com")
	}
	s.register(t, "dan", "dan@other.org")

	rec := s.do(t, http.MethodGet, "/api/users?searchKeyword=EXAMPLE&page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EXAMPLE", rec.Header().Get(handlers.HeaderFilter))
	assert.Equal(t, "3", rec.Header().Get(handlers.HeaderTotalCount))
	assert.Equal(t, "2", rec.Header().Get(handlers.HeaderCurrentPage))
	assert.Equal(t, "2", rec.Header().Get(handlers.HeaderPageSize))
	assert.Equal(t, "2", rec.Header().Get(handlers.HeaderTotalPageCount))

	users := decode[[]models.UserView](t, rec)
	require.Len(t, users, 1)
	assert.Contains(t, users[0].Email, "@example.com")

	rec = s.do(t, http.MethodGet, "/api/users?page=9", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
	assert.Equal(t, "10", rec.Header().Get(handlers.HeaderPageSize))
}

func TestSubscribeFlow(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	bob := s.register(t, "bob", "bob@example.com")

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPut, "/api/users/sub/"+bob.ID, ann.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/users/find/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.UserView](t, rec).Subscribers)

	rec = s.do(t, http.MethodGet, "/api/users/profile", ann.Token, nil)
	assert.Equal(t, []string{bob.ID}, decode[models.UserView](t, rec).SubscribedUsers)

	rec = s.do(t, http.MethodPut, "/api/users/unsub/"+bob.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/users/find/"+bob.ID, "", nil)
	assert.Equal(t, 0, decode[models.UserView](t, rec).Subscribers)

	rec = s.do(t, http.MethodPut, "/api/users/sub/missing", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoReactions(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")

	rec := s.do(t, http.MethodPost, "/api/videos", ann.Token, map[string]string{
		"title": "clip", "videoUrl": "https://cdn.example.com/clip.mp4",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	video := decode[models.Video](t, rec)

	rec = s.do(t, http.MethodPut, "/api/users/like/"+video.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/users/dislike/"+video.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/videos/find/"+video.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Video](t, rec)
	assert.Empty(t, got.Likes)
	assert.Equal(t, []string{ann.ID}, got.Dislikes)

	rec = s.do(t, http.MethodPut, "/api/users/like/missing", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Video not found", message(t, rec))
}

func TestPostsRequireEditor(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	post := map[string]string{"title": "Hello World"}

	rec := s.do(t, http.MethodPost, "/api/posts", ann.Token, post)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized as an admin or editor", message(t, rec))

	s.promote(t, ann.ID, false, true)
	rec = s.do(t, http.MethodPost, "/api/posts", ann.Token, post)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Post](t, rec)
	assert.True(t, strings.HasPrefix(created.Slug, "hello-world-"))

	rec = s.do(t, http.MethodPost, "/api/comments", ann.Token, map[string]string{"postId": created.ID, "desc": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/posts/"+created.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[[]models.Comment](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Desc)

	rec = s.do(t, http.MethodGet, "/api/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	bob := s.register(t, "bob", "bob@example.com")

	rec := s.do(t, http.MethodDelete, "/api/users/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+ann.ID, ann.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/users/profile", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+ann.ID, ann.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")
	bob := s.register(t, "bob", "bob@example.com")

	rec := s.do(t, http.MethodGet, "/api/events", ann.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/users/"+bob.ID+"/score", ann.Token, map[string]int{"score": 120})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.promote(t, ann.ID, true, false)

	rec = s.do(t, http.MethodPut, "/api/users/"+bob.ID+"/score", ann.Token, map[string]int{"score": 120})
	require.Equal(t, http.StatusOK, rec.Code)
	scored := decode[models.UserView](t, rec)
	assert.Equal(t, 120, scored.Score)
	assert.Equal(t, "Intermediate", scored.Level)

	rec = s.do(t, http.MethodPut, "/api/users/"+bob.ID+"/score", ann.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+bob.ID, ann.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/events?limit=50", ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]models.Event](t, rec)
	require.NotEmpty(t, events)
	assert.Equal(t, services.EventUserDelete, events[0].Type)
}

func TestUpdateProfilePicture(t *testing.T) {
	s := newTestServer(t)
	ann := s.register(t, "ann", "ann@example.com")

	upload := func(filename string, size int) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("profilePicture", filename)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("p"), size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/users/updateProfilePicture", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+ann.Token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("me.txt", 10)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload("me.png", 10)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[models.UserView](t, rec).Avatar
	require.NotEmpty(t, first)
	_, err := os.Stat(filepath.Join(s.uploadDir, first))
	require.NoError(t, err)

	rec = upload("me.jpg", 10)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[models.UserView](t, rec).Avatar
	assert.NotEqual(t, first, second)

	s.remover.Wait()
	_, err = os.Stat(filepath.Join(s.uploadDir, first))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.uploadDir, second))
	assert.NoError(t, err)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
