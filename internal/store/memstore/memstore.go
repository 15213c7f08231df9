// Package memstore is an in-process store.Store guarded by a single mutex.
// It backs STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
)

// Store keeps every record in memory.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	videos   map[string]*models.Video
	levels   []models.Level
	events   []models.Event
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store seeded with the default levels.
func New() *Store {
	levels := make([]models.Level, len(store.DefaultLevels))
	copy(levels, store.DefaultLevels)
	return &Store{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		videos:   make(map[string]*models.Video),
		levels:   levels,
	}
}

func (s *Store) Users() store.UserRepository       { return userRepo{s} }
func (s *Store) Posts() store.PostRepository       { return postRepo{s} }
func (s *Store) Comments() store.CommentRepository { return commentRepo{s} }
func (s *Store) Videos() store.VideoRepository     { return videoRepo{s} }
func (s *Store) Levels() store.LevelRepository     { return levelRepo{s} }
func (s *Store) Events() store.EventRepository     { return eventRepo{s} }
func (s *Store) Close(context.Context) error       { return nil }

func newID() string { return uuid.NewString() }

func cloneUser(u *models.User) models.User {
	c := *u
	c.SubscribedUsers = append([]string(nil), u.SubscribedUsers...)
	return c
}

func cloneVideo(v *models.Video) models.Video {
	c := *v
	c.Likes = append([]string(nil), v.Likes...)
	c.Dislikes = append([]string(nil), v.Dislikes...)
	return c
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return common.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = newID()
	}
	c := cloneUser(user)
	r.s.users[user.ID] = &c
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, common.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return models.User{}, common.ErrNotFound
}

func (r userRepo) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return common.ErrDuplicateEmail
	}

	updated := cloneUser(&user)
	updated.Subscribers = existing.Subscribers
	updated.SubscribedUsers = existing.SubscribedUsers
	updated.CreatedAt = existing.CreatedAt
	r.s.users[user.ID] = &updated
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r userRepo) matching(filter models.UserFilter) []*models.User {
	needle := strings.ToLower(filter.EmailContains)
	var out []*models.User
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out
}

func (r userRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if filter.Offset >= len(matched) {
		return []models.User{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]models.User, 0, len(matched))
	for _, u := range matched {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r userRepo) Count(_ context.Context, filter models.UserFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r userRepo) AddSubscription(_ context.Context, userID, targetID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return false, common.ErrNotFound
	}
	if contains(u.SubscribedUsers, targetID) {
		return false, nil
	}
	u.SubscribedUsers = append(u.SubscribedUsers, targetID)
	return true, nil
}

func (r userRepo) RemoveSubscription(_ context.Context, userID, targetID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return false, common.ErrNotFound
	}
	if !contains(u.SubscribedUsers, targetID) {
		return false, nil
	}
	u.SubscribedUsers = without(u.SubscribedUsers, targetID)
	return true, nil
}

func (r userRepo) RemoveSubscriber(_ context.Context, targetID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, u := range r.s.users {
		if contains(u.SubscribedUsers, targetID) {
			u.SubscribedUsers = without(u.SubscribedUsers, targetID)
			n++
		}
	}
	return n, nil
}

func (r userRepo) AdjustSubscribers(_ context.Context, userID string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.Subscribers += delta
	if u.Subscribers < 0 {
		u.Subscribers = 0
	}
	return nil
}

// --- posts ---

type postRepo struct{ s *Store }

func (r postRepo) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if post.ID == "" {
		post.ID = newID()
	}
	c := *post
	r.s.posts[post.ID] = &c
	return nil
}

func (r postRepo) GetByID(_ context.Context, id string) (models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return models.Post{}, common.ErrNotFound
	}
	return *p, nil
}

func (r postRepo) ListByUser(_ context.Context, userID string) ([]models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Post
	for _, p := range r.s.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r postRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.s.posts[id]; ok {
			delete(r.s.posts, id)
			n++
		}
	}
	return n, nil
}

// --- comments ---

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if comment.ID == "" {
		comment.ID = newID()
	}
	c := *comment
	r.s.comments[comment.ID] = &c
	return nil
}

func (r commentRepo) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r commentRepo) DeleteByPostIDs(_ context.Context, postIDs []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if contains(postIDs, c.PostID) {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

// --- videos ---

type videoRepo struct{ s *Store }

func (r videoRepo) Create(_ context.Context, video *models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if video.ID == "" {
		video.ID = newID()
	}
	c := cloneVideo(video)
	r.s.videos[video.ID] = &c
	return nil
}

func (r videoRepo) GetByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	return cloneVideo(v), nil
}

func (r videoRepo) SetReaction(_ context.Context, videoID, userID string, reaction models.Reaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.videos[videoID]
	if !ok {
		return common.ErrNotFound
	}
	v.Likes = without(v.Likes, userID)
	v.Dislikes = without(v.Dislikes, userID)
	if reaction == models.ReactionLike {
		v.Likes = append(v.Likes, userID)
	} else {
		v.Dislikes = append(v.Dislikes, userID)
	}
	return nil
}

// --- levels ---

type levelRepo struct{ s *Store }

func (r levelRepo) List(context.Context) ([]models.Level, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Level, len(r.s.levels))
	copy(out, r.s.levels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ThresholdScore < out[j].ThresholdScore })
	return out, nil
}

// --- events ---

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if event.ID == "" {
		event.ID = newID()
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r eventRepo) Recent(_ context.Context, limit int) ([]models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		return []models.Event{}, nil
	}
	out := make([]models.Event, 0, limit)
	for i := len(r.s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.events[i])
	}
	return out, nil
}
