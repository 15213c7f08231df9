package services

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
)

// PostServiceProvider defines the interface for post and comment services.
type PostServiceProvider interface {
	CreatePost(ctx context.Context, userID string, post models.Post) (models.Post, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	CreateComment(ctx context.Context, userID, postID, desc string) (models.Comment, error)
	GetComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// PostService provides business logic for posts and comments.
type PostService struct {
	posts    store.PostRepository
	comments store.CommentRepository
	now      func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(posts store.PostRepository, comments store.CommentRepository) *PostService {
	return &PostService{posts: posts, comments: comments, now: time.Now}
}

func slugify(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

// CreatePost stores a post authored by userID. A missing slug is derived
// from the title plus a short random suffix.
func (s *PostService) CreatePost(ctx context.Context, userID string, post models.Post) (models.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	if err := validation.Validate(post.Title, validation.Required, validation.Length(1, 200)); err != nil {
		return models.Post{}, common.ErrValidation.WithMessage("title: " + err.Error())
	}
	if post.Slug == "" {
		post.Slug = strings.Trim(slugify(post.Title)+"-"+uuid.NewString()[:8], "-")
	}

	now := s.now().UTC()
	post.ID = ""
	post.UserID = userID
	post.CreatedAt = now
	post.UpdatedAt = now
	if err := s.posts.Create(ctx, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// GetPostByID retrieves a single post.
func (s *PostService) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// CreateComment attaches a comment to an existing post.
func (s *PostService) CreateComment(ctx context.Context, userID, postID, desc string) (models.Comment, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return models.Comment{}, common.ErrValidation.WithMessage("desc: cannot be blank")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		PostID:    postID,
		UserID:    userID,
		Desc:      desc,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// GetComments lists the comments of a post, oldest first.
func (s *PostService) GetComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}
