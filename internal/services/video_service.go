package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
)

// VideoServiceProvider defines the interface for video services.
type VideoServiceProvider interface {
	CreateVideo(ctx context.Context, userID, title, videoURL string) (models.Video, error)
	GetVideoByID(ctx context.Context, id string) (models.Video, error)
	SetReaction(ctx context.Context, userID, videoID string, reaction models.Reaction) error
}

// VideoService provides business logic for videos and their reactions.
type VideoService struct {
	videos store.VideoRepository
	now    func() time.Time
}

// NewVideoService creates a new VideoService.
func NewVideoService(videos store.VideoRepository) *VideoService {
	return &VideoService{videos: videos, now: time.Now}
}

// CreateVideo stores a new video owned by userID.
func (s *VideoService) CreateVideo(ctx context.Context, userID, title, videoURL string) (models.Video, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Video{}, common.ErrValidation.WithMessage("title: cannot be blank")
	}
	video := models.Video{
		UserID:    userID,
		Title:     title,
		VideoURL:  videoURL,
		Likes:     []string{},
		Dislikes:  []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.videos.Create(ctx, &video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// GetVideoByID retrieves a single video.
func (s *VideoService) GetVideoByID(ctx context.Context, id string) (models.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return models.Video{}, err
	}
	if video.Likes == nil {
		video.Likes = []string{}
	}
	if video.Dislikes == nil {
		video.Dislikes = []string{}
	}
	return video, nil
}

// SetReaction records userID's reaction. The user ends up in exactly one of
// the video's like and dislike sets.
func (s *VideoService) SetReaction(ctx context.Context, userID, videoID string, reaction models.Reaction) error {
	if !reaction.Valid() {
		return common.ErrValidation.WithMessage("unknown reaction " + string(reaction))
	}
	err := s.videos.SetReaction(ctx, videoID, userID, reaction)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotFound.WithMessage("Video not found")
	}
	return err
}
