// Package store declares the persistence contracts used by the services.
// Implementations live in the sqlstore, mongostore and memstore
// subpackages. Every lookup of a missing record returns common.ErrNotFound
// and every unique-email violation returns common.ErrDuplicateEmail.
package store

import (
	"context"

	"github.com/isdelr/mediaverse-be/internal/models"
)

// Store groups the repositories of one backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Videos() VideoRepository
	Levels() LevelRepository
	Events() EventRepository
	Close(ctx context.Context) error
}

// UserRepository persists user records. Update writes profile fields only;
// the subscription set and the subscriber counter change exclusively
// through the dedicated atomic operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Count(ctx context.Context, filter models.UserFilter) (int64, error)

	// AddSubscription adds targetID to userID's subscription set and reports
	// whether the set changed.
	AddSubscription(ctx context.Context, userID, targetID string) (bool, error)
	// RemoveSubscription removes targetID from userID's subscription set and
	// reports whether the set changed.
	RemoveSubscription(ctx context.Context, userID, targetID string) (bool, error)
	// RemoveSubscriber pulls targetID out of every user's subscription set
	// and returns how many sets changed.
	RemoveSubscriber(ctx context.Context, targetID string) (int64, error)
	// AdjustSubscribers adds delta to the user's subscriber counter, never
	// letting it drop below zero.
	AdjustSubscribers(ctx context.Context, userID string, delta int) error
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteByPostIDs(ctx context.Context, postIDs []string) (int64, error)
}

// VideoRepository persists videos and their reactions.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (models.Video, error)
	// SetReaction puts userID in the reaction's set and removes it from the
	// opposite one in a single operation.
	SetReaction(ctx context.Context, videoID, userID string, reaction models.Reaction) error
}

// LevelRepository lists the score levels, lowest threshold first.
type LevelRepository interface {
	List(ctx context.Context) ([]models.Level, error)
}

// EventRepository persists the account activity log.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// DefaultLevels seeds stores that start empty.
var DefaultLevels = []models.Level{
	{Name: "Beginner", ThresholdScore: 0},
	{Name: "Intermediate", ThresholdScore: 100},
	{Name: "Advanced", ThresholdScore: 250},
	{Name: "Expert", ThresholdScore: 500},
}
