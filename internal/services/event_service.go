package services

import (
	"context"
	"time"

	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
	"github.com/rs/zerolog/log"
)

// Event types recorded by the user lifecycle.
const (
	EventUserRegister = "user.register"
	EventUserGoogle   = "user.google"
	EventUserUpdate   = "user.update"
	EventUserDelete   = "user.delete"
	EventUserScore    = "user.score"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService records account activity.
type EventService struct {
	events store.EventRepository
	now    func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(events store.EventRepository) *EventService {
	return &EventService{events: events, now: time.Now}
}

// CreateEvent logs a new event.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error {
	event := models.Event{
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	return s.events.Create(ctx, &event)
}

// GetRecentEvents retrieves the most recent events, newest first.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.events.Recent(ctx, limit)
}

// recordEvent writes an info event. A failure is logged and swallowed so it
// never fails the operation being recorded.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, message, userID string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, "info", message, &userID); err != nil {
		log.Error().Err(err).Str("type", eventType).Str("userID", userID).Msg("Failed to record event")
	}
}
