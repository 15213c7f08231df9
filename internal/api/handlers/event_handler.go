package handlers

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/services"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// EventHandler serves the account activity log to admins.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// EventQuery is read from the query string of GET /events.
type EventQuery struct {
	Limit int
	Type  string
}

func (q *EventQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Limit, validation.Min(1), validation.Max(maxEventLimit)),
		validation.Field(&q.Type, validation.In(
			services.EventUserRegister, services.EventUserGoogle, services.EventUserUpdate,
			services.EventUserDelete, services.EventUserScore,
		)),
	)
}

func parseEventQuery(r *http.Request) (EventQuery, error) {
	q := EventQuery{Limit: defaultEventLimit, Type: r.URL.Query().Get("type")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, common.ErrValidation.WithMessage("limit: must be a number")
		}
		q.Limit = n
	}
	if err := q.Validate(); err != nil {
		return q, common.ErrValidation.WithMessage(err.Error())
	}
	return q, nil
}

// GetRecent lists the newest events. With ?type= only that kind is kept
// from the requested window.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	q, err := parseEventQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	events, err := h.service.GetRecentEvents(r.Context(), q.Limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if q.Type == "" || e.Type == q.Type {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
