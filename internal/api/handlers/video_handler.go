package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/isdelr/mediaverse-be/internal/services"
)

// VideoHandler handles HTTP requests for videos.
type VideoHandler struct {
	service services.VideoServiceProvider
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(service services.VideoServiceProvider) *VideoHandler {
	return &VideoHandler{service: service}
}

// VideoPayload defines the structure for video creation requests.
type VideoPayload struct {
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
}

func (p *VideoPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.VideoURL, validation.Required, is.URL),
	)
}

// Create stores a new video owned by the caller.
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload VideoPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	video, err := h.service.CreateVideo(r.Context(), userID, payload.Title, payload.VideoURL)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

// Get returns a single video.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.GetVideoByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}
