package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/services"
)

// PostHandler handles HTTP requests for posts and their comments.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostPayload defines the structure for post creation requests.
type PostPayload struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Caption string `json:"caption"`
	Photo   string `json:"photo"`
}

func (p *PostPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
	)
}

// CommentPayload defines the structure for comment creation requests.
type CommentPayload struct {
	PostID string `json:"postId"`
	Desc   string `json:"desc"`
}

func (p *CommentPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.PostID, validation.Required),
		validation.Field(&p.Desc, validation.Required),
	)
}

// Create stores a new post authored by the caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload PostPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, models.Post{
		Title:   payload.Title,
		Slug:    payload.Slug,
		Caption: payload.Caption,
		Photo:   payload.Photo,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Get returns a single post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Comments lists the comments of a post.
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.GetComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateComment attaches a comment by the caller to a post.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload CommentPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), userID, payload.PostID, payload.Desc)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
