package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Pagination headers set by List.
const (
	HeaderFilter         = "x-filter"
	HeaderTotalCount     = "x-totalcount"
	HeaderCurrentPage    = "x-currentpage"
	HeaderPageSize       = "x-pagesize"
	HeaderTotalPageCount = "x-totalpagecount"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service       services.UserServiceProvider
	videos        services.VideoServiceProvider
	uploader      *Uploader
	secureCookies bool
}

// NewUserHandler creates a new UserHandler. secureCookies marks the session
// cookie Secure, which production deployments need.
func NewUserHandler(service services.UserServiceProvider, videos services.VideoServiceProvider, uploader *Uploader, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, videos: videos, uploader: uploader, secureCookies: secureCookies}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Status   string `json:"status"`
}

func (p *RegisterPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *LoginPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// GoogleAuthPayload carries the identity asserted by the Google sign-in flow.
type GoogleAuthPayload struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (p *GoogleAuthPayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// UpdateProfilePayload holds the optional profile fields.
type UpdateProfilePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    *bool  `json:"admin"`
}

func (p *UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Email, is.Email),
	)
}

// ScorePayload sets a user's score.
type ScorePayload struct {
	Score *int `json:"score"`
}

func (p *ScorePayload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Score, validation.NotNil, validation.Min(0)),
	)
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.Register(r.Context(), payload.Name, payload.Email, payload.Password, payload.Status)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	setSessionCookie(w, view.Token, h.secureCookies)
	writeJSON(w, http.StatusCreated, view)
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		WriteError(w, r, err)
		return
	}

	setSessionCookie(w, view.Token, h.secureCookies)
	writeJSON(w, http.StatusOK, view)
}

// GoogleAuth signs in, or signs up, a user verified by Google.
func (h *UserHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var payload GoogleAuthPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.GoogleAuth(r.Context(), payload.Name, payload.Email, payload.Avatar)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	setSessionCookie(w, view.Token, h.secureCookies)
	writeJSON(w, http.StatusOK, view)
}

// Profile returns the authenticated user.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Find returns the public view of any user.
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.FindUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var payload UpdateProfilePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	patch := services.ProfilePatch{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Admin:    payload.Admin,
	}
	view, err := h.service.UpdateProfile(r.Context(), userID, chi.URLParam(r, "userId"), patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateProfilePicture stores the uploaded image as the user's avatar. A
// request without a file clears the avatar.
func (h *UserHandler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	ref, err := h.uploader.SaveImage(w, r, "profilePicture")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.UpdateAvatar(r.Context(), userID, ref)
	if err != nil {
		if ref != "" {
			h.uploader.Discard(r, ref)
		}
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// List returns one page of users. Paging details travel in headers.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.ListUsers(r.Context(), q.Get("searchKeyword"), page, limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	w.Header().Set(HeaderFilter, result.Filter)
	w.Header().Set(HeaderTotalCount, strconv.FormatInt(result.Total, 10))
	w.Header().Set(HeaderCurrentPage, strconv.Itoa(result.Page))
	w.Header().Set(HeaderPageSize, strconv.Itoa(result.PageSize))
	w.Header().Set(HeaderTotalPageCount, strconv.Itoa(result.Pages))
	writeJSON(w, http.StatusOK, result.Users)
}

// Delete removes a user and everything they own.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subscribe adds the user in the URL to the caller's subscriptions.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.service.Subscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Subscription successful."})
}

// Unsubscribe removes the user in the URL from the caller's subscriptions.
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.service.Unsubscribe(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Unsubscription successful."})
}

// Like marks the video as liked by the caller.
func (h *UserHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.ReactionLike, "The video has been liked.")
}

// Dislike marks the video as disliked by the caller.
func (h *UserHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.ReactionDislike, "The video has been disliked.")
}

func (h *UserHandler) react(w http.ResponseWriter, r *http.Request, reaction models.Reaction, msg string) {
	userID, err := actingUserID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.videos.SetReaction(r.Context(), userID, chi.URLParam(r, "videoId"), reaction); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// UpdateScore sets a user's score, which also moves their level.
func (h *UserHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var payload ScorePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	view, err := h.service.UpdateScore(r.Context(), chi.URLParam(r, "userId"), *payload.Score)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
