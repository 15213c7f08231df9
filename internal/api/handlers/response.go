package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/mediaverse-be/internal/auth"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// messageResponse is the body of every error and of plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError renders err as {"message": ...} with the status its kind
// carries. Unexpected errors are logged and hidden behind a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.StatusCode(err)
	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request rejected")
	}
	writeJSON(w, status, messageResponse{Message: common.PublicMessage(err)})
}

// decodeJSON reads the request body into payload and runs its validation.
func decodeJSON(r *http.Request, payload validation.Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil && !errors.Is(err, io.EOF) {
		return common.ErrValidation.WithMessage("Invalid request body")
	}
	if err := payload.Validate(); err != nil {
		return common.ErrValidation.WithMessage(err.Error())
	}
	return nil
}

// actingUserID returns the id the Auth Gate stored in the request context.
func actingUserID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", common.ErrInvalidToken.WithMessage("Not authorized, no token")
	}
	return id, nil
}

// setSessionCookie stores token in the HttpOnly session cookie.
func setSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
