package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/mediaverse-be/internal/api/handlers"
	"github.com/isdelr/mediaverse-be/internal/auth"
	"github.com/isdelr/mediaverse-be/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Deps holds what the router needs to build its handlers.
type Deps struct {
	Logger   zerolog.Logger
	Users    services.UserServiceProvider
	Videos   services.VideoServiceProvider
	Posts    services.PostServiceProvider
	Events   services.EventServiceProvider
	Tokens   auth.TokenVerifier
	Uploader *handlers.Uploader

	CORSOrigins   []string
	SecureCookies bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(d.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{handlers.HeaderFilter, handlers.HeaderTotalCount, handlers.HeaderCurrentPage, handlers.HeaderPageSize, handlers.HeaderTotalPageCount},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(d.Users, d.Videos, d.Uploader, d.SecureCookies)
	videoHandler := handlers.NewVideoHandler(d.Videos)
	postHandler := handlers.NewPostHandler(d.Posts)
	eventHandler := handlers.NewEventHandler(d.Events)

	authenticate := auth.Authenticate(d.Tokens)
	authenticated := auth.Chain(handlers.WriteError, authenticate)
	adminOnly := auth.Chain(handlers.WriteError, authenticate, auth.RequireAdmin(d.Users))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/signin/google", userHandler.GoogleAuth)
			r.Get("/", userHandler.List)
			r.Get("/find/{id}", userHandler.Find)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/profile", userHandler.Profile)
				r.Put("/{userId}", userHandler.Update)
				r.Put("/updateProfile/{userId}", userHandler.Update)
				r.Put("/updateProfilePicture", userHandler.UpdateProfilePicture)
				r.Put("/sub/{id}", userHandler.Subscribe)
				r.Put("/unsub/{id}", userHandler.Unsubscribe)
				r.Put("/like/{videoId}", userHandler.Like)
				r.Put("/dislike/{videoId}", userHandler.Dislike)
			})

			r.With(auth.Chain(handlers.WriteError, authenticate, auth.RequireSelfOrAdmin(d.Users, "userId"))).
				Delete("/{userId}", userHandler.Delete)
			r.With(adminOnly).Put("/{userId}/score", userHandler.UpdateScore)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/{id}", postHandler.Get)
			r.Get("/{id}/comments", postHandler.Comments)
			r.With(auth.Chain(handlers.WriteError, authenticate, auth.RequireAdminOrEditor(d.Users))).
				Post("/", postHandler.Create)
		})
		r.With(authenticated).Post("/comments", postHandler.CreateComment)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/find/{id}", videoHandler.Get)
			r.With(authenticated).Post("/", videoHandler.Create)
		})

		r.With(adminOnly).Get("/events", eventHandler.GetRecent)
	})

	return r
}
