package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/mediaverse-be/internal/api"
	"github.com/isdelr/mediaverse-be/internal/api/handlers"
	"github.com/isdelr/mediaverse-be/internal/auth"
	"github.com/isdelr/mediaverse-be/internal/config"
	"github.com/isdelr/mediaverse-be/internal/database"
	"github.com/isdelr/mediaverse-be/internal/logger"
	"github.com/isdelr/mediaverse-be/internal/services"
	"github.com/isdelr/mediaverse-be/internal/storage"
	"github.com/isdelr/mediaverse-be/internal/store"
	"github.com/isdelr/mediaverse-be/internal/store/memstore"
	"github.com/isdelr/mediaverse-be/internal/store/mongostore"
	"github.com/isdelr/mediaverse-be/internal/store/sqlstore"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.UploadDriver).Msg("Failed to initialize upload storage")
	}
	remover := storage.NewRemover(files)

	// Set up services
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	eventService := services.NewEventService(st.Events())
	userService := services.NewUserService(st, tokens, auth.NewHasher(cfg.BcryptCost), remover, eventService)
	videoService := services.NewVideoService(st.Videos())
	postService := services.NewPostService(st.Posts(), st.Comments())

	router := api.NewRouter(api.Deps{
		Logger:        log.Logger,
		Users:         userService,
		Videos:        videoService,
		Posts:         postService,
		Events:        eventService,
		Tokens:        tokens,
		Uploader:      handlers.NewUploader(files, remover, cfg.MaxUploadBytes),
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	remover.Wait()
	if err := st.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server exiting")
}

// openStore connects to the configured backend and brings its schema up to
// date.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memstore.New(), nil
	case config.StoreMongo:
		st, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreSQLite, config.StorePostgres:
		source := cfg.DatabasePath
		if cfg.StoreDriver == config.StorePostgres {
			source = cfg.DatabaseDSN
		}
		db, err := database.New(ctx, cfg.StoreDriver, source)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, cfg.StoreDriver); err != nil {
			db.Close()
			return nil, err
		}
		return sqlstore.New(db, cfg.StoreDriver), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	switch cfg.UploadDriver {
	case config.UploadLocal:
		files, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		return files, nil
	case config.UploadS3:
		files, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return files, nil
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.UploadDriver)
	}
}
