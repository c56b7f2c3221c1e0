package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/config"
	"github.com/tarotdesk/share-server-go/internal/database"
	"github.com/tarotdesk/share-server-go/internal/handler"
	"github.com/tarotdesk/share-server-go/internal/httputil"
	"github.com/tarotdesk/share-server-go/internal/jobs"
	"github.com/tarotdesk/share-server-go/internal/middleware"
	"github.com/tarotdesk/share-server-go/internal/redis"
	"github.com/tarotdesk/share-server-go/internal/repository"
	"github.com/tarotdesk/share-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	var linkRepo repository.ShareLinkRepository = repository.NewShareLinkRepository(db.DB)

	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")

		linkRepo = repository.NewCachedShareLinkRepository(linkRepo, redisClient, cfg.LinkCacheTTL())
	} else {
		log.Warn().Msg("REDIS_URL not set: access-code lookups are uncached")
	}

	recordStore := repository.NewRecordStore(db.DB)

	linkService := service.NewShareLinkService(linkRepo, recordStore, cfg.ClearExpiryOnActivate)
	gate := service.NewAccessGate(linkRepo)
	recorder := service.NewViewRecorder(linkRepo)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	readingHandler := handler.NewReadingHandler(gate, recorder)
	shareLinkHandler := handler.NewShareLinkHandler(linkService, cfg.PublicBaseURL)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/tarot-reading", func(r chi.Router) {
		r.Mount("/", readingHandler.Routes())
	})

	r.Route("/v1/share-links", func(r chi.Router) {
		r.Mount("/", shareLinkHandler.Routes())
	})

	if cfg.RetentionEnabled() {
		retentionJob := jobs.NewRetentionJob(linkRepo, cfg.Retention(), config.RetentionJobInterval)
		retentionJob.Start()
		defer retentionJob.Stop()
	} else {
		log.Info().Msg("link retention purge disabled, expired links are kept until deleted")
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
