package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movies/internal/config"
	"github.com/iliyamo/movies/internal/credential"
	"github.com/iliyamo/movies/internal/database"
	"github.com/iliyamo/movies/internal/handler"
	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/metrics"
	"github.com/iliyamo/movies/internal/middleware"
	"github.com/iliyamo/movies/internal/queue"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/router"
	"github.com/iliyamo/movies/internal/service"
	"github.com/iliyamo/movies/internal/tmdb"
)

func main() {
	cfg := config.Load()
	logging.SetGlobal(logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("movies", reg)

	// ---- Storage ----
	var (
		entries  repository.EntryRepository
		apiKeys  repository.APIKeyRepository
		dbPinger handler.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("STORE_DRIVER=memory: entries are not persisted")
		entries = repository.NewMemoryEntryRepo()
		apiKeys = repository.NewMemoryAPIKeyRepo()
	default:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
		entries = repository.NewEntryRepo(db)
		apiKeys = repository.NewAPIKeyRepo(db)
		dbPinger = db
	}

	// ---- Credentials: stored (encrypted) keys first, then TMDB_API_KEY ----
	creds := credential.Chain{}
	if cfg.MasterKey != "" {
		cipher, err := credential.NewCipherFromHex(cfg.MasterKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid MOVIES_MASTER_KEY")
		}
		creds = append(creds, credential.NewDBStore(apiKeys, cipher))
	} else {
		log.Warn().Msg("MOVIES_MASTER_KEY not set; stored API keys are ignored")
	}
	creds = append(creds, credential.NewEnvStore())

	// ---- Events ----
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		async := service.NewAsyncPublisher(&service.AMQPPublisher{URL: cfg.RabbitMQURL, DialTimeout: service.DefaultDialTimeout}, 256, 10*time.Second)
		go async.Run(ctx)
		events = async
		go func() {
			if err := queue.StartEntryConsumer(ctx, cfg.RabbitMQURL, cfg.EventLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("entry consumer stopped")
			}
		}()
	}

	// ---- Services ----
	provider := tmdb.NewClient(tmdb.Config{BaseURL: cfg.TMDBBaseURL, Timeout: cfg.TMDBTimeout}, m)
	h := handler.NewMoviesHandler(
		service.NewEntriesService(entries, creds, provider, events, m),
		service.NewTicketService(entries, events, m),
		service.NewCalendarService(entries, m),
	)

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogging())
	router.RegisterRoutes(e, dbPinger, reg)
	router.RegisterMovies(e, h, cfg.JWTSecret, cfg.RateLimit, rdb)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
