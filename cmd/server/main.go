package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/goblog-backend/blog/application"
	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/dfryer1193/goblog-backend/blog/form"
	"github.com/dfryer1193/goblog-backend/blog/persistence"
	"github.com/dfryer1193/goblog-backend/internal/auth"
	"github.com/dfryer1193/goblog-backend/internal/cache"
	"github.com/dfryer1193/goblog-backend/internal/config"
	"github.com/dfryer1193/goblog-backend/internal/events"
	"github.com/dfryer1193/goblog-backend/internal/logger"
	"github.com/dfryer1193/goblog-backend/internal/middleware"
	"github.com/dfryer1193/goblog-backend/internal/ops"
	"github.com/dfryer1193/goblog-backend/internal/rest"
	"github.com/dfryer1193/goblog-backend/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const renderCachePruneInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if logger.New(cfg.LogLevel).GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLitePath})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checks := map[string]ops.Checker{"sqlite": database}

	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(events.LogListener())
	dispatcher.Subscribe(events.NewMetricsListener(reg))
	if cfg.SignedPosts {
		dispatcher.Subscribe(events.SignAuthor(), domain.PostCreated)
	}

	renderCache := newRenderCache(ctx, cfg, checks)
	dispatcher.Subscribe(events.InvalidateRenderCache(renderCache))

	if cfg.NatsURL != "" {
		natsClient, err := events.NewClient(cfg.NatsURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NatsURL).Msg("Failed to connect to NATS")
		}
		defer func() {
			if err := natsClient.Drain(); err != nil {
				log.Error().Err(err).Msg("Failed to drain NATS connection")
			}
		}()

		dispatcher.Subscribe(events.NewForwarder(natsClient, cfg.NatsSubjectPrefix))
		checks["nats"] = natsClient
		log.Info().Str("prefix", cfg.NatsSubjectPrefix).Msg("Forwarding post events to NATS")
	}

	repo := persistence.NewPostRepository(database.DB(), cfg.PostsPerPage)
	forms := form.NewFactory(form.PostType, form.SignedPostType)
	routes := rest.BackendRoutes()

	admin := application.NewPostAdmin(
		repo,
		application.NewPostManipulator(repo),
		application.FormsFrom(forms.Create),
		dispatcher,
		routes,
		application.NewMarkdownRenderer(cfg.SiteURL),
		application.WithSignedPosts(cfg.SignedPosts),
		application.WithRenderCache(renderCache),
	)

	if len(cfg.AdminUsers) == 0 {
		log.Warn().Msg("BLOG_ADMIN_USERS is not set, the backend is not protected")
	}

	router, err := rest.NewRouter(routes, rest.NewPostController(admin), auth.BasicAuth(cfg.AdminUsers), middleware.NewMetrics(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	opsSrv := &http.Server{
		Addr:    cfg.OpsAddr,
		Handler: ops.NewRouter(reg, reg, checks),
	}

	for name, s := range map[string]*http.Server{"backend": srv, "ops": opsSrv} {
		go func() {
			log.Info().Str("server", name).Str("addr", s.Addr).Msg("Starting server")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Str("server", name).Msg("Failed to start server")
			}
		}()
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown ops server")
	}

	log.Info().Msg("Server stopped")
}

// newRenderCache uses Redis when REDIS_URL is set and process memory otherwise.
func newRenderCache(ctx context.Context, cfg *config.Config, checks map[string]ops.Checker) application.RenderCache {
	if cfg.RedisURL == "" {
		memory := cache.NewMemoryRenderCache(cfg.RenderCacheTTL)
		go memory.Prune(ctx, renderCachePruneInterval)
		return memory
	}

	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure Redis")
	}

	redisCache := cache.NewRedisRenderCache(client, cfg.RenderCacheTTL)
	checks["redis"] = redisCache
	log.Info().Str("addr", client.Options().Addr).Msg("Caching rendered posts in Redis")
	return redisCache
}
