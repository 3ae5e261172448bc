package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/devotional-api/internal/achievements"
	"github.com/gdg-garage/devotional-api/internal/auth"
	"github.com/gdg-garage/devotional-api/internal/community"
	"github.com/gdg-garage/devotional-api/internal/config"
	"github.com/gdg-garage/devotional-api/internal/database"
	"github.com/gdg-garage/devotional-api/internal/handlers"
	"github.com/gdg-garage/devotional-api/internal/logging"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"github.com/gdg-garage/devotional-api/internal/moderation"
	"github.com/gdg-garage/devotional-api/internal/notifier"
	"github.com/gdg-garage/devotional-api/internal/profiles"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"github.com/gdg-garage/devotional-api/internal/progression"
	"github.com/gdg-garage/devotional-api/internal/reconcile"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := achievements.Seed(ctx, db); err != nil {
		logger.Fatal("Failed to seed achievements", zap.Error(err))
	}

	catalog, err := medals.LoadCatalog(cfg.MedalCatalogPath)
	if err != nil {
		logger.Fatal("Failed to load medal catalog", zap.Error(err))
	}
	filter := moderation.NewFilter(cfg.ModerationExtraWords...)

	// Notification sinks
	hub := notifier.NewHub(32)
	sinks := notifier.Multi{hub}
	var discordQueue *notifier.Async
	if cfg.DiscordBotToken != "" {
		session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("Discord notifier not initialized", zap.Error(err))
		} else {
			discordQueue = notifier.NewAsync(notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID), 128, logger)
			sinks = append(sinks, discordQueue)
		}
	}

	// Services
	authHandler := auth.NewAuthHandler(cfg, db, logger)
	store := progress.NewStore(db)
	medalSvc := medals.NewService(db, catalog, logger, hub)
	engine := achievements.NewEngine(db, logger)
	prog := progression.NewService(store, medalSvc, engine, sinks, logger)
	communitySvc := community.NewService(db, filter, logger, func(ctx context.Context, userID string) {
		prog.AfterCommunityEvent(ctx, userID)
	})

	scheduler, err := reconcile.Start(reconcile.NewJob(store, prog, logger, reconcile.DefaultConcurrency), cfg.ReconcileInterval)
	if err != nil {
		logger.Fatal("Failed to start reconcile scheduler", zap.Error(err))
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         authHandler,
		Medals:       handlers.NewMedalHandler(medalSvc, authHandler, logger),
		Completions:  handlers.NewCompletionHandler(prog, store, authHandler, logger),
		Achievements: handlers.NewAchievementHandler(engine, authHandler, logger),
		Profiles:     handlers.NewProfileHandler(profiles.NewService(db, filter, logger), medalSvc, filter, authHandler, logger),
		Community:    handlers.NewCommunityHandler(communitySvc, authHandler, logger),
		Admin:        handlers.NewAdminHandler(medalSvc, engine, communitySvc, sinks, authHandler, logger),
		APIKeys:      handlers.NewAPIKeyHandler(db, authHandler, logger),
		Events:       handlers.NewEventsHandler(hub, logger),
	}, handlers.RouteOptions{EnableCORS: cfg.EnableCORS})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// Start Server
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("driver", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Scheduler shutdown failed", zap.Error(err))
	}
	if discordQueue != nil {
		if err := discordQueue.Close(shutdownCtx); err != nil {
			logger.Error("Discord queue did not drain", zap.Error(err))
		}
	}
}
