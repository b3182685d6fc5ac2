package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shophub/internal/activity"
	"shophub/internal/auth"
	"shophub/internal/config"
	"shophub/internal/httpapi"
	"shophub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv load failed", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	store, closeStore, err := openActivityStore(rootCtx, cfg)
	if err != nil {
		log.Error("activity store init failed", "store", cfg.Activity.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	activitySvc := activity.NewService(store)
	recorder := activity.NewRecorder(activitySvc, activity.RecorderConfig{
		QueueSize:    cfg.Activity.QueueSize,
		Workers:      cfg.Activity.Workers,
		WriteTimeout: cfg.Activity.WriteTimeout,
		Logger:       log.With("component", "activity"),
	})

	janitor := activity.NewJanitor(store, cfg.Activity.Retention, cfg.Activity.PruneInterval, log.With("component", "activity-janitor"))
	go janitor.Run(rootCtx)

	// Gin router.
	// Activity runs outermost so it sees the status written by recovery and NoRoute.
	r := gin.New()
	r.Use(activity.Middleware(activity.MiddlewareConfig{
		Identifier:     authManager,
		Sink:           recorder,
		DocsPrefix:     activity.DefaultDocsPrefix,
		TrustForwarded: cfg.Activity.TrustForwarded,
	}))
	r.Use(logger.Middleware(log))
	r.Use(httpapi.Recovery(cfg.IsDevelopment()))

	registerRoutes(r, httpapi.Handlers{Auth: authManager, Activity: activitySvc}, cfg.IsDevelopment())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "activity_store", cfg.Activity.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Drain queued activity records before the store handle is closed.
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Warn("activity drain incomplete", "err", err)
	}
}
