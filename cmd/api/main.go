package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	v1 "go-courier/cmd/api/router/v1"
	"go-courier/internal/config"
	"go-courier/internal/infrastructure/auth"
	cacheAdapter "go-courier/internal/infrastructure/cache/adapter"
	"go-courier/internal/infrastructure/database"
	queueAdapter "go-courier/internal/infrastructure/queue/adapter"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/chat/application/task"
	httpHandler "go-courier/internal/pkg/chat/presentation/http"
	userAdapter "go-courier/internal/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithField("error", err).Debug(".env file not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithField("error", err).Fatal("load config")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	log := logrus.WithField("component", "main")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.WithField("error", err).Fatal("connect to database")
	}
	defer pool.Close()

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.RedisURL != "" {
		cache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			log.WithField("error", err).Fatal("connect to redis")
		}
		defer cache.Close()
		verifier.WithCache(cache, cfg.TokenCacheTTL)
	}

	users := userAdapter.NewPgUserRepository(pool)
	registry := realtime.NewRegistry()
	defer registry.Close()
	presence := realtime.NewTracker(registry, users)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background worker: sweep stale online flags left by a crash.
	if cfg.RedisURL != "" {
		qclient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			log.WithField("error", err).Fatal("connect asynq client")
		}
		defer qclient.Close()

		qserver, err := queueAdapter.NewAsynqServer(cfg.RedisURL, 2)
		if err != nil {
			log.WithField("error", err).Fatal("build asynq server")
		}
		task.RegisterPresenceReconcileTask(qserver, users, registry)
		go func() {
			if err := qserver.Run(rootCtx); err != nil {
				log.WithField("error", err).Error("worker stopped")
			}
		}()

		if err := task.EnqueuePresenceReconcile(rootCtx, qclient, cfg.PresenceSweepDelay); err != nil {
			log.WithField("error", err).Warn("enqueue presence reconcile")
		}
	}

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:     pool,
		Verifier: verifier,
		Registry: registry,
		Presence: presence,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err).Fatal("http server")
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Error("http shutdown")
	}
}
