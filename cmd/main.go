package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkbimal250/chat-service/config"
	"github.com/bkbimal250/chat-service/internal/pg"
	"github.com/bkbimal250/chat-service/internal/postgres"
	redisx "github.com/bkbimal250/chat-service/internal/redis"
	"github.com/bkbimal250/chat-service/internal/security"
	"github.com/bkbimal250/chat-service/internal/service"
	httpx "github.com/bkbimal250/chat-service/internal/transport/http"
	"github.com/bkbimal250/chat-service/internal/transport/ws"
	"github.com/bkbimal250/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, pg.Config{
		DSN:             cfg.Postgres.DSN,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- redis presence ---
	presence, err := redisx.NewPresenceStore(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer presence.Close()

	// --- auth ---
	pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("auth public key: %v", err)
	}
	tokens := security.NewTokenValidator(pub, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.ClockSkew())

	// --- repos ---
	messageRepo := postgres.NewMessageRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// --- services ---
	chatSvc := service.NewChatService(messageRepo, userRepo)
	notifySvc := service.NewNotificationService(notificationRepo, userRepo)

	// --- WS hub & server ---
	hub := ws.NewHub()
	dispatcher := ws.NewDispatcher(chatSvc, notifySvc, hub)
	wsServer := ws.NewServer(hub, dispatcher, tokens, userRepo, presence)
	wsServer.SetPingEvery(cfg.PingEvery())
	wsServer.SetMaxFrameBytes(cfg.WS.MaxFrameBytes)

	// --- HTTP ---
	handler := httpx.NewHandler(chatSvc, notifySvc, presence)
	router := httpx.NewRouter(handler, tokens, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
