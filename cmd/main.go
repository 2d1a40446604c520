package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TruyenGau/sosialNetwork-backend/internal/app/registry"
	"github.com/TruyenGau/sosialNetwork-backend/internal/app/server"
	"github.com/TruyenGau/sosialNetwork-backend/internal/config"
	"github.com/TruyenGau/sosialNetwork-backend/internal/core/services"
	"github.com/TruyenGau/sosialNetwork-backend/internal/platform/logger"
	"github.com/TruyenGau/sosialNetwork-backend/internal/platform/telemetry"
	"github.com/TruyenGau/sosialNetwork-backend/internal/plugins/postgres"
	redisplugin "github.com/TruyenGau/sosialNetwork-backend/internal/plugins/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	pdb, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "dsn", cfg.Postgres.DSN, "err", err)
		return
	}
	defer pdb.Close()
	log.Info("postgres connected")

	rdb, err := redisplugin.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
		return
	}
	defer rdb.Close()
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepo(pdb)
	convRepo := postgres.NewConversationRepo(pdb)
	msgRepo := postgres.NewMessageRepo(pdb)
	notifRepo := postgres.NewNotificationRepo(pdb)
	followRepo := postgres.NewFollowRepo(pdb)
	txManager := postgres.NewTxManager(pdb)
	presenceStore := redisplugin.NewRedisPresenceStore(rdb, cfg.Presence.TTL)

	// Core
	hub := registry.NewRegistry()
	presenceSvc := services.NewPresenceService(log, userRepo, presenceStore, cfg.Presence.TTL)
	hub.OnPresenceChange(presenceSvc.WentOnline, presenceSvc.WentOffline)

	dispatcher := services.NewDispatcher(log, hub, notifRepo)
	convSvc := services.NewConversationService(log, convRepo, msgRepo, userRepo, followRepo, txManager)
	msgSvc := services.NewMessageService(log, convRepo, msgRepo, userRepo, nil, dispatcher, txManager)
	notifSvc := services.NewNotificationService(log, notifRepo, hub)
	tokenSvc := services.NewTokenService(cfg.JWTSecret, cfg.Service.Name)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr,
		tokenSvc, hub, convSvc, msgSvc, notifSvc, presenceSvc)
	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", "err", err)
	}
}
