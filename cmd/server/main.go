package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/tallerapp/taller-backend/internal/config"
	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/domain/products"
	"github.com/tallerapp/taller-backend/internal/domain/sales"
	"github.com/tallerapp/taller-backend/internal/domain/shopping"
	"github.com/tallerapp/taller-backend/internal/domain/tasks"
	"github.com/tallerapp/taller-backend/internal/domain/templates"
	"github.com/tallerapp/taller-backend/internal/domain/users"
	"github.com/tallerapp/taller-backend/internal/infra/db"
	httpx "github.com/tallerapp/taller-backend/internal/infra/http"
	"github.com/tallerapp/taller-backend/internal/infra/logger"
	"github.com/tallerapp/taller-backend/internal/infra/notify"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load() // optional .env for local runs

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	notifier, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		log.Error("telegram notifier init failed", "err", err)
		return
	}
	if notifier != nil {
		log.Info("telegram notifications enabled", "chat", cfg.Telegram.AdminChatID)
	}

	materialRepo := materials.NewRepo(pool)
	templateRepo := templates.NewRepo(pool)
	templateSvc := templates.NewService(templateRepo, materialRepo, log, notifier)
	productRepo := products.NewRepo(pool, templateRepo)
	saleSvc := sales.NewService(sales.NewRepo(pool), productRepo, materialRepo, log, notifier)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, httpx.API{
		Templates: templateSvc,
		Materials: materialRepo,
		Products:  productRepo,
		Sales:     saleSvc,
		Tasks:     tasks.NewService(tasks.NewRepo(pool), log),
		Shopping:  shopping.NewService(shopping.NewRepo(pool), log),
		Users:     users.NewRepo(pool),
	})
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
