package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/api"
	"github.com/Spok95/school-management-api/internal/auth"
	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/config"
	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/jobs"
	"github.com/Spok95/school-management-api/internal/logging"
	"github.com/Spok95/school-management-api/internal/mailer"
	"github.com/Spok95/school-management-api/internal/notify"
	"github.com/Spok95/school-management-api/internal/observability"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "school-management-api")
	if err != nil {
		lg.Base.Warn("sentry не инициализирован", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Base.Fatal("ошибка подключения к БД", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		lg.Base.Fatal("миграция не удалась", zap.Error(err))
	}

	adminHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		lg.Base.Fatal("не удалось захешировать пароль администратора", zap.Error(err))
	}
	if err := db.EnsureAdmin(ctx, database, cfg.AdminEmail, adminHash); err != nil {
		lg.Base.Fatal("не удалось завести администратора", zap.Error(err))
	}

	regionCache := cache.New(nil)

	pub := events.NewPublisher(lg.Base, cfg.EventQueueSize)
	defer pub.Close()

	var m mailer.Mailer
	if cfg.SendgridKey != "" {
		m = mailer.NewSendgrid(cfg.SendgridKey, cfg.AppName, cfg.MailFrom, lg.Base)
	} else {
		m = mailer.NewConsole(lg.Base)
	}
	notify.EmailConsumer(pub, m, lg.Base)
	notifier := notify.NewService(pub, lg.Base)

	runner := jobs.New(ctx, nil, lg.Base)
	jobs.Register(runner, cfg.Location, &jobs.Deps{
		DB:         database,
		Cache:      regionCache,
		Events:     pub,
		Notify:     notifier,
		Log:        lg.Base,
		AdminEmail: cfg.AdminEmail,
	})

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	server := api.New(database, regionCache, pub, notifier, tokens, lg.Base)

	lg.Base.Info("сервер запускается", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
	if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
		lg.Base.Fatal("сервер остановился с ошибкой", zap.Error(err))
	}
	lg.Base.Info("сервер остановлен")
}
