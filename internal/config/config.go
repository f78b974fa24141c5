package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	Location    *time.Location
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	AppName     string
	MailFrom    string
	SendgridKey string // пусто — письма идут в лог

	EventQueueSize int
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	jwtTTL, err := time.ParseDuration(getenv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}

	queueSize, err := strconv.Atoi(getenv("EVENT_QUEUE_SIZE", "1024"))
	if err != nil {
		return nil, fmt.Errorf("EVENT_QUEUE_SIZE: %w", err)
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Location:    loc,
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),

		JWTSecret: mustEnv("JWT_SECRET"),
		JWTTTL:    jwtTTL,

		AdminEmail:    getenv("ADMIN_EMAIL", "admin@school.local"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin"),

		AppName:     getenv("APP_NAME", "School Management"),
		MailFrom:    getenv("MAIL_FROM", "noreply@school.local"),
		SendgridKey: os.Getenv("SENDGRID_KEY"),

		EventQueueSize: queueSize,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
