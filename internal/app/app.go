// Package app assembles the engine from environment configuration: logger,
// database pool, repositories, and the calendar service. The commands under
// cmd/ call New and drive the pieces they need.
package app

import (
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/uptrace/bun"

	"tempora/backend/internal/config"
	"tempora/backend/internal/service/calendar"
	"tempora/backend/internal/store"
	"tempora/backend/internal/store/postgres"
)

type App struct {
	Config   config.Config
	Log      *slog.Logger
	DB       *bun.DB
	Beginner store.TxBeginner
	Calendar *calendar.Service
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg config.Config) (*App, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "tempora"),
	)

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}

	svc := calendar.NewService(calendar.Repositories{
		Recurrences: postgres.NewRecurrenceRepo(db),
		Occurrences: postgres.NewOccurrenceRepo(db),
		Exceptions:  postgres.NewExceptionRepo(db),
		Overrides:   postgres.NewOverrideRepo(db),
	}, log)

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Beginner: postgres.NewBeginner(db),
		Calendar: svc,
	}, nil
}

func (a *App) Close() error {
	return postgres.Close(a.DB)
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// databaseLogArgs logs the database coordinates without credentials.
func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
