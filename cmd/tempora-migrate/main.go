package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tempora/backend/internal/app"
	"tempora/backend/internal/store/postgres"
)

func main() {
	dir := flag.String("dir", "migrations", "directory of goose-format SQL migrations")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("startup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, a.DB, *dir); err != nil {
		a.Log.Error("migration failed", slog.Any("err", err), slog.String("dir", *dir))
		os.Exit(1)
	}
	a.Log.Info("migrations applied", slog.String("dir", *dir))
}
