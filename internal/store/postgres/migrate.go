package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

// Migrate applies every goose-format SQL file in dir against conn, in
// lexical filename order. Only the Up section of each file runs, one
// statement at a time so a failure names the offending file.
func Migrate(ctx context.Context, conn bun.IDB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		up, err := gooseUpSection(string(raw))
		if err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		for _, stmt := range strings.Split(up, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := conn.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("migration %s: %w", name, err)
			}
		}
	}
	return nil
}

func gooseUpSection(sql string) (string, error) {
	const upMarker = "-- +goose Up"
	const downMarker = "-- +goose Down"

	i := strings.Index(sql, upMarker)
	if i < 0 {
		return "", errors.New("missing goose up marker")
	}
	section := sql[i+len(upMarker):]
	if j := strings.Index(section, downMarker); j >= 0 {
		section = section[:j]
	}
	return strings.TrimSpace(section), nil
}
