package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"tempora/backend/internal/store"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func Open(databaseURL string, pool PoolConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	return db, nil
}

func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// Beginner hands out transaction handles that the repositories in this
// package accept. The caller owns commit/rollback.
type Beginner struct {
	db *bun.DB
}

func NewBeginner(db *bun.DB) *Beginner {
	return &Beginner{db: db}
}

func (b *Beginner) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txHandle{tx: tx}, nil
}

type txHandle struct {
	tx bun.Tx
}

func (h *txHandle) Commit(ctx context.Context) error   { return h.tx.Commit() }
func (h *txHandle) Rollback(ctx context.Context) error { return h.tx.Rollback() }

// conn picks the transaction connection when a handle is supplied, the pool
// otherwise.
func conn(db *bun.DB, tx store.Tx) (bun.IDB, error) {
	if tx == nil {
		return db, nil
	}
	h, ok := tx.(*txHandle)
	if !ok {
		return nil, errors.New("transaction handle was not created by this backend")
	}
	return h.tx, nil
}
