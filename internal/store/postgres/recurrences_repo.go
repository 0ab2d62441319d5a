package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
)

type RecurrenceRepo struct {
	db *bun.DB
}

func NewRecurrenceRepo(db *bun.DB) *RecurrenceRepo {
	return &RecurrenceRepo{db: db}
}

func (r *RecurrenceRepo) Create(ctx context.Context, tx store.Tx, rec domain.Recurrence) (domain.Recurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Recurrence{}, err
	}
	if _, err := idb.NewInsert().Model(&rec).Exec(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Recurrence{}, store.ErrConflict
		}
		return domain.Recurrence{}, err
	}
	return rec, nil
}

func (r *RecurrenceRepo) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Recurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Recurrence{}, err
	}
	var rec domain.Recurrence
	err = idb.NewSelect().
		Model(&rec).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recurrence{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Recurrence{}, err
	}
	return rec, nil
}

// Update writes only the mutable columns; the engine enforces the
// immutability envelope before calling.
func (r *RecurrenceRepo) Update(ctx context.Context, tx store.Tx, rec domain.Recurrence) (domain.Recurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Recurrence{}, err
	}
	res, err := idb.NewUpdate().
		Model(&rec).
		Column("duration_seconds", "extensions", "month_day_behavior", "updated_at").
		Where("organization = ?", rec.Organization).
		Where("resource_path = ?", rec.ResourcePath).
		Where("id = ?", rec.ID).
		Exec(ctx)
	if err != nil {
		return domain.Recurrence{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Recurrence{}, err
	}
	if affected == 0 {
		return domain.Recurrence{}, store.ErrNotFound
	}
	return rec, nil
}

func (r *RecurrenceRepo) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	if tx != nil {
		idb, err := conn(r.db, tx)
		if err != nil {
			return err
		}
		return deleteRecurrenceCascade(ctx, idb, organization, resourcePath, id)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, btx bun.Tx) error {
		return deleteRecurrenceCascade(ctx, btx, organization, resourcePath, id)
	})
}

// deleteRecurrenceCascade removes the overrides and exceptions before the
// pattern so a mid-sequence failure never leaves orphans pointing at a
// deleted recurrence.
func deleteRecurrenceCascade(ctx context.Context, idb bun.IDB, organization, resourcePath string, id uuid.UUID) error {
	if _, err := idb.NewDelete().
		Model((*domain.OccurrenceOverride)(nil)).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}
	if _, err := idb.NewDelete().
		Model((*domain.OccurrenceException)(nil)).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}
	res, err := idb.NewDelete().
		Model((*domain.Recurrence)(nil)).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *RecurrenceRepo) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Recurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return nil, err
	}
	var rows []domain.Recurrence
	q := idb.NewSelect().
		Model(&rows).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("start_time <= ?", endUTC).
		Where("recurrence_end_time >= ?", startUTC)
	if len(types) > 0 {
		q = q.Where("type IN (?)", bun.In(types))
	}
	if err := q.OrderExpr("start_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
