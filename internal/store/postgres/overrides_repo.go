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

type OverrideRepo struct {
	db *bun.DB
}

func NewOverrideRepo(db *bun.DB) *OverrideRepo {
	return &OverrideRepo{db: db}
}

func (r *OverrideRepo) Create(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	if _, err := idb.NewInsert().Model(&v).Exec(ctx); err != nil {
		// One override per virtual instant: (recurrence_id, original_time)
		// is unique.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.OccurrenceOverride{}, store.ErrConflict
		}
		return domain.OccurrenceOverride{}, err
	}
	return v, nil
}

func (r *OverrideRepo) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceOverride, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	var v domain.OccurrenceOverride
	err = idb.NewSelect().
		Model(&v).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OccurrenceOverride{}, store.ErrNotFound
	}
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	return v, nil
}

// Update rewrites the override's replacement fields. The Original* snapshot
// columns are deliberately not in the column list; they are fixed at
// creation.
func (r *OverrideRepo) Update(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	res, err := idb.NewUpdate().
		Model(&v).
		Column("start_time", "duration_seconds", "end_time", "extensions", "updated_at").
		Where("organization = ?", v.Organization).
		Where("resource_path = ?", v.ResourcePath).
		Where("id = ?", v.ID).
		Exec(ctx)
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	if affected == 0 {
		return domain.OccurrenceOverride{}, store.ErrNotFound
	}
	return v, nil
}

func (r *OverrideRepo) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	idb, err := conn(r.db, tx)
	if err != nil {
		return err
	}
	res, err := idb.NewDelete().
		Model((*domain.OccurrenceOverride)(nil)).
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

func (r *OverrideRepo) DeleteByRecurrence(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error {
	idb, err := conn(r.db, tx)
	if err != nil {
		return err
	}
	_, err = idb.NewDelete().
		Model((*domain.OccurrenceOverride)(nil)).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id = ?", recurrenceID).
		Exec(ctx)
	return err
}

func (r *OverrideRepo) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID, startUTC, endUTC time.Time) ([]domain.OccurrenceOverride, error) {
	if len(recurrenceIDs) == 0 {
		return nil, nil
	}
	idb, err := conn(r.db, tx)
	if err != nil {
		return nil, err
	}
	var rows []domain.OccurrenceOverride
	err = idb.NewSelect().
		Model(&rows).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id IN (?)", bun.In(recurrenceIDs)).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("original_time >= ? AND original_time <= ?", startUTC, endUTC).
				WhereOr("start_time <= ? AND end_time >= ?", endUTC, startUTC)
		}).
		OrderExpr("original_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
