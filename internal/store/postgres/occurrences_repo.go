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

type OccurrenceRepo struct {
	db *bun.DB
}

func NewOccurrenceRepo(db *bun.DB) *OccurrenceRepo {
	return &OccurrenceRepo{db: db}
}

func (r *OccurrenceRepo) Create(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Occurrence{}, err
	}
	if _, err := idb.NewInsert().Model(&o).Exec(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Occurrence{}, store.ErrConflict
		}
		return domain.Occurrence{}, err
	}
	return o, nil
}

func (r *OccurrenceRepo) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Occurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Occurrence{}, err
	}
	var o domain.Occurrence
	err = idb.NewSelect().
		Model(&o).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Occurrence{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Occurrence{}, err
	}
	return o, nil
}

func (r *OccurrenceRepo) Update(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.Occurrence{}, err
	}
	res, err := idb.NewUpdate().
		Model(&o).
		Column("type", "start_time", "duration_seconds", "end_time", "extensions", "updated_at").
		Where("organization = ?", o.Organization).
		Where("resource_path = ?", o.ResourcePath).
		Where("id = ?", o.ID).
		Exec(ctx)
	if err != nil {
		return domain.Occurrence{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Occurrence{}, err
	}
	if affected == 0 {
		return domain.Occurrence{}, store.ErrNotFound
	}
	return o, nil
}

func (r *OccurrenceRepo) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	idb, err := conn(r.db, tx)
	if err != nil {
		return err
	}
	res, err := idb.NewDelete().
		Model((*domain.Occurrence)(nil)).
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

func (r *OccurrenceRepo) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Occurrence, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return nil, err
	}
	var rows []domain.Occurrence
	q := idb.NewSelect().
		Model(&rows).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("start_time <= ?", endUTC).
		Where("end_time >= ?", startUTC)
	if len(types) > 0 {
		q = q.Where("type IN (?)", bun.In(types))
	}
	if err := q.OrderExpr("start_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
