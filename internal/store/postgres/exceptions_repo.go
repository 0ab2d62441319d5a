package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
)

type ExceptionRepo struct {
	db *bun.DB
}

func NewExceptionRepo(db *bun.DB) *ExceptionRepo {
	return &ExceptionRepo{db: db}
}

func (r *ExceptionRepo) Create(ctx context.Context, tx store.Tx, x domain.OccurrenceException) (domain.OccurrenceException, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.OccurrenceException{}, err
	}
	if _, err := idb.NewInsert().Model(&x).Exec(ctx); err != nil {
		// One cancellation per virtual instant: (recurrence_id,
		// original_time) is unique.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.OccurrenceException{}, store.ErrConflict
		}
		return domain.OccurrenceException{}, err
	}
	return x, nil
}

func (r *ExceptionRepo) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceException, error) {
	idb, err := conn(r.db, tx)
	if err != nil {
		return domain.OccurrenceException{}, err
	}
	var x domain.OccurrenceException
	err = idb.NewSelect().
		Model(&x).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OccurrenceException{}, store.ErrNotFound
	}
	if err != nil {
		return domain.OccurrenceException{}, err
	}
	return x, nil
}

func (r *ExceptionRepo) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	idb, err := conn(r.db, tx)
	if err != nil {
		return err
	}
	res, err := idb.NewDelete().
		Model((*domain.OccurrenceException)(nil)).
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

func (r *ExceptionRepo) DeleteByRecurrence(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error {
	idb, err := conn(r.db, tx)
	if err != nil {
		return err
	}
	_, err = idb.NewDelete().
		Model((*domain.OccurrenceException)(nil)).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id = ?", recurrenceID).
		Exec(ctx)
	return err
}

func (r *ExceptionRepo) GetByRecurrenceIDs(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID) ([]domain.OccurrenceException, error) {
	if len(recurrenceIDs) == 0 {
		return nil, nil
	}
	idb, err := conn(r.db, tx)
	if err != nil {
		return nil, err
	}
	var rows []domain.OccurrenceException
	err = idb.NewSelect().
		Model(&rows).
		Where("organization = ?", organization).
		Where("resource_path = ?", resourcePath).
		Where("recurrence_id IN (?)", bun.In(recurrenceIDs)).
		OrderExpr("original_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
