package businesses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/phoneid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateIfAbsent refuses anything that is not a fingerprint with
// common.ErrInvalidFingerprint, so a raw phone number can never reach the
// table.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, fingerprint string) (*models.Business, bool, error) {
	if !phoneid.IsFingerprint(fingerprint) {
		return nil, false, common.ErrInvalidFingerprint
	}

	query :=
		`INSERT INTO businesses (id, fingerprint, created_at)
         VALUES ($1, $2, $3)
		 ON CONFLICT (fingerprint) DO NOTHING
		 `

	b := &models.Business{
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}

	res, err := r.db.ExecContext(ctx, query, b.ID, b.Fingerprint, b.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	if n == 1 {
		return b, true, nil
	}

	existing, err := r.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Business, error) {
	query :=
		`SELECT id, fingerprint, created_at FROM businesses
		 WHERE fingerprint = $1
		 `
	return r.getOne(ctx, query, fingerprint)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Business, error) {
	query :=
		`SELECT id, fingerprint, created_at FROM businesses
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM businesses WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Business, error) {
	query :=
		`SELECT id, fingerprint, created_at FROM businesses
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Business
	for rows.Next() {
		b := &models.Business{}
		if err := rows.Scan(&b.ID, &b.Fingerprint, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete removes the business and, through cascading foreign keys, its
// reviews.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM businesses WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Business, error) {
	b := &models.Business{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&b.ID, &b.Fingerprint, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}
