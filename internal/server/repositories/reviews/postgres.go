package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

const selectReviews = `SELECT r.id, r.author_id, r.business_id, r.created_at, r.updated_at, rt.tag_id
	FROM reviews r
	LEFT JOIN review_tags rt ON rt.review_id = r.id
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes the review row only. The driver error is returned wrapped so
// that a unique violation can still be recognized by the caller.
func (r *PostgresRepository) Insert(ctx context.Context, review *models.Review) error {
	query :=
		`INSERT INTO reviews (id, author_id, business_id, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.AuthorID, review.BusinessID, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetTags replaces the tag selection of reviewID.
func (r *PostgresRepository) SetTags(ctx context.Context, reviewID string, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM review_tags WHERE review_id = $1`, reviewID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO review_tags (review_id, tag_id) VALUES ($1, $2)`, reviewID, tagID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, reviewID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET updated_at = $1 WHERE id = $2`, at, reviewID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOne(res)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	list, err := r.list(ctx, selectReviews+`WHERE r.id = $1 ORDER BY rt.tag_id`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *PostgresRepository) ListByBusiness(ctx context.Context, businessID string) ([]*models.Review, error) {
	return r.list(ctx, selectReviews+`WHERE r.business_id = $1 ORDER BY r.created_at, r.id, rt.tag_id`, businessID)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Review, error) {
	return r.list(ctx, selectReviews+`WHERE r.author_id = $1 ORDER BY r.created_at, r.id, rt.tag_id`, authorID)
}

// Delete removes the review; its tag rows go with it through the foreign key.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOne(res)
}

// list folds the one-row-per-tag join back into reviews, keeping the order
// in which reviews first appear.
func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Review
	byID := make(map[string]*models.Review)

	for rows.Next() {
		var (
			rv    models.Review
			tagID sql.NullInt64
		)
		if err := rows.Scan(&rv.ID, &rv.AuthorID, &rv.BusinessID, &rv.CreatedAt, &rv.UpdatedAt, &tagID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		cur, ok := byID[rv.ID]
		if !ok {
			rv.TagSelection = []int64{}
			cur = &rv
			byID[rv.ID] = cur
			result = append(result, cur)
		}
		if tagID.Valid {
			cur.TagSelection = append(cur.TagSelection, tagID.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
