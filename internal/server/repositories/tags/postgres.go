package tags

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Tag, error) {
	query :=
		`SELECT id, name, category, tag_group FROM tags
		 ORDER BY id
		 `
	return r.query(ctx, query)
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, name, category, tag_group FROM tags WHERE id IN (%s) ORDER BY id`,
		strings.Join(placeholders, ", "))

	return r.query(ctx, query, args...)
}

// Create inserts tag and fills in its ID. A taken name yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	query :=
		`INSERT INTO tags (name, category, tag_group)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, tag.Name, string(tag.Category), nullable(tag.Group)).Scan(&tag.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tag, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var (
			t        models.Tag
			category string
			group    sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &category, &group); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.Category = models.TagCategory(category)
		t.Group = group.String
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
