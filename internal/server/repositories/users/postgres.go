package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

const userColumns = `id, email, username, password_hash, is_superuser, is_active, full_name, phone_number, job_title`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills in its ID. A taken email yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, username, password_hash, is_superuser, is_active, full_name, phone_number, job_title)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id, user.Email, user.UserName, user.PasswordHash, user.IsSuperuser, user.IsActive,
		user.FullName, user.PhoneNumber, user.JobTitle)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE email = $1
		 `

	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `

	return r.getOne(ctx, query, id)
}

// UpdateProfile writes the non-nil fields of profile and returns the updated
// user.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, profile models.Profile) (*models.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("username", profile.UserName)
	add("full_name", profile.FullName)
	add("phone_number", profile.PhoneNumber)
	add("job_title", profile.JobTitle)

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return nil, common.ErrorNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.UserName, &user.PasswordHash, &user.IsSuperuser, &user.IsActive,
		&user.FullName, &user.PhoneNumber, &user.JobTitle)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
