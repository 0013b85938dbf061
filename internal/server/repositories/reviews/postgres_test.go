package reviews

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

var reviewColumns = []string{"id", "author_id", "business_id", "created_at", "updated_at", "tag_id"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^INSERT\s+INTO\s+reviews\s*\(id,\s*author_id,\s*business_id,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	mock.ExpectExec(q).
		WithArgs("r-1", "u-1", "b-1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &models.Review{ID: "r-1", AuthorID: "u-1", BusinessID: "b-1", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
}

func TestInsert_DBErrorIsWrapped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cause := errors.New("duplicate key")
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+reviews`).WillReturnError(cause)

	err := repo.Insert(context.Background(), &models.Review{ID: "r-1"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected driver error to stay reachable, got %v", err)
	}
}

func TestSetTags_ReplacesSelection(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM review_tags WHERE review_id = \$1$`).
		WithArgs("r-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^INSERT INTO review_tags \(review_id, tag_id\) VALUES \(\$1, \$2\)$`).
		WithArgs("r-1", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^INSERT INTO review_tags`).
		WithArgs("r-1", int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetTags(context.Background(), "r-1", []int64{3, 5}); err != nil {
		t.Fatalf("SetTags error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByBusiness_FoldsTags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	rows := sqlmock.NewRows(reviewColumns).
		AddRow("r-1", "u-1", "b-1", t1, t1, int64(1)).
		AddRow("r-1", "u-1", "b-1", t1, t1, int64(5)).
		AddRow("r-2", "u-2", "b-1", t2, t2, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+r\.id.*FROM\s+reviews\s+r\s+LEFT\s+JOIN\s+review_tags.*WHERE\s+r\.business_id\s*=\s*\$1`).
		WithArgs("b-1").
		WillReturnRows(rows)

	got, err := repo.ListByBusiness(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("ListByBusiness error: %v", err)
	}

	want := []*models.Review{
		{ID: "r-1", AuthorID: "u-1", BusinessID: "b-1", TagSelection: []int64{1, 5}, CreatedAt: t1, UpdatedAt: t1},
		{ID: "r-2", AuthorID: "u-2", BusinessID: "b-1", TagSelection: []int64{}, CreatedAt: t2, UpdatedAt: t2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reviews mismatch (-want +got):\n%s", diff)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*WHERE\s+r\.id\s*=\s*\$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(reviewColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByAuthor_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*WHERE\s+r\.author_id`).WillReturnError(errors.New("db err"))

	_, err := repo.ListByAuthor(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteAndTouch_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM reviews WHERE id = \$1$`).
		WithArgs("r-9").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^UPDATE reviews SET updated_at = \$1 WHERE id = \$2$`).
		WithArgs(sqlmock.AnyArg(), "r-9").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "r-9"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Delete: want common.ErrorNotFound, got %v", err)
	}
	if err := repo.Touch(context.Background(), "r-9", time.Now()); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Touch: want common.ErrorNotFound, got %v", err)
	}
}
