package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/businesses"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/tags"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the relational store. Setting err
// makes every repository call fail with it.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	businesses map[string]*models.Business
	tags       map[int64]*models.Tag
	reviews    map[string]*models.Review
	revoked    map[string]time.Time
	err        error
	// insertErr, when set, fails the next review insert.
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		businesses: map[string]*models.Business{},
		tags:       map[int64]*models.Tag{},
		reviews:    map[string]*models.Review{},
		revoked:    map[string]time.Time{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return fakeUsers{m.s} }
func (m *fakeRepoManager) Businesses(dbx.DBTX) businesses.Repository    { return fakeBusinesses{m.s} }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository                { return fakeTags{m.s} }
func (m *fakeRepoManager) Reviews(dbx.DBTX) reviews.Repository          { return fakeReviews{m.s} }
func (m *fakeRepoManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository {
	return fakeRevoked{m.s}
}

// users

type fakeUsers struct{ s *memStore }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	f.s.users[u.ID] = &cp
	return u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	for _, u := range f.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) UpdateProfile(ctx context.Context, id string, p models.Profile) (*models.User, error) {
	f.s.mu.Lock()
	if f.s.err != nil {
		f.s.mu.Unlock()
		return nil, f.s.err
	}
	u, ok := f.s.users[id]
	if !ok {
		f.s.mu.Unlock()
		return nil, common.ErrorNotFound
	}
	if p.UserName != nil {
		u.UserName = *p.UserName
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.JobTitle != nil {
		u.JobTitle = *p.JobTitle
	}
	f.s.mu.Unlock()
	return f.GetByID(ctx, id)
}

// businesses

type fakeBusinesses struct{ s *memStore }

func (f fakeBusinesses) CreateIfAbsent(_ context.Context, fp string) (*models.Business, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, false, f.s.err
	}
	for _, b := range f.s.businesses {
		if b.Fingerprint == fp {
			return b, false, nil
		}
	}
	b := &models.Business{ID: uuid.NewString(), Fingerprint: fp, CreatedAt: time.Now()}
	f.s.businesses[b.ID] = b
	return b, true, nil
}

func (f fakeBusinesses) GetByFingerprint(_ context.Context, fp string) (*models.Business, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	for _, b := range f.s.businesses {
		if b.Fingerprint == fp {
			return b, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeBusinesses) GetByID(_ context.Context, id string) (*models.Business, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	b, ok := f.s.businesses[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f fakeBusinesses) Exists(_ context.Context, id string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return false, f.s.err
	}
	_, ok := f.s.businesses[id]
	return ok, nil
}

func (f fakeBusinesses) List(_ context.Context) ([]*models.Business, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	out := make([]*models.Business, 0, len(f.s.businesses))
	for _, b := range f.s.businesses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeBusinesses) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	if _, ok := f.s.businesses[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.businesses, id)
	for rid, r := range f.s.reviews {
		if r.BusinessID == id {
			delete(f.s.reviews, rid)
		}
	}
	return nil
}

// tags

type fakeTags struct{ s *memStore }

func (f fakeTags) List(_ context.Context) ([]*models.Tag, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	out := make([]*models.Tag, 0, len(f.s.tags))
	for _, t := range f.s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeTags) GetByIDs(_ context.Context, ids []int64) ([]*models.Tag, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	var out []*models.Tag
	for _, id := range ids {
		if t, ok := f.s.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTags) Create(_ context.Context, t *models.Tag) (*models.Tag, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	for _, existing := range f.s.tags {
		if existing.Name == t.Name {
			return nil, common.ErrorAlreadyExists
		}
	}
	t.ID = int64(len(f.s.tags) + 1)
	f.s.tags[t.ID] = t
	return t, nil
}

// reviews

type fakeReviews struct{ s *memStore }

func (f fakeReviews) Insert(_ context.Context, r *models.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	if f.s.insertErr != nil {
		return f.s.insertErr
	}
	for _, existing := range f.s.reviews {
		if existing.AuthorID == r.AuthorID && existing.BusinessID == r.BusinessID {
			return fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"})
		}
	}
	cp := *r
	cp.TagSelection = nil
	f.s.reviews[r.ID] = &cp
	return nil
}

func (f fakeReviews) SetTags(_ context.Context, id string, tagIDs []int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	r, ok := f.s.reviews[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.TagSelection = append([]int64{}, tagIDs...)
	return nil
}

func (f fakeReviews) Touch(_ context.Context, id string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	r, ok := f.s.reviews[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.UpdatedAt = at
	return nil
}

func (f fakeReviews) GetByID(_ context.Context, id string) (*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	r, ok := f.s.reviews[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeReviews) list(match func(*models.Review) bool) ([]*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return nil, f.s.err
	}
	var out []*models.Review
	for _, r := range f.s.reviews {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeReviews) ListByBusiness(_ context.Context, id string) ([]*models.Review, error) {
	return f.list(func(r *models.Review) bool { return r.BusinessID == id })
}

func (f fakeReviews) ListByAuthor(_ context.Context, id string) ([]*models.Review, error) {
	return f.list(func(r *models.Review) bool { return r.AuthorID == id })
}

func (f fakeReviews) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return f.s.err
	}
	if _, ok := f.s.reviews[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.reviews, id)
	return nil
}

// revocation set

type fakeRevoked struct{ s *memStore }

func (f fakeRevoked) Revoke(_ context.Context, jti, _ string, expiresAt time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return false, f.s.err
	}
	if _, ok := f.s.revoked[jti]; ok {
		return false, nil
	}
	f.s.revoked[jti] = expiresAt
	return true, nil
}

func (f fakeRevoked) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.err != nil {
		return 0, f.s.err
	}
	var n int64
	for jti, exp := range f.s.revoked {
		if exp.Before(now) {
			delete(f.s.revoked, jti)
			n++
		}
	}
	return n, nil
}

// failingRevocations fails every call; it lets the user store work while the
// revocation store is down.
type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, string, time.Time) (bool, error) {
	return false, errBoom{}
}

func (failingRevocations) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, errBoom{}
}
