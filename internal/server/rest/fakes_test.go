package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	alice = &models.User{ID: "u-alice", Email: "alice@example.com", UserName: "alice", IsActive: true}
	bob   = &models.User{ID: "u-bob", Email: "bob@example.com", UserName: "bob", IsActive: true}
	admin = &models.User{ID: "u-admin", Email: "admin@example.com", UserName: "admin", IsActive: true, IsSuperuser: true}
)

// ---- sessions ----

type fakeSessions struct {
	mu        sync.Mutex
	tokens    map[string]*models.User // access token -> user
	refreshes map[string]bool         // refresh token -> still valid
	revokeErr error
	revoked   []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		tokens: map[string]*models.User{
			"alice-token": alice,
			"bob-token":   bob,
			"admin-token": admin,
		},
		refreshes: map[string]bool{"good-refresh": true},
	}
}

func (f *fakeSessions) Authenticate(_ context.Context, raw string) (*models.User, error) {
	switch raw {
	case "ghost-token":
		return nil, common.ErrPrincipalNotFound
	case "boom-token":
		return nil, errors.New("db down")
	}
	if u, ok := f.tokens[raw]; ok {
		return u, nil
	}
	return nil, common.ErrAuthenticationFailed
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	if email != alice.Email || password != "correct horse" {
		return nil, nil, common.ErrInvalidCredentials
	}
	return alice, testPair(), nil
}

func (f *fakeSessions) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.refreshes[token] {
		return nil, common.ErrInvalidRefreshToken
	}
	f.refreshes[token] = false
	return testPair(), nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, token)
	return f.revokeErr
}

func testPair() *services.TokenPair {
	return &services.TokenPair{
		AccessToken:      "new-access",
		RefreshToken:     "new-refresh",
		AccessExpiresIn:  15 * time.Minute,
		RefreshExpiresIn: 24 * time.Hour,
	}
}

// ---- users ----

type fakeUsers struct{}

func (fakeUsers) Register(_ context.Context, email, username, password string) (*models.User, error) {
	if email == alice.Email {
		return nil, common.ErrorAlreadyExists
	}
	if len(password) < 8 {
		return nil, errors.Join(common.ErrInvalidInput, errors.New("password too short"))
	}
	return &models.User{ID: "u-new", Email: email, UserName: username, IsActive: true}, nil
}

func (fakeUsers) Profile(_ context.Context, id string) (*models.User, error) {
	switch id {
	case alice.ID:
		return alice, nil
	case bob.ID:
		return bob, nil
	case admin.ID:
		return admin, nil
	}
	return nil, common.ErrorNotFound
}

func (fakeUsers) UpdateProfile(_ context.Context, id string, p models.Profile) (*models.User, error) {
	u := *alice
	u.ID = id
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.JobTitle != nil {
		u.JobTitle = *p.JobTitle
	}
	return &u, nil
}

// ---- businesses ----

const (
	knownPhone   = "+14155552671"
	unknownPhone = "+442071838750"
	knownBizID   = "9b2f6f0e-4c8a-4a56-9b5b-0d5f0c1f7a11"
)

var knownBiz = &models.Business{ID: knownBizID, Fingerprint: "sha256$" + string(bytes.Repeat([]byte("a"), 64)), CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

type fakeBusinesses struct{}

func (fakeBusinesses) Register(_ context.Context, phone string) (*models.Business, bool, error) {
	switch phone {
	case knownPhone:
		return knownBiz, false, nil
	case unknownPhone:
		return &models.Business{ID: "biz-new", CreatedAt: knownBiz.CreatedAt}, true, nil
	}
	return nil, false, common.ErrInvalidPhoneNumber
}

func (fakeBusinesses) Lookup(_ context.Context, phone string) (*models.Business, error) {
	switch phone {
	case knownPhone:
		return knownBiz, nil
	case unknownPhone:
		return nil, common.ErrBusinessNotFound
	}
	return nil, common.ErrInvalidPhoneNumber
}

func (fakeBusinesses) Get(_ context.Context, id string) (*models.Business, error) {
	if id == knownBizID {
		return knownBiz, nil
	}
	return nil, common.ErrBusinessNotFound
}

func (fakeBusinesses) List(context.Context) ([]*models.Business, error) {
	return []*models.Business{knownBiz}, nil
}

func (fakeBusinesses) Delete(_ context.Context, id string) error {
	if id == knownBizID {
		return nil
	}
	return common.ErrBusinessNotFound
}

// ---- reviews ----

type fakeReviews struct {
	mu      sync.Mutex
	reviews map[string]*models.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[string]*models.Review{}}
}

func (f *fakeReviews) Create(_ context.Context, authorID, businessID string, tagIDs []int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if businessID != knownBizID {
		return nil, common.ErrBusinessNotFound
	}
	for _, id := range tagIDs {
		if id > 100 {
			return nil, common.ErrUnknownTag
		}
	}
	for _, r := range f.reviews {
		if r.AuthorID == authorID && r.BusinessID == businessID {
			return nil, common.ErrDuplicateReview
		}
	}
	r := &models.Review{ID: "r-" + authorID, AuthorID: authorID, BusinessID: businessID, TagSelection: tagIDs}
	f.reviews[r.ID] = r
	return r, nil
}

func (f *fakeReviews) Get(_ context.Context, businessID, reviewID string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.BusinessID != businessID {
		return nil, common.ErrReviewNotFound
	}
	return r, nil
}

func (f *fakeReviews) List(_ context.Context, businessID string) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for _, r := range f.reviews {
		if r.BusinessID == businessID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListByAuthor(_ context.Context, authorID string) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for _, r := range f.reviews {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) UpdateTags(ctx context.Context, actor *models.User, businessID, reviewID string, tagIDs []int64) (*models.Review, error) {
	r, err := f.Get(ctx, businessID, reviewID)
	if err != nil {
		return nil, err
	}
	if r.AuthorID != actor.ID && !actor.IsSuperuser {
		return nil, common.ErrorForbidden
	}
	r.TagSelection = tagIDs
	return r, nil
}

func (f *fakeReviews) Delete(ctx context.Context, actor *models.User, businessID, reviewID string) error {
	r, err := f.Get(ctx, businessID, reviewID)
	if err != nil {
		return err
	}
	if r.AuthorID != actor.ID && !actor.IsSuperuser {
		return common.ErrorForbidden
	}
	f.mu.Lock()
	delete(f.reviews, reviewID)
	f.mu.Unlock()
	return nil
}

// ---- tags ----

type fakeTags struct{}

func (fakeTags) List(context.Context) ([]*models.Tag, error) {
	return []*models.Tag{
		{ID: 1, Name: "Pays on time", Category: models.TagPositive, Group: "payment"},
		{ID: 2, Name: "Late payment", Category: models.TagNegative, Group: "payment"},
	}, nil
}

func (fakeTags) Create(_ context.Context, name string, category models.TagCategory, group string) (*models.Tag, error) {
	return &models.Tag{ID: 42, Name: name, Category: category, Group: group}, nil
}

// ---- harness ----

type testEnv struct {
	sessions *fakeSessions
	reviews  *fakeReviews
	server   *Server
}

func newTestEnv(t *testing.T, rpm int, trustedProxies ...string) *testEnv {
	t.Helper()
	env := &testEnv{sessions: newFakeSessions(), reviews: newFakeReviews()}
	server, err := NewServer(Options{
		Address:        "127.0.0.1:0",
		Cookies:        CookieSettings{Domain: "", Secure: true},
		RateLimitRPM:   rpm,
		TrustedProxies: trustedProxies,
	}, Services{
		Sessions:   env.sessions,
		Users:      fakeUsers{},
		Businesses: fakeBusinesses{},
		Reviews:    env.reviews,
		Tags:       fakeTags{},
	}, logging.Nop(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	env.server = server
	return env
}

type reqOpt func(*http.Request)

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func withRemoteAddr(addr string) reqOpt {
	return func(r *http.Request) { r.RemoteAddr = addr }
}

func withCookie(name, value string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var errBoomStore = errors.New("store unavailable")
