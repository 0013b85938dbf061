// Package rest exposes the server's services over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type SessionManager interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type UserManager interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p models.Profile) (*models.User, error)
}

type BusinessManager interface {
	Register(ctx context.Context, phone string) (*models.Business, bool, error)
	Lookup(ctx context.Context, phone string) (*models.Business, error)
	Get(ctx context.Context, id string) (*models.Business, error)
	List(ctx context.Context) ([]*models.Business, error)
	Delete(ctx context.Context, id string) error
}

type ReviewManager interface {
	Create(ctx context.Context, authorID, businessID string, tagIDs []int64) (*models.Review, error)
	Get(ctx context.Context, businessID, reviewID string) (*models.Review, error)
	List(ctx context.Context, businessID string) ([]*models.Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Review, error)
	UpdateTags(ctx context.Context, actor *models.User, businessID, reviewID string, tagIDs []int64) (*models.Review, error)
	Delete(ctx context.Context, actor *models.User, businessID, reviewID string) error
}

type TagManager interface {
	List(ctx context.Context) ([]*models.Tag, error)
	Create(ctx context.Context, name string, category models.TagCategory, group string) (*models.Tag, error)
}

// Services groups the business logic the HTTP layer dispatches to.
type Services struct {
	Sessions   SessionManager
	Users      UserManager
	Businesses BusinessManager
	Reviews    ReviewManager
	Tags       TagManager
}

// Options configures the HTTP surface. TrustedProxies lists the IPs or
// CIDRs whose X-Forwarded-For header is believed; when empty the client IP
// is always the socket peer.
type Options struct {
	Address        string
	Cookies        CookieSettings
	RateLimitRPM   int
	TrustedProxies []string
}

type Server struct {
	address   string
	svc       Services
	cookies   CookieSettings
	limiter   *RateLimiter
	logger    logging.Logger
	accessLog *zap.Logger
	engine    *gin.Engine
}

// NewServer builds the router. accessLog receives one entry per request;
// logger receives application events.
func NewServer(opts Options, svc Services, logger logging.Logger, accessLog *zap.Logger) (*Server, error) {
	s := &Server{
		address:   opts.Address,
		svc:       svc,
		cookies:   opts.Cookies,
		limiter:   NewRateLimiter(opts.RateLimitRPM),
		logger:    logger.With("module", "http_server"),
		accessLog: accessLog,
	}
	engine, err := s.routes(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
