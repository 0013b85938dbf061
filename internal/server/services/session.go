// Package services contains server-side business logic. This file implements
// SessionService, which authenticates requests and issues, refreshes and
// revokes access/refresh JWT pairs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/cryptox"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/auth"
	"github.com/dmitrijs2005/clientreview/internal/server/config"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token
// together with their lifetimes.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// RevocationStore is the set of refresh token ids that may no longer be
// exchanged. Revoke must be an atomic insert-if-absent.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionService provides the session lifecycle:
// - Authenticate: resolve an access token to an active user
// - Login: verify credentials and mint tokens
// - Refresh: exchange a refresh token exactly once for a new pair
// - Revoke: retire a refresh token at logout
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	revocations                  RevocationStore
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using repositories, a
// revocation store and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, revocations RevocationStore,
	logger logging.Logger, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		revocations:                  revocations,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Authenticate resolves an access token to its user. A bad or expired token
// yields common.ErrAuthenticationFailed; a good token whose user is gone or
// deactivated yields common.ErrPrincipalNotFound.
func (s *SessionService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	claims, err := auth.ParseToken(rawToken, auth.KindAccess, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, err)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		s.logger.Error(ctx, "authenticate: user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrPrincipalNotFound
	}

	return user, nil
}

// Issue mints a new access/refresh pair for userID. Nothing is stored.
func (s *SessionService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, auth.KindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(userID, auth.KindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  s.accessTokenValidityDuration,
		RefreshExpiresIn: s.refreshTokenValidityDuration,
	}, nil
}

// dummyHash is verified against when the email is unknown so that both
// branches of Login cost one argon2 derivation.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("clientreview-dummy-password")
	return h
})

// Login verifies email and password and, on success, returns the user and a
// new TokenPair. Unknown emails, wrong passwords and inactive accounts all
// yield common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(password, dummyHash())
			return nil, nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "login: user lookup failed", "error", err)
		return nil, nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "login: stored hash unreadable", "user_id", user.ID, "error", err)
		return nil, nil, common.ErrInvalidCredentials
	}
	if !ok || !user.IsActive {
		return nil, nil, common.ErrInvalidCredentials
	}

	pair, err := s.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges refreshToken for a new pair. The token's jti is claimed
// in the revocation set first; of several concurrent exchanges of the same
// token only the one that claims it succeeds. A token that was already
// claimed (reused after rotation or logout) yields
// common.ErrInvalidRefreshToken and is logged.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, auth.KindRefresh, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRefreshToken, err)
	}

	claimed, err := s.revocations.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil {
		s.logger.Error(ctx, "refresh: revocation store failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !claimed {
		s.logger.Warn(ctx, "refresh token reuse detected", "user_id", claims.UserID, "jti", claims.ID)
		return nil, common.ErrInvalidRefreshToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		s.logger.Error(ctx, "refresh: user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrInvalidRefreshToken
	}

	return s.Issue(ctx, user.ID)
}

// Revoke retires refreshToken. It is idempotent, and a token that does not
// parse or has already expired is ignored. Only store failures are returned.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := auth.ParseToken(refreshToken, auth.KindRefresh, s.jwtSecret)
	if err != nil {
		return nil
	}

	if _, err := s.revocations.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
