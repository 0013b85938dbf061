package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/cryptox"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

// UserService manages reviewer accounts: sign-up, profile and the admin
// bootstrap.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, logger: logger}
}

// Register creates an active, non-superuser account. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	return s.create(ctx, email, username, password, false)
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "profile: lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p models.Profile) (*models.User, error) {
	if p.UserName != nil {
		name := strings.TrimSpace(*p.UserName)
		if name == "" {
			return nil, fmt.Errorf("%w: username must not be empty", common.ErrInvalidInput)
		}
		p.UserName = &name
	}

	u, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, p)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "profile: update failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

// EnsureAdmin creates a superuser with the given credentials unless an
// account with that email already exists. It reports whether one was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	username, _, _ := strings.Cut(normalizeEmail(email), "@")
	if _, err := s.create(ctx, email, username, password, true); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info(ctx, "admin account created", "email", normalizeEmail(email))
	return true, nil
}

func (s *UserService) create(ctx context.Context, email, username, password string, superuser bool) (*models.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email", common.ErrInvalidInput)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, minPasswordLength)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		UserName:     username,
		PasswordHash: hash,
		IsSuperuser:  superuser,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "create user failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}
