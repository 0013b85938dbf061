package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
)

// PhoneResolver maps a raw phone number to its fingerprint.
type PhoneResolver interface {
	Resolve(raw string) (string, error)
}

// BusinessService registers and looks up businesses by phone number. Raw
// numbers never leave this service: only fingerprints reach storage and
// logs.
type BusinessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    PhoneResolver
	logger      logging.Logger
}

func NewBusinessService(db *sql.DB, m repomanager.RepositoryManager, resolver PhoneResolver, logger logging.Logger) *BusinessService {
	return &BusinessService{db: db, repomanager: m, resolver: resolver, logger: logger}
}

// Register returns the business for phone, creating it if needed. created
// reports whether this call created it.
func (s *BusinessService) Register(ctx context.Context, phone string) (*models.Business, bool, error) {
	fp, err := s.resolver.Resolve(phone)
	if err != nil {
		return nil, false, err
	}

	b, created, err := s.repomanager.Businesses(s.db).CreateIfAbsent(ctx, fp)
	if err != nil {
		s.logger.Error(ctx, "register business failed", "error", err)
		return nil, false, common.ErrorInternal
	}
	if created {
		s.logger.Info(ctx, "business registered", "business_id", b.ID)
	}
	return b, created, nil
}

// Lookup finds the business registered for phone. An unparsable or invalid
// number yields common.ErrInvalidPhoneNumber, an unknown one
// common.ErrBusinessNotFound.
func (s *BusinessService) Lookup(ctx context.Context, phone string) (*models.Business, error) {
	fp, err := s.resolver.Resolve(phone)
	if err != nil {
		return nil, err
	}

	b, err := s.repomanager.Businesses(s.db).GetByFingerprint(ctx, fp)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBusinessNotFound
		}
		s.logger.Error(ctx, "lookup business failed", "error", err)
		return nil, common.ErrorInternal
	}
	return b, nil
}

func (s *BusinessService) Get(ctx context.Context, id string) (*models.Business, error) {
	if !validID(id) {
		return nil, common.ErrBusinessNotFound
	}

	b, err := s.repomanager.Businesses(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBusinessNotFound
		}
		s.logger.Error(ctx, "get business failed", "error", err)
		return nil, common.ErrorInternal
	}
	return b, nil
}

func (s *BusinessService) List(ctx context.Context) ([]*models.Business, error) {
	list, err := s.repomanager.Businesses(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list businesses failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Delete removes a business together with its reviews.
func (s *BusinessService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrBusinessNotFound
	}

	if err := s.repomanager.Businesses(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrBusinessNotFound
		}
		s.logger.Error(ctx, "delete business failed", "error", err)
		return common.ErrorInternal
	}
	s.logger.Info(ctx, "business deleted", "business_id", id)
	return nil
}

// validID filters path ids that cannot be a stored uuid, so they surface as
// not found rather than as a driver cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
