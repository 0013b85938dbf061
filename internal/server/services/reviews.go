package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/dbx"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
)

// ReviewService owns the review lifecycle. The one-review-per-author-per-
// business rule is enforced by the storage unique index alone: Create does
// not read before it writes, it maps the index violation to
// common.ErrDuplicateReview.
type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ReviewService {
	return &ReviewService{db: db, repomanager: m, logger: logger, now: time.Now}
}

// Create stores a review by authorID for businessID with the given tags.
func (s *ReviewService) Create(ctx context.Context, authorID, businessID string, tagIDs []int64) (*models.Review, error) {
	if err := s.requireBusiness(ctx, businessID); err != nil {
		return nil, err
	}

	ids, err := s.validateTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	review := &models.Review{
		ID:           uuid.NewString(),
		AuthorID:     authorID,
		BusinessID:   businessID,
		TagSelection: ids,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)
		if err := repo.Insert(ctx, review); err != nil {
			return err
		}
		return repo.SetTags(ctx, review.ID, ids)
	})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateReview
		}
		// The business was deleted after the existence check.
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrBusinessNotFound
		}
		s.logger.Error(ctx, "create review failed", "business_id", businessID, "error", err)
		return nil, common.ErrorInternal
	}

	return review, nil
}

// Get returns reviewID provided it belongs to businessID.
func (s *ReviewService) Get(ctx context.Context, businessID, reviewID string) (*models.Review, error) {
	if !validID(reviewID) {
		return nil, common.ErrReviewNotFound
	}

	r, err := s.repomanager.Reviews(s.db).GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrReviewNotFound
		}
		s.logger.Error(ctx, "get review failed", "error", err)
		return nil, common.ErrorInternal
	}
	if r.BusinessID != businessID {
		return nil, common.ErrReviewNotFound
	}
	return r, nil
}

func (s *ReviewService) List(ctx context.Context, businessID string) ([]*models.Review, error) {
	if err := s.requireBusiness(ctx, businessID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Reviews(s.db).ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error(ctx, "list reviews failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

func (s *ReviewService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Review, error) {
	list, err := s.repomanager.Reviews(s.db).ListByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error(ctx, "list own reviews failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// UpdateTags replaces the tag selection of a review. Only the author or a
// superuser may do so.
func (s *ReviewService) UpdateTags(ctx context.Context, actor *models.User, businessID, reviewID string, tagIDs []int64) (*models.Review, error) {
	r, err := s.Get(ctx, businessID, reviewID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, r) {
		return nil, common.ErrorForbidden
	}

	ids, err := s.validateTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)
		if err := repo.SetTags(ctx, r.ID, ids); err != nil {
			return err
		}
		return repo.Touch(ctx, r.ID, now)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrReviewNotFound
		}
		s.logger.Error(ctx, "update review failed", "error", err)
		return nil, common.ErrorInternal
	}

	r.TagSelection = ids
	r.UpdatedAt = now
	return r, nil
}

// Delete removes a review. Only the author or a superuser may do so.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, businessID, reviewID string) error {
	r, err := s.Get(ctx, businessID, reviewID)
	if err != nil {
		return err
	}
	if !canModify(actor, r) {
		return common.ErrorForbidden
	}

	if err := s.repomanager.Reviews(s.db).Delete(ctx, r.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrReviewNotFound
		}
		s.logger.Error(ctx, "delete review failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *ReviewService) requireBusiness(ctx context.Context, businessID string) error {
	if !validID(businessID) {
		return common.ErrBusinessNotFound
	}

	ok, err := s.repomanager.Businesses(s.db).Exists(ctx, businessID)
	if err != nil {
		s.logger.Error(ctx, "business existence check failed", "error", err)
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrBusinessNotFound
	}
	return nil
}

// validateTags deduplicates tagIDs, preserving order, and checks that every
// id exists and that no two selected tags share a group.
func (s *ReviewService) validateTags(ctx context.Context, tagIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, len(tagIDs))
	seen := make(map[int64]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	found, err := s.repomanager.Tags(s.db).GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error(ctx, "load tags failed", "error", err)
		return nil, common.ErrorInternal
	}
	if len(found) != len(ids) {
		known := make(map[int64]struct{}, len(found))
		for _, t := range found {
			known[t.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("%w: %d", common.ErrUnknownTag, id)
			}
		}
	}

	groups := make(map[string]string, len(found))
	for _, t := range found {
		if t.Group == "" {
			continue
		}
		if other, ok := groups[t.Group]; ok {
			return nil, fmt.Errorf("%w: %q and %q", common.ErrConflictingTags, other, t.Name)
		}
		groups[t.Group] = t.Name
	}

	return ids, nil
}

func canModify(actor *models.User, r *models.Review) bool {
	return actor != nil && (actor.IsSuperuser || actor.ID == r.AuthorID)
}
