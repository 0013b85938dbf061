// Package reviews stores reviews and their tag selections.
package reviews

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

// Repository persists reviews. Insert relies on the unique index over
// (author_id, business_id); callers classify its error with
// dbx.IsUniqueViolation.
type Repository interface {
	Insert(ctx context.Context, review *models.Review) error
	SetTags(ctx context.Context, reviewID string, tagIDs []int64) error
	Touch(ctx context.Context, reviewID string, at time.Time) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*models.Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Review, error)
	Delete(ctx context.Context, id string) error
}
