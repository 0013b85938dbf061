// Package tags stores the predefined review tags.
package tags

import (
	"context"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Tag, error)
	// GetByIDs returns the tags whose ids are in ids. Missing ids are simply
	// absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
}
