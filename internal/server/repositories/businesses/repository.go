// Package businesses stores business identities keyed by phone fingerprint.
package businesses

import (
	"context"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

type Repository interface {
	// CreateIfAbsent stores a business for fingerprint unless one already
	// exists, and returns the stored row. created reports whether a new row
	// was inserted.
	CreateIfAbsent(ctx context.Context, fingerprint string) (business *models.Business, created bool, err error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.Business, error)
	GetByID(ctx context.Context, id string) (*models.Business, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.Business, error)
	Delete(ctx context.Context, id string) error
}
