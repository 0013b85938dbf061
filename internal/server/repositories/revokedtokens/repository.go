package revokedtokens

import (
	"context"
	"time"
)

// Repository defines operations on revoked refresh token ids (jti).
type Repository interface {
	// Revoke adds jti to the set. It reports true when jti was added by this
	// call and false when it was already present. The check and the insert
	// are a single atomic statement.
	Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) (bool, error)

	// PurgeExpired deletes entries whose token would have expired before now
	// and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
