package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clientreview/internal/logging"
)

// RevocationJanitor periodically drops revocation entries for tokens that
// have expired anyway.
type RevocationJanitor struct {
	store    RevocationStore
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewRevocationJanitor(store RevocationStore, interval time.Duration, logger logging.Logger) *RevocationJanitor {
	return &RevocationJanitor{store: store, interval: interval, logger: logger, now: time.Now}
}

// Run purges once per interval until ctx is cancelled. A non-positive
// interval disables the janitor.
func (j *RevocationJanitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce runs one purge and returns the number of removed entries.
func (j *RevocationJanitor) PurgeOnce(ctx context.Context) int64 {
	n, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.Error(ctx, "purge revoked tokens failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Debug(ctx, "purged revoked tokens", "count", n)
	}
	return n
}
