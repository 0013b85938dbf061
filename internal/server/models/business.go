package models

import "time"

// Business is a reviewable entity known only by the fingerprint of its phone
// number. It is never updated after creation.
type Business struct {
	ID          string
	Fingerprint string
	CreatedAt   time.Time
}
