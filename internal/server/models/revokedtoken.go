package models

import "time"

// RevokedToken records a refresh token jti that may no longer be exchanged.
// Rows are only useful until ExpiresAt, after which the token would be
// rejected on expiry anyway.
type RevokedToken struct {
	JTI       string
	UserID    string
	RevokedAt time.Time
	ExpiresAt time.Time
}
