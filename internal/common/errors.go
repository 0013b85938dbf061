// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")

	// Startup errors.
	ErrConfiguration = errors.New("configuration error")

	// Phone identity errors.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidFingerprint = errors.New("value is not a phone fingerprint")

	// Token parsing errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrPrincipalNotFound    = fmt.Errorf("%w: principal no longer exists", ErrAuthenticationFailed)
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidCredentials   = errors.New("incorrect credentials")
	ErrInvalidPlatform      = errors.New("platform must be web or mobile")

	// Review errors.
	ErrBusinessNotFound = errors.New("business not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrDuplicateReview  = errors.New("you have already reviewed this business")
	ErrUnknownTag       = errors.New("unknown tag")
	ErrConflictingTags  = errors.New("conflicting tags selected from the same group")
)
