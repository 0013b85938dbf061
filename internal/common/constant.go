// Package common contains shared constants and sentinel errors used across
// clientreview components.
package common

// Names of the cookies carrying session credentials for web clients.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// AuthorizationHeaderName carries "Bearer <access token>" for native clients.
const AuthorizationHeaderName = "Authorization"

// FingerprintPrefix tags a stored phone fingerprint. Anything persisted as a
// business identity must start with it.
const FingerprintPrefix = "sha256$"
