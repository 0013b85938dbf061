package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/clientreview/internal/common"
)

// Kind distinguishes access tokens from refresh tokens. A token of one kind is
// never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims carries the standard claims (jti, exp, iat) plus the principal id
// and token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Kind   Kind   `json:"kind"`
}

// GenerateToken signs a new HS256 token of the given kind for userID. Every
// token gets a fresh random jti.
func GenerateToken(userID string, kind Kind, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generateAt(userID, kind, secretKey, validityDuration, time.Now())
}

func generateAt(userID string, kind Kind, secretKey []byte, validityDuration time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Kind:   kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and checks that
// it is of the expected kind. Expired tokens yield common.ErrTokenExpired,
// everything else that fails yields common.ErrInvalidToken.
func ParseToken(tokenString string, kind Kind, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", common.ErrInvalidToken, kind)
	}

	if claims.UserID == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or jti", common.ErrInvalidToken)
	}

	return claims, nil
}
