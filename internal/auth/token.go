// Package auth issues and checks the signed tokens that authorize a password
// reset after a successful identity check.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// ResetAudience is the only audience accepted by ParseResetToken.
const ResetAudience = "password-reset"

// ResetClaims carries the account a reset token was issued for in Subject
// and a unique token id in ID.
type ResetClaims struct {
	jwt.RegisteredClaims
}

// GenerateResetToken signs a reset token for username valid for ttl from now.
// It returns the token and its id.
func GenerateResetToken(username string, secretKey []byte, ttl time.Duration, now time.Time) (string, string, error) {
	if len(secretKey) == 0 {
		return "", "", common.ErrNoSecret
	}

	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Audience:  jwt.ClaimStrings{ResetAudience},
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", "", err
	}

	return tokenString, jti, nil
}

// ParseResetToken verifies tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else wrong common.ErrInvalidToken.
func ParseResetToken(tokenString string, secretKey []byte, now time.Time) (*ResetClaims, error) {
	claims := &ResetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ResetAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
