// Package auth mints and verifies the JWTs handed to clients and hashes
// account passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A session token authorizes every protected call; a sign-up
// token only authorizes inserting the profile of the identity it names.
const (
	ScopeSession = "session"
	ScopeSignup  = "signup"
)

// Claims carries the registered claims plus the user id and scope.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Scope  string `json:"scope"`
}

func GenerateToken(userID string, scope string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Subject:   userID,
		},
		UserID: userID,
		Scope:  scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
