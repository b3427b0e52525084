// Package auth issues and checks the signed tokens returned by signin.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the signed-in user and the namespace/database pair the
// session is scoped to.
type Claims struct {
	jwt.RegisteredClaims
	UserID    models.UserID `json:"uid"`
	Namespace string        `json:"ns"`
	Database  string        `json:"db"`
}

// GenerateToken signs an HS256 token for userID valid for validityDuration.
func GenerateToken(userID models.UserID, ns, db string, secretKey []byte, validityDuration time.Duration) (models.AuthToken, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		Namespace: ns,
		Database:  db,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return models.AuthToken(tokenString), nil
}

// ParseToken verifies signature, algorithm and expiry and returns the claims.
// Every failure matches common.ErrInvalidToken.
func ParseToken(tokenString models.AuthToken, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(string(tokenString), claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken is ParseToken reduced to the user id.
func GetUserIDFromToken(tokenString models.AuthToken, secretKey []byte) (models.UserID, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
