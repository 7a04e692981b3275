package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// AccessClaims is the JWT payload of an access token.
type AccessClaims struct {
	Username string     `json:"usr"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// issueAccessToken creates a signed HS256 JWT for the given user.
func issueAccessToken(key []byte, ttl time.Duration, u model.User, now time.Time) (model.Tokens, error) {
	exp := now.Add(ttl)
	claims := AccessClaims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// ParseAccessToken verifies an HS256 access token and returns the caller it names.
func ParseAccessToken(key []byte, token string, leeway time.Duration) (Actor, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithLeeway(leeway), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Actor{}, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.Username == "" || !claims.Role.Valid() {
		return Actor{}, fmt.Errorf("%w: incomplete claims", errs.ErrUnauthorized)
	}
	return Actor{UserID: claims.Subject, Username: claims.Username, Role: claims.Role}, nil
}
