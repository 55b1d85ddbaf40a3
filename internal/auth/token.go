package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the signed payload of a session token. The session ID lets the
// server revoke a token before its exp claim runs out.
type tokenClaims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *Service) signToken(u User, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "synaphack",
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.tokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parseToken(raw string) (tokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.tokenSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("synaphack"),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	if err != nil {
		return tokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}
