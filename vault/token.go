package vault

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims are the signed claims carried by a session token. The
// credential version pins the token to the password generation it was
// issued under: changing the master password invalidates outstanding
// sessions.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID            string `json:"uid"`
	Email             string `json:"email"`
	CredentialVersion int64  `json:"cred_ver"`
}

// issueSessionToken signs a session token for the given user.
func (s *Service) issueSessionToken(user *User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
		UserID:            user.ID,
		Email:             user.Email,
		CredentialVersion: user.LastCredentialChange.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parseSessionToken verifies the signature and expiry of a session token
// and returns its claims. It does not check the credential version; that
// requires a storage read and lives in VerifySession.
func (s *Service) parseSessionToken(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.sessionSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", ErrUnauthorized)
	}
	return claims, nil
}
