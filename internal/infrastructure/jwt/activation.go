package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActivationClaims carries a complete pending registration. Nothing is
// persisted for the user until the token is redeemed, so every field needed
// to create the account rides inside the token, password already hashed.
type ActivationClaims struct {
	PersonalID   string  `json:"personal_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	Address      *string `json:"address,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// ActivationSigner signs and verifies HS256 activation tokens with a secret
// separate from the session keypair.
type ActivationSigner struct {
	secret []byte
	expiry time.Duration
}

func NewActivationSigner(secret string, expiry time.Duration) (*ActivationSigner, error) {
	if secret == "" {
		return nil, errors.New("activation token secret is empty")
	}
	return &ActivationSigner{secret: []byte(secret), expiry: expiry}, nil
}

func (s *ActivationSigner) Sign(claims ActivationClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *ActivationSigner) Verify(tokenStr string) (*ActivationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ActivationClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ActivationClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
