package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "pomodoro/timer/internal/errors"
)

// OwnerSubject is the only subject tokens are ever issued for.
const OwnerSubject = "owner"

// AuthService guards the API with a single owner password. It is disabled
// when no password hash is configured.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
}

func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
	}
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

func (s *AuthService) Login(_ context.Context, password string) (*AuthResult, *apperrors.APIError) {
	if !s.Enabled() {
		return nil, apperrors.NotFound("auth_disabled", "authentication is not configured")
	}
	if password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "password is required")
	}
	if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid password")
	}
	return s.issueToken()
}

func (s *AuthService) ParseToken(tokenString string) (string, *apperrors.APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}

	if claims.Subject != OwnerSubject {
		return "", apperrors.Unauthorized("invalid token subject")
	}

	return claims.Subject, nil
}

func (s *AuthService) issueToken() (*AuthResult, *apperrors.APIError) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   OwnerSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}
	return &AuthResult{Token: signed, ExpiresAt: expiresAt}, nil
}
