package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskbox-api/internal/domain"
	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
	"github.com/taskbox-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// errInvalidCredentials is shared by the unknown-email and wrong-password
// paths so a caller cannot tell which one failed.
var errInvalidCredentials = fmt.Errorf("Invalid Credentials: %w", domain.ErrBadRequest)

type Service interface {
	// VerifyOTP redeems the 6-digit registration code (OTP strategy).
	VerifyOTP(ctx context.Context, email, code string) error
	// Activate redeems a signed activation token and creates the user
	// (activation strategy). The account comes into existence already verified.
	Activate(ctx context.Context, token string) (*domain.User, error)
	// SignIn checks the credentials and issues a session token.
	SignIn(ctx context.Context, email, password string) (token string, u *domain.User, err error)
	// Refresh issues a fresh session token for a still-valid one.
	Refresh(ctx context.Context, token string) (string, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Insert(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type verificationStore interface {
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type sessionSigner interface {
	Sign(userID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type activationVerifier interface {
	Verify(token string) (*jwtinfra.ActivationClaims, error)
}

type service struct {
	repo             userStore
	verificationRepo verificationStore
	sessions         sessionSigner
	activation       activationVerifier
}

func NewService(repo userStore, verificationRepo verificationStore, sessions sessionSigner, activation activationVerifier) Service {
	return &service{
		repo:             repo,
		verificationRepo: verificationRepo,
		sessions:         sessions,
		activation:       activation,
	}
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("User not found: %w", domain.ErrNotFound)
	}
	if u.Verified {
		return fmt.Errorf("Email already verified: %w", domain.ErrBadRequest)
	}
	v, err := s.verificationRepo.Get(ctx, u.UserID, domain.VerificationTypeOTP)
	if err != nil {
		return fmt.Errorf("OTP not found: %w", domain.ErrNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 {
		return fmt.Errorf("Invalid OTP: %w", domain.ErrBadRequest)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("OTP expired: %w", domain.ErrBadRequest)
	}
	if err := s.verificationRepo.Delete(ctx, u.UserID, domain.VerificationTypeOTP); err != nil {
		slog.Warn("failed to delete OTP verification record", "user_id", u.UserID, "err", err)
	}
	return s.repo.Update(ctx, u.UserID, map[string]interface{}{"verified": true})
}

func (s *service) Activate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.activation.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired activation token: %w", domain.ErrUnauthorized)
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		PersonalID:   claims.PersonalID,
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: claims.PasswordHash,
		Address:      claims.Address,
		PhoneNumber:  claims.PhoneNumber,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The store rejects the insert atomically if the email or personal id was
	// taken since the token was issued (or the token is replayed).
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("This email is already registered: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("Please fill in all fields: %w", domain.ErrBadRequest)
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errInvalidCredentials
	}
	if !u.Verified {
		return "", nil, fmt.Errorf("Please verify your email first: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, errInvalidCredentials
	}
	token, err := s.sessions.Sign(u.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return "", fmt.Errorf("Token Expired or Invalid Authentication: %w", domain.ErrUnauthorized)
	}
	// The account may have been deleted since the token was issued.
	if _, err := s.repo.Get(ctx, claims.UserID); err != nil {
		return "", fmt.Errorf("Token Expired or Invalid Authentication: %w", domain.ErrUnauthorized)
	}
	return s.sessions.Sign(claims.UserID)
}
