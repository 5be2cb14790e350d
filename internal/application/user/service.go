package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/taskbox-api/internal/config"
	"github.com/taskbox-api/internal/domain"
	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
	"github.com/taskbox-api/internal/pkg/id"
	"github.com/taskbox-api/internal/pkg/otp"
	"github.com/taskbox-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "name"
	fieldAddress     = "address"
	fieldPhoneNumber = "phone_number"
)

type Service interface {
	// Register validates the sign-up request and dispatches the verification
	// artifact. In OTP mode the user is persisted unverified and returned; in
	// activation mode nothing is persisted and the returned user is nil.
	Register(ctx context.Context, req domain.SignUpRequest) (*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPersonalID(ctx context.Context, personalID string) (*domain.User, error)
	Insert(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, u *domain.User) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type activationSigner interface {
	Sign(claims jwtinfra.ActivationClaims) (string, error)
}

type service struct {
	repo             userStore
	verificationRepo verificationStore
	mailer           mailer
	smsSender        smsSender
	activation       activationSigner
	mode             string
	otpTTL           time.Duration
	appURL           string
}

type ServiceDeps struct {
	UserRepo         userStore
	VerificationRepo verificationStore
	Mailer           mailer
	SMSSender        smsSender
	ActivationSigner activationSigner
	Mode             string
	OTPTTL           time.Duration
	AppURL           string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:             deps.UserRepo,
		verificationRepo: deps.VerificationRepo,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		activation:       deps.ActivationSigner,
		mode:             deps.Mode,
		otpTTL:           deps.OTPTTL,
		appURL:           deps.AppURL,
	}
}

func (s *service) Register(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	// Validation order is fixed: first failure wins.
	if req.PersonalID == "" || req.Name == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, fmt.Errorf("Please fill in all fields: %w", domain.ErrBadRequest)
	}
	if len(req.Name) < 3 {
		return nil, fmt.Errorf("Your name must be at least 3 letters long: %w", domain.ErrBadRequest)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("Password did not match: %w", domain.ErrBadRequest)
	}
	if !validate.Email(req.Email) {
		return nil, fmt.Errorf("Invalid email: %w", domain.ErrBadRequest)
	}
	if !strongPassword(req.Password) {
		return nil, fmt.Errorf("Password should be 6 to 20 characters long with a numeric, 1 lowercase and 1 uppercase letters: %w", domain.ErrBadRequest)
	}
	// Advisory pre-checks; the store re-enforces both constraints atomically
	// at insert time.
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("This email is already registered: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByPersonalID(ctx, req.PersonalID); err == nil {
		return nil, fmt.Errorf("This personal id is already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if s.mode == config.VerificationModeOTP {
		return s.registerWithOTP(ctx, req, string(hash))
	}
	return nil, s.registerWithActivation(req, string(hash))
}

// registerWithOTP persists the user unverified plus a time-boxed code. The
// email is sent first so a failed send leaves nothing behind.
func (s *service) registerWithOTP(ctx context.Context, req domain.SignUpRequest, hash string) (*domain.User, error) {
	code, err := otp.Generate()
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendEmail(req.Email, "Verify your email", "Your OTP is: "+code); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}
	if req.PhoneNumber != nil && s.smsSender != nil {
		// Best effort; email is the delivery of record.
		if err := s.smsSender.SendSMS(ctx, *req.PhoneNumber, "Your verification code: "+code); err != nil {
			slog.Warn("could not send OTP by SMS", "err", err)
		}
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		PersonalID:   req.PersonalID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("This email is already registered: %w", domain.ErrConflict)
		}
		return nil, err
	}
	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      domain.VerificationTypeOTP,
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return nil, err
	}
	return u, nil
}

// registerWithActivation persists nothing: the whole registration rides in a
// signed token which the activation endpoint redeems.
func (s *service) registerWithActivation(req domain.SignUpRequest, hash string) error {
	token, err := s.activation.Sign(jwtinfra.ActivationClaims{
		PersonalID:   req.PersonalID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	link := s.appURL + "/activation/" + token
	body := "Please click the link below to activate your account:\r\n\r\n" + link
	if err := s.mailer.SendEmail(req.Email, "Activate your account", body); err != nil {
		return fmt.Errorf("send activation email: %w", err)
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if len(*req.Name) < 3 {
			return nil, fmt.Errorf("Your name must be at least 3 letters long: %w", domain.ErrBadRequest)
		}
		updates[fieldName] = *req.Name
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.PhoneNumber != nil {
		updates[fieldPhoneNumber] = *req.PhoneNumber
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, u)
}

// strongPassword reports whether p is 6-20 characters with at least one
// digit, one lowercase and one uppercase letter.
func strongPassword(p string) bool {
	if len(p) < 6 || len(p) > 20 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}
