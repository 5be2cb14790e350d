package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskbox-api/internal/config"
	"github.com/taskbox-api/internal/domain"
	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByPersonalID(ctx context.Context, personalID string) (*domain.User, error) {
	args := m.Called(ctx, personalID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Insert(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.UserVerification) error {
	return m.Called(ctx, v).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockActivationSigner struct{ mock.Mock }

func (m *mockActivationSigner) Sign(claims jwtinfra.ActivationClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newOTPService(us *mockUserStore, vs *mockVerificationStore, ml *mockMailer) Service {
	return NewService(ServiceDeps{
		UserRepo:         us,
		VerificationRepo: vs,
		Mailer:           ml,
		Mode:             config.VerificationModeOTP,
	})
}

func newActivationService(us *mockUserStore, ml *mockMailer, as *mockActivationSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:         us,
		Mailer:           ml,
		ActivationSigner: as,
		Mode:             config.VerificationModeActivation,
		AppURL:           "http://localhost:3000",
	})
}

func baseReq() domain.SignUpRequest {
	return domain.SignUpRequest{
		PersonalID:      "9001",
		Name:            "Alice Smith",
		Email:           "alice@example.com",
		Password:        "Passw0rd",
		ConfirmPassword: "Passw0rd",
	}
}

// --- Register validation tests ---

func TestRegister_MissingFields(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	req := baseReq()
	req.Email = ""
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "Please fill in all fields")
}

func TestRegister_ShortName(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	req := baseReq()
	req.Name = "Al"
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "at least 3 letters")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	req := baseReq()
	req.ConfirmPassword = "Passw0rd2"
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "Password did not match")
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	req := baseReq()
	req.Email = "not-an-email"
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "Invalid email")
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	for _, pw := range []string{"short", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere", "Aa1aaaaaaaaaaaaaaaaaa"} {
		req := baseReq()
		req.Password = pw
		req.ConfirmPassword = pw
		_, err := svc.Register(context.Background(), req)

		require.Error(t, err, "password %q should be rejected", pw)
		assert.True(t, errors.Is(err, domain.ErrBadRequest))
		assert.Contains(t, err.Error(), "6 to 20 characters")
	}
}

func TestRegister_MismatchCheckedBeforeEmailShape(t *testing.T) {
	// Both checks would fail; the mismatch message must win.
	svc := newOTPService(&mockUserStore{}, nil, nil)
	req := baseReq()
	req.Email = "not-an-email"
	req.ConfirmPassword = "Other1pw"
	_, err := svc.Register(context.Background(), req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password did not match")
}

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{}, nil)

	svc := newOTPService(us, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "This email is already registered")
	us.AssertExpectations(t)
}

func TestRegister_PersonalIDConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, "9001").Return(&domain.User{}, nil)

	svc := newOTPService(us, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "This personal id is already registered")
	us.AssertExpectations(t)
}

// --- OTP strategy tests ---

func TestRegister_OTP_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, "9001").Return(nil, domain.ErrNotFound)
	ml.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)
	us.On("Insert", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	vs.On("Put", mock.Anything, mock.AnythingOfType("*domain.UserVerification")).Return(nil)

	svc := newOTPService(us, vs, ml)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.Verified)
	assert.NotEmpty(t, u.UserID)

	// The stored hash must verify against the plaintext and differ from it.
	assert.NotEqual(t, "Passw0rd", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Passw0rd")))

	// The emailed code and stored code must agree and be 6 digits.
	v := vs.Calls[0].Arguments.Get(1).(*domain.UserVerification)
	assert.Len(t, v.Code, 6)
	body := ml.Calls[0].Arguments.String(2)
	assert.Contains(t, body, v.Code)

	us.AssertExpectations(t)
	vs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRegister_OTP_EmailSendFailure_PersistsNothing(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, "9001").Return(nil, domain.ErrNotFound)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newOTPService(us, &mockVerificationStore{}, ml)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	us.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRegister_OTP_InsertConflict(t *testing.T) {
	// The advisory pre-checks passed but the transactional insert lost the race.
	us := &mockUserStore{}
	vs := &mockVerificationStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, "9001").Return(nil, domain.ErrNotFound)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	us.On("Insert", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newOTPService(us, vs, ml)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Activation strategy tests ---

func TestRegister_Activation_PersistsNothing(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	as := &mockActivationSigner{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, "9001").Return(nil, domain.ErrNotFound)
	as.On("Sign", mock.AnythingOfType("jwtinfra.ActivationClaims")).Return("signed-token", nil)
	ml.On("SendEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	svc := newActivationService(us, ml, as)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Nil(t, u)
	us.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	// The claims carry the hash, never the plaintext.
	claims := as.Calls[0].Arguments.Get(0).(jwtinfra.ActivationClaims)
	assert.NotEqual(t, "Passw0rd", claims.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(claims.PasswordHash), []byte("Passw0rd")))

	// The mail must contain the activation link.
	body := ml.Calls[0].Arguments.String(2)
	assert.Contains(t, body, "http://localhost:3000/activation/signed-token")
}

func TestRegister_Activation_EmailSendFailure(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	as := &mockActivationSigner{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	us.On("GetByPersonalID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	as.On("Sign", mock.Anything).Return("signed-token", nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newActivationService(us, ml, as)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
}

// --- Update tests ---

func ptr[T any](v T) *T { return &v }

func TestUpdate_EmptyRequest_ReturnsExistingUser(t *testing.T) {
	us := &mockUserStore{}
	existing := &domain.User{UserID: "u1", Name: "Alice"}
	us.On("Get", mock.Anything, "u1").Return(existing, nil)

	svc := newOTPService(us, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, u)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ShortName(t *testing.T) {
	svc := newOTPService(&mockUserStore{}, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Name: ptr("Al"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	updated := &domain.User{UserID: "u1", Name: "Bob Jones"}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{
		"name":    "Bob Jones",
		"address": "1 Main St",
	}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(updated, nil)

	svc := newOTPService(us, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Name:    ptr("Bob Jones"),
		Address: ptr("1 Main St"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Bob Jones", u.Name)
	us.AssertExpectations(t)
}

// --- Delete tests ---

func TestDelete_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newOTPService(us, nil, nil)
	err := svc.Delete(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	u := &domain.User{UserID: "u1", Email: "alice@example.com", PersonalID: "9001"}
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	us.On("Delete", mock.Anything, u).Return(nil)

	svc := newOTPService(us, nil, nil)
	err := svc.Delete(context.Background(), "u1")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
