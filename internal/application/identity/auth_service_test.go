package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecom/backend/internal/domain/identity"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func createTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Jane Doe", "jane@example.com", "Password123", "first pet")
	require.NoError(t, err)
	return user
}

func createAuthService(userRepo *MockUserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})

	return NewAuthService(
		userRepo,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	return domainErr.Code
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)

	userRepo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	svc := createAuthService(userRepo)

	info, err := svc.Register(ctx, RegisterInput{
		Name:     "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "Password123",
		Answer:   "first pet",
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "customer", info.Role)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)

	userRepo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

	svc := createAuthService(userRepo)

	info, err := svc.Register(ctx, RegisterInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "Password123",
		Answer:   "first pet",
	})

	require.Error(t, err)
	assert.Nil(t, info)
	assert.Equal(t, "ALREADY_EXISTS", domainCode(t, err))
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc := createAuthService(new(MockUserRepository))

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jane",
		Email:    "not-an-email",
		Password: "Password123",
		Answer:   "x",
	})

	require.Error(t, err)
	assert.Equal(t, "INVALID_EMAIL", domainCode(t, err))
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	result, err := svc.Login(ctx, LoginInput{
		Email:    "jane@example.com",
		Password: "Password123",
		IP:       "127.0.0.1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.NotNil(t, user.LastLoginAt)
	assert.Equal(t, "127.0.0.1", user.LastLoginIP)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)

	userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

	svc := createAuthService(userRepo)

	result, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Password123"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	_, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-pass1"})

	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestAuthService_Login_LocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	for i := 0; i < 4; i++ {
		_, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-pass1"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	}

	// Fifth failure trips the lock
	_, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-pass1"})
	assert.Equal(t, "ACCOUNT_LOCKED", domainCode(t, err))
	assert.True(t, user.IsLocked())

	// Even the correct password is refused while locked
	_, err = svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Password123"})
	assert.Equal(t, "ACCOUNT_LOCKED", domainCode(t, err))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("resets with correct answer", func(t *testing.T) {
		ctx := context.Background()
		userRepo := new(MockUserRepository)
		user := createTestUser(t)

		userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		svc := createAuthService(userRepo)

		err := svc.ForgotPassword(ctx, ForgotPasswordInput{
			Email:       "jane@example.com",
			Answer:      "First Pet", // answer match is case-insensitive
			NewPassword: "NewPassword1",
		})

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassword1"))
		assert.False(t, user.VerifyPassword("Password123"))
	})

	t.Run("wrong answer counts toward lockout", func(t *testing.T) {
		ctx := context.Background()
		userRepo := new(MockUserRepository)
		user := createTestUser(t)

		userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		svc := createAuthService(userRepo)

		err := svc.ForgotPassword(ctx, ForgotPasswordInput{
			Email:       "jane@example.com",
			Answer:      "wrong answer",
			NewPassword: "NewPassword1",
		})

		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		ctx := context.Background()
		userRepo := new(MockUserRepository)

		userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		svc := createAuthService(userRepo)

		err := svc.ForgotPassword(ctx, ForgotPasswordInput{
			Email:       "nobody@example.com",
			Answer:      "anything",
			NewPassword: "NewPassword1",
		})

		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	login, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Password123"})
	require.NoError(t, err)

	result, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, login.RefreshToken, result.RefreshToken)
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc := createAuthService(new(MockUserRepository))

	_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "not-a-token"})

	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
}

func TestAuthService_RefreshToken_RejectedAfterPasswordChange(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	login, err := svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "Password123"})
	require.NoError(t, err)

	// Token issuance and invalidation both run within the same second,
	// so make the issued-at clearly older than the invalidation mark.
	time.Sleep(1100 * time.Millisecond)

	err = svc.ChangePassword(ctx, ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "Password123",
		NewPassword: "NewPassword1",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, "TOKEN_REVOKED", domainCode(t, err))
}

func TestAuthService_Logout(t *testing.T) {
	svc := createAuthService(new(MockUserRepository))

	err := svc.Logout(context.Background(), LogoutInput{
		UserID:   uuid.New(),
		TokenJTI: "some-jti",
		TokenTTL: 10 * time.Minute,
	})
	require.NoError(t, err)

	blacklisted, err := svc.blacklist.IsBlacklisted(context.Background(), "some-jti")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := createAuthService(userRepo)

	name := "Jane Smith"
	address := "1 Main St"
	info, err := svc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:  user.ID,
		Name:    &name,
		Address: &address,
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", info.Name)
	assert.Equal(t, "1 Main St", info.Address)
	assert.Equal(t, "jane@example.com", info.Email)
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t)

	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	svc := createAuthService(userRepo)

	err := svc.ChangePassword(ctx, ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrong-pass1",
		NewPassword: "NewPassword1",
	})

	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", domainCode(t, err))
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
