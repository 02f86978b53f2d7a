package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appidentity "github.com/ecom/backend/internal/application/identity"
	"github.com/ecom/backend/internal/domain/identity"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/interfaces/http/dto"
)

func mustUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Jamie Rivera", "jamie@example.com", "hunter2secret", "first pet")
	require.NoError(t, err)
	return user
}

func newAuthEngine(t *testing.T, userRepo *fakeUserRepo) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := handlerJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	service := appidentity.NewAuthService(userRepo, jwtSvc, blacklist,
		appidentity.DefaultAuthServiceConfig(), noopLogger())
	engine := newAPIRouter(jwtSvc, NewAuthHandler(service, noopLogger()))
	return engine, jwtSvc
}

func TestAuthHandler_Register(t *testing.T) {
	var saved *identity.User
	userRepo := &fakeUserRepo{
		save: func(_ context.Context, u *identity.User) error {
			saved = u
			return nil
		},
	}
	engine, _ := newAuthEngine(t, userRepo)

	body := `{"name":"Jamie Rivera","email":"jamie@example.com","password":"hunter2secret","answer":"first pet"}`
	w := performRequest(engine, http.MethodPost, "/api/v1/auth/register", "", strings.NewReader(body))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, saved)
	assert.Equal(t, "jamie@example.com", saved.Email)
	assert.NotContains(t, w.Body.String(), "hunter2secret")
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	userRepo := &fakeUserRepo{
		existsByEmail: func(context.Context, string) (bool, error) { return true, nil },
	}
	engine, _ := newAuthEngine(t, userRepo)

	body := `{"name":"Jamie Rivera","email":"jamie@example.com","password":"hunter2secret","answer":"first pet"}`
	w := performRequest(engine, http.MethodPost, "/api/v1/auth/register", "", strings.NewReader(body))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeAlreadyExists)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	engine, _ := newAuthEngine(t, &fakeUserRepo{})

	w := performRequest(engine, http.MethodPost, "/api/v1/auth/register", "",
		strings.NewReader(`{"email":"not-an-email"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	user := mustUser(t)
	userRepo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*identity.User, error) { return user, nil },
		findByID:    func(context.Context, uuid.UUID) (*identity.User, error) { return user, nil },
	}
	engine, _ := newAuthEngine(t, userRepo)

	body := `{"email":"jamie@example.com","password":"hunter2secret"}`
	w := performRequest(engine, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.Equal(t, "jamie@example.com", resp.Data.User.Email)

	w = performRequest(engine, http.MethodGet, "/api/v1/auth/me", resp.Data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jamie@example.com")
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	user := mustUser(t)
	userRepo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*identity.User, error) { return user, nil },
	}
	engine, _ := newAuthEngine(t, userRepo)

	body := `{"email":"jamie@example.com","password":"wrong-password"}`
	w := performRequest(engine, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(body))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidCredentials)
}

func TestAuthHandler_UserAuthProbe(t *testing.T) {
	user := mustUser(t)
	engine, jwtSvc := newAuthEngine(t, &fakeUserRepo{})
	token := issueTestToken(t, jwtSvc, user.ID, "customer")

	w := performRequest(engine, http.MethodGet, "/api/v1/auth/user-auth", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = performRequest(engine, http.MethodGet, "/api/v1/auth/user-auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_AdminAuthProbe(t *testing.T) {
	engine, jwtSvc := newAuthEngine(t, &fakeUserRepo{})

	customerToken := issueTestToken(t, jwtSvc, mustUser(t).ID, "customer")
	w := performRequest(engine, http.MethodGet, "/api/v1/auth/admin-auth", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := issueTestToken(t, jwtSvc, mustUser(t).ID, "admin")
	w = performRequest(engine, http.MethodGet, "/api/v1/auth/admin-auth", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	user := mustUser(t)
	var saved *identity.User
	userRepo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*identity.User, error) { return user, nil },
		save: func(_ context.Context, u *identity.User) error {
			saved = u
			return nil
		},
	}
	engine, _ := newAuthEngine(t, userRepo)

	body := `{"email":"jamie@example.com","answer":"first pet","new_password":"a-new-password"}`
	w := performRequest(engine, http.MethodPost, "/api/v1/auth/forgot-password", "", strings.NewReader(body))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.True(t, saved.VerifyPassword("a-new-password"))
}

func TestAuthHandler_Logout(t *testing.T) {
	user := mustUser(t)
	engine, jwtSvc := newAuthEngine(t, &fakeUserRepo{})
	token := issueTestToken(t, jwtSvc, user.ID, "customer")

	w := performRequest(engine, http.MethodPost, "/api/v1/auth/logout", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
}
