package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appidentity "github.com/ecom/backend/internal/application/identity"
	"github.com/ecom/backend/internal/domain/identity"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/infrastructure/auth"
)

func newUserEngine(t *testing.T, repo *fakeUserRepo) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := handlerJWTService()
	service := appidentity.NewUserService(repo, noopLogger())
	engine := newAPIRouter(jwtSvc, NewUserHandler(service, noopLogger()))
	return engine, jwtSvc
}

func TestUserList_RequiresAdmin(t *testing.T) {
	engine, jwtSvc := newUserEngine(t, &fakeUserRepo{
		findAll: func(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
			return nil, nil
		},
	})

	w := performRequest(engine, http.MethodGet, "/api/v1/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	customer := issueTestToken(t, jwtSvc, uuid.New(), "customer")
	w = performRequest(engine, http.MethodGet, "/api/v1/user", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := issueTestToken(t, jwtSvc, uuid.New(), "admin")
	w = performRequest(engine, http.MethodGet, "/api/v1/user", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserList_NeverLeaksCredentialHashes(t *testing.T) {
	user := mustUser(t)
	engine, jwtSvc := newUserEngine(t, &fakeUserRepo{
		findAll: func(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
			return []identity.User{*user}, nil
		},
		count: func(ctx context.Context, filter shared.Filter) (int64, error) {
			return 1, nil
		},
	})

	admin := issueTestToken(t, jwtSvc, uuid.New(), "admin")
	w := performRequest(engine, http.MethodGet, "/api/v1/user", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, user.Email)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "$2a$")
}

func TestUserPromote(t *testing.T) {
	user := mustUser(t)
	var saved *identity.User
	engine, jwtSvc := newUserEngine(t, &fakeUserRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*identity.User, error) {
			if id == user.ID {
				return user, nil
			}
			return nil, shared.ErrNotFound
		},
		save: func(ctx context.Context, u *identity.User) error {
			saved = u
			return nil
		},
	})

	admin := issueTestToken(t, jwtSvc, uuid.New(), "admin")
	w := performRequest(engine, http.MethodPut, "/api/v1/user/"+user.ID.String()+"/promote", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, saved)
	assert.True(t, saved.IsAdmin())

	var resp struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Data.Role)
}

func TestUserGet_UnknownID(t *testing.T) {
	engine, jwtSvc := newUserEngine(t, &fakeUserRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*identity.User, error) {
			return nil, shared.ErrNotFound
		},
	})

	admin := issueTestToken(t, jwtSvc, uuid.New(), "admin")
	w := performRequest(engine, http.MethodGet, "/api/v1/user/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(engine, http.MethodGet, "/api/v1/user/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
