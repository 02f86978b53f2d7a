package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-access-secret-0123456789",
		RefreshSecret:          "middleware-refresh-secret-987654321",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ecom-test",
		MaxRefreshCount:        3,
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "buyer@example.com",
		Role:   role,
	})
	require.NoError(t, err)
	return userID, pair.AccessToken
}

func newAuthRouter(cfg JWTMiddlewareConfig, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth(cfg))
	handlers := append(extra, func(c *gin.Context) {
		userID, _ := GetJWTUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/protected", handlers...)
	r.GET("/public", handlers...)
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := testJWTService()
	userID, token := issueToken(t, svc, "customer")

	r := newAuthRouter(JWTMiddlewareConfig{JWTService: svc})
	w := doRequest(r, "/protected", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(JWTMiddlewareConfig{JWTService: testJWTService()})
	w := doRequest(r, "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	r := newAuthRouter(JWTMiddlewareConfig{JWTService: testJWTService()})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	r := newAuthRouter(JWTMiddlewareConfig{JWTService: testJWTService()})
	w := doRequest(r, "/protected", "not.a.token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeTokenInvalid, resp.Error.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-access-secret-0123456789",
		RefreshSecret:          "middleware-refresh-secret-987654321",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ecom-test",
	})
	_, token := issueToken(t, svc, "customer")

	r := newAuthRouter(JWTMiddlewareConfig{JWTService: svc})
	w := doRequest(r, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := testJWTService()
	_, token := issueToken(t, svc, "customer")

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddToBlacklist(t.Context(), claims.ID, time.Hour))

	r := newAuthRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})
	w := doRequest(r, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeTokenRevoked, resp.Error.Code)
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	r := newAuthRouter(JWTMiddlewareConfig{
		JWTService: testJWTService(),
		SkipPaths:  []string{"/public"},
	})
	w := doRequest(r, "/public", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_SkipFunc(t *testing.T) {
	r := newAuthRouter(JWTMiddlewareConfig{
		JWTService: testJWTService(),
		SkipFunc: func(c *gin.Context) bool {
			return c.Request.Method == http.MethodGet
		},
	})
	w := doRequest(r, "/protected", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Admin(t *testing.T) {
	svc := testJWTService()
	_, adminToken := issueToken(t, svc, "admin")
	_, customerToken := issueToken(t, svc, "customer")

	r := newAuthRouter(JWTMiddlewareConfig{JWTService: svc}, RequireAdmin())

	w := doRequest(r, "/protected", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "/protected", customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeError(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doRequest(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
