package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/identity"
	"github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/ecom/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Function-field fakes keep each test's behavior next to the assertion
// instead of spread over expectation setup. Unset fields fall back to
// not-found or empty results.

type fakeCategoryRepo struct {
	findByID     func(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
	findBySlug   func(ctx context.Context, slug string) (*catalog.Category, error)
	findAll      func(ctx context.Context, filter shared.Filter) ([]catalog.Category, error)
	existsBySlug func(ctx context.Context, slug string) (bool, error)
	save         func(ctx context.Context, category *catalog.Category) error
	delete       func(ctx context.Context, id uuid.UUID) error
	count        func(ctx context.Context, filter shared.Filter) (int64, error)
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	if f.findBySlug != nil {
		return f.findBySlug(ctx, slug)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	if f.findAll != nil {
		return f.findAll(ctx, filter)
	}
	return nil, nil
}

func (f *fakeCategoryRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if f.existsBySlug != nil {
		return f.existsBySlug(ctx, slug)
	}
	return false, nil
}

func (f *fakeCategoryRepo) Save(ctx context.Context, category *catalog.Category) error {
	if f.save != nil {
		return f.save(ctx, category)
	}
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeCategoryRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if f.count != nil {
		return f.count(ctx, filter)
	}
	return 0, nil
}

type fakeProductRepo struct {
	findByID        func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	findBySlug      func(ctx context.Context, slug string) (*catalog.Product, error)
	findAll         func(ctx context.Context, filter shared.Filter) ([]catalog.Product, error)
	findActive      func(ctx context.Context, filter shared.Filter) ([]catalog.Product, error)
	findByCategory  func(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error)
	findRelated     func(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]catalog.Product, error)
	search          func(ctx context.Context, keyword string, filter shared.Filter) ([]catalog.Product, error)
	browse          func(ctx context.Context, query catalog.BrowseQuery, filter shared.Filter) ([]catalog.Product, error)
	existsBySlug    func(ctx context.Context, slug string) (bool, error)
	countByCategory func(ctx context.Context, categoryID uuid.UUID) (int64, error)
	countActive     func(ctx context.Context) (int64, error)
	save            func(ctx context.Context, product *catalog.Product) error
	delete          func(ctx context.Context, id uuid.UUID) error
	count           func(ctx context.Context, filter shared.Filter) (int64, error)
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	if f.findBySlug != nil {
		return f.findBySlug(ctx, slug)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	if f.findAll != nil {
		return f.findAll(ctx, filter)
	}
	return nil, nil
}

func (f *fakeProductRepo) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	if f.findActive != nil {
		return f.findActive(ctx, filter)
	}
	return nil, nil
}

func (f *fakeProductRepo) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	if f.findByCategory != nil {
		return f.findByCategory(ctx, categoryID, filter)
	}
	return nil, nil
}

func (f *fakeProductRepo) FindRelated(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]catalog.Product, error) {
	if f.findRelated != nil {
		return f.findRelated(ctx, productID, categoryID, limit)
	}
	return nil, nil
}

func (f *fakeProductRepo) Search(ctx context.Context, keyword string, filter shared.Filter) ([]catalog.Product, error) {
	if f.search != nil {
		return f.search(ctx, keyword, filter)
	}
	return nil, nil
}

func (f *fakeProductRepo) Browse(ctx context.Context, query catalog.BrowseQuery, filter shared.Filter) ([]catalog.Product, error) {
	if f.browse != nil {
		return f.browse(ctx, query, filter)
	}
	return nil, nil
}

func (f *fakeProductRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if f.existsBySlug != nil {
		return f.existsBySlug(ctx, slug)
	}
	return false, nil
}

func (f *fakeProductRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	if f.countByCategory != nil {
		return f.countByCategory(ctx, categoryID)
	}
	return 0, nil
}

func (f *fakeProductRepo) CountActive(ctx context.Context) (int64, error) {
	if f.countActive != nil {
		return f.countActive(ctx)
	}
	return 0, nil
}

func (f *fakeProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	if f.save != nil {
		return f.save(ctx, product)
	}
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeProductRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if f.count != nil {
		return f.count(ctx, filter)
	}
	return 0, nil
}

type fakeOrderRepo struct {
	findByID          func(ctx context.Context, id uuid.UUID) (*trade.Order, error)
	findByOrderNumber func(ctx context.Context, orderNumber string) (*trade.Order, error)
	findByBuyer       func(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]trade.Order, error)
	findAll           func(ctx context.Context, filter shared.Filter) ([]trade.Order, error)
	findByStatus      func(ctx context.Context, status trade.OrderStatus, filter shared.Filter) ([]trade.Order, error)
	countByBuyer      func(ctx context.Context, buyerID uuid.UUID) (int64, error)
	save              func(ctx context.Context, order *trade.Order) error
	delete            func(ctx context.Context, id uuid.UUID) error
	count             func(ctx context.Context, filter shared.Filter) (int64, error)
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	if f.findByOrderNumber != nil {
		return f.findByOrderNumber(ctx, orderNumber)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeOrderRepo) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	if f.findByBuyer != nil {
		return f.findByBuyer(ctx, buyerID, filter)
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	if f.findAll != nil {
		return f.findAll(ctx, filter)
	}
	return nil, nil
}

func (f *fakeOrderRepo) FindByStatus(ctx context.Context, status trade.OrderStatus, filter shared.Filter) ([]trade.Order, error) {
	if f.findByStatus != nil {
		return f.findByStatus(ctx, status, filter)
	}
	return nil, nil
}

func (f *fakeOrderRepo) CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	if f.countByBuyer != nil {
		return f.countByBuyer(ctx, buyerID)
	}
	return 0, nil
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *trade.Order) error {
	if f.save != nil {
		return f.save(ctx, order)
	}
	return nil
}

func (f *fakeOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if f.count != nil {
		return f.count(ctx, filter)
	}
	return 0, nil
}

type fakeCheckoutStore struct {
	placeOrder   func(ctx context.Context, order *trade.Order, decrements map[uuid.UUID]int) error
	restockOrder func(ctx context.Context, order *trade.Order, increments map[uuid.UUID]int) error
}

func (f *fakeCheckoutStore) PlaceOrder(ctx context.Context, order *trade.Order, decrements map[uuid.UUID]int) error {
	if f.placeOrder != nil {
		return f.placeOrder(ctx, order, decrements)
	}
	return nil
}

func (f *fakeCheckoutStore) RestockOrder(ctx context.Context, order *trade.Order, increments map[uuid.UUID]int) error {
	if f.restockOrder != nil {
		return f.restockOrder(ctx, order, increments)
	}
	return nil
}

type fakeGateway struct {
	generateClientToken func(ctx context.Context) (*payment.ClientToken, error)
	sale                func(ctx context.Context, req *payment.SaleRequest) (*payment.Transaction, error)
	findTransaction     func(ctx context.Context, transactionID string) (*payment.Transaction, error)
	refund              func(ctx context.Context, req *payment.RefundRequest) (*payment.Transaction, error)
}

func (f *fakeGateway) GenerateClientToken(ctx context.Context) (*payment.ClientToken, error) {
	if f.generateClientToken != nil {
		return f.generateClientToken(ctx)
	}
	return &payment.ClientToken{Token: "client-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeGateway) Sale(ctx context.Context, req *payment.SaleRequest) (*payment.Transaction, error) {
	if f.sale != nil {
		return f.sale(ctx, req)
	}
	return &payment.Transaction{
		ID:          "txn-test",
		Status:      payment.TransactionStatusCaptured,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ProcessedAt: time.Now(),
	}, nil
}

func (f *fakeGateway) FindTransaction(ctx context.Context, transactionID string) (*payment.Transaction, error) {
	if f.findTransaction != nil {
		return f.findTransaction(ctx, transactionID)
	}
	return nil, payment.ErrTransactionNotFound
}

func (f *fakeGateway) Refund(ctx context.Context, req *payment.RefundRequest) (*payment.Transaction, error) {
	if f.refund != nil {
		return f.refund(ctx, req)
	}
	return &payment.Transaction{ID: req.TransactionID, Status: payment.TransactionStatusRefunded}, nil
}

type fakeUserRepo struct {
	findByID      func(ctx context.Context, id uuid.UUID) (*identity.User, error)
	findByEmail   func(ctx context.Context, email string) (*identity.User, error)
	findAll       func(ctx context.Context, filter shared.Filter) ([]identity.User, error)
	existsByEmail func(ctx context.Context, email string) (bool, error)
	save          func(ctx context.Context, user *identity.User) error
	delete        func(ctx context.Context, id uuid.UUID) error
	count         func(ctx context.Context, filter shared.Filter) (int64, error)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if f.findByID != nil {
		return f.findByID(ctx, id)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if f.findByEmail != nil {
		return f.findByEmail(ctx, email)
	}
	return nil, shared.ErrNotFound
}

func (f *fakeUserRepo) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	if f.findAll != nil {
		return f.findAll(ctx, filter)
	}
	return nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsByEmail != nil {
		return f.existsByEmail(ctx, email)
	}
	return false, nil
}

func (f *fakeUserRepo) Save(ctx context.Context, user *identity.User) error {
	if f.save != nil {
		return f.save(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if f.count != nil {
		return f.count(ctx, filter)
	}
	return 0, nil
}

type fakeObjectStorage struct {
	uploads map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{uploads: make(map[string][]byte)}
}

func (f *fakeObjectStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	f.uploads[storageKey] = data
	return nil
}

func (f *fakeObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://cdn.example.com/" + storageKey, time.Now().Add(expiresIn), nil
}

func (f *fakeObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	delete(f.uploads, storageKey)
	return nil
}

func (f *fakeObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	_, ok := f.uploads[storageKey]
	return ok, nil
}

// test JWT plumbing

func handlerJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-access-secret-0123456789ab",
		RefreshSecret:          "handler-refresh-secret-0123456789a",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "ecom-test",
		MaxRefreshCount:        3,
	})
}

func issueTestToken(t *testing.T, svc *auth.JWTService, userID uuid.UUID, role string) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "buyer@example.com",
		Role:   role,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

// newAPIRouter wires a gin engine the way the server does: request ID,
// JWT auth with the storefront's public routes skipped, versioned API
// group, and the given registrars.
func newAPIRouter(jwtSvc *auth.JWTService, registrars ...router.RouteRegistrar) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtSvc,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/forgot-password",
			"/api/v1/auth/refresh-token",
		},
		SkipFunc: publicCatalogRoute,
	}))

	r := router.NewRouter(engine)
	for _, registrar := range registrars {
		r.Register(registrar)
	}
	r.Setup()
	return engine
}

func publicCatalogRoute(c *gin.Context) bool {
	path := c.Request.URL.Path
	switch c.Request.Method {
	case http.MethodGet:
		if path == "/api/v1/product/all" {
			return false
		}
		return strings.HasPrefix(path, "/api/v1/product") ||
			strings.HasPrefix(path, "/api/v1/category")
	case http.MethodPost:
		return path == "/api/v1/product/filters"
	}
	return false
}

func performRequest(engine *gin.Engine, method, path, token string, body *strings.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func noopLogger() *zap.Logger {
	return zap.NewNop()
}
