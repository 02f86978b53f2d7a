package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptrade "github.com/ecom/backend/internal/application/trade"
	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/interfaces/http/dto"
)

func newPaymentEngine(t *testing.T, gateway *fakeGateway, productRepo *fakeProductRepo, store *fakeCheckoutStore) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := handlerJWTService()
	service := apptrade.NewCheckoutService(gateway, productRepo, store, nil, noopLogger())
	engine := newAPIRouter(jwtSvc, NewPaymentHandler(service, noopLogger()))
	return engine, jwtSvc
}

func TestPaymentHandler_ClientTokenRequiresAuth(t *testing.T) {
	engine, _ := newPaymentEngine(t, &fakeGateway{}, &fakeProductRepo{}, &fakeCheckoutStore{})

	w := performRequest(engine, http.MethodGet, "/api/v1/payment/token", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentHandler_ClientToken(t *testing.T) {
	engine, jwtSvc := newPaymentEngine(t, &fakeGateway{}, &fakeProductRepo{}, &fakeCheckoutStore{})
	token := issueTestToken(t, jwtSvc, uuid.New(), "customer")

	w := performRequest(engine, http.MethodGet, "/api/v1/payment/token", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"client-token"`)
}

func TestPaymentHandler_Checkout(t *testing.T) {
	product := mustProduct(t, "World Atlas", "19.99", uuid.New(), 10)
	productRepo := &fakeProductRepo{
		findByID: func(context.Context, uuid.UUID) (*catalog.Product, error) { return product, nil },
	}

	var placedOrder *trade.Order
	store := &fakeCheckoutStore{
		placeOrder: func(_ context.Context, order *trade.Order, decrements map[uuid.UUID]int) error {
			placedOrder = order
			assert.Equal(t, 2, decrements[product.ID])
			return nil
		},
	}
	var charged decimal.Decimal
	gateway := &fakeGateway{
		sale: func(_ context.Context, req *payment.SaleRequest) (*payment.Transaction, error) {
			charged = req.Amount
			return &payment.Transaction{
				ID:       "txn-sale-1",
				Status:   payment.TransactionStatusCaptured,
				Amount:   req.Amount,
				Currency: req.Currency,
			}, nil
		},
	}

	engine, jwtSvc := newPaymentEngine(t, gateway, productRepo, store)
	token := issueTestToken(t, jwtSvc, uuid.New(), "customer")

	body := `{"nonce":"fake-valid-nonce","shipping_address":"12 Harbor Lane","items":[{"product_id":"` +
		product.ID.String() + `","quantity":2}]}`
	w := performRequest(engine, http.MethodPost, "/api/v1/payment/checkout", token, strings.NewReader(body))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, placedOrder)
	assert.True(t, charged.Equal(decimal.RequireFromString("39.98")))
	assert.Equal(t, trade.OrderStatusProcessing, placedOrder.Status)
	assert.Contains(t, w.Body.String(), `"payment_ref":"txn-sale-1"`)
}

func TestPaymentHandler_CheckoutDeclined(t *testing.T) {
	product := mustProduct(t, "World Atlas", "19.99", uuid.New(), 10)
	productRepo := &fakeProductRepo{
		findByID: func(context.Context, uuid.UUID) (*catalog.Product, error) { return product, nil },
	}
	gateway := &fakeGateway{
		sale: func(context.Context, *payment.SaleRequest) (*payment.Transaction, error) {
			return nil, payment.ErrPaymentDeclined
		},
	}

	engine, jwtSvc := newPaymentEngine(t, gateway, productRepo, &fakeCheckoutStore{})
	token := issueTestToken(t, jwtSvc, uuid.New(), "customer")

	body := `{"nonce":"fake-valid-nonce","shipping_address":"12 Harbor Lane","items":[{"product_id":"` +
		product.ID.String() + `","quantity":1}]}`
	w := performRequest(engine, http.MethodPost, "/api/v1/payment/checkout", token, strings.NewReader(body))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodePaymentDeclined)
}

func TestPaymentHandler_CheckoutValidation(t *testing.T) {
	engine, jwtSvc := newPaymentEngine(t, &fakeGateway{}, &fakeProductRepo{}, &fakeCheckoutStore{})
	token := issueTestToken(t, jwtSvc, uuid.New(), "customer")

	w := performRequest(engine, http.MethodPost, "/api/v1/payment/checkout", token,
		strings.NewReader(`{"nonce":"","items":[]}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
}
