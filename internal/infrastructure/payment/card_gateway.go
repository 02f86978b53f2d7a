// Package payment provides the card gateway adapter used at checkout.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	domainpayment "github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/infrastructure/config"
)

const (
	gatewayProductionBaseURL = "https://api.braintreegateway.com"
	gatewaySandboxBaseURL    = "https://api.sandbox.braintreegateway.com"

	clientTokenPath  = "/merchants/%s/client_tokens"
	transactionsPath = "/merchants/%s/transactions"
	transactionPath  = "/merchants/%s/transactions/%s"
	refundPath       = "/merchants/%s/transactions/%s/refund"
)

// CardGateway implements the payment.Gateway port against the provider's
// REST API. Requests carry the merchant public key and an HMAC-SHA256
// signature of the body keyed by the private key.
type CardGateway struct {
	baseURL    string
	merchantID string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

// NewCardGateway creates a new card gateway adapter from configuration
func NewCardGateway(cfg *config.PaymentConfig) (*CardGateway, error) {
	if cfg == nil || cfg.MerchantID == "" || cfg.PrivateKey == "" {
		return nil, domainpayment.ErrGatewayNotConfigured
	}

	baseURL := gatewaySandboxBaseURL
	if cfg.Environment == "production" {
		baseURL = gatewayProductionBaseURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CardGateway{
		baseURL:    baseURL,
		merchantID: cfg.MerchantID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// NewCardGatewayWithBaseURL creates an adapter pointed at a custom endpoint,
// used in tests against a local server.
func NewCardGatewayWithBaseURL(cfg *config.PaymentConfig, baseURL string) (*CardGateway, error) {
	gw, err := NewCardGateway(cfg)
	if err != nil {
		return nil, err
	}
	gw.baseURL = baseURL
	return gw, nil
}

type clientTokenResponse struct {
	ClientToken string    `json:"client_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type saleRequestBody struct {
	OrderID             string `json:"order_id"`
	OrderNumber         string `json:"order_number,omitempty"`
	PaymentMethodNonce  string `json:"payment_method_nonce"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	CustomerEmail       string `json:"customer_email,omitempty"`
	CustomerIP          string `json:"customer_ip,omitempty"`
	SubmitForSettlement bool   `json:"submit_for_settlement"`
}

type refundRequestBody struct {
	Amount string `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	ProcessedAt   time.Time `json:"processed_at"`
	ProcessorCode string    `json:"processor_response_code,omitempty"`
	ProcessorText string    `json:"processor_response_text,omitempty"`
}

type gatewayErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerateClientToken returns a token for the browser SDK
func (g *CardGateway) GenerateClientToken(ctx context.Context) (*domainpayment.ClientToken, error) {
	path := fmt.Sprintf(clientTokenPath, g.merchantID)

	respBody, status, err := g.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, g.mapErrorResponse(respBody, status)
	}

	var tokenResp clientTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainpayment.ErrGatewayInvalidResponse, err)
	}
	if tokenResp.ClientToken == "" {
		return nil, domainpayment.ErrGatewayInvalidResponse
	}

	return &domainpayment.ClientToken{
		Token:     tokenResp.ClientToken,
		ExpiresAt: tokenResp.ExpiresAt,
	}, nil
}

// Sale captures a payment against a tokenized payment method
func (g *CardGateway) Sale(ctx context.Context, req *domainpayment.SaleRequest) (*domainpayment.Transaction, error) {
	if req == nil || req.Nonce == "" {
		return nil, domainpayment.ErrInvalidNonce
	}
	if !req.Amount.IsPositive() {
		return nil, domainpayment.ErrInvalidAmount
	}

	body := saleRequestBody{
		OrderID:             req.OrderID.String(),
		OrderNumber:         req.OrderNumber,
		PaymentMethodNonce:  req.Nonce,
		Amount:              req.Amount.StringFixed(2),
		Currency:            req.Currency,
		CustomerEmail:       req.BuyerEmail,
		CustomerIP:          req.ClientIP,
		SubmitForSettlement: true,
	}

	path := fmt.Sprintf(transactionsPath, g.merchantID)
	respBody, status, err := g.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, g.mapErrorResponse(respBody, status)
	}

	txn, err := parseTransaction(respBody)
	if err != nil {
		return nil, err
	}
	if txn.Status == domainpayment.TransactionStatusDeclined {
		return txn, fmt.Errorf("%w: %s %s", domainpayment.ErrPaymentDeclined, txn.DeclineCode, txn.DeclineMessage)
	}
	return txn, nil
}

// FindTransaction looks up a previous transaction by gateway ID
func (g *CardGateway) FindTransaction(ctx context.Context, transactionID string) (*domainpayment.Transaction, error) {
	if transactionID == "" {
		return nil, domainpayment.ErrTransactionNotFound
	}

	path := fmt.Sprintf(transactionPath, g.merchantID, transactionID)
	respBody, status, err := g.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domainpayment.ErrTransactionNotFound
	}
	if status >= 400 {
		return nil, g.mapErrorResponse(respBody, status)
	}

	return parseTransaction(respBody)
}

// Refund refunds part or all of a captured transaction
func (g *CardGateway) Refund(ctx context.Context, req *domainpayment.RefundRequest) (*domainpayment.Transaction, error) {
	if req == nil || req.TransactionID == "" {
		return nil, domainpayment.ErrTransactionNotFound
	}
	if !req.Amount.IsPositive() {
		return nil, domainpayment.ErrInvalidAmount
	}

	body := refundRequestBody{
		Amount: req.Amount.StringFixed(2),
		Reason: req.Reason,
	}

	path := fmt.Sprintf(refundPath, g.merchantID, req.TransactionID)
	respBody, status, err := g.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domainpayment.ErrTransactionNotFound
	}
	if status >= 400 {
		return nil, g.mapErrorResponse(respBody, status)
	}

	return parseTransaction(respBody)
}

// doRequest performs a signed HTTP request against the gateway API
func (g *CardGateway) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("payment: failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("payment: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.publicKey)
	req.Header.Set("X-Signature", g.signPayload(payload))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domainpayment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domainpayment.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d", domainpayment.ErrGatewayUnavailable, resp.StatusCode)
	}

	return respBody, resp.StatusCode, nil
}

// signPayload computes the HMAC-SHA256 signature of the request body
func (g *CardGateway) signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(g.privateKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// mapErrorResponse maps a gateway error body to a domain error
func (g *CardGateway) mapErrorResponse(respBody []byte, status int) error {
	var gatewayErr gatewayErrorResponse
	if err := json.Unmarshal(respBody, &gatewayErr); err != nil {
		return fmt.Errorf("%w: HTTP %d", domainpayment.ErrGatewayInvalidResponse, status)
	}

	switch gatewayErr.Code {
	case "processor_declined", "gateway_rejected":
		return fmt.Errorf("%w: %s", domainpayment.ErrPaymentDeclined, gatewayErr.Message)
	case "invalid_nonce", "nonce_consumed":
		return domainpayment.ErrInvalidNonce
	case "duplicate_transaction":
		return domainpayment.ErrDuplicatePayment
	case "refund_not_allowed":
		return domainpayment.ErrRefundNotAllowed
	case "refund_amount_too_large":
		return domainpayment.ErrRefundAmountTooLarge
	default:
		return fmt.Errorf("%w: %s (%s)", domainpayment.ErrGatewayInvalidResponse, gatewayErr.Message, gatewayErr.Code)
	}
}

// parseTransaction converts a gateway transaction payload to the domain type
func parseTransaction(respBody []byte) (*domainpayment.Transaction, error) {
	var txnResp transactionResponse
	if err := json.Unmarshal(respBody, &txnResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domainpayment.ErrGatewayInvalidResponse, err)
	}
	if txnResp.ID == "" {
		return nil, domainpayment.ErrGatewayInvalidResponse
	}

	status := domainpayment.TransactionStatus(txnResp.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainpayment.ErrGatewayInvalidResponse, txnResp.Status)
	}

	amount, err := decimal.NewFromString(txnResp.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q", domainpayment.ErrGatewayInvalidResponse, txnResp.Amount)
	}

	txn := &domainpayment.Transaction{
		ID:          txnResp.ID,
		Status:      status,
		Amount:      amount,
		Currency:    txnResp.Currency,
		ProcessedAt: txnResp.ProcessedAt,
	}
	if status == domainpayment.TransactionStatusDeclined {
		txn.DeclineCode = txnResp.ProcessorCode
		txn.DeclineMessage = txnResp.ProcessorText
	}
	return txn, nil
}

// Ensure CardGateway implements the Gateway port
var _ domainpayment.Gateway = (*CardGateway)(nil)
