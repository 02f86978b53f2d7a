package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domainpayment "github.com/ecom/backend/internal/domain/payment"
)

// Sandbox nonces recognized by SandboxGateway, mirroring the provider's
// test values.
const (
	NonceValid        = "fake-valid-nonce"
	NonceDeclined     = "fake-processor-declined-nonce"
	NonceGatewayError = "fake-gateway-rejected-nonce"
)

// SandboxGateway is an in-memory implementation of the Gateway port.
// It approves or declines by nonce and remembers transactions, so checkout
// can be exercised without provider credentials.
type SandboxGateway struct {
	mu           sync.Mutex
	transactions map[string]domainpayment.Transaction
}

// NewSandboxGateway creates a new SandboxGateway
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{
		transactions: make(map[string]domainpayment.Transaction),
	}
}

// GenerateClientToken returns a random token valid for one hour
func (g *SandboxGateway) GenerateClientToken(_ context.Context) (*domainpayment.ClientToken, error) {
	return &domainpayment.ClientToken{
		Token:     "sandbox_" + uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// Sale approves NonceValid and declines the decline nonces
func (g *SandboxGateway) Sale(_ context.Context, req *domainpayment.SaleRequest) (*domainpayment.Transaction, error) {
	if req == nil || req.Nonce == "" {
		return nil, domainpayment.ErrInvalidNonce
	}
	if !req.Amount.IsPositive() {
		return nil, domainpayment.ErrInvalidAmount
	}

	switch req.Nonce {
	case NonceValid:
		txn := domainpayment.Transaction{
			ID:          "sbx_" + uuid.NewString()[:8],
			Status:      domainpayment.TransactionStatusCaptured,
			Amount:      req.Amount,
			Currency:    req.Currency,
			ProcessedAt: time.Now(),
		}
		g.mu.Lock()
		g.transactions[txn.ID] = txn
		g.mu.Unlock()
		return &txn, nil

	case NonceDeclined:
		txn := domainpayment.Transaction{
			ID:             "sbx_" + uuid.NewString()[:8],
			Status:         domainpayment.TransactionStatusDeclined,
			Amount:         req.Amount,
			Currency:       req.Currency,
			ProcessedAt:    time.Now(),
			DeclineCode:    "2000",
			DeclineMessage: "Do Not Honor",
		}
		return &txn, fmt.Errorf("%w: %s %s", domainpayment.ErrPaymentDeclined, txn.DeclineCode, txn.DeclineMessage)

	case NonceGatewayError:
		return nil, domainpayment.ErrGatewayUnavailable

	default:
		return nil, domainpayment.ErrInvalidNonce
	}
}

// FindTransaction returns a previously captured sandbox transaction
func (g *SandboxGateway) FindTransaction(_ context.Context, transactionID string) (*domainpayment.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	txn, ok := g.transactions[transactionID]
	if !ok {
		return nil, domainpayment.ErrTransactionNotFound
	}
	return &txn, nil
}

// Refund marks a captured sandbox transaction as refunded
func (g *SandboxGateway) Refund(_ context.Context, req *domainpayment.RefundRequest) (*domainpayment.Transaction, error) {
	if req == nil || req.TransactionID == "" {
		return nil, domainpayment.ErrTransactionNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	txn, ok := g.transactions[req.TransactionID]
	if !ok {
		return nil, domainpayment.ErrTransactionNotFound
	}
	if txn.Status != domainpayment.TransactionStatusCaptured {
		return nil, domainpayment.ErrRefundNotAllowed
	}
	if req.Amount.GreaterThan(txn.Amount) {
		return nil, domainpayment.ErrRefundAmountTooLarge
	}

	txn.Status = domainpayment.TransactionStatusRefunded
	g.transactions[req.TransactionID] = txn
	return &txn, nil
}

// Ensure SandboxGateway implements the Gateway port
var _ domainpayment.Gateway = (*SandboxGateway)(nil)
