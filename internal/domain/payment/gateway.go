package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Sale errors
	ErrInvalidNonce      = errors.New("payment: invalid payment method nonce")
	ErrInvalidAmount     = errors.New("payment: invalid payment amount")
	ErrInvalidOrderRef   = errors.New("payment: invalid order reference")
	ErrPaymentDeclined   = errors.New("payment: transaction declined by gateway")
	ErrDuplicatePayment  = errors.New("payment: duplicate transaction")
	ErrTransactionNotFound = errors.New("payment: transaction not found")

	// Refund errors
	ErrRefundNotAllowed     = errors.New("refund: transaction not refundable")
	ErrRefundAmountTooLarge = errors.New("refund: refund amount exceeds captured amount")

	// Gateway errors
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
)

// TransactionStatus represents the gateway-side status of a transaction
type TransactionStatus string

const (
	TransactionStatusAuthorized TransactionStatus = "authorized"
	TransactionStatusCaptured   TransactionStatus = "captured"
	TransactionStatusDeclined   TransactionStatus = "declined"
	TransactionStatusRefunded   TransactionStatus = "refunded"
	TransactionStatusVoided     TransactionStatus = "voided"
)

// IsValid returns true if the status is a known TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusAuthorized, TransactionStatusCaptured,
		TransactionStatusDeclined, TransactionStatusRefunded, TransactionStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// ClientToken is a short-lived token the browser SDK uses to tokenize
// card details directly against the gateway.
type ClientToken struct {
	Token     string
	ExpiresAt time.Time
}

// SaleRequest describes a capture request against a tokenized payment method
type SaleRequest struct {
	// OrderID is our internal order reference
	OrderID uuid.UUID
	// OrderNumber is shown on the buyer's statement where supported
	OrderNumber string
	// Nonce is the one-time payment method token from the client SDK
	Nonce string
	// Amount is the amount to capture
	Amount decimal.Decimal
	// Currency is the ISO 4217 currency code
	Currency string
	// BuyerEmail is forwarded for gateway-side receipts and risk checks
	BuyerEmail string
	// ClientIP is the buyer's IP address
	ClientIP string
}

// Transaction is the gateway's record of a sale or refund
type Transaction struct {
	ID          string // gateway transaction ID
	Status      TransactionStatus
	Amount      decimal.Decimal
	Currency    string
	ProcessedAt time.Time
	// DeclineCode is set when Status is declined
	DeclineCode string
	// DeclineMessage is the gateway's human-readable decline reason
	DeclineMessage string
}

// RefundRequest describes a full or partial refund of a captured transaction
type RefundRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	Reason        string
}

// Gateway is the port to the card payment provider.
// Implementations live in infrastructure and talk to the provider's HTTP API.
type Gateway interface {
	// GenerateClientToken returns a token for the browser SDK
	GenerateClientToken(ctx context.Context) (*ClientToken, error)

	// Sale captures a payment against a tokenized payment method.
	// A declined transaction is returned with ErrPaymentDeclined; transport
	// and provider failures surface as ErrGatewayUnavailable.
	Sale(ctx context.Context, req *SaleRequest) (*Transaction, error)

	// FindTransaction looks up a previous transaction by gateway ID
	FindTransaction(ctx context.Context, transactionID string) (*Transaction, error)

	// Refund refunds part or all of a captured transaction
	Refund(ctx context.Context, req *RefundRequest) (*Transaction, error)
}
