package dto

import (
	"net/http"
	"strings"
)

// Error code constants.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the size limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used for blacklisted or invalidated tokens
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	// ErrCodeAccountLocked is used while the lockout window is active
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeInvalidTransition is used for order state machine violations
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
)

// Payment error codes
const (
	// ErrCodePaymentDeclined is used when the gateway declines the card
	ErrCodePaymentDeclined = "ERR_PAYMENT_DECLINED"
	// ErrCodeGatewayUnavailable is used for gateway transport failures
	ErrCodeGatewayUnavailable = "ERR_GATEWAY_UNAVAILABLE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,

	ErrCodePaymentDeclined:    http.StatusPaymentRequired,
	ErrCodeGatewayUnavailable: http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to the wire format
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"CONFLICT":       ErrCodeConflict,

	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_LOCKED":      ErrCodeAccountLocked,
	"ACCOUNT_DEACTIVATED": ErrCodeAccountDeactivated,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":       ErrCodeTokenRevoked,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"TOKEN_ERROR":         ErrCodeTokenInvalid,

	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidTransition,
	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,
	"PRODUCT_NOT_FOUND":  ErrCodeNotFound,
	"PRODUCT_INACTIVE":   ErrCodeBusinessRule,
	"DUPLICATE_PRODUCT":  ErrCodeValidation,
	"EMPTY_CART":         ErrCodeValidation,
	"CART_TOO_LARGE":     ErrCodeValidation,
	"EMPTY_ORDER":        ErrCodeValidation,
	"ALREADY_ADMIN":      ErrCodeBusinessRule,
	"NOT_LOCKED":         ErrCodeBusinessRule,
	"ALREADY_ACTIVE":     ErrCodeBusinessRule,
	"ALREADY_INACTIVE":   ErrCodeBusinessRule,

	"PAYMENT_DECLINED":    ErrCodePaymentDeclined,
	"GATEWAY_UNAVAILABLE": ErrCodeGatewayUnavailable,

	"PHOTO_TOO_LARGE": ErrCodeRequestTooLarge,
	"STORAGE_ERROR":   ErrCodeInternal,
	"INTERNAL_ERROR":  ErrCodeInternal,
	"BAD_REQUEST":     ErrCodeBadRequest,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Constructor validation codes (INVALID_EMAIL, INVALID_QUANTITY, ...) all
// collapse to ERR_VALIDATION; already-normalized or unknown codes pass
// through unchanged.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return code
}
