package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Resource access (RES) ----

// ErrNotFound reports a missing entity.
func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrForbidden reports an ownership violation. It is deliberately distinct
// from ErrNotFound: the entity exists but belongs to another merchant, and
// collapsing the two would leak existence through error codes.
func ErrForbidden(entity string) *AppError {
	return New("RES_002", fmt.Sprintf("access to %s denied", entity), http.StatusForbidden)
}

// ErrConflict reports a uniqueness violation.
func ErrConflict(message string) *AppError {
	return New("RES_003", message, http.StatusConflict)
}

// ---- Merchant (MCH) ----

func ErrMerchantInactive() *AppError {
	return New("MCH_001", "Merchant account is inactive", http.StatusForbidden)
}

// ---- Transaction Business Logic (TXN) ----

func ErrInvalidTransition(from, to string) *AppError {
	return New("TXN_001", fmt.Sprintf("Invalid status transition: %s -> %s", from, to), http.StatusConflict)
}

func ErrInsufficientFunds() *AppError {
	return New("TXN_002", "Insufficient balance in wallet", http.StatusUnprocessableEntity)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Invalid amount", http.StatusBadRequest)
}

// ---- Currency & Conversion (CUR) ----

func ErrUnsupportedCurrency(network, coin string) *AppError {
	return New("CUR_001", fmt.Sprintf("Unsupported currency %s on network %s", coin, network), http.StatusUnprocessableEntity)
}

func ErrConversion(message string) *AppError {
	return New("CUR_002", message, http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Settlement callback security (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_002", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_003", "Nonce has already been used", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// Unexpected wraps a collaborator failure with the failing operation name.
func Unexpected(op string, err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, fmt.Errorf("%s: %w", op, err))
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 invalid-input error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
