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

// ---- Wallet Business Logic (WAL) ----

func ErrWalletNotFound() *AppError {
	return New("WAL_001", "Wallet not found", http.StatusNotFound)
}

func ErrInsufficientBalance() *AppError {
	return New("WAL_002", "Insufficient wallet balance", http.StatusBadRequest)
}

func ErrNoWithdrawalAccount() *AppError {
	return New("WAL_003", "No withdrawal bank account configured", http.StatusBadRequest)
}

func ErrInvalidAmount(message string) *AppError {
	if message == "" {
		message = "Invalid amount"
	}
	return New("WAL_004", message, http.StatusBadRequest)
}

// ---- Withdrawal Bank Account (BNK) ----

func ErrBankAccountNotFound() *AppError {
	return New("BNK_001", "No withdrawal bank account configured", http.StatusNotFound)
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidToken() *AppError {
	return New("SEC_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidInternalKey() *AppError {
	return New("SEC_002", "Invalid internal key", http.StatusUnauthorized)
}

// ---- Trade Gateway (TRD) ----

func ErrTradeGateway(err error) *AppError {
	return Wrap("TRD_001", "Trade executor unavailable", http.StatusBadGateway, err)
}

func ErrTradeRejected(message string) *AppError {
	return New("TRD_002", message, http.StatusBadRequest)
}

func ErrFillNotFound() *AppError {
	return New("TRD_003", "Trade fill not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a client-input validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
