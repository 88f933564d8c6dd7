package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeAuthExpired     = "AUTH_EXPIRED"
	ErrCodeEmptyCart       = "EMPTY_CART"
	ErrCodeSaleRejected    = "SALE_REJECTED"
	ErrCodeSubmitInFlight  = "SUBMIT_IN_FLIGHT"
	ErrCodeNetworkFailure  = "NETWORK_FAILURE"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// UnauthenticatedError means no credential is stored locally. Distinct from
// AuthExpired: the request never reached the network.
func UnauthenticatedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthenticated, message, http.StatusUnauthorized)
}

// AuthExpiredError means the server rejected the bearer token. The
// credential has already been cleared by the time callers see this.
func AuthExpiredError(message string) *AppError {
	return NewAppError(ErrCodeAuthExpired, message, http.StatusUnauthorized)
}

func EmptyCartError(message string) *AppError {
	return NewAppError(ErrCodeEmptyCart, message, http.StatusBadRequest)
}

func SaleRejectedError(message string) *AppError {
	return NewAppError(ErrCodeSaleRejected, message, http.StatusUnprocessableEntity)
}

func SubmitInFlightError(message string) *AppError {
	return NewAppError(ErrCodeSubmitInFlight, message, http.StatusConflict)
}

func NetworkFailureError(message string) *AppError {
	return NewAppError(ErrCodeNetworkFailure, message, http.StatusBadGateway)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
