package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrFailedDecodeRequestBody        = "Failed to decode request body"
	ErrInvalidRequestBody             = "Invalid request body"
	ErrFailedCreateOrder              = "Failed to create order"
	ErrFailedVerifyPayment            = "Failed to verify payment"
	ErrFailedExpireOrders             = "Failed to expire stale orders"
	ErrFailedReconcileCampaigns       = "Failed to reconcile campaign aggregates"
	ErrAuthorizationRequired          = "Authorization required"
)

// ValidationError rejects a request before any state mutation.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// UnsupportedFundingTypeError is raised for a funding type outside
// donation/reward/equity/debt.
type UnsupportedFundingTypeError struct {
	FundingType string
}

func NewUnsupportedFundingTypeError(fundingType string) *UnsupportedFundingTypeError {
	return &UnsupportedFundingTypeError{FundingType: fundingType}
}

func (e *UnsupportedFundingTypeError) Error() string {
	return fmt.Sprintf("unsupported funding type: %s", e.FundingType)
}

// UnauthorizedError covers identity mismatches and rejected signatures.
// These are security-relevant and are never retried.
type UnauthorizedError struct {
	Message string
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Message)
}

type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// DuplicateOrderError means a ledger entry for the order id already exists.
// The settlement that lost the race surfaces this instead of double-crediting.
type DuplicateOrderError struct {
	OrderID string
}

func NewDuplicateOrderError(orderID string) *DuplicateOrderError {
	return &DuplicateOrderError{OrderID: orderID}
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("transaction for order %s already exists", e.OrderID)
}

// AlreadySettledError means the order is in a terminal paid state. Settlement
// callbacks treat it as an idempotent success; order re-creation treats it as
// a conflict.
type AlreadySettledError struct {
	OrderID string
}

func NewAlreadySettledError(orderID string) *AlreadySettledError {
	return &AlreadySettledError{OrderID: orderID}
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("order %s already settled", e.OrderID)
}

// ProviderUnavailableError wraps a failed call to the payment provider.
// Safe for the caller to retry: no order exists yet when it is raised.
type ProviderUnavailableError struct {
	Err error
}

func NewProviderUnavailableError(err error) *ProviderUnavailableError {
	return &ProviderUnavailableError{Err: err}
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("payment provider unavailable: %v", e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
