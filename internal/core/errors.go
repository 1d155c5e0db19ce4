package core

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetResolution is returned when a target cannot be resolved into a payable entity
	ErrTargetResolution = errors.New("payable target not found")

	// ErrInvalidPaymentMode is returned when the payment mode is missing, malformed or unknown
	ErrInvalidPaymentMode = errors.New("invalid payment mode")

	// ErrTransactionNotFound is returned when no transaction matches an intent reference
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrMissingPaymentReference is returned when neither a payment method nor an intent is supplied
	ErrMissingPaymentReference = errors.New("stripe_payment_method_id or stripe_payment_intent_id is required")

	// ErrInvalidEvent is returned for a transaction event that can never be recorded
	ErrInvalidEvent = errors.New("invalid transaction event")

	// ErrOrderNotFound is returned by order storage
	ErrOrderNotFound = errors.New("order not found")
)

// ProviderCallError wraps a failure of the payment provider SDK
type ProviderCallError struct {
	Op  string
	Err error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// UnmappedStatusError is returned for an intent status missing from the status table
type UnmappedStatusError struct {
	Status IntentStatus
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("unmapped payment intent status %q", e.Status)
}

// InvalidTransitionError is returned when a transaction state change is not allowed
type InvalidTransitionError struct {
	From TransactionState
	To   TransactionState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transaction state transition from %s to %s", e.From, e.To)
}

// IsNotFound reports whether err means a payable, transaction or order is missing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTargetResolution) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
