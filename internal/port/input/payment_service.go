package input

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cashflow/invader-payment/internal/core"
)

// PaymentConfirmationService is an input port (primary port) for Stripe payment confirmation
// Primary adapters (HTTP handlers) will use this
type PaymentConfirmationService interface {
	// ConfirmPayment runs one step of the confirmation flow.
	// Business failures are reported through ConfirmPaymentResult.Error.
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) *ConfirmPaymentResult
}

// CartPaymentService is an input port exposing payment data of a payable
type CartPaymentService interface {
	// GetPaymentData returns the available methods, the selected one and the amount
	GetPaymentData(ctx context.Context, target string, params core.TargetParams) (*PaymentData, error)
}

// ConfirmPaymentRequest represents one confirmation call from the storefront
type ConfirmPaymentRequest struct {
	Target             string
	PaymentMode        string
	PaymentMethodToken string
	IntentReference    string
	Params             core.TargetParams
}

// ConfirmPaymentResult is the client-facing outcome of a confirmation
type ConfirmPaymentResult struct {
	RequiresAction            bool
	PaymentIntentClientSecret string
	Success                   bool
	Error                     string
	Data                      string
	SetSession                string
	StoreCache                string
}

// PaymentData is the payment projection of a payable
type PaymentData struct {
	AvailableMethods []PaymentMethodData
	SelectedMethod   *PaymentMethodData
	Amount           decimal.Decimal
}

// PaymentMethodData describes one payment method for the storefront
type PaymentMethodData struct {
	ID          uint
	Name        string
	Provider    string
	Code        string
	Description string
}
