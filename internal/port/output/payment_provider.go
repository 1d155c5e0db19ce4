package output

import (
	"context"

	"github.com/cashflow/invader-payment/internal/core"
)

// CreateIntentParams holds what is sent to the provider on the first step
type CreateIntentParams struct {
	Amount         int64
	Currency       core.Currency
	PaymentMethod  string
	Reference      string
	IdempotencyKey string
}

// PaymentProvider is an output port for the payment acquirer SDK
type PaymentProvider interface {
	// Name is the provider name stored on transactions
	Name() string

	// CreateIntent creates and confirms an intent with manual confirmation
	CreateIntent(ctx context.Context, params CreateIntentParams) (*core.Intent, error)

	// ConfirmIntent confirms an existing intent
	ConfirmIntent(ctx context.Context, intentID string) (*core.Intent, error)
}
