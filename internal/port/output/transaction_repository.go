package output

import (
	"context"

	"github.com/cashflow/invader-payment/internal/core"
)

// TransactionRepository is an output port (secondary port) for payment transaction storage
// Secondary adapters (database implementations) will implement this
type TransactionRepository interface {
	// Create stores a new transaction
	Create(ctx context.Context, tx *core.PaymentTransaction) error

	// Update persists state, provider reference and error message of tx
	Update(ctx context.Context, tx *core.PaymentTransaction) error

	// FindByProviderReference returns the transaction of provider bound to the given intent
	FindByProviderReference(ctx context.Context, reference, provider string) (*core.PaymentTransaction, error)

	// CountByOrder returns how many transactions were opened for an order
	CountByOrder(ctx context.Context, orderID uint) (int64, error)
}

// TransactionEventRepository stores the audit trail of transaction states
type TransactionEventRepository interface {
	// Append stores evt, ignoring an event already stored under the same ID
	Append(ctx context.Context, evt core.TransactionEvent) error
}
