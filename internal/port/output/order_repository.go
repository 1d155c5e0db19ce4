package output

import (
	"context"

	"github.com/cashflow/invader-payment/internal/core"
)

// OrderRepository is an output port for sale orders
type OrderRepository interface {
	// GetByID retrieves an order by its ID
	GetByID(ctx context.Context, id uint) (*core.Order, error)

	// Update persists workflow fields of an order
	Update(ctx context.Context, order *core.Order) error
}

// PaymentModeRepository is an output port for configured payment modes
type PaymentModeRepository interface {
	// GetByID retrieves a payment mode by its ID
	GetByID(ctx context.Context, id uint) (*core.PaymentMode, error)

	// ListActive returns the active payment modes ordered by ID
	ListActive(ctx context.Context) ([]core.PaymentMode, error)
}
