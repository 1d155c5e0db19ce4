package output

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cashflow/invader-payment/internal/core"
)

// PayableEntity is a domain object the storefront can pay
type PayableEntity interface {
	// PrepareTransactionData returns the fields of a new transaction paid with mode
	PrepareTransactionData(ctx context.Context, mode *core.PaymentMode) (core.TransactionFields, error)

	// PaymentStart is called right after the transaction has been created
	PaymentStart(ctx context.Context, tx *core.PaymentTransaction, mode *core.PaymentMode) error

	// PaymentSuccess is called once the transaction is done
	PaymentSuccess(ctx context.Context, tx *core.PaymentTransaction, mode *core.PaymentMode) error

	// AvailablePaymentMethods lists the methods the payable can be paid with
	AvailablePaymentMethods(ctx context.Context) ([]core.PaymentMethod, error)

	// SelectedPaymentModeID is the payment mode currently chosen, zero when none
	SelectedPaymentModeID() uint

	// AmountTotal is the amount to pay
	AmountTotal() decimal.Decimal

	// OrderID identifies the order behind the payable
	OrderID() uint
}

// PayableResolver turns a storefront target into a payable entity
type PayableResolver interface {
	ResolvePayable(ctx context.Context, target string, params core.TargetParams) (PayableEntity, error)
}
