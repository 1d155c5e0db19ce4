package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// OrderPayableResolver resolves storefront targets into payable sale orders
type OrderPayableResolver struct {
	orders       output.OrderRepository
	paymentModes output.PaymentModeRepository
	transactions output.TransactionRepository
	logger       *zap.Logger
}

// NewOrderPayableResolver creates a resolver over stored orders
func NewOrderPayableResolver(
	orders output.OrderRepository,
	paymentModes output.PaymentModeRepository,
	transactions output.TransactionRepository,
	logger *zap.Logger,
) *OrderPayableResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPayableResolver{
		orders:       orders,
		paymentModes: paymentModes,
		transactions: transactions,
		logger:       logger,
	}
}

// ResolvePayable implements output.PayableResolver
func (r *OrderPayableResolver) ResolvePayable(ctx context.Context, target string, params core.TargetParams) (output.PayableEntity, error) {
	switch target {
	case core.TargetCurrentCart:
		order, err := r.loadOrder(ctx, target, params.CartID)
		if err != nil {
			return nil, err
		}
		if order.Typology != core.OrderTypologyCart || order.IsCancelled() {
			return nil, fmt.Errorf("%w: order %d is not an open cart", core.ErrTargetResolution, order.ID)
		}
		return &cartPayable{orderPayable{order: order, resolver: r}}, nil

	case core.TargetQuotation:
		order, err := r.loadOrder(ctx, target, params.QuotationID)
		if err != nil {
			return nil, err
		}
		if order.Typology != core.OrderTypologyQuotation ||
			(order.State != core.OrderStateDraft && order.State != core.OrderStateSent) {
			return nil, fmt.Errorf("%w: order %d is not a payable quotation", core.ErrTargetResolution, order.ID)
		}
		return &quotationPayable{orderPayable{order: order, resolver: r}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported target %q", core.ErrTargetResolution, target)
	}
}

func (r *OrderPayableResolver) loadOrder(ctx context.Context, target string, id uint) (*core.Order, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: no order given for target %q", core.ErrTargetResolution, target)
	}
	order, err := r.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTargetResolution, err)
	}
	return order, nil
}

// orderPayable holds the behaviour shared by carts and quotations
type orderPayable struct {
	order    *core.Order
	resolver *OrderPayableResolver
}

func (p *orderPayable) PrepareTransactionData(ctx context.Context, mode *core.PaymentMode) (core.TransactionFields, error) {
	if !p.order.AmountTotal.IsPositive() {
		return core.TransactionFields{}, fmt.Errorf("order %s has nothing to pay", p.order.Name)
	}
	count, err := p.resolver.transactions.CountByOrder(ctx, p.order.ID)
	if err != nil {
		return core.TransactionFields{}, err
	}
	return core.TransactionFields{
		Reference:     fmt.Sprintf("%s-%d", p.order.Name, count+1),
		Amount:        p.order.AmountTotal,
		Currency:      p.order.Currency.Normalize(),
		Provider:      mode.Provider,
		PaymentModeID: mode.ID,
		OrderID:       p.order.ID,
	}, nil
}

func (p *orderPayable) PaymentStart(ctx context.Context, tx *core.PaymentTransaction, mode *core.PaymentMode) error {
	p.order.PaymentModeID = mode.ID
	return p.resolver.orders.Update(ctx, p.order)
}

func (p *orderPayable) AvailablePaymentMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	modes, err := p.resolver.paymentModes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]core.PaymentMethod, 0, len(modes))
	for _, mode := range modes {
		methods = append(methods, core.PaymentMethod{
			Code:        mode.Code,
			Description: mode.Description,
			PaymentMode: mode,
		})
	}
	return methods, nil
}

func (p *orderPayable) SelectedPaymentModeID() uint {
	return p.order.PaymentModeID
}

func (p *orderPayable) AmountTotal() decimal.Decimal {
	return p.order.AmountTotal
}

func (p *orderPayable) OrderID() uint {
	return p.order.ID
}

func (p *orderPayable) confirm(ctx context.Context, tx *core.PaymentTransaction) error {
	p.order.ConfirmSale()
	if err := p.resolver.orders.Update(ctx, p.order); err != nil {
		return err
	}
	p.resolver.logger.Info("Order confirmed after payment",
		zap.String("order", p.order.Name),
		zap.String("reference", tx.Reference),
	)
	return nil
}

// cartPayable is the storefront cart
type cartPayable struct {
	orderPayable
}

// PaymentSuccess converts the paid cart into a sale
func (p *cartPayable) PaymentSuccess(ctx context.Context, tx *core.PaymentTransaction, mode *core.PaymentMode) error {
	p.order.PaymentModeID = mode.ID
	return p.confirm(ctx, tx)
}

// quotationPayable is a quotation sent to the customer
type quotationPayable struct {
	orderPayable
}

// PaymentSuccess confirms the quotation once paid
func (p *quotationPayable) PaymentSuccess(ctx context.Context, tx *core.PaymentTransaction, mode *core.PaymentMode) error {
	if p.order.IsCancelled() {
		return fmt.Errorf("quotation %s was cancelled during payment", p.order.Name)
	}
	return p.confirm(ctx, tx)
}
