package service

import (
	"context"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/input"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// CartPaymentServiceImpl implements the CartPaymentService input port
type CartPaymentServiceImpl struct {
	payables output.PayableResolver
}

// NewCartPaymentService creates a new cart payment projection
func NewCartPaymentService(payables output.PayableResolver) input.CartPaymentService {
	return &CartPaymentServiceImpl{payables: payables}
}

// GetPaymentData returns the payment information passed to the storefront
func (s *CartPaymentServiceImpl) GetPaymentData(ctx context.Context, target string, params core.TargetParams) (*input.PaymentData, error) {
	payable, err := s.payables.ResolvePayable(ctx, target, params)
	if err != nil {
		return nil, err
	}

	methods, err := payable.AvailablePaymentMethods(ctx)
	if err != nil {
		return nil, err
	}

	data := &input.PaymentData{
		AvailableMethods: make([]input.PaymentMethodData, 0, len(methods)),
		Amount:           payable.AmountTotal(),
	}
	selectedID := payable.SelectedPaymentModeID()
	for _, method := range methods {
		item := input.PaymentMethodData{
			ID:          method.PaymentMode.ID,
			Name:        method.PaymentMode.Name,
			Provider:    method.PaymentMode.Provider,
			Code:        method.Code,
			Description: method.Description,
		}
		data.AvailableMethods = append(data.AvailableMethods, item)
		if selectedID != 0 && item.ID == selectedID {
			selected := item
			data.SelectedMethod = &selected
		}
	}
	return data, nil
}
