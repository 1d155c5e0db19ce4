package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashflow/invader-payment/internal/core"
)

func newTestResolver(orders *memoryOrders, txs *memoryTransactions) *OrderPayableResolver {
	modes := newMemoryPaymentModes(
		core.PaymentMode{ID: 1, Name: "Card", Provider: core.ProviderStripe, Code: "stripe", Description: "Pay by card", Active: true},
		core.PaymentMode{ID: 2, Name: "Transfer", Provider: "transfer", Code: "transfer", Active: true},
		core.PaymentMode{ID: 3, Name: "Disabled", Provider: core.ProviderStripe, Code: "old"},
	)
	return NewOrderPayableResolver(orders, modes, txs, nil)
}

func cartOrder() core.Order {
	return core.Order{
		ID:          10,
		Name:        "SO010",
		Typology:    core.OrderTypologyCart,
		State:       core.OrderStateDraft,
		AmountTotal: decimal.RequireFromString("35.10"),
		Currency:    "eur",
	}
}

func quotationOrder() core.Order {
	return core.Order{
		ID:          20,
		Name:        "SO020",
		Typology:    core.OrderTypologyQuotation,
		State:       core.OrderStateSent,
		AmountTotal: decimal.RequireFromString("1200"),
		Currency:    "JPY",
	}
}

func TestResolvePayable_Targets(t *testing.T) {
	orders := newMemoryOrders(cartOrder(), quotationOrder())
	resolver := newTestResolver(orders, newMemoryTransactions())
	ctx := context.Background()

	cart, err := resolver.ResolvePayable(ctx, core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)
	assert.IsType(t, &cartPayable{}, cart)

	quotation, err := resolver.ResolvePayable(ctx, core.TargetQuotation, core.TargetParams{QuotationID: 20})
	require.NoError(t, err)
	assert.IsType(t, &quotationPayable{}, quotation)
}

func TestResolvePayable_Rejections(t *testing.T) {
	cancelled := cartOrder()
	cancelled.ID = 11
	cancelled.State = core.OrderStateCancel
	orders := newMemoryOrders(cartOrder(), quotationOrder(), cancelled)
	resolver := newTestResolver(orders, newMemoryTransactions())

	cases := []struct {
		name   string
		target string
		params core.TargetParams
	}{
		{"unknown target", "invoice", core.TargetParams{CartID: 10}},
		{"missing cart id", core.TargetCurrentCart, core.TargetParams{}},
		{"missing order", core.TargetCurrentCart, core.TargetParams{CartID: 99}},
		{"quotation as cart", core.TargetCurrentCart, core.TargetParams{CartID: 20}},
		{"cart as quotation", core.TargetQuotation, core.TargetParams{QuotationID: 10}},
		{"cancelled cart", core.TargetCurrentCart, core.TargetParams{CartID: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolver.ResolvePayable(context.Background(), tc.target, tc.params)
			assert.ErrorIs(t, err, core.ErrTargetResolution)
		})
	}
}

func TestOrderPayable_PrepareTransactionData(t *testing.T) {
	txs := newMemoryTransactions()
	txs.seed(*core.NewTransaction(core.TransactionFields{Reference: "SO010-1", OrderID: 10}))
	resolver := newTestResolver(newMemoryOrders(cartOrder()), txs)
	ctx := context.Background()

	payable, err := resolver.ResolvePayable(ctx, core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)

	mode := &core.PaymentMode{ID: 1, Provider: core.ProviderStripe}
	fields, err := payable.PrepareTransactionData(ctx, mode)
	require.NoError(t, err)

	assert.Equal(t, "SO010-2", fields.Reference)
	assert.True(t, decimal.RequireFromString("35.10").Equal(fields.Amount))
	assert.Equal(t, core.Currency("EUR"), fields.Currency)
	assert.Equal(t, core.ProviderStripe, fields.Provider)
	assert.Equal(t, uint(1), fields.PaymentModeID)
	assert.Equal(t, uint(10), fields.OrderID)
}

func TestOrderPayable_PrepareTransactionDataRejectsEmptyOrder(t *testing.T) {
	empty := cartOrder()
	empty.AmountTotal = decimal.Zero
	resolver := newTestResolver(newMemoryOrders(empty), newMemoryTransactions())
	ctx := context.Background()

	payable, err := resolver.ResolvePayable(ctx, core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)

	_, err = payable.PrepareTransactionData(ctx, &core.PaymentMode{ID: 1})
	assert.Error(t, err)
}

func TestOrderPayable_Hooks(t *testing.T) {
	orders := newMemoryOrders(cartOrder(), quotationOrder())
	resolver := newTestResolver(orders, newMemoryTransactions())
	ctx := context.Background()
	mode := &core.PaymentMode{ID: 1, Provider: core.ProviderStripe}
	tx := core.NewTransaction(core.TransactionFields{Reference: "SO010-1", OrderID: 10})

	cart, err := resolver.ResolvePayable(ctx, core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)

	require.NoError(t, cart.PaymentStart(ctx, tx, mode))
	stored := orders.orders[10]
	assert.Equal(t, uint(1), stored.PaymentModeID)
	assert.Equal(t, core.OrderTypologyCart, stored.Typology)

	require.NoError(t, cart.PaymentSuccess(ctx, tx, mode))
	stored = orders.orders[10]
	assert.Equal(t, core.OrderStateSale, stored.State)
	assert.Equal(t, core.OrderTypologySale, stored.Typology)

	quotation, err := resolver.ResolvePayable(ctx, core.TargetQuotation, core.TargetParams{QuotationID: 20})
	require.NoError(t, err)
	require.NoError(t, quotation.PaymentSuccess(ctx, tx, mode))
	assert.Equal(t, core.OrderStateSale, orders.orders[20].State)
}

func TestOrderPayable_AvailablePaymentMethods(t *testing.T) {
	resolver := newTestResolver(newMemoryOrders(cartOrder()), newMemoryTransactions())
	ctx := context.Background()

	payable, err := resolver.ResolvePayable(ctx, core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)

	methods, err := payable.AvailablePaymentMethods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "stripe", methods[0].Code)
	assert.Equal(t, "Pay by card", methods[0].Description)
	assert.Equal(t, uint(2), methods[1].PaymentMode.ID)
}
