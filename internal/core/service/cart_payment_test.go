package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashflow/invader-payment/internal/core"
)

func TestCartPayment_GetPaymentData(t *testing.T) {
	order := cartOrder()
	order.PaymentModeID = 2
	resolver := newTestResolver(newMemoryOrders(order), newMemoryTransactions())
	svc := NewCartPaymentService(resolver)

	data, err := svc.GetPaymentData(context.Background(), core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)

	require.Len(t, data.AvailableMethods, 2)
	assert.Equal(t, "Card", data.AvailableMethods[0].Name)
	assert.Equal(t, core.ProviderStripe, data.AvailableMethods[0].Provider)
	require.NotNil(t, data.SelectedMethod)
	assert.Equal(t, uint(2), data.SelectedMethod.ID)
	assert.Equal(t, "35.1", data.Amount.String())
}

func TestCartPayment_NoSelectedMethod(t *testing.T) {
	resolver := newTestResolver(newMemoryOrders(cartOrder()), newMemoryTransactions())
	svc := NewCartPaymentService(resolver)

	data, err := svc.GetPaymentData(context.Background(), core.TargetCurrentCart, core.TargetParams{CartID: 10})
	require.NoError(t, err)
	assert.Nil(t, data.SelectedMethod)
}

func TestCartPayment_UnknownCart(t *testing.T) {
	resolver := newTestResolver(newMemoryOrders(), newMemoryTransactions())
	svc := NewCartPaymentService(resolver)

	_, err := svc.GetPaymentData(context.Background(), core.TargetCurrentCart, core.TargetParams{CartID: 10})
	assert.True(t, core.IsNotFound(err))
}

func TestTransactionEventRecorder(t *testing.T) {
	events := &memoryEvents{events: map[string]core.TransactionEvent{}}
	recorder := NewTransactionEventRecorder(events, nil, nil)
	tx := core.NewTransaction(core.TransactionFields{Reference: "SO010-1", OrderID: 10})
	require.NoError(t, tx.MarkDone())

	evt := core.NewTransactionEvent(tx)
	require.NoError(t, recorder.Record(context.Background(), evt))
	require.NoError(t, recorder.Record(context.Background(), evt))
	assert.Len(t, events.events, 1)
	assert.Equal(t, core.TransactionStateDone, events.events[evt.ID.String()].State)
}

func TestTransactionEventRecorder_InvalidEvent(t *testing.T) {
	events := &memoryEvents{events: map[string]core.TransactionEvent{}}
	recorder := NewTransactionEventRecorder(events, nil, nil)

	err := recorder.Record(context.Background(), core.TransactionEvent{ID: uuid.New(), State: core.TransactionStateDone})
	assert.ErrorIs(t, err, core.ErrInvalidEvent)
	assert.Empty(t, events.events)
}

func TestTransactionEventRecorder_StorageFailure(t *testing.T) {
	events := &memoryEvents{events: map[string]core.TransactionEvent{}, err: errors.New("disk full")}
	recorder := NewTransactionEventRecorder(events, nil, nil)
	tx := core.NewTransaction(core.TransactionFields{Reference: "SO010-1", OrderID: 10})

	err := recorder.Record(context.Background(), core.NewTransactionEvent(tx))
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrInvalidEvent)
}
