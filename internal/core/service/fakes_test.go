package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// memoryTransactions is an in-memory TransactionRepository that keeps copies
type memoryTransactions struct {
	byID      map[string]core.PaymentTransaction
	order     []string
	createErr error
	updateErr error
	// states records every persisted state, in order
	states []core.TransactionState
}

func newMemoryTransactions() *memoryTransactions {
	return &memoryTransactions{byID: map[string]core.PaymentTransaction{}}
}

func (m *memoryTransactions) Create(_ context.Context, tx *core.PaymentTransaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[tx.ID.String()] = *tx
	m.order = append(m.order, tx.ID.String())
	m.states = append(m.states, tx.State)
	return nil
}

func (m *memoryTransactions) Update(_ context.Context, tx *core.PaymentTransaction) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[tx.ID.String()]; !ok {
		return core.ErrTransactionNotFound
	}
	m.byID[tx.ID.String()] = *tx
	m.states = append(m.states, tx.State)
	return nil
}

func (m *memoryTransactions) FindByProviderReference(_ context.Context, reference, provider string) (*core.PaymentTransaction, error) {
	// newest first, like the gorm repository
	for i := len(m.order) - 1; i >= 0; i-- {
		tx := m.byID[m.order[i]]
		if tx.ProviderReference == reference && tx.Provider == provider {
			return &tx, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrTransactionNotFound, reference)
}

func (m *memoryTransactions) CountByOrder(_ context.Context, orderID uint) (int64, error) {
	var n int64
	for _, tx := range m.byID {
		if tx.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

func (m *memoryTransactions) all() []core.PaymentTransaction {
	out := make([]core.PaymentTransaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// seed stores tx as if created by an earlier call
func (m *memoryTransactions) seed(tx core.PaymentTransaction) {
	m.byID[tx.ID.String()] = tx
	m.order = append(m.order, tx.ID.String())
}

type memoryPaymentModes struct {
	modes map[uint]core.PaymentMode
}

func newMemoryPaymentModes(modes ...core.PaymentMode) *memoryPaymentModes {
	m := &memoryPaymentModes{modes: map[uint]core.PaymentMode{}}
	for _, mode := range modes {
		m.modes[mode.ID] = mode
	}
	return m
}

func (m *memoryPaymentModes) GetByID(_ context.Context, id uint) (*core.PaymentMode, error) {
	mode, ok := m.modes[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment mode %d not found", core.ErrInvalidPaymentMode, id)
	}
	return &mode, nil
}

func (m *memoryPaymentModes) ListActive(_ context.Context) ([]core.PaymentMode, error) {
	var out []core.PaymentMode
	for id := uint(1); id <= uint(len(m.modes)+10); id++ {
		if mode, ok := m.modes[id]; ok && mode.Active {
			out = append(out, mode)
		}
	}
	return out, nil
}

type memoryOrders struct {
	orders    map[uint]core.Order
	updateErr error
}

func newMemoryOrders(orders ...core.Order) *memoryOrders {
	m := &memoryOrders{orders: map[uint]core.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memoryOrders) GetByID(_ context.Context, id uint) (*core.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrOrderNotFound, id)
	}
	return &o, nil
}

func (m *memoryOrders) Update(_ context.Context, order *core.Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.orders[order.ID] = *order
	return nil
}

// fakePayable records hook calls
type fakePayable struct {
	fields         core.TransactionFields
	prepareErr     error
	startErr       error
	successErr     error
	startCalls     int
	successCalls   int
	statesAtStart  []core.TransactionState
	successModeIDs []uint
}

func (f *fakePayable) PrepareTransactionData(_ context.Context, mode *core.PaymentMode) (core.TransactionFields, error) {
	if f.prepareErr != nil {
		return core.TransactionFields{}, f.prepareErr
	}
	fields := f.fields
	fields.PaymentModeID = mode.ID
	return fields, nil
}

func (f *fakePayable) PaymentStart(_ context.Context, tx *core.PaymentTransaction, _ *core.PaymentMode) error {
	f.startCalls++
	f.statesAtStart = append(f.statesAtStart, tx.State)
	return f.startErr
}

func (f *fakePayable) PaymentSuccess(_ context.Context, _ *core.PaymentTransaction, mode *core.PaymentMode) error {
	f.successCalls++
	f.successModeIDs = append(f.successModeIDs, mode.ID)
	return f.successErr
}

func (f *fakePayable) AvailablePaymentMethods(context.Context) ([]core.PaymentMethod, error) {
	return nil, nil
}

func (f *fakePayable) SelectedPaymentModeID() uint { return 0 }

func (f *fakePayable) AmountTotal() decimal.Decimal { return f.fields.Amount }

func (f *fakePayable) OrderID() uint { return f.fields.OrderID }

type fakeResolver struct {
	payable output.PayableEntity
	err     error
	targets []string
}

func (f *fakeResolver) ResolvePayable(_ context.Context, target string, _ core.TargetParams) (output.PayableEntity, error) {
	f.targets = append(f.targets, target)
	if f.err != nil {
		return nil, f.err
	}
	return f.payable, nil
}

// fakeProvider is a PaymentProvider with function fields
type fakeProvider struct {
	createFn     func(output.CreateIntentParams) (*core.Intent, error)
	confirmFn    func(string) (*core.Intent, error)
	createCalls  []output.CreateIntentParams
	confirmCalls []string
}

func (f *fakeProvider) Name() string { return core.ProviderStripe }

func (f *fakeProvider) CreateIntent(_ context.Context, p output.CreateIntentParams) (*core.Intent, error) {
	f.createCalls = append(f.createCalls, p)
	return f.createFn(p)
}

func (f *fakeProvider) ConfirmIntent(_ context.Context, id string) (*core.Intent, error) {
	f.confirmCalls = append(f.confirmCalls, id)
	return f.confirmFn(id)
}

type recordingPublisher struct {
	events []core.TransactionEvent
	err    error
}

func (r *recordingPublisher) PublishTransactionEvent(_ context.Context, evt core.TransactionEvent) error {
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

type memoryEvents struct {
	events map[string]core.TransactionEvent
	err    error
}

func (m *memoryEvents) Append(_ context.Context, evt core.TransactionEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events[evt.ID.String()] = evt
	return nil
}
