package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionState represents the state of a payment transaction
type TransactionState string

const (
	TransactionStateDraft     TransactionState = "draft"
	TransactionStatePending   TransactionState = "pending"
	TransactionStateDone      TransactionState = "done"
	TransactionStateCancelled TransactionState = "cancelled"
	TransactionStateError     TransactionState = "error"
)

// ProviderStripe is the provider name stored on Stripe transactions
const ProviderStripe = "stripe"

// TransactionFields holds the data a payable entity supplies to open a transaction
type TransactionFields struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      Currency
	Provider      string
	PaymentModeID uint
	OrderID       uint
}

// PaymentTransaction is the local record of one payment attempt
type PaymentTransaction struct {
	ID                uuid.UUID
	Reference         string
	Amount            decimal.Decimal
	Currency          Currency
	Provider          string
	ProviderReference string
	State             TransactionState
	ErrorMessage      string
	PaymentModeID     uint
	OrderID           uint
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTransaction opens a draft transaction from payable data
func NewTransaction(fields TransactionFields) *PaymentTransaction {
	return &PaymentTransaction{
		ID:            uuid.New(),
		Reference:     fields.Reference,
		Amount:        fields.Amount,
		Currency:      fields.Currency,
		Provider:      fields.Provider,
		State:         TransactionStateDraft,
		PaymentModeID: fields.PaymentModeID,
		OrderID:       fields.OrderID,
	}
}

// IsTerminal checks if the transaction can no longer change state
func (t *PaymentTransaction) IsTerminal() bool {
	return t.State == TransactionStateDone || t.State == TransactionStateCancelled
}

// IsDone checks if the transaction completed
func (t *PaymentTransaction) IsDone() bool {
	return t.State == TransactionStateDone
}

// SetState moves the transaction to next. Terminal states only accept
// themselves, which keeps repeated confirmations idempotent.
func (t *PaymentTransaction) SetState(next TransactionState) error {
	if t.IsTerminal() {
		if t.State == next {
			return nil
		}
		return &InvalidTransitionError{From: t.State, To: next}
	}
	switch next {
	case TransactionStateDraft:
		// draft is only reachable through ResetToDraft
		if t.State != TransactionStateDraft {
			return &InvalidTransitionError{From: t.State, To: next}
		}
	case TransactionStatePending, TransactionStateDone, TransactionStateCancelled, TransactionStateError:
		if t.State == TransactionStateError && next != TransactionStateError {
			return &InvalidTransitionError{From: t.State, To: next}
		}
	default:
		return fmt.Errorf("unknown transaction state %q", next)
	}
	t.State = next
	return nil
}

// MarkDone sets the transaction done
func (t *PaymentTransaction) MarkDone() error {
	return t.SetState(TransactionStateDone)
}

// ResetToDraft forces a non-terminal transaction back to draft so it can be marked in error
func (t *PaymentTransaction) ResetToDraft() error {
	if t.IsTerminal() {
		return &InvalidTransitionError{From: t.State, To: TransactionStateDraft}
	}
	t.State = TransactionStateDraft
	return nil
}

// MarkError records message and sets the transaction in error
func (t *PaymentTransaction) MarkError(message string) error {
	if err := t.SetState(TransactionStateError); err != nil {
		return err
	}
	t.ErrorMessage = message
	return nil
}

// TransactionEvent is published every time a confirmation settles a transaction state
type TransactionEvent struct {
	ID            uuid.UUID        `json:"id"`
	TransactionID uuid.UUID        `json:"transaction_id"`
	Reference     string           `json:"reference"`
	OrderID       uint             `json:"order_id"`
	State         TransactionState `json:"state"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// NewTransactionEvent snapshots the current state of t
func NewTransactionEvent(t *PaymentTransaction) TransactionEvent {
	return TransactionEvent{
		ID:            uuid.New(),
		TransactionID: t.ID,
		Reference:     t.Reference,
		OrderID:       t.OrderID,
		State:         t.State,
		ErrorMessage:  t.ErrorMessage,
		OccurredAt:    time.Now().UTC(),
	}
}
