package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/metrics"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// TransactionEventRecorder appends consumed transaction events to the audit trail
type TransactionEventRecorder struct {
	events  output.TransactionEventRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTransactionEventRecorder creates a new recorder
func NewTransactionEventRecorder(events output.TransactionEventRepository, m *metrics.Metrics, logger *zap.Logger) *TransactionEventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionEventRecorder{
		events:  events,
		metrics: m,
		logger:  logger,
	}
}

// Record stores evt. Appending is idempotent on the event ID so redelivered
// messages do not duplicate audit rows.
func (r *TransactionEventRecorder) Record(ctx context.Context, evt core.TransactionEvent) error {
	if evt.TransactionID == uuid.Nil || evt.State == "" {
		return fmt.Errorf("%w: %s", core.ErrInvalidEvent, evt.ID)
	}

	err := r.events.Append(ctx, evt)
	r.metrics.ObserveEvent(string(evt.State), err)
	if err != nil {
		return fmt.Errorf("failed to record transaction event: %w", err)
	}

	r.logger.Info("Transaction event recorded",
		zap.String("reference", evt.Reference),
		zap.String("state", string(evt.State)),
	)
	return nil
}
