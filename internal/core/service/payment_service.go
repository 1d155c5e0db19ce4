package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/metrics"
	"github.com/cashflow/invader-payment/internal/port/input"
	"github.com/cashflow/invader-payment/internal/port/output"
)

const (
	transactionErrorPrefix = "Transaction Error : "
	invalidIntentStatus    = "Invalid PaymentIntent status"

	stepCreate  = "create"
	stepConfirm = "confirm"
	stepUnknown = "unknown"
)

var tracer = otel.Tracer("github.com/cashflow/invader-payment/internal/core/service")

// PaymentConfirmationDeps are the collaborators of the confirmation service
type PaymentConfirmationDeps struct {
	Transactions output.TransactionRepository
	PaymentModes output.PaymentModeRepository
	Payables     output.PayableResolver
	Provider     output.PaymentProvider
	Events       output.TransactionEventPublisher
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// PaymentConfirmationServiceImpl implements the PaymentConfirmationService input port
type PaymentConfirmationServiceImpl struct {
	transactions output.TransactionRepository
	paymentModes output.PaymentModeRepository
	payables     output.PayableResolver
	provider     output.PaymentProvider
	events       output.TransactionEventPublisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewPaymentConfirmationService creates a new confirmation service
func NewPaymentConfirmationService(deps PaymentConfirmationDeps) input.PaymentConfirmationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentConfirmationServiceImpl{
		transactions: deps.Transactions,
		paymentModes: deps.PaymentModes,
		payables:     deps.Payables,
		provider:     deps.Provider,
		events:       deps.Events,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// confirmation carries what one call resolved so far
type confirmation struct {
	payable output.PayableEntity
	mode    *core.PaymentMode
	tx      *core.PaymentTransaction
	intent  *core.Intent
}

// ConfirmPayment is called by the storefront on payment confirmation.
// With a payment method token it opens a transaction and creates the intent;
// with an intent reference it confirms the intent after client-side 3-D Secure.
func (s *PaymentConfirmationServiceImpl) ConfirmPayment(ctx context.Context, req input.ConfirmPaymentRequest) *input.ConfirmPaymentResult {
	step := confirmationStep(req)
	ctx, span := tracer.Start(ctx, "PaymentConfirmation.ConfirmPayment", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.target", req.Target),
		attribute.String("payment.step", step),
	)

	c := &confirmation{}
	result, err := s.confirm(ctx, req, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveConfirmation(step, "error")
		return s.fail(ctx, c.tx, err)
	}

	outcome := "invalid_status"
	switch {
	case result.Success:
		outcome = "success"
	case result.RequiresAction:
		outcome = "requires_action"
	}
	s.metrics.ObserveConfirmation(step, outcome)
	return result
}

func (s *PaymentConfirmationServiceImpl) confirm(ctx context.Context, req input.ConfirmPaymentRequest, c *confirmation) (*input.ConfirmPaymentResult, error) {
	payable, err := s.payables.ResolvePayable(ctx, req.Target, req.Params)
	if err != nil {
		return nil, err
	}
	c.payable = payable

	switch {
	case req.PaymentMethodToken != "":
		if err := s.createIntent(ctx, req, c); err != nil {
			return nil, err
		}
	case req.IntentReference != "":
		if err := s.confirmIntent(ctx, req, c); err != nil {
			return nil, err
		}
	default:
		return nil, core.ErrMissingPaymentReference
	}

	if err := s.applyIntentStatus(ctx, c); err != nil {
		return nil, err
	}
	return buildResult(c.intent), nil
}

// createIntent is the first step: open a draft transaction and create the intent
func (s *PaymentConfirmationServiceImpl) createIntent(ctx context.Context, req input.ConfirmPaymentRequest, c *confirmation) error {
	mode, err := s.resolvePaymentMode(ctx, req.PaymentMode)
	if err != nil {
		return err
	}
	c.mode = mode

	fields, err := c.payable.PrepareTransactionData(ctx, mode)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction: %w", err)
	}
	if fields.Provider == "" {
		fields.Provider = s.provider.Name()
	}

	tx := core.NewTransaction(fields)
	if err := s.transactions.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	c.tx = tx

	if err := c.payable.PaymentStart(ctx, tx, mode); err != nil {
		return fmt.Errorf("payment start failed: %w", err)
	}

	start := time.Now()
	intent, err := s.provider.CreateIntent(ctx, output.CreateIntentParams{
		Amount:         core.FormatAmount(tx.Currency, tx.Amount),
		Currency:       tx.Currency,
		PaymentMethod:  req.PaymentMethodToken,
		Reference:      tx.Reference,
		IdempotencyKey: tx.ID.String(),
	})
	s.metrics.ObserveProviderCall("create_intent", start, err)
	if err != nil {
		return err
	}
	c.intent = intent

	tx.ProviderReference = intent.ID
	if err := s.transactions.Update(ctx, tx); err != nil {
		return fmt.Errorf("failed to store intent reference: %w", err)
	}

	s.logger.Info("Payment intent created",
		zap.String("reference", tx.Reference),
		zap.String("intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)
	return nil
}

// confirmIntent is the second step: confirm the intent of an existing transaction
func (s *PaymentConfirmationServiceImpl) confirmIntent(ctx context.Context, req input.ConfirmPaymentRequest, c *confirmation) error {
	tx, err := s.transactions.FindByProviderReference(ctx, req.IntentReference, s.provider.Name())
	if err != nil {
		return err
	}
	// a transaction of another order is treated as unknown and left untouched
	if tx.OrderID != c.payable.OrderID() {
		return fmt.Errorf("%w: %s", core.ErrTransactionNotFound, req.IntentReference)
	}
	c.tx = tx

	start := time.Now()
	intent, err := s.provider.ConfirmIntent(ctx, req.IntentReference)
	s.metrics.ObserveProviderCall("confirm_intent", start, err)
	if err != nil {
		return err
	}
	c.intent = intent

	s.logger.Info("Payment intent confirmed",
		zap.String("reference", tx.Reference),
		zap.String("intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)
	return nil
}

// applyIntentStatus mirrors the intent status onto the transaction
func (s *PaymentConfirmationServiceImpl) applyIntentStatus(ctx context.Context, c *confirmation) error {
	tx := c.tx

	if c.intent.Status == core.IntentStatusSucceeded {
		alreadyDone := tx.IsDone()
		if err := tx.MarkDone(); err != nil {
			return err
		}
		if err := s.transactions.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		s.publish(ctx, tx)
		if alreadyDone {
			return nil
		}

		mode, err := s.transactionPaymentMode(ctx, c)
		if err != nil {
			return err
		}
		if err := c.payable.PaymentSuccess(ctx, tx, mode); err != nil {
			return fmt.Errorf("payment success failed: %w", err)
		}
		return nil
	}

	state, err := core.MapIntentStatus(c.intent.Status)
	if err != nil {
		return err
	}
	if err := tx.SetState(state); err != nil {
		return err
	}
	if err := s.transactions.Update(ctx, tx); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	s.publish(ctx, tx)
	return nil
}

// fail turns err into an error result, marking tx in error when it can still change.
// Done and cancelled transactions keep their state, so a failing PaymentSuccess
// hook never moves a paid transaction to error.
func (s *PaymentConfirmationServiceImpl) fail(ctx context.Context, tx *core.PaymentTransaction, err error) *input.ConfirmPaymentResult {
	message := transactionErrorPrefix + err.Error()

	fields := []zap.Field{zap.Error(err)}
	if tx != nil {
		fields = append(fields, zap.String("reference", tx.Reference))
	}
	s.logger.Error("Error confirming stripe payment", fields...)

	if tx == nil {
		return &input.ConfirmPaymentResult{Error: message}
	}

	if tx.IsTerminal() {
		s.logger.Warn("Transaction already settled, keeping its state",
			zap.String("reference", tx.Reference),
			zap.String("state", string(tx.State)),
		)
		return &input.ConfirmPaymentResult{Error: message}
	}

	if resetErr := tx.ResetToDraft(); resetErr != nil {
		s.logger.Error("Failed to reset transaction", zap.String("reference", tx.Reference), zap.Error(resetErr))
		return &input.ConfirmPaymentResult{Error: message}
	}
	if markErr := tx.MarkError(message); markErr != nil {
		s.logger.Error("Failed to mark transaction in error", zap.String("reference", tx.Reference), zap.Error(markErr))
		return &input.ConfirmPaymentResult{Error: message}
	}
	if updateErr := s.transactions.Update(ctx, tx); updateErr != nil {
		s.logger.Error("Failed to store transaction error", zap.String("reference", tx.Reference), zap.Error(updateErr))
		return &input.ConfirmPaymentResult{Error: message}
	}
	s.publish(ctx, tx)

	return &input.ConfirmPaymentResult{Error: message}
}

func (s *PaymentConfirmationServiceImpl) resolvePaymentMode(ctx context.Context, raw string) (*core.PaymentMode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: payment_mode is required", core.ErrInvalidPaymentMode)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: %q is not a payment mode id", core.ErrInvalidPaymentMode, raw)
	}
	mode, err := s.paymentModes.GetByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if !mode.Active {
		return nil, fmt.Errorf("%w: payment mode %d is not active", core.ErrInvalidPaymentMode, mode.ID)
	}
	if mode.Provider != s.provider.Name() {
		return nil, fmt.Errorf("%w: payment mode %d is not a %s mode", core.ErrInvalidPaymentMode, mode.ID, s.provider.Name())
	}
	return mode, nil
}

// transactionPaymentMode returns the mode of the first step, or the one stored on the transaction
func (s *PaymentConfirmationServiceImpl) transactionPaymentMode(ctx context.Context, c *confirmation) (*core.PaymentMode, error) {
	if c.mode != nil {
		return c.mode, nil
	}
	mode, err := s.paymentModes.GetByID(ctx, c.tx.PaymentModeID)
	if err != nil {
		return nil, err
	}
	c.mode = mode
	return mode, nil
}

func (s *PaymentConfirmationServiceImpl) publish(ctx context.Context, tx *core.PaymentTransaction) {
	if s.events == nil {
		return
	}
	err := s.events.PublishTransactionEvent(ctx, core.NewTransactionEvent(tx))
	s.metrics.ObserveEvent(string(tx.State), err)
	if err != nil {
		// the transaction is already stored, the audit trail misses one entry
		s.logger.Warn("Failed to publish transaction event",
			zap.String("reference", tx.Reference),
			zap.Error(err),
		)
	}
}

// buildResult is the message returned to the storefront for intent
func buildResult(intent *core.Intent) *input.ConfirmPaymentResult {
	switch {
	case intent.RequiresClientAction():
		return &input.ConfirmPaymentResult{
			RequiresAction:            true,
			PaymentIntentClientSecret: intent.ClientSecret,
		}
	case intent.Status == core.IntentStatusSucceeded:
		return &input.ConfirmPaymentResult{Success: true}
	default:
		return &input.ConfirmPaymentResult{Error: invalidIntentStatus}
	}
}

func confirmationStep(req input.ConfirmPaymentRequest) string {
	switch {
	case req.PaymentMethodToken != "":
		return stepCreate
	case req.IntentReference != "":
		return stepConfirm
	default:
		return stepUnknown
	}
}
