package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/metrics"
	"github.com/cashflow/invader-payment/internal/port/output"
)

const (
	ExchangeName  = "payments"
	QueueName     = "payment_transactions"
	RoutingKey    = "payment.transaction.state"
	PrefetchCount = 1 // Process one message at a time per worker

	DeadLetterExchange = "payments.dead"
	DeadLetterQueue    = "payment_transactions.dead"
)

// RabbitMQClient is a secondary adapter that implements TransactionEventPublisher output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRabbitMQClient creates a new RabbitMQ client (returns interface for ports)
func NewRabbitMQClient(amqpURL string, m *metrics.Metrics, logger *zap.Logger) (output.TransactionEventPublisher, error) {
	return NewRabbitMQClientConcrete(amqpURL, m, logger)
}

// NewRabbitMQClientConcrete creates a new RabbitMQ client (returns concrete type for workers)
func NewRabbitMQClientConcrete(amqpURL string, m *metrics.Metrics, logger *zap.Logger) (*RabbitMQClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		metrics: m,
		logger:  logger,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	err := channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// rejected messages are parked in the dead letter queue
	err = channel.ExchangeDeclare(DeadLetterExchange, "fanout", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare dead letter exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter queue: %w", err)
	}
	if err := channel.QueueBind(DeadLetterQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead letter queue: %w", err)
	}

	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": DeadLetterExchange},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// PublishTransactionEvent publishes a transaction state event
func (c *RabbitMQClient) PublishTransactionEvent(ctx context.Context, evt core.TransactionEvent) error {
	body, err := EncodeEvent(evt)
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(
		ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID.String(),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("Published transaction event",
		zap.String("reference", evt.Reference),
		zap.String("state", string(evt.State)),
	)
	return nil
}

// ErrConsumerStopped is reported when the broker stops delivering while the consumer is still wanted
var ErrConsumerStopped = errors.New("rabbitmq consumer stopped")

// ConsumeTransactionEvents starts consuming transaction events until ctx is done.
// The returned channel receives at most one error, when consumption stops
// before ctx is done, and is closed once the consumer goroutine exits.
func (c *RabbitMQClient) ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, core.TransactionEvent) error) (<-chan error, error) {
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))

	c.logger.Info("Started consuming transaction events")

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		if err := consumeLoop(ctx, msgs, closed, func(msg amqp.Delivery) {
			c.handleDelivery(ctx, msg, handler)
		}); err != nil {
			c.logger.Error("Transaction event consumer stopped", zap.Error(err))
			errs <- err
		}
	}()

	return errs, nil
}

// consumeLoop hands every delivery to handle. It returns nil once ctx is done
// and ErrConsumerStopped when the connection or the delivery channel goes away.
func consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, closed <-chan *amqp.Error, handle func(amqp.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if ctx.Err() != nil {
				return nil
			}
			if amqpErr != nil {
				return fmt.Errorf("%w: %v", ErrConsumerStopped, amqpErr)
			}
			return ErrConsumerStopped
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: delivery channel closed", ErrConsumerStopped)
			}
			handle(msg)
		}
	}
}

type deliveryAction int

const (
	ackDelivery deliveryAction = iota
	requeueDelivery
	// rejectDelivery drops the message into the dead letter queue
	rejectDelivery
)

// decideDelivery settles a message from the outcome of decoding and handling it
func decideDelivery(decodeErr, handleErr error) deliveryAction {
	switch {
	case decodeErr != nil:
		return rejectDelivery
	case handleErr == nil:
		return ackDelivery
	case isTerminalError(handleErr):
		return rejectDelivery
	default:
		return requeueDelivery
	}
}

func (c *RabbitMQClient) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, core.TransactionEvent) error) {
	evt, decodeErr := DecodeEvent(msg.Body)
	var handleErr error
	if decodeErr != nil {
		c.logger.Error("Error unmarshaling message",
			zap.String("message_id", msg.MessageId),
			zap.Error(decodeErr),
		)
	} else if handleErr = handler(ctx, evt); handleErr != nil {
		c.logger.Error("Error recording transaction event",
			zap.String("reference", evt.Reference),
			zap.Error(handleErr),
		)
	}

	var err error
	switch decideDelivery(decodeErr, handleErr) {
	case ackDelivery:
		err = msg.Ack(false)
	case requeueDelivery:
		err = msg.Nack(false, true) // Requeue for retry
	case rejectDelivery:
		reason := "invalid_event"
		if decodeErr != nil {
			reason = "malformed"
		}
		c.metrics.ObserveDiscardedMessage(reason)
		err = msg.Nack(false, false)
	}
	if err != nil {
		c.logger.Error("Failed to settle message", zap.String("message_id", msg.MessageId), zap.Error(err))
	}
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// EncodeEvent serializes evt for the queue
func EncodeEvent(evt core.TransactionEvent) ([]byte, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

// DecodeEvent parses a queued event
func DecodeEvent(body []byte) (core.TransactionEvent, error) {
	var evt core.TransactionEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return core.TransactionEvent{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return evt, nil
}

// isTerminalError checks if redelivering the message can never succeed
func isTerminalError(err error) bool {
	return errors.Is(err, core.ErrInvalidEvent)
}
