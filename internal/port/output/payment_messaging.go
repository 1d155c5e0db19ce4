package output

import (
	"context"

	"github.com/cashflow/invader-payment/internal/core"
)

// TransactionEventPublisher is an output port (secondary port) for transaction messaging
// Secondary adapters (RabbitMQ implementations) will implement this
type TransactionEventPublisher interface {
	// PublishTransactionEvent publishes a transaction state event
	PublishTransactionEvent(ctx context.Context, evt core.TransactionEvent) error
	// Close closes the messaging connection
	Close() error
}
