package output

import (
	"context"
	"time"
)

// ResponseCache stores serialized responses under client idempotency keys
type ResponseCache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
