package stripe

import (
	"context"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// Client is a secondary adapter that implements PaymentProvider output port on Stripe
type Client struct {
	intents paymentintent.Client
}

// NewClient creates a Stripe client using secretKey. A nil backend uses the Stripe API.
func NewClient(secretKey string, backend stripesdk.Backend) *Client {
	if backend == nil {
		backend = stripesdk.GetBackend(stripesdk.APIBackend)
	}
	return &Client{
		intents: paymentintent.Client{B: backend, Key: secretKey},
	}
}

var _ output.PaymentProvider = (*Client)(nil)

// Name returns the provider name stored on transactions
func (c *Client) Name() string {
	return core.ProviderStripe
}

// CreateIntent creates a manually confirmed intent and confirms it right away
func (c *Client) CreateIntent(ctx context.Context, p output.CreateIntentParams) (*core.Intent, error) {
	params := &stripesdk.PaymentIntentParams{
		PaymentMethod:      stripesdk.String(p.PaymentMethod),
		Amount:             stripesdk.Int64(p.Amount),
		Currency:           stripesdk.String(strings.ToLower(string(p.Currency))),
		ConfirmationMethod: stripesdk.String(string(stripesdk.PaymentIntentConfirmationMethodManual)),
		Confirm:            stripesdk.Bool(true),
		Description:        stripesdk.String(p.Reference),
	}
	params.Context = ctx
	params.AddMetadata("reference", p.Reference)
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	pi, err := c.intents.New(params)
	if err != nil {
		return nil, &core.ProviderCallError{Op: "stripe create intent", Err: err}
	}
	return toCoreIntent(pi), nil
}

// ConfirmIntent confirms the intent after the client handled its next action
func (c *Client) ConfirmIntent(ctx context.Context, intentID string) (*core.Intent, error) {
	params := &stripesdk.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := c.intents.Confirm(intentID, params)
	if err != nil {
		return nil, &core.ProviderCallError{Op: "stripe confirm intent", Err: err}
	}
	return toCoreIntent(pi), nil
}

func toCoreIntent(pi *stripesdk.PaymentIntent) *core.Intent {
	intent := &core.Intent{
		ID:           pi.ID,
		Status:       core.IntentStatus(pi.Status),
		ClientSecret: pi.ClientSecret,
	}
	if pi.NextAction != nil {
		intent.NextActionType = string(pi.NextAction.Type)
	}
	return intent
}
