package core

// IntentStatus is the provider status of a payment intent
type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusRequiresAction IntentStatus = "requires_action"
	IntentStatusCanceled       IntentStatus = "canceled"
	IntentStatusProcessing     IntentStatus = "processing"
)

// NextActionUseStripeSDK means the client SDK must handle the next action
const NextActionUseStripeSDK = "use_stripe_sdk"

// Intent is the provider-side view of one attempted charge
type Intent struct {
	ID             string
	Status         IntentStatus
	ClientSecret   string
	NextActionType string
}

// RequiresClientAction reports whether the storefront must run the provider SDK
func (i *Intent) RequiresClientAction() bool {
	return i.Status == IntentStatusRequiresAction && i.NextActionType == NextActionUseStripeSDK
}

// intentStates maps provider statuses onto transaction states.
// Keys mirror the statuses the payment addon has always matched on.
var intentStates = map[IntentStatus]TransactionState{
	"canceled":              TransactionStateCancelled,
	"processing":            TransactionStatePending,
	"requires_action":       TransactionStatePending,
	"requiresauthorization": TransactionStatePending,
	"requirescapture":       TransactionStatePending,
	"requiresconfirmation":  TransactionStatePending,
	"requirespaymentmethod": TransactionStatePending,
	"succeeded":             TransactionStateDone,
}

// MapIntentStatus returns the transaction state for status
func MapIntentStatus(status IntentStatus) (TransactionState, error) {
	state, ok := intentStates[status]
	if !ok {
		return "", &UnmappedStatusError{Status: status}
	}
	return state, nil
}
