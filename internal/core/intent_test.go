package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIntentStatus(t *testing.T) {
	tests := map[IntentStatus]TransactionState{
		"succeeded":             TransactionStateDone,
		"canceled":              TransactionStateCancelled,
		"processing":            TransactionStatePending,
		"requires_action":       TransactionStatePending,
		"requiresauthorization": TransactionStatePending,
		"requirescapture":       TransactionStatePending,
		"requiresconfirmation":  TransactionStatePending,
		"requirespaymentmethod": TransactionStatePending,
	}

	for status, want := range tests {
		got, err := MapIntentStatus(status)
		require.NoError(t, err, status)
		assert.Equal(t, want, got, status)
	}
}

func TestMapIntentStatus_Unmapped(t *testing.T) {
	for _, status := range []IntentStatus{"requires_payment_method", "requires_capture", ""} {
		_, err := MapIntentStatus(status)

		var unmapped *UnmappedStatusError
		require.True(t, errors.As(err, &unmapped), status)
		assert.Equal(t, status, unmapped.Status)
	}
}

func TestIntent_RequiresClientAction(t *testing.T) {
	assert.True(t, (&Intent{Status: IntentStatusRequiresAction, NextActionType: NextActionUseStripeSDK}).RequiresClientAction())
	assert.False(t, (&Intent{Status: IntentStatusRequiresAction, NextActionType: "redirect_to_url"}).RequiresClientAction())
	assert.False(t, (&Intent{Status: IntentStatusSucceeded, NextActionType: NextActionUseStripeSDK}).RequiresClientAction())
}
