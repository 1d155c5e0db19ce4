package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/input"
	"github.com/cashflow/invader-payment/internal/port/output"
)

const (
	headerCartID         = "Sess-Cart-Id"
	headerIdempotencyKey = "Idempotency-Key"
)

// PaymentHandler is a primary adapter (HTTP handler) for Stripe payment confirmation
type PaymentHandler struct {
	confirmation input.PaymentConfirmationService
	cache        output.ResponseCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewPaymentHandler creates a new payment handler. cache may be nil.
func NewPaymentHandler(
	confirmation input.PaymentConfirmationService,
	cache output.ResponseCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{
		confirmation: confirmation,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ConfirmPaymentRequest represents the HTTP request to confirm a payment.
// payment_mode stays a string because storefront forms may send it empty.
type ConfirmPaymentRequest struct {
	Target                string `json:"target" validate:"required,max=64"`
	PaymentMode           string `json:"payment_mode" validate:"max=32"`
	StripePaymentMethodID string `json:"stripe_payment_method_id" validate:"max=255"`
	StripePaymentIntentID string `json:"stripe_payment_intent_id" validate:"max=255"`
	QuotationID           uint   `json:"quotation_id"`
}

// ConfirmPaymentResponse represents the HTTP response of a confirmation
type ConfirmPaymentResponse struct {
	RequiresAction            bool   `json:"requires_action,omitempty"`
	PaymentIntentClientSecret string `json:"payment_intent_client_secret,omitempty"`
	Success                   bool   `json:"success,omitempty"`
	Error                     string `json:"error,omitempty"`
	Data                      string `json:"data,omitempty"`
	SetSession                string `json:"set_session,omitempty"`
	StoreCache                string `json:"store_cache,omitempty"`
}

// ConfirmPayment handles POST /payment_stripe/confirm_payment
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	cartID, err := cartIDFromHeader(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid " + headerCartID + " header",
		})
	}

	ctx := c.Request().Context()
	var cacheKey string
	if key := c.Request().Header.Get(headerIdempotencyKey); h.cache != nil && key != "" {
		cacheKey = idempotencyCacheKey(key, req, cartID)
		cached, found, err := h.cache.Get(ctx, cacheKey)
		if err != nil {
			h.logger.Warn("Idempotency cache unavailable", zap.Error(err))
		} else if found {
			return c.JSONBlob(http.StatusOK, cached)
		}
	}

	// Call service (input port)
	result := h.confirmation.ConfirmPayment(ctx, input.ConfirmPaymentRequest{
		Target:             req.Target,
		PaymentMode:        req.PaymentMode,
		PaymentMethodToken: req.StripePaymentMethodID,
		IntentReference:    req.StripePaymentIntentID,
		Params: core.TargetParams{
			CartID:      cartID,
			QuotationID: req.QuotationID,
		},
	})

	httpResponse := ConfirmPaymentResponse{
		RequiresAction:            result.RequiresAction,
		PaymentIntentClientSecret: result.PaymentIntentClientSecret,
		Success:                   result.Success,
		Error:                     result.Error,
		Data:                      result.Data,
		SetSession:                result.SetSession,
		StoreCache:                result.StoreCache,
	}

	// only settled answers are replayed, errors stay retryable
	if cacheKey != "" && httpResponse.Error == "" {
		body, err := json.Marshal(httpResponse)
		if err == nil {
			err = h.cache.Set(ctx, cacheKey, body, h.cacheTTL)
		}
		if err != nil {
			h.logger.Warn("Failed to cache confirmation response", zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, httpResponse)
}

// idempotencyCacheKey scopes key to the request it was sent with, so a reused
// key with another body or cart never replays an unrelated answer
func idempotencyCacheKey(key string, req ConfirmPaymentRequest, cartID uint) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d\x00%d",
		req.Target, req.PaymentMode, req.StripePaymentMethodID, req.StripePaymentIntentID, req.QuotationID, cartID)
	return key + ":" + hex.EncodeToString(h.Sum(nil))
}

func cartIDFromHeader(c echo.Context) (uint, error) {
	raw := c.Request().Header.Get(headerCartID)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
