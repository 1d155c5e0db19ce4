package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/input"
)

// CartHandler exposes the payment data of the session cart
type CartHandler struct {
	cartPayment input.CartPaymentService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartPayment input.CartPaymentService) *CartHandler {
	return &CartHandler{cartPayment: cartPayment}
}

// PaymentMethodResponse is one payment method offered to the storefront
type PaymentMethodResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// AvailableMethodsResponse lists the payment methods of a cart
type AvailableMethodsResponse struct {
	Count int                     `json:"count"`
	Items []PaymentMethodResponse `json:"items"`
}

// CartPaymentResponse is the payment block of the cart
type CartPaymentResponse struct {
	AvailableMethods AvailableMethodsResponse `json:"available_methods"`
	SelectedMethod   *PaymentMethodResponse   `json:"selected_method"`
	Amount           decimal.Decimal          `json:"amount"`
}

// GetCartPayment handles GET /cart/payment
func (h *CartHandler) GetCartPayment(c echo.Context) error {
	cartID, err := cartIDFromHeader(c)
	if err != nil || cartID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid " + headerCartID + " header",
		})
	}

	data, err := h.cartPayment.GetPaymentData(c.Request().Context(), core.TargetCurrentCart, core.TargetParams{CartID: cartID})
	if err != nil {
		if core.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Cart not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to retrieve cart payment",
		})
	}

	resp := CartPaymentResponse{
		AvailableMethods: AvailableMethodsResponse{
			Count: len(data.AvailableMethods),
			Items: make([]PaymentMethodResponse, 0, len(data.AvailableMethods)),
		},
		Amount: data.Amount,
	}
	for _, m := range data.AvailableMethods {
		resp.AvailableMethods.Items = append(resp.AvailableMethods.Items, toMethodResponse(m))
	}
	if data.SelectedMethod != nil {
		selected := toMethodResponse(*data.SelectedMethod)
		resp.SelectedMethod = &selected
	}

	return c.JSON(http.StatusOK, resp)
}

func toMethodResponse(m input.PaymentMethodData) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:          m.ID,
		Name:        m.Name,
		Provider:    m.Provider,
		Code:        m.Code,
		Description: m.Description,
	}
}
