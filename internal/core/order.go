package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderTypology distinguishes carts, quotations and confirmed sales
type OrderTypology string

const (
	OrderTypologyCart      OrderTypology = "cart"
	OrderTypologyQuotation OrderTypology = "quotation"
	OrderTypologySale      OrderTypology = "sale"
)

// OrderState is the sale order workflow state
type OrderState string

const (
	OrderStateDraft  OrderState = "draft"
	OrderStateSent   OrderState = "sent"
	OrderStateSale   OrderState = "sale"
	OrderStateCancel OrderState = "cancel"
)

// Order is a sale order that the storefront can pay
type Order struct {
	ID            uint
	Name          string
	Typology      OrderTypology
	State         OrderState
	AmountTotal   decimal.Decimal
	Currency      Currency
	PaymentModeID uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsCancelled checks if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.State == OrderStateCancel
}

// ConfirmSale turns the order into a confirmed sale
func (o *Order) ConfirmSale() {
	o.State = OrderStateSale
	o.Typology = OrderTypologySale
}

// PaymentMode is a configured way to pay, bound to a provider
type PaymentMode struct {
	ID          uint
	Name        string
	Provider    string
	Code        string
	Description string
	Active      bool
}

// PaymentMethod is a payment mode offered to the storefront for a payable
type PaymentMethod struct {
	Code        string
	Description string
	PaymentMode PaymentMode
}
