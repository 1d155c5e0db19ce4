package core

// Payable targets accepted by the storefront
const (
	TargetCurrentCart = "current_cart"
	TargetQuotation   = "quotation"
)

// TargetParams carries what a resolver needs to find a payable
type TargetParams struct {
	CartID      uint
	QuotationID uint
}
