package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTransaction represents a payment transaction in the database
type PaymentTransaction struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Reference         string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"reference"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency          string          `gorm:"type:varchar(3);not null" json:"currency"`
	Provider          string          `gorm:"type:varchar(32);not null;index:idx_tx_provider_reference,priority:2" json:"provider"`
	ProviderReference string          `gorm:"type:varchar(255);index:idx_tx_provider_reference,priority:1" json:"provider_reference"`
	State             string          `gorm:"type:varchar(20);not null" json:"state"`
	ErrorMessage      string          `gorm:"type:text" json:"error_message"`
	PaymentModeID     uint            `gorm:"not null" json:"payment_mode_id"`
	OrderID           uint            `gorm:"not null;index" json:"order_id"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return nil
}

// PaymentMode represents a configured payment mode
type PaymentMode struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Provider    string `gorm:"type:varchar(32);not null" json:"provider"`
	Code        string `gorm:"type:varchar(64);not null" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

// TableName specifies the table name for GORM
func (PaymentMode) TableName() string {
	return "payment_modes"
}

// SaleOrder represents a cart, quotation or sale
type SaleOrder struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	Typology      string          `gorm:"type:varchar(20);not null" json:"typology"`
	State         string          `gorm:"type:varchar(20);not null" json:"state"`
	AmountTotal   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_total"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	PaymentModeID uint            `json:"payment_mode_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SaleOrder) TableName() string {
	return "sale_orders"
}

// TransactionEvent is one entry of the transaction audit trail
type TransactionEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Reference     string    `gorm:"type:varchar(255);not null" json:"reference"`
	OrderID       uint      `gorm:"not null" json:"order_id"`
	State         string    `gorm:"type:varchar(20);not null" json:"state"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message"`
	OccurredAt    time.Time `gorm:"not null" json:"occurred_at"`
	RecordedAt    time.Time `gorm:"not null" json:"recorded_at"`
}

// TableName specifies the table name for GORM
func (TransactionEvent) TableName() string {
	return "payment_transaction_events"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (e *TransactionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	return nil
}
