package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cashflow/invader-payment/internal/constant/model/db"
	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// GormTransactionRepository is a secondary adapter that implements TransactionRepository output port
type GormTransactionRepository struct {
	gormDB *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(gormDB *gorm.DB) output.TransactionRepository {
	return &GormTransactionRepository{gormDB: gormDB}
}

// toCoreTransaction converts db.PaymentTransaction to core.PaymentTransaction
func toCoreTransaction(t *db.PaymentTransaction) *core.PaymentTransaction {
	return &core.PaymentTransaction{
		ID:                t.ID,
		Reference:         t.Reference,
		Amount:            t.Amount,
		Currency:          core.Currency(t.Currency),
		Provider:          t.Provider,
		ProviderReference: t.ProviderReference,
		State:             core.TransactionState(t.State),
		ErrorMessage:      t.ErrorMessage,
		PaymentModeID:     t.PaymentModeID,
		OrderID:           t.OrderID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// fromCoreTransaction converts core.PaymentTransaction to db.PaymentTransaction
func fromCoreTransaction(t *core.PaymentTransaction) *db.PaymentTransaction {
	return &db.PaymentTransaction{
		ID:                t.ID,
		Reference:         t.Reference,
		Amount:            t.Amount,
		Currency:          string(t.Currency),
		Provider:          t.Provider,
		ProviderReference: t.ProviderReference,
		State:             string(t.State),
		ErrorMessage:      t.ErrorMessage,
		PaymentModeID:     t.PaymentModeID,
		OrderID:           t.OrderID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// Create creates a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *core.PaymentTransaction) error {
	dbTx := fromCoreTransaction(tx)
	if err := r.gormDB.WithContext(ctx).Create(dbTx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	// Update core entity with values set by GORM hooks
	tx.ID = dbTx.ID
	tx.CreatedAt = dbTx.CreatedAt
	tx.UpdatedAt = dbTx.UpdatedAt
	return nil
}

// Update persists the mutable fields of a transaction
func (r *GormTransactionRepository) Update(ctx context.Context, tx *core.PaymentTransaction) error {
	now := time.Now()
	res := r.gormDB.WithContext(ctx).
		Model(&db.PaymentTransaction{}).
		Where("id = ?", tx.ID).
		Updates(map[string]any{
			"state":              string(tx.State),
			"provider_reference": tx.ProviderReference,
			"error_message":      tx.ErrorMessage,
			"updated_at":         now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrTransactionNotFound
	}
	tx.UpdatedAt = now
	return nil
}

// FindByProviderReference retrieves the transaction bound to an intent of provider
func (r *GormTransactionRepository) FindByProviderReference(ctx context.Context, reference, provider string) (*core.PaymentTransaction, error) {
	var dbTx db.PaymentTransaction
	err := r.gormDB.WithContext(ctx).
		Where("provider_reference = ? AND provider = ?", reference, provider).
		Order("created_at DESC").
		First(&dbTx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no %s transaction for intent %s", core.ErrTransactionNotFound, provider, reference)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return toCoreTransaction(&dbTx), nil
}

// CountByOrder counts the transactions opened for an order
func (r *GormTransactionRepository) CountByOrder(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	if err := r.gormDB.WithContext(ctx).
		Model(&db.PaymentTransaction{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
