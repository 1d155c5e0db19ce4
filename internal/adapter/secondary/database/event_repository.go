package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cashflow/invader-payment/internal/constant/model/db"
	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// GormTransactionEventRepository implements TransactionEventRepository output port
type GormTransactionEventRepository struct {
	gormDB *gorm.DB
}

// NewGormTransactionEventRepository creates a new GORM audit trail repository
func NewGormTransactionEventRepository(gormDB *gorm.DB) output.TransactionEventRepository {
	return &GormTransactionEventRepository{gormDB: gormDB}
}

// Append inserts evt; an event already stored under the same ID is skipped
func (r *GormTransactionEventRepository) Append(ctx context.Context, evt core.TransactionEvent) error {
	row := &db.TransactionEvent{
		ID:            evt.ID,
		TransactionID: evt.TransactionID,
		Reference:     evt.Reference,
		OrderID:       evt.OrderID,
		State:         string(evt.State),
		ErrorMessage:  evt.ErrorMessage,
		OccurredAt:    evt.OccurredAt,
	}
	if err := r.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		return fmt.Errorf("failed to append transaction event: %w", err)
	}
	return nil
}
