package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cashflow/invader-payment/internal/constant/model/db"
	"github.com/cashflow/invader-payment/internal/core"
	"github.com/cashflow/invader-payment/internal/port/output"
)

// GormOrderRepository implements OrderRepository output port
type GormOrderRepository struct {
	gormDB *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository
func NewGormOrderRepository(gormDB *gorm.DB) output.OrderRepository {
	return &GormOrderRepository{gormDB: gormDB}
}

func toCoreOrder(o *db.SaleOrder) *core.Order {
	return &core.Order{
		ID:            o.ID,
		Name:          o.Name,
		Typology:      core.OrderTypology(o.Typology),
		State:         core.OrderState(o.State),
		AmountTotal:   o.AmountTotal,
		Currency:      core.Currency(o.Currency),
		PaymentModeID: o.PaymentModeID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// GetByID retrieves an order by its ID
func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*core.Order, error) {
	var dbOrder db.SaleOrder
	if err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&dbOrder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", core.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toCoreOrder(&dbOrder), nil
}

// Update persists typology, state and payment mode of an order
func (r *GormOrderRepository) Update(ctx context.Context, order *core.Order) error {
	res := r.gormDB.WithContext(ctx).
		Model(&db.SaleOrder{ID: order.ID}).
		Updates(map[string]any{
			"typology":        string(order.Typology),
			"state":           string(order.State),
			"payment_mode_id": order.PaymentModeID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", core.ErrOrderNotFound, order.ID)
	}
	return nil
}

// GormPaymentModeRepository implements PaymentModeRepository output port
type GormPaymentModeRepository struct {
	gormDB *gorm.DB
}

// NewGormPaymentModeRepository creates a new GORM payment mode repository
func NewGormPaymentModeRepository(gormDB *gorm.DB) output.PaymentModeRepository {
	return &GormPaymentModeRepository{gormDB: gormDB}
}

func toCorePaymentMode(m *db.PaymentMode) core.PaymentMode {
	return core.PaymentMode{
		ID:          m.ID,
		Name:        m.Name,
		Provider:    m.Provider,
		Code:        m.Code,
		Description: m.Description,
		Active:      m.Active,
	}
}

// GetByID retrieves a payment mode by its ID
func (r *GormPaymentModeRepository) GetByID(ctx context.Context, id uint) (*core.PaymentMode, error) {
	var dbMode db.PaymentMode
	if err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&dbMode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment mode %d not found", core.ErrInvalidPaymentMode, id)
		}
		return nil, fmt.Errorf("failed to get payment mode: %w", err)
	}
	mode := toCorePaymentMode(&dbMode)
	return &mode, nil
}

// ListActive returns active payment modes ordered by ID
func (r *GormPaymentModeRepository) ListActive(ctx context.Context) ([]core.PaymentMode, error) {
	var dbModes []db.PaymentMode
	if err := r.gormDB.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&dbModes).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment modes: %w", err)
	}
	modes := make([]core.PaymentMode, 0, len(dbModes))
	for i := range dbModes {
		modes = append(modes, toCorePaymentMode(&dbModes[i]))
	}
	return modes, nil
}
