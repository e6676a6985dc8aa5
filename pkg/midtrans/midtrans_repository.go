package midtrans

import (
	"context"

	"AgriWaste-Marketplace/entities"

	"gorm.io/gorm"
)

type (
	MidtransRepository interface {
		CreatePayment(ctx context.Context, payment *entities.Payment) error
		GetPaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entities.Payment, error)
		UpdatePaymentStatus(ctx context.Context, payment *entities.Payment, gatewayStatus, orderPaymentStatus string) error
	}

	midtransRepository struct {
		db *gorm.DB
	}
)

func NewMidtransRepository(db *gorm.DB) MidtransRepository {
	return &midtransRepository{
		db: db,
	}
}

func (r *midtransRepository) CreatePayment(ctx context.Context, payment *entities.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *midtransRepository) GetPaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entities.Payment, error) {
	var payment entities.Payment
	if err := r.db.WithContext(ctx).
		Preload("Order").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus records the gateway status on the payment and the
// derived status on its order together.
func (r *midtransRepository) UpdatePaymentStatus(ctx context.Context, payment *entities.Payment, gatewayStatus, orderPaymentStatus string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", gatewayStatus).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Order{}).
			Where("id = ?", payment.OrderID).
			Updates(map[string]any{
				"payment_status": orderPaymentStatus,
				"version":        gorm.Expr("version + 1"),
			}).Error
	})
}
