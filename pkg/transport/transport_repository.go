package transport

import (
	"context"
	"errors"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var activeTransportStatuses = []string{
	string(domain.TransportStatusRequested),
	string(domain.TransportStatusAssigned),
	string(domain.TransportStatusInTransit),
}

type (
	// TransportScope limits a listing of transport requests to one
	// participant. Empty fields are ignored.
	TransportScope struct {
		BuyerID  string
		FarmerID string
	}

	TransportRepository interface {
		CreateTransport(ctx context.Context, transport *entities.TransportRequest) error
		GetTransportByID(ctx context.Context, id string) (*entities.TransportRequest, error)
		GetTransports(ctx context.Context, scope TransportScope, status string, page, limit int) ([]*entities.TransportRequest, int64, error)
		ApplyStatusChange(ctx context.Context, change domain.TransportStatusChange) (*entities.TransportRequest, error)
	}

	transportRepository struct {
		db *gorm.DB
	}
)

func NewTransportRepository(db *gorm.DB) TransportRepository {
	return &transportRepository{
		db: db,
	}
}

// CreateTransport locks the order row so an order never gets two active
// transport requests.
func (r *transportRepository) CreateTransport(ctx context.Context, transport *entities.TransportRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entities.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", transport.OrderID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if order.Status != string(domain.OrderStatusConfirmed) {
			return domain.ErrTransportOrderNotConfirmed
		}

		var active int64
		if err := tx.Model(&entities.TransportRequest{}).
			Where("order_id = ? AND status IN ?", transport.OrderID, activeTransportStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrTransportAlreadyRequested
		}

		return tx.Create(transport).Error
	})
}

func (r *transportRepository) GetTransportByID(ctx context.Context, id string) (*entities.TransportRequest, error) {
	var transport entities.TransportRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&transport).Error; err != nil {
		return nil, err
	}
	return &transport, nil
}

func (r *transportRepository) GetTransports(ctx context.Context, scope TransportScope, status string, page, limit int) ([]*entities.TransportRequest, int64, error) {
	var transports []*entities.TransportRequest
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.TransportRequest{})
	if scope.BuyerID != "" {
		query = query.Where("buyer_id = ?", scope.BuyerID)
	}
	if scope.FarmerID != "" {
		query = query.Where("farmer_id = ?", scope.FarmerID)
	}
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("scheduled_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&transports).Error; err != nil {
		return nil, 0, err
	}

	return transports, count, nil
}

func (r *transportRepository) ApplyStatusChange(ctx context.Context, change domain.TransportStatusChange) (*entities.TransportRequest, error) {
	fields := map[string]any{"status": string(change.To)}
	if change.DriverName != "" {
		fields["driver_name"] = change.DriverName
		fields["driver_phone"] = change.DriverPhone
	}
	if change.To == domain.TransportStatusDelivered {
		fields["delivered_at"] = change.At
	}

	if err := utils.UpdateVersioned(r.db.WithContext(ctx), &entities.TransportRequest{}, change.TransportID, change.ExpectedVersion, fields); err != nil {
		return nil, err
	}
	return r.GetTransportByID(ctx, change.TransportID)
}
