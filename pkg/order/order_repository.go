package order

import (
	"context"
	"errors"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/listing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// OrderScope limits a listing of orders to one participant. Empty fields
	// are ignored.
	OrderScope struct {
		BuyerID  string
		FarmerID string
	}

	OrderRepository interface {
		CreateOrder(ctx context.Context, order *entities.Order) error
		GetOrderByID(ctx context.Context, id string) (*entities.Order, error)
		GetOrders(ctx context.Context, scope OrderScope, filter domain.OrderFilter, page, limit int) ([]*entities.Order, int64, error)
		ApplyStatusChange(ctx context.Context, change domain.OrderStatusChange) (*entities.Order, error)
		UpdatePaymentStatus(ctx context.Context, orderID string, status string) error
	}

	orderRepository struct {
		db *gorm.DB
	}
)

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{
		db: db,
	}
}

// CreateOrder re-checks the listing under a row lock so two buyers cannot
// both claim more than is left.
func (r *orderRepository) CreateOrder(ctx context.Context, order *entities.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wasteListing entities.WasteListing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", order.ListingID).
			First(&wasteListing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrListingNotFound
			}
			return err
		}

		if wasteListing.Status != domain.ListingStatusAvailable {
			return domain.ErrListingUnavailable
		}
		if order.Quantity.GreaterThan(wasteListing.Quantity) {
			return domain.ErrInsufficientQuantity
		}

		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*entities.Order, error) {
	var order entities.Order
	if err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Farmer").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, scope OrderScope, filter domain.OrderFilter, page, limit int) ([]*entities.Order, int64, error) {
	var orders []*entities.Order
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.Order{})
	if scope.BuyerID != "" {
		query = query.Where("buyer_id = ?", scope.BuyerID)
	}
	if scope.FarmerID != "" {
		query = query.Where("farmer_id = ?", scope.FarmerID)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := domain.ListingFilter{Search: filter.Search}.SearchPattern()
		query = query.Where("(waste_type ILIKE ? OR notes ILIKE ?)", pattern, pattern)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Buyer").
		Preload("Farmer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

// ApplyStatusChange moves one order to change.To and applies the matching
// effect on its listing in a single transaction. It fails with
// ErrVersionConflict when the order moved on since the caller read it, and
// with ErrInsufficientQuantity when confirmed orders would hold more than
// the listing has left.
func (r *orderRepository) ApplyStatusChange(ctx context.Context, change domain.OrderStatusChange) (*entities.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entities.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", change.OrderID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if order.Version != change.ExpectedVersion || domain.OrderStatus(order.Status) != change.From {
			return domain.ErrVersionConflict
		}

		fields := map[string]any{"status": string(change.To)}
		switch change.To {
		case domain.OrderStatusConfirmed:
			fields["confirmed_at"] = change.At
		case domain.OrderStatusCompleted:
			fields["completed_at"] = change.At
		case domain.OrderStatusCancelled:
			fields["cancelled_at"] = change.At
		}
		if err := utils.UpdateVersioned(tx, &entities.Order{}, order.ID, order.Version, fields); err != nil {
			return err
		}

		return applyListingEffect(tx, &order, change.To)
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, change.OrderID)
}

func applyListingEffect(tx *gorm.DB, order *entities.Order, to domain.OrderStatus) error {
	var wasteListing entities.WasteListing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", order.ListingID).
		First(&wasteListing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	otherConfirmed, err := listing.ReservedQuantity(tx, wasteListing.ID.String(), order.ID.String())
	if err != nil {
		return err
	}

	current := domain.ListingState{Status: wasteListing.Status, Quantity: wasteListing.Quantity}
	next, err := to.ApplyToListing(current, order.Quantity, otherConfirmed)
	if err != nil {
		return err
	}
	if next.Status == current.Status && next.Quantity.Equal(current.Quantity) {
		return nil
	}

	return utils.UpdateVersioned(tx, &entities.WasteListing{}, wasteListing.ID, wasteListing.Version, map[string]any{
		"status":   next.Status,
		"quantity": next.Quantity,
	})
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID string, status string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status": status,
			"version":        gorm.Expr("version + 1"),
		}).Error
}
