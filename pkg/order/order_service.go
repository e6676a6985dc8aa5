package order

import (
	"context"
	"errors"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/listing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	OrderService interface {
		CreateOrder(ctx context.Context, req domain.CreateOrderRequest, buyerID string) (*domain.Order, error)
		GetOrders(ctx context.Context, userID, role string, filter domain.OrderFilter, page, limit int) ([]*domain.Order, int64, error)
		GetOrderByID(ctx context.Context, id, userID, role string) (*domain.Order, error)
		UpdateOrderStatus(ctx context.Context, id string, req domain.UpdateOrderStatusRequest, userID, role string) (*domain.Order, error)
	}

	orderService struct {
		orderRepository   OrderRepository
		listingRepository listing.ListingRepository
		publisher         events.Publisher
		log               *logrus.Logger
		now               func() time.Time
	}
)

func NewOrderService(
	orderRepository OrderRepository,
	listingRepository listing.ListingRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepository:   orderRepository,
		listingRepository: listingRepository,
		publisher:         publisher,
		log:               logger,
		now:               time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest, buyerID string) (*domain.Order, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	wasteListing, err := s.listingRepository.GetListingByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	if wasteListing.FarmerID == buyerUUID {
		return nil, domain.ErrSelfOrder
	}
	if wasteListing.Status != domain.ListingStatusAvailable {
		return nil, domain.ErrListingUnavailable
	}

	quantity := decimal.NewFromFloat(req.Quantity)
	if !quantity.IsPositive() || quantity.GreaterThan(wasteListing.Quantity) {
		return nil, domain.ErrInsufficientQuantity
	}

	order := &entities.Order{
		ID:            uuid.New(),
		BuyerID:       buyerUUID,
		FarmerID:      wasteListing.FarmerID,
		ListingID:     wasteListing.ID,
		WasteType:     wasteListing.WasteType,
		Unit:          wasteListing.Unit,
		UnitPrice:     wasteListing.Price,
		Quantity:      quantity,
		TotalAmount:   domain.OrderTotal(quantity, wasteListing.Price),
		Notes:         req.Notes,
		BuyerContact:  req.BuyerContact,
		Status:        string(domain.OrderStatusPending),
		PaymentStatus: domain.PaymentStatusUnpaid,
		Version:       1,
	}
	if err := s.orderRepository.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	order.Farmer = wasteListing.Farmer

	res := ToOrder(order)
	s.publisher.Publish(domain.NewEvent(domain.EventOrderCreated, res, res.FarmerID, res.BuyerID))
	s.log.WithFields(logrus.Fields{
		"order_id":   res.ID,
		"listing_id": res.ListingID,
		"buyer_id":   buyerID,
		"total":      order.TotalAmount.String(),
	}).Info("order created")

	return res, nil
}

func (s *orderService) GetOrders(ctx context.Context, userID, role string, filter domain.OrderFilter, page, limit int) ([]*domain.Order, int64, error) {
	var scope OrderScope
	switch role {
	case domain.RoleFarmer:
		scope.FarmerID = userID
	case domain.RoleBuyer:
		scope.BuyerID = userID
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.ErrUserNotAllowed
	}

	orders, count, err := s.orderRepository.GetOrders(ctx, scope, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, ToOrder(o))
	}
	return result, count, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id, userID, role string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(order, userID, role) {
		return nil, domain.ErrUserNotAllowed
	}
	return ToOrder(order), nil
}

// UpdateOrderStatus moves an order through its lifecycle. Requesting the
// status the order already has returns it unchanged without a write.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, req domain.UpdateOrderStatusRequest, userID, role string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(order, userID, role) {
		return nil, domain.ErrUserNotAllowed
	}

	target := domain.OrderStatus(req.Status)
	if !target.IsValid() {
		return nil, domain.ErrInvalidOrderStatus
	}
	if req.Version != 0 && req.Version != order.Version {
		return nil, domain.ErrVersionConflict
	}

	current := domain.OrderStatus(order.Status)
	next, err := current.Transition(target)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": id,
			"from":     current,
			"to":       target,
			"user_id":  userID,
		}).Warn("order status transition rejected")
		return nil, err
	}
	if !roleMayMove(role, current, target) {
		return nil, domain.ErrUserNotAllowed
	}
	if next == current {
		return ToOrder(order), nil
	}

	updated, err := s.orderRepository.ApplyStatusChange(ctx, domain.OrderStatusChange{
		OrderID:         id,
		From:            current,
		To:              next,
		ExpectedVersion: order.Version,
		At:              s.now(),
	})
	if err != nil {
		return nil, err
	}

	res := ToOrder(updated)
	s.publisher.Publish(domain.NewEvent(domain.EventOrderUpdated, res, res.BuyerID, res.FarmerID))
	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"from":     current,
		"to":       next,
		"user_id":  userID,
	}).Info("order status changed")

	return res, nil
}

func (s *orderService) getOrder(ctx context.Context, id string) (*entities.Order, error) {
	order, err := s.orderRepository.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func canView(order *entities.Order, userID, role string) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleFarmer:
		return order.FarmerID.String() == userID
	case domain.RoleBuyer:
		return order.BuyerID.String() == userID
	}
	return false
}

// roleMayMove reports whether role may perform a legal transition. Farmers
// drive the lifecycle, buyers may only withdraw an unconfirmed order.
func roleMayMove(role string, from, to domain.OrderStatus) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleFarmer:
		return true
	case domain.RoleBuyer:
		// A repeated cancel stays a no-op for the buyer who made it.
		return to == domain.OrderStatusCancelled &&
			(from == domain.OrderStatusPending || from == domain.OrderStatusCancelled)
	}
	return false
}

func ToOrder(o *entities.Order) *domain.Order {
	res := &domain.Order{
		ID:            o.ID.String(),
		BuyerID:       o.BuyerID.String(),
		BuyerContact:  o.BuyerContact,
		FarmerID:      o.FarmerID.String(),
		ListingID:     o.ListingID.String(),
		WasteType:     o.WasteType,
		Unit:          o.Unit,
		Price:         o.UnitPrice.InexactFloat64(),
		Quantity:      o.Quantity.InexactFloat64(),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		Notes:         o.Notes,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Version:       o.Version,
		OrderDate:     o.CreatedAt,
		ConfirmedAt:   o.ConfirmedAt,
		CompletedAt:   o.CompletedAt,
		CancelledAt:   o.CancelledAt,
	}
	if o.Buyer != nil {
		res.BuyerName = o.Buyer.Name
		res.BuyerEmail = o.Buyer.Email
		if res.BuyerContact == "" {
			res.BuyerContact = o.Buyer.Phone
		}
	}
	if o.Farmer != nil {
		res.FarmerName = o.Farmer.Name
	}
	return res
}
