package transport

import (
	"context"
	"errors"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/order"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	TransportService interface {
		CreateTransport(ctx context.Context, req domain.CreateTransportRequest, userID, role string) (*domain.Transport, error)
		GetTransports(ctx context.Context, userID, role, status string, page, limit int) ([]*domain.Transport, int64, error)
		GetTransportByID(ctx context.Context, id, userID, role string) (*domain.Transport, error)
		AssignTransport(ctx context.Context, id string, req domain.AssignTransportRequest, role string) (*domain.Transport, error)
		UpdateTransportStatus(ctx context.Context, id string, req domain.UpdateTransportStatusRequest, userID, role string) (*domain.Transport, error)
	}

	transportService struct {
		transportRepository TransportRepository
		orderRepository     order.OrderRepository
		publisher           events.Publisher
		log                 *logrus.Logger
		now                 func() time.Time
	}
)

func NewTransportService(
	transportRepository TransportRepository,
	orderRepository order.OrderRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) TransportService {
	return &transportService{
		transportRepository: transportRepository,
		orderRepository:     orderRepository,
		publisher:           publisher,
		log:                 logger,
		now:                 time.Now,
	}
}

func (s *transportService) CreateTransport(ctx context.Context, req domain.CreateTransportRequest, userID, role string) (*domain.Transport, error) {
	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, domain.ErrInvalidTransportSchedule
	}

	o, err := s.orderRepository.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	if !isParticipant(o.BuyerID, o.FarmerID, userID, role) || role == domain.RoleAdmin {
		return nil, domain.ErrUserNotAllowed
	}
	if o.Status != string(domain.OrderStatusConfirmed) {
		return nil, domain.ErrTransportOrderNotConfirmed
	}

	transport := &entities.TransportRequest{
		ID:            uuid.New(),
		OrderID:       o.ID,
		RequesterID:   requesterID,
		BuyerID:       o.BuyerID,
		FarmerID:      o.FarmerID,
		PickupAddress: req.PickupAddress,
		DropAddress:   req.DropAddress,
		VehicleType:   req.VehicleType,
		ScheduledAt:   scheduledAt,
		Status:        string(domain.TransportStatusRequested),
		Version:       1,
	}
	if err := s.transportRepository.CreateTransport(ctx, transport); err != nil {
		return nil, err
	}

	res := ToTransport(transport)
	s.publisher.Publish(domain.NewEvent(domain.EventTransportUpdated, res, res.BuyerID, res.FarmerID).ToRoles(domain.RoleAdmin))
	s.log.WithFields(logrus.Fields{"transport_id": res.ID, "order_id": res.OrderID}).Info("transport requested")
	return res, nil
}

func (s *transportService) GetTransports(ctx context.Context, userID, role, status string, page, limit int) ([]*domain.Transport, int64, error) {
	if status != "" && status != "all" && !domain.TransportStatus(status).IsValid() {
		return nil, 0, domain.ErrInvalidTransportStatus
	}

	var scope TransportScope
	switch role {
	case domain.RoleFarmer:
		scope.FarmerID = userID
	case domain.RoleBuyer:
		scope.BuyerID = userID
	case domain.RoleAdmin:
	default:
		return nil, 0, domain.ErrUserNotAllowed
	}

	transports, count, err := s.transportRepository.GetTransports(ctx, scope, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Transport, 0, len(transports))
	for _, t := range transports {
		result = append(result, ToTransport(t))
	}
	return result, count, nil
}

func (s *transportService) GetTransportByID(ctx context.Context, id, userID, role string) (*domain.Transport, error) {
	transport, err := s.getTransport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(transport.BuyerID, transport.FarmerID, userID, role) {
		return nil, domain.ErrUserNotAllowed
	}
	return ToTransport(transport), nil
}

// AssignTransport records the driver and moves a requested transport to
// assigned.
func (s *transportService) AssignTransport(ctx context.Context, id string, req domain.AssignTransportRequest, role string) (*domain.Transport, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrUserNotAllowed
	}

	transport, err := s.getTransport(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != transport.Version {
		return nil, domain.ErrVersionConflict
	}

	current := domain.TransportStatus(transport.Status)
	if current != domain.TransportStatusRequested && current != domain.TransportStatusAssigned {
		return nil, domain.ErrInvalidTransportTransition
	}

	return s.apply(ctx, transport, domain.TransportStatusChange{
		TransportID:     id,
		To:              domain.TransportStatusAssigned,
		ExpectedVersion: transport.Version,
		DriverName:      req.DriverName,
		DriverPhone:     req.DriverPhone,
		At:              s.now(),
	})
}

// UpdateTransportStatus applies a participant's status change. The farmer
// dispatches, the buyer confirms delivery, and either may cancel before
// pickup.
func (s *transportService) UpdateTransportStatus(ctx context.Context, id string, req domain.UpdateTransportStatusRequest, userID, role string) (*domain.Transport, error) {
	transport, err := s.getTransport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(transport.BuyerID, transport.FarmerID, userID, role) {
		return nil, domain.ErrUserNotAllowed
	}

	target := domain.TransportStatus(req.Status)
	if !target.IsValid() {
		return nil, domain.ErrInvalidTransportStatus
	}
	if req.Version != 0 && req.Version != transport.Version {
		return nil, domain.ErrVersionConflict
	}

	current := domain.TransportStatus(transport.Status)
	next, err := current.Transition(target)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"transport_id": id,
			"from":         current,
			"to":           target,
			"user_id":      userID,
		}).Warn("transport status transition rejected")
		return nil, err
	}
	if next == current {
		return ToTransport(transport), nil
	}
	if !transportRoleMayMove(role, next) {
		return nil, domain.ErrUserNotAllowed
	}

	return s.apply(ctx, transport, domain.TransportStatusChange{
		TransportID:     id,
		To:              next,
		ExpectedVersion: transport.Version,
		At:              s.now(),
	})
}

func (s *transportService) apply(ctx context.Context, transport *entities.TransportRequest, change domain.TransportStatusChange) (*domain.Transport, error) {
	updated, err := s.transportRepository.ApplyStatusChange(ctx, change)
	if err != nil {
		return nil, err
	}

	res := ToTransport(updated)
	s.publisher.Publish(domain.NewEvent(domain.EventTransportUpdated, res, res.BuyerID, res.FarmerID))
	s.log.WithFields(logrus.Fields{
		"transport_id": res.ID,
		"from":         transport.Status,
		"to":           res.Status,
	}).Info("transport status changed")
	return res, nil
}

func (s *transportService) getTransport(ctx context.Context, id string) (*entities.TransportRequest, error) {
	transport, err := s.transportRepository.GetTransportByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransportNotFound
		}
		return nil, err
	}
	return transport, nil
}

func isParticipant(buyerID, farmerID uuid.UUID, userID, role string) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleFarmer:
		return farmerID.String() == userID
	case domain.RoleBuyer:
		return buyerID.String() == userID
	}
	return false
}

func transportRoleMayMove(role string, to domain.TransportStatus) bool {
	switch to {
	case domain.TransportStatusInTransit:
		return role == domain.RoleFarmer || role == domain.RoleAdmin
	case domain.TransportStatusDelivered:
		return role == domain.RoleBuyer || role == domain.RoleAdmin
	case domain.TransportStatusCancelled:
		return true
	}
	return false
}

func ToTransport(t *entities.TransportRequest) *domain.Transport {
	return &domain.Transport{
		ID:            t.ID.String(),
		OrderID:       t.OrderID.String(),
		RequesterID:   t.RequesterID.String(),
		BuyerID:       t.BuyerID.String(),
		FarmerID:      t.FarmerID.String(),
		PickupAddress: t.PickupAddress,
		DropAddress:   t.DropAddress,
		VehicleType:   t.VehicleType,
		ScheduledAt:   t.ScheduledAt,
		Status:        t.Status,
		DriverName:    t.DriverName,
		DriverPhone:   t.DriverPhone,
		DeliveredAt:   t.DeliveredAt,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
	}
}
