package midtrans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/order"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	MidtransService interface {
		CreateOrderPayment(ctx context.Context, orderID, buyerID string) (*domain.PaymentResponse, error)
		HandleNotification(ctx context.Context, notification domain.MidtransNotification) error
	}

	midtransService struct {
		midtransRepository MidtransRepository
		orderRepository    order.OrderRepository
		gateway            Gateway
		publisher          events.Publisher
		log                *logrus.Logger
		now                func() time.Time
	}
)

func NewMidtransService(
	midtransRepository MidtransRepository,
	orderRepository order.OrderRepository,
	gateway Gateway,
	publisher events.Publisher,
	logger *logrus.Logger,
) MidtransService {
	return &midtransService{
		midtransRepository: midtransRepository,
		orderRepository:    orderRepository,
		gateway:            gateway,
		publisher:          publisher,
		log:                logger,
		now:                time.Now,
	}
}

// CreateOrderPayment opens a Snap transaction for the full amount of a
// confirmed order.
func (s *midtransService) CreateOrderPayment(ctx context.Context, orderID, buyerID string) (*domain.PaymentResponse, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	o, err := s.orderRepository.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	if o.BuyerID != buyerUUID {
		return nil, domain.ErrUserNotAllowed
	}
	if o.PaymentStatus == domain.PaymentStatusPaid {
		return nil, domain.ErrOrderAlreadyPaid
	}
	if o.Status != string(domain.OrderStatusConfirmed) {
		return nil, domain.ErrOrderNotPayable
	}

	gross := o.TotalAmount.Round(0).IntPart()
	gatewayOrderID := fmt.Sprintf("AGW-%s-%d", strings.Split(o.ID.String(), "-")[0], s.now().Unix())

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  gatewayOrderID,
			GrossAmt: gross,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    o.ListingID.String(),
			Name:  itemName(o),
			Price: gross,
			Qty:   1,
		}},
	}
	if o.Buyer != nil {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: o.Buyer.Name,
			Email: o.Buyer.Email,
			Phone: o.Buyer.Phone,
		}
	}

	res, err := s.gateway.CreateTransaction(req)
	if err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Error("midtrans create transaction failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	payment := &entities.Payment{
		ID:             uuid.New(),
		OrderID:        o.ID,
		BuyerID:        buyerUUID,
		GatewayOrderID: gatewayOrderID,
		Amount:         o.TotalAmount,
		Status:         "pending",
		RedirectURL:    res.RedirectURL,
	}
	if err := s.midtransRepository.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	if err := s.orderRepository.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusPending); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":         orderID,
		"gateway_order_id": gatewayOrderID,
		"amount":           gross,
	}).Info("payment created")

	return &domain.PaymentResponse{
		PaymentID:   payment.ID.String(),
		OrderID:     orderID,
		Amount:      o.TotalAmount.InexactFloat64(),
		Token:       res.Token,
		RedirectURL: res.RedirectURL,
	}, nil
}

// HandleNotification trusts nothing in the webhook body beyond the order
// id: the status is re-read from the Core API.
func (s *midtransService) HandleNotification(ctx context.Context, notification domain.MidtransNotification) error {
	if notification.OrderID == "" {
		return domain.ErrPaymentNotFound
	}

	payment, err := s.midtransRepository.GetPaymentByGatewayOrderID(ctx, notification.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPaymentNotFound
		}
		return err
	}

	status, err := s.gateway.CheckTransaction(notification.OrderID)
	if err != nil {
		s.log.WithError(err).WithField("gateway_order_id", notification.OrderID).Error("midtrans status check failed")
		return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	orderStatus := domain.PaymentStatusFromGateway(status.TransactionStatus, status.FraudStatus)
	if err := s.midtransRepository.UpdatePaymentStatus(ctx, payment, status.TransactionStatus, orderStatus); err != nil {
		return err
	}

	payload := map[string]string{
		"order_id":       payment.OrderID.String(),
		"payment_status": orderStatus,
	}
	userIDs := []string{payment.BuyerID.String()}
	if payment.Order != nil {
		userIDs = append(userIDs, payment.Order.FarmerID.String())
	}
	s.publisher.Publish(domain.NewEvent(domain.EventPaymentUpdated, payload, userIDs...))

	s.log.WithFields(logrus.Fields{
		"gateway_order_id":   notification.OrderID,
		"transaction_status": status.TransactionStatus,
		"payment_status":     orderStatus,
	}).Info("payment notification processed")
	return nil
}

func itemName(o *entities.Order) string {
	name := fmt.Sprintf("%s %s %s", o.Quantity.String(), o.Unit, o.WasteType)
	// Midtrans rejects item names longer than 50 characters.
	if runes := []rune(name); len(runes) > 50 {
		name = string(runes[:50])
	}
	return name
}
