package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// orderTransitions lists every legal move. States without outgoing edges
// are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

var (
	MessageSuccessCreateOrder       = "order created successfully"
	MessageSuccessGetOrders         = "orders retrieved successfully"
	MessageSuccessGetOrder          = "order retrieved successfully"
	MessageSuccessUpdateOrderStatus = "order status updated successfully"

	MessageFailedCreateOrder       = "failed to create order"
	MessageFailedGetOrders         = "failed to retrieve orders"
	MessageFailedGetOrder          = "failed to retrieve order"
	MessageFailedUpdateOrderStatus = "failed to update order status"

	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrSelfOrder               = errors.New("cannot order your own waste listing")
)

func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition returns the state reached by moving to target. Moving to the
// current state is a no-op. A rejected move returns the current state
// together with an error wrapping ErrInvalidStatusTransition.
func (s OrderStatus) Transition(target OrderStatus) (OrderStatus, error) {
	if !target.IsValid() {
		return s, ErrInvalidOrderStatus
	}
	if s == target {
		return s, nil
	}
	if !s.CanTransitionTo(target) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, target)
	}
	return target, nil
}

// ListingState is the part of a listing an order transition can change.
type ListingState struct {
	Status   string
	Quantity decimal.Decimal
}

// ApplyToListing returns the listing state after an order holding orderQty
// enters status s. otherConfirmed is the quantity still held by the other
// confirmed orders on the listing. Confirmed orders never hold more than the
// listing quantity between them.
func (s OrderStatus) ApplyToListing(listing ListingState, orderQty, otherConfirmed decimal.Decimal) (ListingState, error) {
	switch s {
	case OrderStatusConfirmed:
		if orderQty.Add(otherConfirmed).GreaterThan(listing.Quantity) {
			return listing, ErrInsufficientQuantity
		}
		if listing.Status == ListingStatusAvailable {
			listing.Status = ListingStatusPending
		}
	case OrderStatusCompleted:
		remaining := listing.Quantity.Sub(orderQty)
		if remaining.IsNegative() {
			return listing, ErrInsufficientQuantity
		}
		listing.Quantity = remaining
		switch {
		case remaining.IsZero():
			listing.Status = ListingStatusSold
		case otherConfirmed.IsPositive():
			listing.Status = ListingStatusPending
		default:
			listing.Status = ListingStatusAvailable
		}
	case OrderStatusCancelled:
		if listing.Status == ListingStatusPending && !otherConfirmed.IsPositive() {
			listing.Status = ListingStatusAvailable
		}
	}
	return listing, nil
}

// CheckListingEdit rejects a farmer's edit from current to next while
// confirmed orders hold reserved of the listing: the quantity may not drop
// below what is held and the status may not change.
func CheckListingEdit(current, next ListingState, reserved decimal.Decimal) error {
	if !reserved.IsPositive() {
		return nil
	}
	if next.Quantity.LessThan(reserved) {
		return ErrInsufficientQuantity
	}
	if next.Status != current.Status {
		return ErrListingReserved
	}
	return nil
}

// OrderTotal is quantity times unit price, rounded to cents.
func OrderTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

type (
	CreateOrderRequest struct {
		ListingID    string  `json:"listing_id" validate:"required,uuid"`
		Quantity     float64 `json:"quantity" validate:"required,gt=0"`
		Notes        string  `json:"notes" validate:"max=500"`
		BuyerContact string  `json:"buyer_contact" validate:"omitempty,max=32"`
	}

	UpdateOrderStatusRequest struct {
		Status  string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
		Version int    `json:"version" validate:"min=0"`
	}

	OrderFilter struct {
		Status string
		Search string
	}

	// OrderStatusChange is a single-record status write guarded by the
	// version the caller observed.
	OrderStatusChange struct {
		OrderID         string
		From            OrderStatus
		To              OrderStatus
		ExpectedVersion int
		At              time.Time
	}

	Order struct {
		ID            string     `json:"id"`
		BuyerID       string     `json:"buyer_id"`
		BuyerName     string     `json:"buyer_name,omitempty"`
		BuyerEmail    string     `json:"buyer_email,omitempty"`
		BuyerContact  string     `json:"buyer_contact,omitempty"`
		FarmerID      string     `json:"farmer_id"`
		FarmerName    string     `json:"farmer_name,omitempty"`
		ListingID     string     `json:"listing_id"`
		WasteType     string     `json:"waste_type"`
		Unit          string     `json:"unit"`
		Price         float64    `json:"price"`
		Quantity      float64    `json:"quantity"`
		TotalAmount   float64    `json:"total_amount"`
		Notes         string     `json:"notes,omitempty"`
		Status        string     `json:"status"`
		PaymentStatus string     `json:"payment_status"`
		Version       int        `json:"version"`
		OrderDate     time.Time  `json:"order_date"`
		ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
		CompletedAt   *time.Time `json:"completed_at,omitempty"`
		CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	}
)
