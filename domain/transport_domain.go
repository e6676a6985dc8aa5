package domain

import (
	"errors"
	"fmt"
	"time"
)

type TransportStatus string

const (
	TransportStatusRequested TransportStatus = "requested"
	TransportStatusAssigned  TransportStatus = "assigned"
	TransportStatusInTransit TransportStatus = "in_transit"
	TransportStatusDelivered TransportStatus = "delivered"
	TransportStatusCancelled TransportStatus = "cancelled"
)

var transportTransitions = map[TransportStatus][]TransportStatus{
	TransportStatusRequested: {TransportStatusAssigned, TransportStatusCancelled},
	TransportStatusAssigned:  {TransportStatusInTransit, TransportStatusCancelled},
	TransportStatusInTransit: {TransportStatusDelivered},
	TransportStatusDelivered: {},
	TransportStatusCancelled: {},
}

var (
	MessageSuccessCreateTransport       = "transport requested successfully"
	MessageSuccessGetTransports         = "transport requests retrieved successfully"
	MessageSuccessAssignTransport       = "transport assigned successfully"
	MessageSuccessUpdateTransportStatus = "transport status updated successfully"

	MessageFailedCreateTransport       = "failed to request transport"
	MessageFailedGetTransports         = "failed to retrieve transport requests"
	MessageFailedAssignTransport       = "failed to assign transport"
	MessageFailedUpdateTransportStatus = "failed to update transport status"

	ErrTransportNotFound          = errors.New("transport request not found")
	ErrInvalidTransportStatus     = errors.New("invalid transport status")
	ErrInvalidTransportTransition = errors.New("invalid transport status transition")
	ErrTransportOrderNotConfirmed = errors.New("transport can only be requested for confirmed orders")
	ErrTransportAlreadyRequested  = errors.New("an active transport request already exists for this order")
	ErrInvalidTransportSchedule   = errors.New("invalid scheduled_at, expected RFC3339 timestamp")
)

func (s TransportStatus) IsValid() bool {
	_, ok := transportTransitions[s]
	return ok
}

func (s TransportStatus) IsTerminal() bool {
	next, ok := transportTransitions[s]
	return ok && len(next) == 0
}

func (s TransportStatus) Transition(target TransportStatus) (TransportStatus, error) {
	if !target.IsValid() {
		return s, ErrInvalidTransportStatus
	}
	if s == target {
		return s, nil
	}
	for _, next := range transportTransitions[s] {
		if next == target {
			return target, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransportTransition, s, target)
}

type (
	CreateTransportRequest struct {
		OrderID       string `json:"order_id" validate:"required,uuid"`
		PickupAddress string `json:"pickup_address" validate:"required"`
		DropAddress   string `json:"drop_address" validate:"required"`
		VehicleType   string `json:"vehicle_type" validate:"required,oneof=tractor mini_truck truck"`
		ScheduledAt   string `json:"scheduled_at" validate:"required"`
	}

	AssignTransportRequest struct {
		DriverName  string `json:"driver_name" validate:"required"`
		DriverPhone string `json:"driver_phone" validate:"required,min=8"`
		Version     int    `json:"version" validate:"min=0"`
	}

	UpdateTransportStatusRequest struct {
		Status  string `json:"status" validate:"required,oneof=in_transit delivered cancelled"`
		Version int    `json:"version" validate:"min=0"`
	}

	TransportStatusChange struct {
		TransportID     string
		To              TransportStatus
		ExpectedVersion int
		DriverName      string
		DriverPhone     string
		At              time.Time
	}

	Transport struct {
		ID            string     `json:"id"`
		OrderID       string     `json:"order_id"`
		RequesterID   string     `json:"requester_id"`
		BuyerID       string     `json:"buyer_id"`
		FarmerID      string     `json:"farmer_id"`
		PickupAddress string     `json:"pickup_address"`
		DropAddress   string     `json:"drop_address"`
		VehicleType   string     `json:"vehicle_type"`
		ScheduledAt   time.Time  `json:"scheduled_at"`
		Status        string     `json:"status"`
		DriverName    string     `json:"driver_name,omitempty"`
		DriverPhone   string     `json:"driver_phone,omitempty"`
		DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
		Version       int        `json:"version"`
		CreatedAt     time.Time  `json:"created_at"`
	}
)
