package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func TestOrderTransitionTable(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusCompleted, OrderStatusCancelled},
	}

	for _, from := range allOrderStatuses {
		for _, to := range allOrderStatuses {
			if from == to {
				continue
			}
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)

			got, err := from.Transition(to)
			if want {
				require.NoError(t, err)
				assert.Equal(t, to, got)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, from, got)
			}
		}
	}
}

func TestTransitionIsIdempotent(t *testing.T) {
	for _, from := range allOrderStatuses {
		for _, to := range allOrderStatuses {
			first, err := from.Transition(to)
			if err != nil {
				continue
			}
			second, err := first.Transition(to)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	}
}

func TestTerminalStatesNeverMove(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range allOrderStatuses {
			got, _ := terminal.Transition(to)
			assert.Equal(t, terminal, got)
		}
	}
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusConfirmed.IsTerminal())
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	got, err := OrderStatusPending.Transition("shipped")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	assert.Equal(t, OrderStatusPending, got)
	assert.False(t, OrderStatus("shipped").IsValid())
}

func TestCancelledCannotComplete(t *testing.T) {
	status, err := OrderStatusPending.Transition(OrderStatusCancelled)
	require.NoError(t, err)

	status, err = status.Transition(OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, OrderStatusCancelled, status)
}

func TestOrderTotal(t *testing.T) {
	total := OrderTotal(decimal.NewFromFloat(500), decimal.NewFromFloat(2.5))
	assert.True(t, total.Equal(decimal.NewFromInt(1250)), total.String())

	total = OrderTotal(decimal.NewFromFloat(0.1), decimal.NewFromFloat(0.2))
	assert.Equal(t, "0.02", total.String())
}

func TestApplyToListing(t *testing.T) {
	qty := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	available := ListingState{Status: ListingStatusAvailable, Quantity: qty(500)}

	got, err := OrderStatusConfirmed.ApplyToListing(available, qty(200), qty(0))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusPending, got.Status)
	assert.True(t, got.Quantity.Equal(qty(500)))

	pending := ListingState{Status: ListingStatusPending, Quantity: qty(500)}
	got, err = OrderStatusCompleted.ApplyToListing(pending, qty(200), qty(0))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusAvailable, got.Status)
	assert.True(t, got.Quantity.Equal(qty(300)))

	got, err = OrderStatusCompleted.ApplyToListing(pending, qty(200), qty(100))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusPending, got.Status)

	got, err = OrderStatusCompleted.ApplyToListing(pending, qty(500), qty(0))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusSold, got.Status)
	assert.True(t, got.Quantity.IsZero())

	got, err = OrderStatusCancelled.ApplyToListing(pending, qty(200), qty(0))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusAvailable, got.Status)

	got, err = OrderStatusCancelled.ApplyToListing(pending, qty(200), qty(100))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusPending, got.Status)

	sold := ListingState{Status: ListingStatusSold, Quantity: qty(0)}
	got, err = OrderStatusCancelled.ApplyToListing(sold, qty(200), qty(0))
	require.NoError(t, err)
	assert.Equal(t, ListingStatusSold, got.Status)
}

func TestApplyToListingRefusesOversell(t *testing.T) {
	qty := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	pending := ListingState{Status: ListingStatusPending, Quantity: qty(500)}

	got, err := OrderStatusConfirmed.ApplyToListing(pending, qty(400), qty(400))
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, pending, got)

	_, err = OrderStatusConfirmed.ApplyToListing(pending, qty(100), qty(400))
	assert.NoError(t, err)

	short := ListingState{Status: ListingStatusPending, Quantity: qty(100)}
	got, err = OrderStatusCompleted.ApplyToListing(short, qty(400), qty(0))
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, short, got)
}

func TestCheckListingEdit(t *testing.T) {
	qty := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	current := ListingState{Status: ListingStatusPending, Quantity: qty(500)}

	assert.NoError(t, CheckListingEdit(current, ListingState{Status: ListingStatusAvailable, Quantity: qty(100)}, qty(0)))
	assert.NoError(t, CheckListingEdit(current, ListingState{Status: ListingStatusPending, Quantity: qty(400)}, qty(400)))

	err := CheckListingEdit(current, ListingState{Status: ListingStatusPending, Quantity: qty(300)}, qty(400))
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	err = CheckListingEdit(current, ListingState{Status: ListingStatusAvailable, Quantity: qty(500)}, qty(400))
	assert.ErrorIs(t, err, ErrListingReserved)
}

func TestTransportTransitions(t *testing.T) {
	status, err := TransportStatusRequested.Transition(TransportStatusAssigned)
	require.NoError(t, err)
	status, err = status.Transition(TransportStatusInTransit)
	require.NoError(t, err)

	got, err := status.Transition(TransportStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransportTransition)
	assert.Equal(t, TransportStatusInTransit, got)

	status, err = status.Transition(TransportStatusDelivered)
	require.NoError(t, err)
	assert.True(t, status.IsTerminal())

	same, err := status.Transition(TransportStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, TransportStatusDelivered, same)
}
