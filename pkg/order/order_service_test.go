package order

import (
	"context"
	"io"
	"sync"
	"testing"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu       sync.Mutex
	listings map[string]*entities.WasteListing
	orders   map[string]*entities.Order
	writes   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		listings: map[string]*entities.WasteListing{},
		orders:   map[string]*entities.Order{},
	}
}

type fakeListingRepository struct{ s *memoryStore }

func (f fakeListingRepository) CreateListing(_ context.Context, l *entities.WasteListing) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *l
	f.s.listings[l.ID.String()] = &cp
	return nil
}

func (f fakeListingRepository) GetListingByID(_ context.Context, id string) (*entities.WasteListing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	l, ok := f.s.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f fakeListingRepository) GetListings(context.Context, string, domain.ListingFilter, int, int) ([]*entities.WasteListing, int64, error) {
	return nil, 0, nil
}

func (f fakeListingRepository) UpdateListing(context.Context, *entities.WasteListing, map[string]any) error {
	return nil
}

func (f fakeListingRepository) DeleteListing(context.Context, string) ([]*entities.Order, error) {
	return nil, nil
}

type fakeOrderRepository struct{ s *memoryStore }

func (f fakeOrderRepository) CreateOrder(_ context.Context, o *entities.Order) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	l := f.s.listings[o.ListingID.String()]
	if l.Status != domain.ListingStatusAvailable {
		return domain.ErrListingUnavailable
	}
	cp := *o
	f.s.orders[o.ID.String()] = &cp
	f.s.writes++
	return nil
}

func (f fakeOrderRepository) GetOrderByID(_ context.Context, id string) (*entities.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f fakeOrderRepository) GetOrders(_ context.Context, scope OrderScope, _ domain.OrderFilter, _, _ int) ([]*entities.Order, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var res []*entities.Order
	for _, o := range f.s.orders {
		if scope.BuyerID != "" && o.BuyerID.String() != scope.BuyerID {
			continue
		}
		if scope.FarmerID != "" && o.FarmerID.String() != scope.FarmerID {
			continue
		}
		cp := *o
		res = append(res, &cp)
	}
	return res, int64(len(res)), nil
}

func (f fakeOrderRepository) ApplyStatusChange(_ context.Context, change domain.OrderStatusChange) (*entities.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[change.OrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Version != change.ExpectedVersion || domain.OrderStatus(o.Status) != change.From {
		return nil, domain.ErrVersionConflict
	}
	if l, ok := f.s.listings[o.ListingID.String()]; ok {
		otherConfirmed := decimal.Zero
		for _, other := range f.s.orders {
			if other.ID != o.ID && other.ListingID == l.ID && other.Status == string(domain.OrderStatusConfirmed) {
				otherConfirmed = otherConfirmed.Add(other.Quantity)
			}
		}
		next, err := change.To.ApplyToListing(domain.ListingState{Status: l.Status, Quantity: l.Quantity}, o.Quantity, otherConfirmed)
		if err != nil {
			return nil, err
		}
		l.Status = next.Status
		l.Quantity = next.Quantity
	}

	o.Status = string(change.To)
	o.Version++
	f.s.writes++

	cp := *o
	return &cp, nil
}

func (f fakeOrderRepository) UpdatePaymentStatus(_ context.Context, orderID string, status string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.orders[orderID].PaymentStatus = status
	return nil
}

type fixture struct {
	svc      OrderService
	store    *memoryStore
	recorder *events.Recorder
	farmerID string
	buyerID  string
	listing  *entities.WasteListing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := newMemoryStore()
	recorder := &events.Recorder{}
	farmer := uuid.New()
	listing := &entities.WasteListing{
		ID:        uuid.New(),
		FarmerID:  farmer,
		WasteType: "Rice Straw",
		Quantity:  decimal.NewFromInt(500),
		Unit:      "kg",
		Price:     decimal.NewFromFloat(2.5),
		Location:  "Punjab",
		Status:    domain.ListingStatusAvailable,
		Version:   1,
	}
	store.listings[listing.ID.String()] = listing

	return &fixture{
		svc:      NewOrderService(fakeOrderRepository{store}, fakeListingRepository{store}, recorder, logger),
		store:    store,
		recorder: recorder,
		farmerID: farmer.String(),
		buyerID:  uuid.NewString(),
		listing:  listing,
	}
}

func (f *fixture) order(t *testing.T, quantity float64) *domain.Order {
	t.Helper()
	res, err := f.svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		ListingID: f.listing.ID.String(),
		Quantity:  quantity,
	}, f.buyerID)
	require.NoError(t, err)
	return res
}

func (f *fixture) move(id, status, userID, role string) (*domain.Order, error) {
	return f.svc.UpdateOrderStatus(context.Background(), id, domain.UpdateOrderStatusRequest{Status: status}, userID, role)
}

func TestCreateOrderFullQuantityTotal(t *testing.T) {
	f := newFixture(t)

	res := f.order(t, 500)

	assert.Equal(t, 1250.0, res.TotalAmount)
	assert.Equal(t, string(domain.OrderStatusPending), res.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, res.PaymentStatus)
	assert.Equal(t, "Rice Straw", res.WasteType)
	assert.Equal(t, f.farmerID, res.FarmerID)
	assert.Equal(t, []string{domain.EventOrderCreated}, f.recorder.Types())
	assert.ElementsMatch(t, []string{f.farmerID, f.buyerID}, f.recorder.Events()[0].UserIDs)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, domain.CreateOrderRequest{ListingID: f.listing.ID.String(), Quantity: 501}, f.buyerID)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	_, err = f.svc.CreateOrder(ctx, domain.CreateOrderRequest{ListingID: uuid.NewString(), Quantity: 1}, f.buyerID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	_, err = f.svc.CreateOrder(ctx, domain.CreateOrderRequest{ListingID: f.listing.ID.String(), Quantity: 1}, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrSelfOrder)

	f.listing.Status = domain.ListingStatusSold
	_, err = f.svc.CreateOrder(ctx, domain.CreateOrderRequest{ListingID: f.listing.ID.String(), Quantity: 1}, f.buyerID)
	assert.ErrorIs(t, err, domain.ErrListingUnavailable)
}

func TestOrderLifecycleUpdatesListing(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 200)

	confirmed, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, domain.ListingStatusPending, f.listing.Status)

	completed, err := f.move(o.ID, "completed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, domain.ListingStatusAvailable, f.listing.Status)
	assert.True(t, f.listing.Quantity.Equal(decimal.NewFromInt(300)))
}

func TestCompletingFullQuantitySellsListing(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 500)

	_, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	_, err = f.move(o.ID, "completed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	assert.Equal(t, domain.ListingStatusSold, f.listing.Status)
	assert.True(t, f.listing.Quantity.IsZero())
}

func TestSameTransitionTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)

	first, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	writes := f.store.writes
	eventCount := len(f.recorder.Events())

	second, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, writes, f.store.writes)
	assert.Len(t, f.recorder.Events(), eventCount)
}

func TestCancelledOrderCannotBeCompleted(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)

	cancelled, err := f.move(o.ID, "cancelled", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = f.move(o.ID, "completed", f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	stored, err := f.svc.GetOrderByID(context.Background(), o.ID, f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", stored.Status)
}

func TestTerminalOrdersNeverMove(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)
	_, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	_, err = f.move(o.ID, "completed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	for _, target := range []string{"pending", "confirmed", "cancelled"} {
		_, err := f.move(o.ID, target, uuid.NewString(), domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, target)
	}

	stored := f.store.orders[o.ID]
	assert.Equal(t, "completed", stored.Status)
}

func TestBuyerMayOnlyCancelPendingOrder(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)
	other := f.order(t, 50)

	_, err := f.move(o.ID, "confirmed", f.buyerID, domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	_, err = f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	_, err = f.move(o.ID, "cancelled", f.buyerID, domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	res, err := f.move(other.ID, "cancelled", f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", res.Status)
}

func TestBuyerCannotRepeatFarmerTransition(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)
	_, err := f.move(o.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	_, err = f.move(o.ID, "confirmed", f.buyerID, domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	pending := f.order(t, 50)
	_, err = f.move(pending.ID, "cancelled", f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	writes := f.store.writes

	again, err := f.move(pending.ID, "cancelled", f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", again.Status)
	assert.Equal(t, writes, f.store.writes)
}

func TestConfirmingBeyondListingQuantityIsRejected(t *testing.T) {
	f := newFixture(t)
	first := f.order(t, 400)
	second := f.order(t, 400)

	_, err := f.move(first.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	_, err = f.move(second.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Equal(t, "pending", f.store.orders[second.ID].Status)
	assert.Equal(t, second.Version, f.store.orders[second.ID].Version)

	_, err = f.move(first.ID, "completed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusAvailable, f.listing.Status)
	assert.True(t, f.listing.Quantity.Equal(decimal.NewFromInt(100)))

	_, err = f.move(second.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
}

func TestCancellingKeepsListingPendingWhileOtherOrderConfirmed(t *testing.T) {
	f := newFixture(t)
	first := f.order(t, 100)
	second := f.order(t, 100)

	_, err := f.move(first.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	_, err = f.move(second.ID, "confirmed", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)

	_, err = f.move(first.ID, "cancelled", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusPending, f.listing.Status)

	_, err = f.move(second.ID, "cancelled", f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusAvailable, f.listing.Status)
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)

	_, err := f.svc.UpdateOrderStatus(context.Background(), o.ID, domain.UpdateOrderStatusRequest{
		Status:  "confirmed",
		Version: o.Version + 1,
	}, f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, "pending", f.store.orders[o.ID].Status)

	res, err := f.svc.UpdateOrderStatus(context.Background(), o.ID, domain.UpdateOrderStatusRequest{
		Status:  "confirmed",
		Version: o.Version,
	}, f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, o.Version+1, res.Version)
}

func TestOtherFarmerCannotTouchOrder(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)

	_, err := f.move(o.ID, "confirmed", uuid.NewString(), domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	_, err = f.svc.GetOrderByID(context.Background(), o.ID, uuid.NewString(), domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestUnknownStatusIsRejected(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 100)

	_, err := f.move(o.ID, "shipped", f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderStatus)
}

func TestGetOrdersScopedByRole(t *testing.T) {
	f := newFixture(t)
	f.order(t, 10)
	f.order(t, 20)

	orders, count, err := f.svc.GetOrders(context.Background(), f.farmerID, domain.RoleFarmer, domain.OrderFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, orders, 2)

	_, count, err = f.svc.GetOrders(context.Background(), uuid.NewString(), domain.RoleBuyer, domain.OrderFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, count)
}
