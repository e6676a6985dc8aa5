package transport

import (
	"context"
	"io"
	"testing"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/order"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryTransports struct {
	transports map[string]*entities.TransportRequest
	writes     int
}

func (m *memoryTransports) CreateTransport(_ context.Context, t *entities.TransportRequest) error {
	for _, existing := range m.transports {
		if existing.OrderID == t.OrderID && !domain.TransportStatus(existing.Status).IsTerminal() {
			return domain.ErrTransportAlreadyRequested
		}
	}
	cp := *t
	m.transports[t.ID.String()] = &cp
	return nil
}

func (m *memoryTransports) GetTransportByID(_ context.Context, id string) (*entities.TransportRequest, error) {
	t, ok := m.transports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryTransports) GetTransports(_ context.Context, scope TransportScope, status string, _, _ int) ([]*entities.TransportRequest, int64, error) {
	var res []*entities.TransportRequest
	for _, t := range m.transports {
		if scope.BuyerID != "" && t.BuyerID.String() != scope.BuyerID {
			continue
		}
		if scope.FarmerID != "" && t.FarmerID.String() != scope.FarmerID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		res = append(res, t)
	}
	return res, int64(len(res)), nil
}

func (m *memoryTransports) ApplyStatusChange(ctx context.Context, change domain.TransportStatusChange) (*entities.TransportRequest, error) {
	t := m.transports[change.TransportID]
	if t.Version != change.ExpectedVersion {
		return nil, domain.ErrVersionConflict
	}
	m.writes++
	t.Status = string(change.To)
	if change.DriverName != "" {
		t.DriverName = change.DriverName
		t.DriverPhone = change.DriverPhone
	}
	if change.To == domain.TransportStatusDelivered {
		at := change.At
		t.DeliveredAt = &at
	}
	t.Version++
	return m.GetTransportByID(ctx, change.TransportID)
}

type memoryOrders struct {
	order.OrderRepository
	orders map[string]*entities.Order
}

func (m *memoryOrders) GetOrderByID(_ context.Context, id string) (*entities.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

type transportFixture struct {
	svc      TransportService
	store    *memoryTransports
	recorder *events.Recorder
	order    *entities.Order
	buyerID  string
	farmerID string
}

func newTransportFixture(t *testing.T) *transportFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	o := &entities.Order{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		FarmerID: uuid.New(),
		Status:   string(domain.OrderStatusConfirmed),
	}
	store := &memoryTransports{transports: map[string]*entities.TransportRequest{}}
	orders := &memoryOrders{orders: map[string]*entities.Order{o.ID.String(): o}}
	recorder := &events.Recorder{}

	svc := NewTransportService(store, orders, recorder, logger).(*transportService)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }

	return &transportFixture{
		svc:      svc,
		store:    store,
		recorder: recorder,
		order:    o,
		buyerID:  o.BuyerID.String(),
		farmerID: o.FarmerID.String(),
	}
}

func (f *transportFixture) request(t *testing.T) *domain.Transport {
	t.Helper()
	res, err := f.svc.CreateTransport(context.Background(), domain.CreateTransportRequest{
		OrderID:       f.order.ID.String(),
		PickupAddress: "Farm 12, Ludhiana",
		DropAddress:   "Mill Road, Jalandhar",
		VehicleType:   "truck",
		ScheduledAt:   "2024-05-03T08:00:00Z",
	}, f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	return res
}

func TestTransportLifecycle(t *testing.T) {
	f := newTransportFixture(t)
	ctx := context.Background()
	tr := f.request(t)
	assert.Equal(t, string(domain.TransportStatusRequested), tr.Status)

	tr, err := f.svc.AssignTransport(ctx, tr.ID, domain.AssignTransportRequest{DriverName: "Gurpreet", DriverPhone: "9876543210"}, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TransportStatusAssigned), tr.Status)
	assert.Equal(t, "Gurpreet", tr.DriverName)

	tr, err = f.svc.UpdateTransportStatus(ctx, tr.ID, domain.UpdateTransportStatusRequest{Status: "in_transit", Version: tr.Version}, f.farmerID, domain.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TransportStatusInTransit), tr.Status)

	tr, err = f.svc.UpdateTransportStatus(ctx, tr.ID, domain.UpdateTransportStatusRequest{Status: "delivered"}, f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, string(domain.TransportStatusDelivered), tr.Status)
	require.NotNil(t, tr.DeliveredAt)
	assert.Equal(t, 4, tr.Version)
	assert.Len(t, f.recorder.Events(), 4)
}

func TestTransportRequiresConfirmedOrder(t *testing.T) {
	f := newTransportFixture(t)
	f.order.Status = string(domain.OrderStatusPending)

	_, err := f.svc.CreateTransport(context.Background(), domain.CreateTransportRequest{
		OrderID:     f.order.ID.String(),
		ScheduledAt: "2024-05-03T08:00:00Z",
	}, f.buyerID, domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrTransportOrderNotConfirmed)
}

func TestTransportValidation(t *testing.T) {
	f := newTransportFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTransport(ctx, domain.CreateTransportRequest{
		OrderID:     f.order.ID.String(),
		ScheduledAt: "next monday",
	}, f.buyerID, domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrInvalidTransportSchedule)

	_, err = f.svc.CreateTransport(ctx, domain.CreateTransportRequest{
		OrderID:     f.order.ID.String(),
		ScheduledAt: "2024-05-03T08:00:00Z",
	}, uuid.NewString(), domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	f.request(t)
	_, err = f.svc.CreateTransport(ctx, domain.CreateTransportRequest{
		OrderID:     f.order.ID.String(),
		ScheduledAt: "2024-05-03T08:00:00Z",
	}, f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrTransportAlreadyRequested)
}

func TestTransportRolesAndTerminalStates(t *testing.T) {
	f := newTransportFixture(t)
	ctx := context.Background()
	tr := f.request(t)

	_, err := f.svc.AssignTransport(ctx, tr.ID, domain.AssignTransportRequest{DriverName: "A", DriverPhone: "12345678"}, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	_, err = f.svc.UpdateTransportStatus(ctx, tr.ID, domain.UpdateTransportStatusRequest{Status: "in_transit"}, f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrInvalidTransportTransition)

	tr, err = f.svc.UpdateTransportStatus(ctx, tr.ID, domain.UpdateTransportStatusRequest{Status: "cancelled"}, f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	writes := f.store.writes

	again, err := f.svc.UpdateTransportStatus(ctx, tr.ID, domain.UpdateTransportStatusRequest{Status: "cancelled"}, f.buyerID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, tr.Version, again.Version)
	assert.Equal(t, writes, f.store.writes)

	_, err = f.svc.AssignTransport(ctx, tr.ID, domain.AssignTransportRequest{DriverName: "A", DriverPhone: "12345678"}, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidTransportTransition)
	assert.Equal(t, string(domain.TransportStatusCancelled), f.store.transports[tr.ID].Status)
}

func TestTransportStaleVersion(t *testing.T) {
	f := newTransportFixture(t)
	tr := f.request(t)

	_, err := f.svc.AssignTransport(context.Background(), tr.ID, domain.AssignTransportRequest{
		DriverName:  "A",
		DriverPhone: "12345678",
		Version:     tr.Version + 1,
	}, domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Zero(t, f.store.writes)
}

func TestGetTransportsScopedByRole(t *testing.T) {
	f := newTransportFixture(t)
	f.request(t)
	ctx := context.Background()

	res, _, err := f.svc.GetTransports(ctx, f.farmerID, domain.RoleFarmer, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, _, err = f.svc.GetTransports(ctx, uuid.NewString(), domain.RoleBuyer, "", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, res)

	_, _, err = f.svc.GetTransports(ctx, f.farmerID, domain.RoleFarmer, "lost", 1, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidTransportStatus)
}
