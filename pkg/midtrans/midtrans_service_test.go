package midtrans

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/order"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	requests []*snap.Request
	status   string
	err      error
}

func (g *fakeGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

func (g *fakeGateway) CheckTransaction(string) (*coreapi.TransactionStatusResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &coreapi.TransactionStatusResponse{TransactionStatus: g.status}, nil
}

type memoryPayments struct {
	order.OrderRepository
	orders   map[string]*entities.Order
	payments map[string]*entities.Payment
}

func (m *memoryPayments) GetOrderByID(_ context.Context, id string) (*entities.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *memoryPayments) UpdatePaymentStatus(_ context.Context, orderID string, status string) error {
	m.orders[orderID].PaymentStatus = status
	return nil
}

func (m *memoryPayments) CreatePayment(_ context.Context, p *entities.Payment) error {
	m.payments[p.GatewayOrderID] = p
	return nil
}

func (m *memoryPayments) GetPaymentByGatewayOrderID(_ context.Context, id string) (*entities.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p.Order = m.orders[p.OrderID.String()]
	return p, nil
}

// paymentStore exposes memoryPayments as a MidtransRepository, whose
// UpdatePaymentStatus differs from the order repository's.
type paymentStore struct {
	*memoryPayments
}

func (s paymentStore) UpdatePaymentStatus(_ context.Context, p *entities.Payment, gatewayStatus, orderStatus string) error {
	p.Status = gatewayStatus
	s.orders[p.OrderID.String()].PaymentStatus = orderStatus
	return nil
}

func newPaymentFixture(t *testing.T) (MidtransService, *memoryPayments, *fakeGateway, *events.Recorder, *entities.Order) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	o := &entities.Order{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		FarmerID:      uuid.New(),
		ListingID:     uuid.New(),
		WasteType:     "Rice Straw",
		Unit:          "kg",
		Quantity:      decimal.NewFromInt(500),
		TotalAmount:   decimal.NewFromInt(1250),
		Status:        string(domain.OrderStatusConfirmed),
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
	store := &memoryPayments{
		orders:   map[string]*entities.Order{o.ID.String(): o},
		payments: map[string]*entities.Payment{},
	}
	gateway := &fakeGateway{}
	recorder := &events.Recorder{}

	svc := NewMidtransService(paymentStore{store}, store, gateway, recorder, logger).(*midtransService)
	svc.now = func() time.Time { return time.Unix(1714600000, 0) }
	return svc, store, gateway, recorder, o
}

func TestCreateOrderPayment(t *testing.T) {
	svc, store, gateway, _, o := newPaymentFixture(t)

	res, err := svc.CreateOrderPayment(context.Background(), o.ID.String(), o.BuyerID.String())
	require.NoError(t, err)

	assert.Equal(t, "snap-token", res.Token)
	assert.Equal(t, 1250.0, res.Amount)
	require.Len(t, gateway.requests, 1)
	assert.Equal(t, int64(1250), gateway.requests[0].TransactionDetails.GrossAmt)
	assert.Equal(t, domain.PaymentStatusPending, o.PaymentStatus)
	assert.Len(t, store.payments, 1)
}

func TestCreateOrderPaymentRules(t *testing.T) {
	svc, _, gateway, _, o := newPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.CreateOrderPayment(ctx, o.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	o.Status = string(domain.OrderStatusPending)
	_, err = svc.CreateOrderPayment(ctx, o.ID.String(), o.BuyerID.String())
	assert.ErrorIs(t, err, domain.ErrOrderNotPayable)

	o.Status = string(domain.OrderStatusConfirmed)
	o.PaymentStatus = domain.PaymentStatusPaid
	_, err = svc.CreateOrderPayment(ctx, o.ID.String(), o.BuyerID.String())
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)

	o.PaymentStatus = domain.PaymentStatusUnpaid
	gateway.err = errors.New("401 unauthorized")
	_, err = svc.CreateOrderPayment(ctx, o.ID.String(), o.BuyerID.String())
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)
}

func TestHandleNotificationUsesVerifiedStatus(t *testing.T) {
	svc, store, gateway, recorder, o := newPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.CreateOrderPayment(ctx, o.ID.String(), o.BuyerID.String())
	require.NoError(t, err)
	var gatewayOrderID string
	for id := range store.payments {
		gatewayOrderID = id
	}

	gateway.status = "settlement"
	err = svc.HandleNotification(ctx, domain.MidtransNotification{
		OrderID:           gatewayOrderID,
		TransactionStatus: "deny",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "settlement", store.payments[gatewayOrderID].Status)
	require.Len(t, recorder.Events(), 1)
	assert.ElementsMatch(t, []string{o.BuyerID.String(), o.FarmerID.String()}, recorder.Events()[0].UserIDs)

	err = svc.HandleNotification(ctx, domain.MidtransNotification{OrderID: "AGW-unknown"})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestItemNameKeepsWholeCharacters(t *testing.T) {
	o := &entities.Order{
		Quantity:  decimal.NewFromInt(120),
		Unit:      "kg",
		WasteType: strings.Repeat("水稻秸秆", 15),
	}

	name := itemName(o)
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 50, utf8.RuneCountInString(name))
	assert.True(t, strings.HasPrefix(name, "120 kg 水稻秸秆"))

	o.WasteType = "水稻秸秆"
	assert.Equal(t, "120 kg 水稻秸秆", itemName(o))
}
