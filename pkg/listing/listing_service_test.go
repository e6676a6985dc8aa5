package listing

import (
	"context"
	"io"
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

type fakeListingRepository struct {
	listings map[string]*entities.WasteListing
	orders   []*entities.Order
}

func (f *fakeListingRepository) CreateListing(_ context.Context, l *entities.WasteListing) error {
	cp := *l
	f.listings[l.ID.String()] = &cp
	return nil
}

func (f *fakeListingRepository) GetListingByID(_ context.Context, id string) (*entities.WasteListing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepository) GetListings(_ context.Context, farmerID string, filter domain.ListingFilter, _, _ int) ([]*entities.WasteListing, int64, error) {
	var res []*entities.WasteListing
	for _, l := range f.listings {
		if farmerID != "" && l.FarmerID.String() != farmerID {
			continue
		}
		if !filter.Matches(*ToListing(l)) {
			continue
		}
		res = append(res, l)
	}
	return res, int64(len(res)), nil
}

func (f *fakeListingRepository) UpdateListing(_ context.Context, l *entities.WasteListing, fields map[string]any) error {
	stored := f.listings[l.ID.String()]
	if stored.Version != l.Version {
		return domain.ErrVersionConflict
	}
	reserved := decimal.Zero
	for _, o := range f.orders {
		if o.ListingID == l.ID && o.Status == string(domain.OrderStatusConfirmed) {
			reserved = reserved.Add(o.Quantity)
		}
	}
	if err := domain.CheckListingEdit(
		domain.ListingState{Status: stored.Status, Quantity: stored.Quantity},
		domain.ListingState{Status: l.Status, Quantity: l.Quantity},
		reserved,
	); err != nil {
		return err
	}
	cp := *l
	cp.Version++
	f.listings[l.ID.String()] = &cp
	return nil
}

func (f *fakeListingRepository) DeleteListing(_ context.Context, id string) ([]*entities.Order, error) {
	if _, ok := f.listings[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.listings, id)
	return f.orders, nil
}

type fakeUserRepository struct {
	statuses map[string]string
}

func (f *fakeUserRepository) RegisterUser(context.Context, *entities.User) error { return nil }

func (f *fakeUserRepository) GetUserByID(context.Context, string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) GetUserByEmail(context.Context, string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) CheckEmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeUserRepository) UpdateUser(context.Context, *entities.User, map[string]any) error {
	return nil
}

func (f *fakeUserRepository) GetUserStatus(_ context.Context, id string) (string, error) {
	status, ok := f.statuses[id]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return status, nil
}

type listingFixture struct {
	svc      ListingService
	repo     *fakeListingRepository
	users    *fakeUserRepository
	recorder *events.Recorder
	farmerID string
}

func newListingFixture(t *testing.T) *listingFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	farmerID := uuid.NewString()
	repo := &fakeListingRepository{listings: map[string]*entities.WasteListing{}}
	users := &fakeUserRepository{statuses: map[string]string{farmerID: domain.UserStatusActive}}
	recorder := &events.Recorder{}

	return &listingFixture{
		svc:      NewListingService(repo, users, nil, recorder, logger),
		repo:     repo,
		users:    users,
		recorder: recorder,
		farmerID: farmerID,
	}
}

func createRequest(wasteType, location string) domain.CreateListingRequest {
	return domain.CreateListingRequest{
		WasteType: wasteType,
		Quantity:  500,
		Unit:      "kg",
		Price:     2.5,
		Location:  location,
	}
}

func TestCreateListing(t *testing.T) {
	f := newListingFixture(t)

	res, err := f.svc.CreateListing(context.Background(), createRequest("Rice Straw", "Punjab"), f.farmerID)
	require.NoError(t, err)

	assert.Equal(t, domain.ListingStatusAvailable, res.Status)
	assert.Equal(t, 1, res.Version)
	assert.Equal(t, 500.0, res.Quantity)
	assert.Equal(t, 2.5, res.Price)
	require.Len(t, f.recorder.Events(), 1)
	assert.Equal(t, []string{domain.RoleBuyer}, f.recorder.Events()[0].Roles)
}

func TestCreateListingRequiresActiveFarmer(t *testing.T) {
	f := newListingFixture(t)
	f.users.statuses[f.farmerID] = domain.UserStatusPending

	_, err := f.svc.CreateListing(context.Background(), createRequest("Rice Straw", "Punjab"), f.farmerID)
	assert.ErrorIs(t, err, domain.ErrAccountNotActive)

	_, err = f.svc.CreateListing(context.Background(), createRequest("Rice Straw", "Punjab"), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateListingRejectsBadDate(t *testing.T) {
	f := newListingFixture(t)
	req := createRequest("Rice Straw", "Punjab")
	req.AvailableFrom = "tomorrow"

	_, err := f.svc.CreateListing(context.Background(), req, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrInvalidAvailableFrom)
}

func TestUpdateListingVersionCheck(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateListing(ctx, createRequest("Rice Straw", "Punjab"), f.farmerID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Price: 3, Version: 1}, f.farmerID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Price)
	assert.Equal(t, 2, updated.Version)

	_, err = f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Price: 4, Version: 1}, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	_, err = f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Price: 4, Version: 2}, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedListingEdit)
}

func TestUpdateListingHeldByConfirmedOrder(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateListing(ctx, createRequest("Rice Straw", "Punjab"), f.farmerID)
	require.NoError(t, err)

	stored := f.repo.listings[created.ID]
	stored.Status = domain.ListingStatusPending
	f.repo.orders = []*entities.Order{{
		ID:        uuid.New(),
		ListingID: stored.ID,
		Quantity:  decimal.NewFromInt(400),
		Status:    string(domain.OrderStatusConfirmed),
	}}

	_, err = f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Quantity: 300, Version: 1}, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	_, err = f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Status: "available", Version: 1}, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrListingReserved)

	_, err = f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Status: "pending", Version: 1}, f.farmerID)
	assert.ErrorIs(t, err, domain.ErrInvalidListingStatus)

	assert.Equal(t, domain.ListingStatusPending, f.repo.listings[created.ID].Status)
	assert.True(t, f.repo.listings[created.ID].Quantity.Equal(decimal.NewFromInt(500)))

	updated, err := f.svc.UpdateListing(ctx, created.ID, domain.UpdateListingRequest{Quantity: 450, Price: 3, Version: 1}, f.farmerID)
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Quantity)
	assert.Equal(t, domain.ListingStatusPending, updated.Status)
}

func TestGetFarmerListingsFiltersBySearchAndStatus(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	for _, wt := range []string{"Rice Straw", "Rice Husk", "Corn Stalks"} {
		_, err := f.svc.CreateListing(ctx, createRequest(wt, "Punjab"), f.farmerID)
		require.NoError(t, err)
	}
	for _, l := range f.repo.listings {
		if l.WasteType == "Rice Husk" {
			l.Status = domain.ListingStatusSold
		}
	}

	filter, err := domain.NewListingFilter("rice", "available")
	require.NoError(t, err)
	res, count, err := f.svc.GetFarmerListings(ctx, f.farmerID, filter, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "Rice Straw", res[0].WasteType)

	res, _, err = f.svc.GetFarmerListings(ctx, uuid.NewString(), domain.ListingFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestDeleteListingPublishesCancelledOrders(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateListing(ctx, createRequest("Rice Straw", "Punjab"), f.farmerID)
	require.NoError(t, err)

	buyer := uuid.New()
	f.repo.orders = []*entities.Order{{ID: uuid.New(), BuyerID: buyer, FarmerID: uuid.MustParse(f.farmerID), Status: "cancelled"}}

	err = f.svc.DeleteListing(ctx, created.ID, uuid.NewString(), domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedListingEdit)

	require.NoError(t, f.svc.DeleteListing(ctx, created.ID, f.farmerID, domain.RoleFarmer))
	assert.Empty(t, f.repo.listings)
	assert.Equal(t, []string{
		domain.EventListingCreated,
		domain.EventOrderUpdated,
		domain.EventListingDeleted,
	}, f.recorder.Types())

	err = f.svc.DeleteListing(ctx, created.ID, f.farmerID, domain.RoleFarmer)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestAdminMayDeleteAnyListing(t *testing.T) {
	f := newListingFixture(t)
	created, err := f.svc.CreateListing(context.Background(), createRequest("Rice Straw", "Punjab"), f.farmerID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteListing(context.Background(), created.ID, uuid.NewString(), domain.RoleAdmin))
	assert.Empty(t, f.repo.listings)
}
