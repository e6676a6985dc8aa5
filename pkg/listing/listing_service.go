package listing

import (
	"context"
	"errors"
	"fmt"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils/storage"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	ListingService interface {
		CreateListing(ctx context.Context, req domain.CreateListingRequest, farmerID string) (*domain.Listing, error)
		GetListings(ctx context.Context, filter domain.ListingFilter, page, limit int) ([]*domain.Listing, int64, error)
		GetFarmerListings(ctx context.Context, farmerID string, filter domain.ListingFilter, page, limit int) ([]*domain.Listing, int64, error)
		GetListingByID(ctx context.Context, id string) (*domain.Listing, error)
		UpdateListing(ctx context.Context, id string, req domain.UpdateListingRequest, farmerID string) (*domain.Listing, error)
		DeleteListing(ctx context.Context, id string, userID string, role string) error
		UploadListingImage(ctx context.Context, id string, req domain.UploadListingImageRequest, farmerID string) (*domain.Listing, error)
	}

	listingService struct {
		listingRepository ListingRepository
		userRepository    user.UserRepository
		s3                storage.AwsS3
		publisher         events.Publisher
		log               *logrus.Logger
	}
)

func NewListingService(
	listingRepository ListingRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
	publisher events.Publisher,
	logger *logrus.Logger,
) ListingService {
	return &listingService{
		listingRepository: listingRepository,
		userRepository:    userRepository,
		s3:                s3,
		publisher:         publisher,
		log:               logger,
	}
}

func (s *listingService) CreateListing(ctx context.Context, req domain.CreateListingRequest, farmerID string) (*domain.Listing, error) {
	farmerUUID, err := uuid.Parse(farmerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	status, err := s.userRepository.GetUserStatus(ctx, farmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if status != domain.UserStatusActive {
		return nil, domain.ErrAccountNotActive
	}

	availableFrom, err := domain.ParseAvailableFrom(req.AvailableFrom)
	if err != nil {
		return nil, err
	}

	listing := &entities.WasteListing{
		ID:            uuid.New(),
		FarmerID:      farmerUUID,
		WasteType:     req.WasteType,
		Description:   req.Description,
		Quantity:      decimal.NewFromFloat(req.Quantity),
		Unit:          req.Unit,
		Price:         decimal.NewFromFloat(req.Price),
		Location:      req.Location,
		AvailableFrom: availableFrom,
		Status:        domain.ListingStatusAvailable,
		Version:       1,
	}
	if err := s.listingRepository.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	res := ToListing(listing)
	s.publisher.Publish(domain.NewEvent(domain.EventListingCreated, res, farmerID).ToRoles(domain.RoleBuyer))
	s.log.WithFields(logrus.Fields{"listing_id": res.ID, "farmer_id": farmerID}).Info("waste listing created")

	return res, nil
}

func (s *listingService) GetListings(ctx context.Context, filter domain.ListingFilter, page, limit int) ([]*domain.Listing, int64, error) {
	return s.list(ctx, "", filter, page, limit)
}

func (s *listingService) GetFarmerListings(ctx context.Context, farmerID string, filter domain.ListingFilter, page, limit int) ([]*domain.Listing, int64, error) {
	return s.list(ctx, farmerID, filter, page, limit)
}

func (s *listingService) list(ctx context.Context, farmerID string, filter domain.ListingFilter, page, limit int) ([]*domain.Listing, int64, error) {
	listings, count, err := s.listingRepository.GetListings(ctx, farmerID, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		result = append(result, ToListing(l))
	}
	return result, count, nil
}

func (s *listingService) GetListingByID(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToListing(listing), nil
}

func (s *listingService) UpdateListing(ctx context.Context, id string, req domain.UpdateListingRequest, farmerID string) (*domain.Listing, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.FarmerID.String() != farmerID {
		return nil, domain.ErrUnauthorizedListingEdit
	}
	if req.Version != listing.Version {
		return nil, domain.ErrVersionConflict
	}

	fields := map[string]any{}
	if req.WasteType != "" {
		listing.WasteType = req.WasteType
		fields["waste_type"] = req.WasteType
	}
	if req.Description != nil {
		listing.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Quantity > 0 {
		listing.Quantity = decimal.NewFromFloat(req.Quantity)
		fields["quantity"] = listing.Quantity
	}
	if req.Unit != "" {
		listing.Unit = req.Unit
		fields["unit"] = req.Unit
	}
	if req.Price > 0 {
		listing.Price = decimal.NewFromFloat(req.Price)
		fields["price"] = listing.Price
	}
	if req.Location != "" {
		listing.Location = req.Location
		fields["location"] = req.Location
	}
	if req.AvailableFrom != "" {
		availableFrom, err := domain.ParseAvailableFrom(req.AvailableFrom)
		if err != nil {
			return nil, err
		}
		listing.AvailableFrom = availableFrom
		fields["available_from"] = availableFrom
	}
	if req.Status != "" {
		// pending is only ever set by order confirmation.
		if req.Status != domain.ListingStatusAvailable && req.Status != domain.ListingStatusSold {
			return nil, domain.ErrInvalidListingStatus
		}
		listing.Status = req.Status
		fields["status"] = req.Status
	}

	if len(fields) == 0 {
		return ToListing(listing), nil
	}
	if err := s.listingRepository.UpdateListing(ctx, listing, fields); err != nil {
		return nil, err
	}
	listing.Version++

	res := ToListing(listing)
	s.publisher.Publish(domain.NewEvent(domain.EventListingUpdated, res, farmerID).ToRoles(domain.RoleBuyer))
	return res, nil
}

func (s *listingService) DeleteListing(ctx context.Context, id string, userID string, role string) error {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin && listing.FarmerID.String() != userID {
		return domain.ErrUnauthorizedListingEdit
	}

	cancelled, err := s.listingRepository.DeleteListing(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrListingNotFound
		}
		return err
	}

	if listing.ImageURL != "" && s.s3 != nil {
		if key := s.s3.GetObjectKeyFromLink(listing.ImageURL); key != "" {
			if err := s.s3.DeleteFile(key); err != nil {
				s.log.WithError(err).WithField("listing_id", id).Warn("failed to delete listing image")
			}
		}
	}

	for _, o := range cancelled {
		s.publisher.Publish(domain.NewEvent(domain.EventOrderUpdated, cancelledOrderPayload(o), o.BuyerID.String(), o.FarmerID.String()))
	}
	s.publisher.Publish(domain.NewEvent(domain.EventListingDeleted, map[string]string{"id": id}, listing.FarmerID.String()).ToRoles(domain.RoleBuyer))

	s.log.WithFields(logrus.Fields{
		"listing_id":       id,
		"deleted_by":       userID,
		"cancelled_orders": len(cancelled),
	}).Info("waste listing deleted")
	return nil
}

func (s *listingService) UploadListingImage(ctx context.Context, id string, req domain.UploadListingImageRequest, farmerID string) (*domain.Listing, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.FarmerID.String() != farmerID {
		return nil, domain.ErrUnauthorizedListingEdit
	}

	var objectKey string
	existingKey := s.s3.GetObjectKeyFromLink(listing.ImageURL)
	if existingKey != "" {
		objectKey, err = s.s3.UpdateFile(existingKey, req.Image, storage.AllowImage...)
	} else {
		objectKey, err = s.s3.UploadFile(fmt.Sprintf("listing-%s", listing.ID.String()), req.Image, "listings", storage.AllowImage...)
	}
	if err != nil {
		return nil, err
	}

	listing.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	if err := s.listingRepository.UpdateListing(ctx, listing, map[string]any{"image_url": listing.ImageURL}); err != nil {
		return nil, err
	}
	listing.Version++

	res := ToListing(listing)
	s.publisher.Publish(domain.NewEvent(domain.EventListingUpdated, res, farmerID).ToRoles(domain.RoleBuyer))
	return res, nil
}

func (s *listingService) getListing(ctx context.Context, id string) (*entities.WasteListing, error) {
	listing, err := s.listingRepository.GetListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// cancelledOrderPayload is the order view sent when a listing
// deletion cancels an order.
func cancelledOrderPayload(o *entities.Order) map[string]any {
	return map[string]any{
		"id":         o.ID.String(),
		"listing_id": o.ListingID.String(),
		"status":     o.Status,
		"version":    o.Version,
	}
}

func ToListing(l *entities.WasteListing) *domain.Listing {
	res := &domain.Listing{
		ID:            l.ID.String(),
		FarmerID:      l.FarmerID.String(),
		WasteType:     l.WasteType,
		Description:   l.Description,
		Quantity:      l.Quantity.InexactFloat64(),
		Unit:          l.Unit,
		Price:         l.Price.InexactFloat64(),
		Location:      l.Location,
		AvailableFrom: l.AvailableFrom,
		ImageURL:      l.ImageURL,
		Status:        l.Status,
		Version:       l.Version,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if l.Farmer != nil {
		res.FarmerName = l.Farmer.Name
	}
	return res
}
