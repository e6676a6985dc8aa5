package listing

import (
	"context"
	"errors"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ListingRepository interface {
		CreateListing(ctx context.Context, listing *entities.WasteListing) error
		GetListingByID(ctx context.Context, id string) (*entities.WasteListing, error)
		GetListings(ctx context.Context, farmerID string, filter domain.ListingFilter, page, limit int) ([]*entities.WasteListing, int64, error)
		UpdateListing(ctx context.Context, listing *entities.WasteListing, fields map[string]any) error
		DeleteListing(ctx context.Context, id string) ([]*entities.Order, error)
	}

	listingRepository struct {
		db *gorm.DB
	}
)

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{
		db: db,
	}
}

func (r *listingRepository) CreateListing(ctx context.Context, listing *entities.WasteListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) GetListingByID(ctx context.Context, id string) (*entities.WasteListing, error) {
	var listing entities.WasteListing
	if err := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("id = ?", id).
		First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetListings(ctx context.Context, farmerID string, filter domain.ListingFilter, page, limit int) ([]*entities.WasteListing, int64, error) {
	var listings []*entities.WasteListing
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.WasteListing{})
	if farmerID != "" {
		query = query.Where("farmer_id = ?", farmerID)
	}
	if !filter.AnyStatus() {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := filter.SearchPattern()
		query = query.Where("(waste_type ILIKE ? OR description ILIKE ? OR location ILIKE ?)", pattern, pattern, pattern)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Farmer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, count, nil
}

// UpdateListing writes fields while holding the listing row, so a confirmation
// cannot slip in between the reservation check and the write.
func (r *listingRepository) UpdateListing(ctx context.Context, listing *entities.WasteListing, fields map[string]any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored entities.WasteListing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", listing.ID).
			First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrListingNotFound
			}
			return err
		}
		if stored.Version != listing.Version {
			return domain.ErrVersionConflict
		}

		reserved, err := ReservedQuantity(tx, listing.ID.String(), "")
		if err != nil {
			return err
		}
		if err := domain.CheckListingEdit(
			domain.ListingState{Status: stored.Status, Quantity: stored.Quantity},
			domain.ListingState{Status: listing.Status, Quantity: listing.Quantity},
			reserved,
		); err != nil {
			return err
		}

		return utils.UpdateVersioned(tx, &entities.WasteListing{}, listing.ID, listing.Version, fields)
	})
}

// ReservedQuantity sums the quantity held by confirmed orders on a listing,
// leaving out exceptOrderID when it is set.
func ReservedQuantity(tx *gorm.DB, listingID, exceptOrderID string) (decimal.Decimal, error) {
	query := tx.Model(&entities.Order{}).
		Select("SUM(quantity)").
		Where("listing_id = ? AND status = ?", listingID, string(domain.OrderStatusConfirmed))
	if exceptOrderID != "" {
		query = query.Where("id <> ?", exceptOrderID)
	}

	var reserved decimal.NullDecimal
	if err := query.Scan(&reserved).Error; err != nil {
		return decimal.Zero, err
	}
	return reserved.Decimal, nil
}

// DeleteListing removes the listing with its conversations and cancels the
// orders still open against it. Finished orders keep their denormalized copy
// of the listing. The cancelled orders are returned.
func (r *listingRepository) DeleteListing(ctx context.Context, id string) ([]*entities.Order, error) {
	var cancelled []*entities.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing entities.WasteListing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&listing).Error; err != nil {
			return err
		}

		if err := tx.Where("listing_id = ? AND status IN ?", id, openOrderStatuses()).
			Find(&cancelled).Error; err != nil {
			return err
		}
		if len(cancelled) > 0 {
			now := time.Now()
			if err := tx.Model(&entities.Order{}).
				Where("listing_id = ? AND status IN ?", id, openOrderStatuses()).
				Updates(map[string]any{
					"status":       string(domain.OrderStatusCancelled),
					"cancelled_at": now,
					"version":      gorm.Expr("version + 1"),
				}).Error; err != nil {
				return err
			}
			orderIDs := make([]string, 0, len(cancelled))
			for _, o := range cancelled {
				o.Status = string(domain.OrderStatusCancelled)
				o.CancelledAt = &now
				o.Version++
				orderIDs = append(orderIDs, o.ID.String())
			}

			if err := tx.Model(&entities.TransportRequest{}).
				Where("order_id IN ? AND status IN ?", orderIDs, []string{
					string(domain.TransportStatusRequested),
					string(domain.TransportStatusAssigned),
				}).
				Updates(map[string]any{
					"status":  string(domain.TransportStatusCancelled),
					"version": gorm.Expr("version + 1"),
				}).Error; err != nil {
				return err
			}
		}

		conversations := tx.Model(&entities.Conversation{}).Select("id").Where("listing_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", conversations).Delete(&entities.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&entities.Conversation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&listing).Error
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func openOrderStatuses() []string {
	return []string{string(domain.OrderStatusPending), string(domain.OrderStatusConfirmed)}
}
