package admin

import (
	"context"
	"errors"
	"strings"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	// CascadeResult is what a cascading user delete removed, plus the image
	// links that now point at orphaned objects.
	CascadeResult struct {
		Report    domain.UserDeletionReport
		ImageURLs []string
	}

	AdminRepository interface {
		GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error)
		GetUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]*entities.User, int64, error)
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		UpdateUserStatus(ctx context.Context, user *entities.User, status string) error
		DeleteUserCascade(ctx context.Context, id string) (*CascadeResult, error)
	}

	adminRepository struct {
		db *gorm.DB
	}
)

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{
		db: db,
	}
}

type groupCount struct {
	Name  string
	Total int64
}

func (r *adminRepository) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &domain.DashboardStats{
		UsersByRole:    map[string]int64{},
		OrdersByStatus: map[string]int64{},
	}

	var byRole []groupCount
	if err := db.Model(&entities.User{}).
		Select("role AS name, COUNT(*) AS total").
		Group("role").
		Scan(&byRole).Error; err != nil {
		return nil, err
	}
	for _, g := range byRole {
		stats.UsersByRole[g.Name] = g.Total
		stats.TotalUsers += g.Total
	}

	if err := db.Model(&entities.User{}).
		Where("status = ?", domain.UserStatusPending).
		Count(&stats.PendingUsers).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&entities.WasteListing{}).Count(&stats.TotalListings).Error; err != nil {
		return nil, err
	}

	var totalWaste decimal.NullDecimal
	if err := db.Model(&entities.WasteListing{}).
		Select("SUM(quantity)").
		Scan(&totalWaste).Error; err != nil {
		return nil, err
	}
	stats.TotalWaste = totalWaste.Decimal.InexactFloat64()

	var byStatus []groupCount
	if err := db.Model(&entities.Order{}).
		Select("status AS name, COUNT(*) AS total").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, g := range byStatus {
		stats.OrdersByStatus[g.Name] = g.Total
		stats.TotalOrders += g.Total
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&entities.Order{}).
		Select("SUM(total_amount)").
		Where("status = ?", string(domain.OrderStatusCompleted)).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Decimal.InexactFloat64()

	if err := db.Model(&entities.Query{}).
		Where("status = ?", domain.QueryStatusPending).
		Count(&stats.PendingQueries).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&entities.TransportRequest{}).
		Where("status IN ?", []string{
			string(domain.TransportStatusRequested),
			string(domain.TransportStatusAssigned),
			string(domain.TransportStatusInTransit),
		}).
		Count(&stats.ActiveTransports).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *adminRepository) GetUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).Model(&entities.User{})
	if filter.Role != "" && filter.Role != "all" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (r *adminRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminRepository) UpdateUserStatus(ctx context.Context, user *entities.User, status string) error {
	return utils.UpdateVersioned(r.db.WithContext(ctx), &entities.User{}, user.ID, user.Version, map[string]any{
		"status": status,
	})
}

// DeleteUserCascade removes a user together with everything that references
// them, in one transaction. Farmers and buyers go through the same steps;
// the steps that do not apply to a role simply match nothing.
func (r *adminRepository) DeleteUserCascade(ctx context.Context, id string) (*CascadeResult, error) {
	result := &CascadeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		report := &result.Report
		report.UserID = id
		report.Role = user.Role

		var listingIDs []string
		if err := tx.Model(&entities.WasteListing{}).
			Where("farmer_id = ?", id).
			Pluck("id", &listingIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.WasteListing{}).
			Where("farmer_id = ? AND image_url <> ''", id).
			Pluck("image_url", &result.ImageURLs).Error; err != nil {
			return err
		}

		// Listings of other farmers held by this user's confirmed orders.
		var heldListings []string
		if err := tx.Model(&entities.Order{}).
			Where("buyer_id = ? AND status = ?", id, string(domain.OrderStatusConfirmed)).
			Distinct().
			Pluck("listing_id", &heldListings).Error; err != nil {
			return err
		}

		conversations := tx.Model(&entities.Conversation{}).
			Select("id").
			Where("buyer_id = ? OR farmer_id = ? OR listing_id IN (?)", id, id, nonEmpty(listingIDs))
		res := tx.Where("conversation_id IN (?) OR sender_id = ?", conversations, id).Delete(&entities.Message{})
		if res.Error != nil {
			return res.Error
		}
		report.Messages = res.RowsAffected

		res = tx.Where("buyer_id = ? OR farmer_id = ? OR listing_id IN (?)", id, id, nonEmpty(listingIDs)).Delete(&entities.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		report.Conversations = res.RowsAffected

		orders := tx.Model(&entities.Order{}).
			Select("id").
			Where("buyer_id = ? OR farmer_id = ?", id, id)

		res = tx.Where("buyer_id = ? OR farmer_id = ? OR requester_id = ? OR order_id IN (?)", id, id, id, orders).Delete(&entities.TransportRequest{})
		if res.Error != nil {
			return res.Error
		}
		report.Transports = res.RowsAffected

		res = tx.Where("buyer_id = ? OR order_id IN (?)", id, orders).Delete(&entities.Payment{})
		if res.Error != nil {
			return res.Error
		}
		report.Payments = res.RowsAffected

		res = tx.Where("buyer_id = ? OR farmer_id = ?", id, id).Delete(&entities.Order{})
		if res.Error != nil {
			return res.Error
		}
		report.Orders = res.RowsAffected

		res = tx.Where("requester_id = ?", id).Delete(&entities.Query{})
		if res.Error != nil {
			return res.Error
		}
		report.Queries = res.RowsAffected
		if err := tx.Model(&entities.Query{}).
			Where("responded_by = ?", id).
			Update("responded_by", nil).Error; err != nil {
			return err
		}

		res = tx.Where("farmer_id = ?", id).Delete(&entities.PredictionLog{})
		if res.Error != nil {
			return res.Error
		}
		report.PredictionLogs = res.RowsAffected

		res = tx.Where("farmer_id = ?", id).Delete(&entities.WasteListing{})
		if res.Error != nil {
			return res.Error
		}
		report.Listings = res.RowsAffected

		if len(heldListings) > 0 {
			stillHeld := tx.Model(&entities.Order{}).
				Select("listing_id").
				Where("status = ?", string(domain.OrderStatusConfirmed))
			if err := tx.Model(&entities.WasteListing{}).
				Where("id IN ? AND status = ? AND id NOT IN (?)", heldListings, domain.ListingStatusPending, stillHeld).
				Updates(map[string]any{
					"status":  domain.ListingStatusAvailable,
					"version": gorm.Expr("version + 1"),
				}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&entities.User{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// nonEmpty keeps an IN clause valid when there is nothing to match.
func nonEmpty(ids []string) []string {
	if len(ids) == 0 {
		return []string{"00000000-0000-0000-0000-000000000000"}
	}
	return ids
}
