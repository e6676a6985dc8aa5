package admin

import (
	"context"
	"errors"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/utils/storage"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/user"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	AdminService interface {
		GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error)
		GetUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.UserResponse, int64, error)
		UpdateUserStatus(ctx context.Context, id string, req domain.UpdateUserStatusRequest, adminID string) (domain.UserResponse, error)
		ToggleBlock(ctx context.Context, id string, adminID string) (domain.UserResponse, error)
		DeleteUser(ctx context.Context, id string, adminID string) (*domain.UserDeletionReport, error)
	}

	adminService struct {
		adminRepository AdminRepository
		s3              storage.AwsS3
		publisher       events.Publisher
		log             *logrus.Logger
	}
)

func NewAdminService(
	adminRepository AdminRepository,
	s3 storage.AwsS3,
	publisher events.Publisher,
	logger *logrus.Logger,
) AdminService {
	return &adminService{
		adminRepository: adminRepository,
		s3:              s3,
		publisher:       publisher,
		log:             logger,
	}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	return s.adminRepository.GetDashboardStats(ctx)
}

func (s *adminService) GetUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.UserResponse, int64, error) {
	if filter.Role != "" && filter.Role != "all" && !domain.IsValidRole(filter.Role) {
		return nil, 0, domain.ErrInvalidRole
	}
	if filter.Status != "" && filter.Status != "all" && !domain.IsValidUserStatus(filter.Status) {
		return nil, 0, domain.ErrInvalidUserStatus
	}

	users, count, err := s.adminRepository.GetUsers(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, user.ToUserResponse(u))
	}
	return result, count, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, id string, req domain.UpdateUserStatusRequest, adminID string) (domain.UserResponse, error) {
	if !domain.IsValidUserStatus(req.Status) {
		return domain.UserResponse{}, domain.ErrInvalidUserStatus
	}
	return s.setStatus(ctx, id, adminID, func(string) string { return req.Status })
}

// ToggleBlock blocks an unblocked user and reactivates a blocked one.
func (s *adminService) ToggleBlock(ctx context.Context, id string, adminID string) (domain.UserResponse, error) {
	return s.setStatus(ctx, id, adminID, func(current string) string {
		if current == domain.UserStatusBlocked {
			return domain.UserStatusActive
		}
		return domain.UserStatusBlocked
	})
}

func (s *adminService) setStatus(ctx context.Context, id, adminID string, next func(current string) string) (domain.UserResponse, error) {
	if id == adminID {
		return domain.UserResponse{}, domain.ErrCannotChangeOwnStatus
	}

	u, err := s.adminRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	if u.Role == domain.RoleAdmin {
		return domain.UserResponse{}, domain.ErrCannotModifyOtherAdmin
	}

	status := next(u.Status)
	if status == u.Status {
		return user.ToUserResponse(u), nil
	}
	if err := s.adminRepository.UpdateUserStatus(ctx, u, status); err != nil {
		return domain.UserResponse{}, err
	}
	previous := u.Status
	u.Status = status
	u.Version++

	res := user.ToUserResponse(u)
	s.publisher.Publish(domain.NewEvent(domain.EventUserUpdated, res, u.ID.String()))
	s.log.WithFields(logrus.Fields{
		"user_id":  id,
		"from":     previous,
		"to":       status,
		"admin_id": adminID,
	}).Info("user status changed")

	return res, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string, adminID string) (*domain.UserDeletionReport, error) {
	if id == adminID {
		return nil, domain.ErrCannotDeleteSelf
	}

	u, err := s.adminRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if u.Role == domain.RoleAdmin {
		return nil, domain.ErrCannotModifyOtherAdmin
	}

	result, err := s.adminRepository.DeleteUserCascade(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.s3 != nil {
		images := result.ImageURLs
		if u.ProfilePicture != "" {
			images = append(images, u.ProfilePicture)
		}
		for _, link := range images {
			key := s.s3.GetObjectKeyFromLink(link)
			if key == "" {
				continue
			}
			if err := s.s3.DeleteFile(key); err != nil {
				s.log.WithError(err).WithField("key", key).Warn("failed to delete orphaned image")
			}
		}
	}

	if result.Report.Listings > 0 {
		s.publisher.Publish(domain.NewEvent(domain.EventListingDeleted, map[string]string{"farmer_id": id}).ToRoles(domain.RoleBuyer))
	}
	s.log.WithFields(logrus.Fields{
		"user_id":       id,
		"role":          result.Report.Role,
		"listings":      result.Report.Listings,
		"orders":        result.Report.Orders,
		"conversations": result.Report.Conversations,
		"admin_id":      adminID,
	}).Info("user deleted")

	return &result.Report, nil
}
