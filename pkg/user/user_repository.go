package user

import (
	"context"
	"errors"

	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"gorm.io/gorm"
)

type (
	UserRepository interface {
		RegisterUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		CheckEmailExists(ctx context.Context, email string) (bool, error)
		UpdateUser(ctx context.Context, user *entities.User, fields map[string]any) error
		GetUserStatus(ctx context.Context, id string) (string, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) RegisterUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser applies fields only if user.Version is still current.
func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User, fields map[string]any) error {
	return utils.UpdateVersioned(r.db.WithContext(ctx), &entities.User{}, user.ID, user.Version, fields)
}

func (r *userRepository) GetUserStatus(ctx context.Context, id string) (string, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Select("status").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return user.Status, err
}
