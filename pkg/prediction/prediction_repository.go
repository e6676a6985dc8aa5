package prediction

import (
	"context"

	"AgriWaste-Marketplace/entities"

	"gorm.io/gorm"
)

type (
	PredictionRepository interface {
		CreateLog(ctx context.Context, log *entities.PredictionLog) error
		GetLogs(ctx context.Context, farmerID string, page, limit int) ([]*entities.PredictionLog, int64, error)
	}

	predictionRepository struct {
		db *gorm.DB
	}
)

func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{
		db: db,
	}
}

func (r *predictionRepository) CreateLog(ctx context.Context, log *entities.PredictionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *predictionRepository) GetLogs(ctx context.Context, farmerID string, page, limit int) ([]*entities.PredictionLog, int64, error) {
	var logs []*entities.PredictionLog
	var count int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&entities.PredictionLog{}).Where("farmer_id = ?", farmerID)
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, count, nil
}
