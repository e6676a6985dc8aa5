package query

import (
	"context"

	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils"

	"gorm.io/gorm"
)

type (
	QueryRepository interface {
		CreateQuery(ctx context.Context, query *entities.Query) error
		GetQueryByID(ctx context.Context, id string) (*entities.Query, error)
		GetQueries(ctx context.Context, requesterID string, status string, page, limit int) ([]*entities.Query, int64, error)
		UpdateQuery(ctx context.Context, query *entities.Query, fields map[string]any) error
	}

	queryRepository struct {
		db *gorm.DB
	}
)

func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{
		db: db,
	}
}

func (r *queryRepository) CreateQuery(ctx context.Context, query *entities.Query) error {
	return r.db.WithContext(ctx).Create(query).Error
}

func (r *queryRepository) GetQueryByID(ctx context.Context, id string) (*entities.Query, error) {
	var query entities.Query
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("id = ?", id).
		First(&query).Error; err != nil {
		return nil, err
	}
	return &query, nil
}

func (r *queryRepository) GetQueries(ctx context.Context, requesterID string, status string, page, limit int) ([]*entities.Query, int64, error) {
	var queries []*entities.Query
	var count int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&entities.Query{})
	if requesterID != "" {
		q = q.Where("requester_id = ?", requesterID)
	}
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := q.
		Preload("Requester").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&queries).Error; err != nil {
		return nil, 0, err
	}

	return queries, count, nil
}

// UpdateQuery only succeeds while the stored version still matches
// query.Version.
func (r *queryRepository) UpdateQuery(ctx context.Context, query *entities.Query, fields map[string]any) error {
	return utils.UpdateVersioned(r.db.WithContext(ctx), &entities.Query{}, query.ID, query.Version, fields)
}
