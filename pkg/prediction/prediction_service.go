package prediction

import (
	"context"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type (
	PredictionService interface {
		PredictWaste(ctx context.Context, req domain.PredictWasteRequest, farmerID string) (*domain.WastePrediction, error)
		PredictPrice(ctx context.Context, req domain.PredictPriceRequest, farmerID string) (*domain.PricePrediction, error)
		GetOptions() domain.PredictionOptions
		GetHistory(ctx context.Context, farmerID string, page, limit int) ([]*domain.PredictionHistory, int64, error)
	}

	predictionService struct {
		client               PredictionClient
		predictionRepository PredictionRepository
		log                  *logrus.Logger
	}
)

func NewPredictionService(client PredictionClient, predictionRepository PredictionRepository, logger *logrus.Logger) PredictionService {
	return &predictionService{
		client:               client,
		predictionRepository: predictionRepository,
		log:                  logger,
	}
}

func (s *predictionService) PredictWaste(ctx context.Context, req domain.PredictWasteRequest, farmerID string) (*domain.WastePrediction, error) {
	farmerUUID, err := uuid.Parse(farmerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	predicted, err := s.client.PredictWaste(ctx, req)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &entities.PredictionLog{
		ID:             uuid.New(),
		FarmerID:       farmerUUID,
		Kind:           domain.PredictionKindWaste,
		CropType:       req.CropType,
		WasteType:      req.WasteType,
		FarmSize:       req.FarmSize,
		PredictedWaste: predicted,
	})

	return &domain.WastePrediction{
		CropType:       req.CropType,
		WasteType:      req.WasteType,
		FarmSize:       req.FarmSize,
		PredictedWaste: predicted,
	}, nil
}

func (s *predictionService) PredictPrice(ctx context.Context, req domain.PredictPriceRequest, farmerID string) (*domain.PricePrediction, error) {
	farmerUUID, err := uuid.Parse(farmerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	price, err := s.client.PredictPrice(ctx, req)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &entities.PredictionLog{
		ID:             uuid.New(),
		FarmerID:       farmerUUID,
		Kind:           domain.PredictionKindPrice,
		CropType:       req.CropType,
		WasteType:      req.WasteType,
		FarmSize:       req.FarmSize,
		PredictedWaste: req.PredictedWaste,
		WastePrice:     price,
	})

	return &domain.PricePrediction{
		CropType:       req.CropType,
		WasteType:      req.WasteType,
		FarmSize:       req.FarmSize,
		PredictedWaste: req.PredictedWaste,
		WastePrice:     price,
	}, nil
}

// record stores a successful prediction. A failed write does not fail the
// prediction itself.
func (s *predictionService) record(ctx context.Context, log *entities.PredictionLog) {
	if err := s.predictionRepository.CreateLog(ctx, log); err != nil {
		s.log.WithError(err).WithField("farmer_id", log.FarmerID.String()).Warn("failed to store prediction history")
	}
}

func (s *predictionService) GetOptions() domain.PredictionOptions {
	return domain.PredictionOptions{
		Crops:  domain.CropOptions,
		Wastes: domain.WasteOptions,
	}
}

func (s *predictionService) GetHistory(ctx context.Context, farmerID string, page, limit int) ([]*domain.PredictionHistory, int64, error) {
	if _, err := uuid.Parse(farmerID); err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	logs, count, err := s.predictionRepository.GetLogs(ctx, farmerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.PredictionHistory, 0, len(logs))
	for _, l := range logs {
		result = append(result, &domain.PredictionHistory{
			ID:             l.ID.String(),
			Kind:           l.Kind,
			CropType:       l.CropType,
			WasteType:      l.WasteType,
			FarmSize:       l.FarmSize,
			PredictedWaste: l.PredictedWaste,
			WastePrice:     l.WastePrice,
			CreatedAt:      l.CreatedAt,
		})
	}
	return result, count, nil
}
