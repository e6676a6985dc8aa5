package domain

import (
	"errors"
	"time"
)

const (
	PredictionKindWaste = "waste"
	PredictionKindPrice = "price"
)

var (
	MessageSuccessPredictWaste = "waste prediction generated successfully"
	MessageSuccessPredictPrice = "price prediction generated successfully"
	MessageSuccessGetHistory   = "prediction history retrieved successfully"
	MessageSuccessGetOptions   = "prediction options retrieved successfully"

	MessageFailedPredictWaste = "failed to predict waste"
	MessageFailedPredictPrice = "failed to predict price"
	MessageFailedGetHistory   = "failed to retrieve prediction history"

	ErrPredictionMissingFields = errors.New("crop type, waste type and farm size are required")
	ErrPredictionMissingWaste  = errors.New("predicted waste is required, run the waste prediction first")
	ErrPredictionFailed        = errors.New("prediction service error")
	ErrPredictionUnavailable   = errors.New("prediction service unavailable")
)

var (
	CropOptions  = []string{"Soybean", "Wheat", "Sugarcane", "Rice", "Sunflower", "Barley"}
	WasteOptions = []string{"Husks", "Leaves", "Stalks", "Residues", "Straw"}
)

type (
	PredictWasteRequest struct {
		CropType  string  `json:"cropType"`
		WasteType string  `json:"wasteType"`
		FarmSize  float64 `json:"farmSize"`
	}

	PredictPriceRequest struct {
		CropType       string  `json:"cropType"`
		WasteType      string  `json:"wasteType"`
		FarmSize       float64 `json:"farmSize"`
		PredictedWaste float64 `json:"predictedWaste"`
	}

	// PredictionResponse is the body returned by the prediction endpoint.
	PredictionResponse struct {
		Success        bool    `json:"success"`
		PredictedWaste float64 `json:"predictedWaste,omitempty"`
		WastePrice     float64 `json:"wastePrice,omitempty"`
		Error          string  `json:"error,omitempty"`
	}

	WastePrediction struct {
		CropType       string  `json:"crop_type"`
		WasteType      string  `json:"waste_type"`
		FarmSize       float64 `json:"farm_size"`
		PredictedWaste float64 `json:"predicted_waste"`
	}

	PricePrediction struct {
		CropType       string  `json:"crop_type"`
		WasteType      string  `json:"waste_type"`
		FarmSize       float64 `json:"farm_size"`
		PredictedWaste float64 `json:"predicted_waste"`
		WastePrice     float64 `json:"waste_price"`
	}

	PredictionOptions struct {
		Crops  []string `json:"crops"`
		Wastes []string `json:"wastes"`
	}

	PredictionHistory struct {
		ID             string    `json:"id"`
		Kind           string    `json:"kind"`
		CropType       string    `json:"crop_type"`
		WasteType      string    `json:"waste_type"`
		FarmSize       float64   `json:"farm_size"`
		PredictedWaste float64   `json:"predicted_waste"`
		WastePrice     float64   `json:"waste_price,omitempty"`
		CreatedAt      time.Time `json:"created_at"`
	}
)

func (r PredictWasteRequest) Validate() error {
	if r.CropType == "" || r.WasteType == "" || r.FarmSize <= 0 {
		return ErrPredictionMissingFields
	}
	return nil
}

func (r PredictPriceRequest) Validate() error {
	if r.CropType == "" || r.WasteType == "" || r.FarmSize <= 0 {
		return ErrPredictionMissingFields
	}
	if r.PredictedWaste <= 0 {
		return ErrPredictionMissingWaste
	}
	return nil
}
