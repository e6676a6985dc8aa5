package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AgriWaste-Marketplace/domain"

	"github.com/sirupsen/logrus"
)

type (
	// PredictionClient talks to the waste and price prediction service.
	PredictionClient interface {
		PredictWaste(ctx context.Context, req domain.PredictWasteRequest) (float64, error)
		PredictPrice(ctx context.Context, req domain.PredictPriceRequest) (float64, error)
	}

	predictionClient struct {
		baseURL    string
		httpClient *http.Client
		log        *logrus.Logger
	}
)

func NewPredictionClient(baseURL string, timeout time.Duration, logger *logrus.Logger) PredictionClient {
	return &predictionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

func (c *predictionClient) PredictWaste(ctx context.Context, req domain.PredictWasteRequest) (float64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	res, err := c.post(ctx, "/api/predict", req)
	if err != nil {
		return 0, err
	}
	return res.PredictedWaste, nil
}

func (c *predictionClient) PredictPrice(ctx context.Context, req domain.PredictPriceRequest) (float64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	res, err := c.post(ctx, "/api/predict_price", req)
	if err != nil {
		return 0, err
	}
	return res.WastePrice, nil
}

func (c *predictionClient) post(ctx context.Context, path string, payload any) (*domain.PredictionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.WithError(err).WithField("url", url).Error("prediction request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPredictionUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPredictionUnavailable, err)
	}

	c.log.WithFields(logrus.Fields{
		"url":         url,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("prediction response received")

	var res domain.PredictionResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", domain.ErrPredictionFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: invalid response body", domain.ErrPredictionFailed)
	}

	if !res.Success || resp.StatusCode != http.StatusOK {
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrPredictionFailed, msg)
	}

	return &res, nil
}

// IsUpstreamError reports whether err came from the prediction service
// rather than from request validation.
func IsUpstreamError(err error) bool {
	return errors.Is(err, domain.ErrPredictionFailed) || errors.Is(err, domain.ErrPredictionUnavailable)
}
