package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/prediction"

	"github.com/gofiber/fiber/v2"
)

type (
	PredictionHandler interface {
		PredictWaste(c *fiber.Ctx) error
		PredictPrice(c *fiber.Ctx) error
		GetOptions(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
	}

	predictionHandler struct {
		predictionService prediction.PredictionService
	}
)

func NewPredictionHandler(predictionService prediction.PredictionService) PredictionHandler {
	return &predictionHandler{
		predictionService: predictionService,
	}
}

// Request bodies are checked by Validate on the service side so a missing
// field never reaches the prediction server.
func (h *predictionHandler) PredictWaste(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.PredictWasteRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.predictionService.PredictWaste(c.Context(), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedPredictWaste, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPredictWaste)
}

func (h *predictionHandler) PredictPrice(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.PredictPriceRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.predictionService.PredictPrice(c.Context(), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedPredictPrice, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPredictPrice)
}

func (h *predictionHandler) GetOptions(c *fiber.Ctx) error {
	return presenters.SuccessResponse(c, h.predictionService.GetOptions(), fiber.StatusOK, domain.MessageSuccessGetOptions)
}

func (h *predictionHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := utils.GetPagination(c)

	history, count, err := h.predictionService.GetHistory(c.Context(), userID, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetHistory, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"history":    history,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetHistory)
}
