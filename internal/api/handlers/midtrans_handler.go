package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/pkg/midtrans"

	"github.com/gofiber/fiber/v2"
)

type (
	MidtransHandler interface {
		CreateOrderPayment(c *fiber.Ctx) error
		HandleNotification(c *fiber.Ctx) error
	}

	midtransHandler struct {
		midtransService midtrans.MidtransService
	}
)

func NewMidtransHandler(midtransService midtrans.MidtransService) MidtransHandler {
	return &midtransHandler{
		midtransService: midtransService,
	}
}

func (h *midtransHandler) CreateOrderPayment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.midtransService.CreateOrderPayment(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedCreatePayment, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreatePayment)
}

// HandleNotification is the Midtrans webhook. The notification body is only
// used to find the payment; its status is re-read from the gateway.
func (h *midtransHandler) HandleNotification(c *fiber.Ctx) error {
	req := new(domain.MidtransNotification)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.midtransService.HandleNotification(c.Context(), *req); err != nil {
		return errorResponse(c, domain.MessageFailedNotification, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessNotification)
}
