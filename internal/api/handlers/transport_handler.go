package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/transport"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TransportHandler interface {
		CreateTransport(c *fiber.Ctx) error
		GetTransports(c *fiber.Ctx) error
		GetTransport(c *fiber.Ctx) error
		AssignTransport(c *fiber.Ctx) error
		UpdateTransportStatus(c *fiber.Ctx) error
	}

	transportHandler struct {
		transportService transport.TransportService
		validator        *validator.Validate
	}
)

func NewTransportHandler(transportService transport.TransportService, validator *validator.Validate) TransportHandler {
	return &transportHandler{
		transportService: transportService,
		validator:        validator,
	}
}

func (h *transportHandler) CreateTransport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	req := new(domain.CreateTransportRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateTransport, err)
	}

	res, err := h.transportService.CreateTransport(c.Context(), *req, userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedCreateTransport, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateTransport)
}

func (h *transportHandler) GetTransports(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	page, limit := utils.GetPagination(c)

	transports, count, err := h.transportService.GetTransports(c.Context(), userID, role, c.Query("status"), page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetTransports, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"transports": transports,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetTransports)
}

func (h *transportHandler) GetTransport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)

	res, err := h.transportService.GetTransportByID(c.Context(), c.Params("id"), userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetTransports, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTransports)
}

func (h *transportHandler) AssignTransport(c *fiber.Ctx) error {
	role := c.Locals("role").(string)
	req := new(domain.AssignTransportRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAssignTransport, err)
	}

	res, err := h.transportService.AssignTransport(c.Context(), c.Params("id"), *req, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedAssignTransport, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAssignTransport)
}

func (h *transportHandler) UpdateTransportStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	req := new(domain.UpdateTransportStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateTransportStatus, err)
	}

	res, err := h.transportService.UpdateTransportStatus(c.Context(), c.Params("id"), *req, userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUpdateTransportStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateTransportStatus)
}
