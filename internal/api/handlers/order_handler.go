package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/order"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	OrderHandler interface {
		CreateOrder(c *fiber.Ctx) error
		GetOrders(c *fiber.Ctx) error
		GetOrder(c *fiber.Ctx) error
		UpdateOrderStatus(c *fiber.Ctx) error
	}

	orderHandler struct {
		orderService order.OrderService
		validator    *validator.Validate
	}
)

func NewOrderHandler(orderService order.OrderService, validator *validator.Validate) OrderHandler {
	return &orderHandler{
		orderService: orderService,
		validator:    validator,
	}
}

func (h *orderHandler) CreateOrder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateOrderRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateOrder, err)
	}

	res, err := h.orderService.CreateOrder(c.Context(), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedCreateOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateOrder)
}

func (h *orderHandler) GetOrders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	page, limit := utils.GetPagination(c)

	filter := domain.OrderFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	orders, count, err := h.orderService.GetOrders(c.Context(), userID, role, filter, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetOrders, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"orders":     orders,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetOrders)
}

func (h *orderHandler) GetOrder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)

	res, err := h.orderService.GetOrderByID(c.Context(), c.Params("id"), userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetOrder, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetOrder)
}

func (h *orderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	req := new(domain.UpdateOrderStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateOrderStatus, err)
	}

	res, err := h.orderService.UpdateOrderStatus(c.Context(), c.Params("id"), *req, userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUpdateOrderStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateOrderStatus)
}
