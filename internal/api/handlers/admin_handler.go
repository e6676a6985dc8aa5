package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/admin"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	AdminHandler interface {
		GetDashboardStats(c *fiber.Ctx) error
		GetUsers(c *fiber.Ctx) error
		UpdateUserStatus(c *fiber.Ctx) error
		ToggleBlock(c *fiber.Ctx) error
		DeleteUser(c *fiber.Ctx) error
	}

	adminHandler struct {
		adminService admin.AdminService
		validator    *validator.Validate
	}
)

func NewAdminHandler(adminService admin.AdminService, validator *validator.Validate) AdminHandler {
	return &adminHandler{
		adminService: adminService,
		validator:    validator,
	}
}

func (h *adminHandler) GetDashboardStats(c *fiber.Ctx) error {
	res, err := h.adminService.GetDashboardStats(c.Context())
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetDashboard, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDashboard)
}

func (h *adminHandler) GetUsers(c *fiber.Ctx) error {
	page, limit := utils.GetPagination(c)
	filter := domain.UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	users, count, err := h.adminService.GetUsers(c.Context(), filter, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetUsers, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"users":      users,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetUsers)
}

func (h *adminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)
	req := new(domain.UpdateUserStatusRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateStatus, err)
	}

	res, err := h.adminService.UpdateUserStatus(c.Context(), c.Params("id"), *req, adminID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStatus)
}

func (h *adminHandler) ToggleBlock(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	res, err := h.adminService.ToggleBlock(c.Context(), c.Params("id"), adminID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUpdateStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateStatus)
}

func (h *adminHandler) DeleteUser(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	res, err := h.adminService.DeleteUser(c.Context(), c.Params("id"), adminID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedDeleteUser, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessDeleteUser)
}
