package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/query"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	QueryHandler interface {
		CreateQuery(c *fiber.Ctx) error
		GetMyQueries(c *fiber.Ctx) error
		GetQueries(c *fiber.Ctx) error
		RespondQuery(c *fiber.Ctx) error
	}

	queryHandler struct {
		queryService query.QueryService
		validator    *validator.Validate
	}
)

func NewQueryHandler(queryService query.QueryService, validator *validator.Validate) QueryHandler {
	return &queryHandler{
		queryService: queryService,
		validator:    validator,
	}
}

func (h *queryHandler) CreateQuery(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	req := new(domain.CreateQueryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateQuery, err)
	}

	res, err := h.queryService.CreateQuery(c.Context(), *req, userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedCreateQuery, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateQuery)
}

func (h *queryHandler) GetMyQueries(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := utils.GetPagination(c)

	queries, count, err := h.queryService.GetMyQueries(c.Context(), userID, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetQueries, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"queries":    queries,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetQueries)
}

func (h *queryHandler) GetQueries(c *fiber.Ctx) error {
	page, limit := utils.GetPagination(c)

	queries, count, err := h.queryService.GetQueries(c.Context(), c.Query("status"), page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetQueries, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"queries":    queries,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetQueries)
}

func (h *queryHandler) RespondQuery(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)
	req := new(domain.RespondQueryRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRespondQuery, err)
	}

	res, err := h.queryService.RespondQuery(c.Context(), c.Params("id"), *req, userID, role)
	if err != nil {
		return errorResponse(c, domain.MessageFailedRespondQuery, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessRespondQuery)
}
