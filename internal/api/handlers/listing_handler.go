package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/listing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ListingHandler interface {
		CreateListing(c *fiber.Ctx) error
		GetListings(c *fiber.Ctx) error
		GetMyListings(c *fiber.Ctx) error
		GetListing(c *fiber.Ctx) error
		UpdateListing(c *fiber.Ctx) error
		DeleteListing(c *fiber.Ctx) error
		UploadListingImage(c *fiber.Ctx) error
	}

	listingHandler struct {
		listingService listing.ListingService
		validator      *validator.Validate
	}
)

func NewListingHandler(listingService listing.ListingService, validator *validator.Validate) ListingHandler {
	return &listingHandler{
		listingService: listingService,
		validator:      validator,
	}
}

func (h *listingHandler) CreateListing(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateListingRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateListing, err)
	}

	res, err := h.listingService.CreateListing(c.Context(), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedCreateListing, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateListing)
}

// GetListings is the marketplace view: every farmer's listings, narrowed by
// search and status.
func (h *listingHandler) GetListings(c *fiber.Ctx) error {
	filter, err := domain.NewListingFilter(c.Query("search"), c.Query("status", domain.ListingStatusAll))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetListings, err)
	}
	page, limit := utils.GetPagination(c)

	listings, count, err := h.listingService.GetListings(c.Context(), filter, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetListings, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"listings":   listings,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetListings)
}

func (h *listingHandler) GetMyListings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	filter, err := domain.NewListingFilter(c.Query("search"), c.Query("status", domain.ListingStatusAll))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetListings, err)
	}
	page, limit := utils.GetPagination(c)

	listings, count, err := h.listingService.GetFarmerListings(c.Context(), userID, filter, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetListings, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"listings":   listings,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetListings)
}

func (h *listingHandler) GetListing(c *fiber.Ctx) error {
	res, err := h.listingService.GetListingByID(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetListing, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetListing)
}

func (h *listingHandler) UpdateListing(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateListingRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateListing, err)
	}

	res, err := h.listingService.UpdateListing(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUpdateListing, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateListing)
}

func (h *listingHandler) DeleteListing(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role := c.Locals("role").(string)

	if err := h.listingService.DeleteListing(c.Context(), c.Params("id"), userID, role); err != nil {
		return errorResponse(c, domain.MessageFailedDeleteListing, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteListing)
}

func (h *listingHandler) UploadListingImage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UploadListingImageRequest)

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadImage, err)
	}

	res, err := h.listingService.UploadListingImage(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedUploadImage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUploadImage)
}
