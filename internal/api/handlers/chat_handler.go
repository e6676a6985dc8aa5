package handlers

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/pkg/chat"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ChatHandler interface {
		StartConversation(c *fiber.Ctx) error
		GetConversations(c *fiber.Ctx) error
		GetMessages(c *fiber.Ctx) error
		SendMessage(c *fiber.Ctx) error
		MarkAsRead(c *fiber.Ctx) error
	}

	chatHandler struct {
		chatService chat.ChatService
		validator   *validator.Validate
	}
)

func NewChatHandler(chatService chat.ChatService, validator *validator.Validate) ChatHandler {
	return &chatHandler{
		chatService: chatService,
		validator:   validator,
	}
}

func (h *chatHandler) StartConversation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.StartConversationRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedStartConversation, err)
	}

	res, err := h.chatService.StartConversation(c.Context(), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedStartConversation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessStartConversation)
}

func (h *chatHandler) GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := utils.GetPagination(c)

	conversations, count, err := h.chatService.GetConversations(c.Context(), userID, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetConversations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"conversations": conversations,
		"pagination":    utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetConversations)
}

func (h *chatHandler) GetMessages(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := utils.GetPagination(c)

	messages, count, err := h.chatService.GetMessages(c.Context(), c.Params("id"), userID, page, limit)
	if err != nil {
		return errorResponse(c, domain.MessageFailedGetMessages, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"messages":   messages,
		"pagination": utils.PaginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetMessages)
}

func (h *chatHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SendMessageRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSendMessage, err)
	}

	res, err := h.chatService.SendMessage(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return errorResponse(c, domain.MessageFailedSendMessage, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSendMessage)
}

func (h *chatHandler) MarkAsRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.chatService.MarkAsRead(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, domain.MessageFailedMarkAsRead, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessMarkAsRead)
}
