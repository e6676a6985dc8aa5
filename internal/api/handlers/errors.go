package handlers

import (
	"errors"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"

	"github.com/gofiber/fiber/v2"
)

var (
	notFoundErrors = []error{
		domain.ErrUserNotFound,
		domain.ErrListingNotFound,
		domain.ErrOrderNotFound,
		domain.ErrQueryNotFound,
		domain.ErrConversationNotFound,
		domain.ErrTransportNotFound,
		domain.ErrPaymentNotFound,
	}

	forbiddenErrors = []error{
		domain.ErrUserNotAllowed,
		domain.ErrUnauthorizedListingEdit,
		domain.ErrAccountBlocked,
		domain.ErrAccountNotActive,
		domain.ErrCannotDeleteSelf,
		domain.ErrCannotChangeOwnStatus,
		domain.ErrCannotModifyOtherAdmin,
	}

	conflictErrors = []error{
		domain.ErrVersionConflict,
		domain.ErrEmailAlreadyExists,
		domain.ErrQueryAlreadyResolved,
		domain.ErrTransportAlreadyRequested,
		domain.ErrOrderAlreadyPaid,
		domain.ErrAlreadyVerified,
	}

	unprocessableErrors = []error{
		domain.ErrInvalidStatusTransition,
		domain.ErrInvalidTransportTransition,
		domain.ErrListingUnavailable,
		domain.ErrInsufficientQuantity,
		domain.ErrListingReserved,
		domain.ErrTransportOrderNotConfirmed,
		domain.ErrOrderNotPayable,
	}

	unauthorizedErrors = []error{
		domain.ErrCredentialsNotMatched,
		domain.ErrTokenExpired,
		domain.ErrTokenInvalid,
		domain.ErrTokenNotFound,
	}

	badGatewayErrors = []error{
		domain.ErrPredictionFailed,
		domain.ErrPredictionUnavailable,
		domain.ErrPaymentFailed,
	}
)

// errorStatus maps a service error onto an HTTP status. Anything not
// recognised is treated as a bad request.
func errorStatus(err error) int {
	switch {
	case matchesAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case matchesAny(err, forbiddenErrors):
		return fiber.StatusForbidden
	case matchesAny(err, conflictErrors):
		return fiber.StatusConflict
	case matchesAny(err, unprocessableErrors):
		return fiber.StatusUnprocessableEntity
	case matchesAny(err, unauthorizedErrors):
		return fiber.StatusUnauthorized
	case matchesAny(err, badGatewayErrors):
		return fiber.StatusBadGateway
	}
	return fiber.StatusBadRequest
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorResponse(c *fiber.Ctx, message string, err error) error {
	return presenters.ErrorResponse(c, errorStatus(err), message, err)
}
