package middleware

import (
	"context"
	"strings"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/presenters"
	"AgriWaste-Marketplace/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type (
	// UserStatusReader looks up the current account status of a user.
	UserStatusReader interface {
		GetUserStatus(ctx context.Context, id string) (string, error)
	}

	Middleware interface {
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		RoleMiddleware(roles ...string) fiber.Handler
		CORSMiddleware() fiber.Handler
	}

	middleware struct {
		statusReader UserStatusReader
		log          *logrus.Logger
	}
)

func NewMiddleware(statusReader UserStatusReader, logger *logrus.Logger) Middleware {
	return &middleware{
		statusReader: statusReader,
		log:          logger,
	}
}

// AuthMiddleware accepts a bearer token, or a token query parameter for
// clients such as EventSource that cannot set headers. The account status
// is re-read on every request so blocking takes effect immediately.
func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		userID, role, err := jwtService.GetUserIDByToken(token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		if m.statusReader != nil {
			status, err := m.statusReader.GetUserStatus(c.Context(), userID)
			if err != nil {
				m.log.WithError(err).WithField("user_id", userID).Warn("token for unknown user")
				return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrUserNotFound)
			}
			if status == domain.UserStatusBlocked {
				return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageAccountBlocked, domain.ErrAccountBlocked)
			}
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	}
}

func (m *middleware) RoleMiddleware(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MessageUserNotAllowed, domain.ErrUserNotAllowed)
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
