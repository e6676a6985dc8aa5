package routes

import (
	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/internal/api/handlers"
	"AgriWaste-Marketplace/internal/middleware"
	"AgriWaste-Marketplace/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	ListingHandler    handlers.ListingHandler
	OrderHandler      handlers.OrderHandler
	QueryHandler      handlers.QueryHandler
	PredictionHandler handlers.PredictionHandler
	ChatHandler       handlers.ChatHandler
	TransportHandler  handlers.TransportHandler
	AdminHandler      handlers.AdminHandler
	EventHandler      handlers.EventHandler
	MidtransHandler   handlers.MidtransHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Listings()
	c.Orders()
	c.Queries()
	c.Predictions()
	c.Chats()
	c.Transports()
	c.Admin()
	c.Events()
	c.GuestRoute()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Post("/send_verify", c.UserHandler.SendVerificationEmail)
		user.Get("/verify", c.UserHandler.VerifyEmail)
		user.Get("/me", c.auth(), c.UserHandler.Me)
		user.Patch("/update", c.auth(), c.UserHandler.UpdateUser)
		user.Post("/forget", c.UserHandler.ForgotPassword)
		user.Post("/reset", c.UserHandler.ResetPassword)
		user.Get("/google/login", c.UserHandler.GoogleLogin)
		user.Get("/google/callback", c.UserHandler.GoogleCallback)
	}
}

func (c *Config) Listings() {
	listings := c.App.Group("/api/v1/listings", c.auth())
	farmer := c.Middleware.RoleMiddleware(domain.RoleFarmer)

	listings.Get("", c.ListingHandler.GetListings)
	listings.Get("/mine", farmer, c.ListingHandler.GetMyListings)
	listings.Get("/:id", c.ListingHandler.GetListing)
	listings.Post("", farmer, c.ListingHandler.CreateListing)
	listings.Put("/:id", farmer, c.ListingHandler.UpdateListing)
	listings.Post("/:id/image", farmer, c.ListingHandler.UploadListingImage)
	listings.Delete("/:id", c.Middleware.RoleMiddleware(domain.RoleFarmer, domain.RoleAdmin), c.ListingHandler.DeleteListing)
}

func (c *Config) Orders() {
	orders := c.App.Group("/api/v1/orders", c.auth())

	orders.Post("", c.Middleware.RoleMiddleware(domain.RoleBuyer), c.OrderHandler.CreateOrder)
	orders.Get("", c.OrderHandler.GetOrders)
	orders.Get("/:id", c.OrderHandler.GetOrder)
	orders.Patch("/:id/status", c.OrderHandler.UpdateOrderStatus)
	orders.Post("/:id/pay", c.Middleware.RoleMiddleware(domain.RoleBuyer), c.MidtransHandler.CreateOrderPayment)
}

func (c *Config) Queries() {
	queries := c.App.Group("/api/v1/queries", c.auth())
	adminOnly := c.Middleware.RoleMiddleware(domain.RoleAdmin)

	queries.Post("", c.Middleware.RoleMiddleware(domain.RoleFarmer, domain.RoleBuyer), c.QueryHandler.CreateQuery)
	queries.Get("/mine", c.QueryHandler.GetMyQueries)
	queries.Get("", adminOnly, c.QueryHandler.GetQueries)
	queries.Patch("/:id/respond", adminOnly, c.QueryHandler.RespondQuery)
}

func (c *Config) Predictions() {
	predictions := c.App.Group("/api/v1/predictions", c.auth(), c.Middleware.RoleMiddleware(domain.RoleFarmer))

	predictions.Get("/options", c.PredictionHandler.GetOptions)
	predictions.Get("/history", c.PredictionHandler.GetHistory)
	predictions.Post("/waste", c.PredictionHandler.PredictWaste)
	predictions.Post("/price", c.PredictionHandler.PredictPrice)
}

func (c *Config) Chats() {
	chats := c.App.Group("/api/v1/chats", c.auth())

	chats.Post("", c.Middleware.RoleMiddleware(domain.RoleBuyer), c.ChatHandler.StartConversation)
	chats.Get("", c.ChatHandler.GetConversations)
	chats.Get("/:id/messages", c.ChatHandler.GetMessages)
	chats.Post("/:id/messages", c.ChatHandler.SendMessage)
	chats.Patch("/:id/read", c.ChatHandler.MarkAsRead)
}

func (c *Config) Transports() {
	transports := c.App.Group("/api/v1/transports", c.auth())

	transports.Post("", c.Middleware.RoleMiddleware(domain.RoleFarmer, domain.RoleBuyer), c.TransportHandler.CreateTransport)
	transports.Get("", c.TransportHandler.GetTransports)
	transports.Get("/:id", c.TransportHandler.GetTransport)
	transports.Patch("/:id/assign", c.Middleware.RoleMiddleware(domain.RoleAdmin), c.TransportHandler.AssignTransport)
	transports.Patch("/:id/status", c.TransportHandler.UpdateTransportStatus)
}

func (c *Config) Admin() {
	admin := c.App.Group("/api/v1/admin", c.auth(), c.Middleware.RoleMiddleware(domain.RoleAdmin))

	admin.Get("/dashboard", c.AdminHandler.GetDashboardStats)
	admin.Get("/users", c.AdminHandler.GetUsers)
	admin.Patch("/users/:id/status", c.AdminHandler.UpdateUserStatus)
	admin.Patch("/users/:id/toggle-block", c.AdminHandler.ToggleBlock)
	admin.Delete("/users/:id", c.AdminHandler.DeleteUser)
}

func (c *Config) Events() {
	c.App.Get("/api/v1/events", c.auth(), c.EventHandler.Stream)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Post("/webhook/midtrans", c.MidtransHandler.HandleNotification)
}
