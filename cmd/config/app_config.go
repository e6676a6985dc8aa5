package config

import (
	"context"
	"os"
	"time"

	"AgriWaste-Marketplace/internal/api/handlers"
	"AgriWaste-Marketplace/internal/api/routes"
	"AgriWaste-Marketplace/internal/middleware"
	"AgriWaste-Marketplace/internal/utils"
	"AgriWaste-Marketplace/internal/utils/mailing"
	"AgriWaste-Marketplace/internal/utils/storage"
	"AgriWaste-Marketplace/pkg/admin"
	"AgriWaste-Marketplace/pkg/chat"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/jwt"
	"AgriWaste-Marketplace/pkg/listing"
	"AgriWaste-Marketplace/pkg/midtrans"
	"AgriWaste-Marketplace/pkg/order"
	"AgriWaste-Marketplace/pkg/prediction"
	"AgriWaste-Marketplace/pkg/query"
	"AgriWaste-Marketplace/pkg/transport"
	"AgriWaste-Marketplace/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewApp wires every repository, service and handler onto a fiber app. The
// returned broker must be closed on shutdown so open event streams end.
func NewApp(db *gorm.DB, log *logrus.Logger) (*fiber.App, events.Broker, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, nil, err
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
		// event streams stay open, so they must not count against the window
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/events"
		},
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer, err := mailing.NewMailer(context.Background())
	if err != nil {
		return nil, nil, err
	}
	broker := events.NewBroker(log)
	google := user.NewGoogleProvider(
		utils.GetConfig("GOOGLE_CLIENT_ID"),
		utils.GetConfig("GOOGLE_CLIENT_SECRET"),
		utils.GetConfig("GOOGLE_REDIRECT_URL"),
	)
	gateway := midtrans.NewMidtransGateway(utils.GetConfig("SERVER_KEY"), utils.GetConfig("IsProd") == "true")
	predictionClient := prediction.NewPredictionClient(
		utils.GetConfig("PREDICTION_URL"),
		time.Duration(utils.GetConfigInt("PREDICTION_TIMEOUT_SECONDS", 30))*time.Second,
		log,
	)

	// Repository
	userRepository := user.NewUserRepository(db)
	listingRepository := listing.NewListingRepository(db)
	orderRepository := order.NewOrderRepository(db)
	queryRepository := query.NewQueryRepository(db)
	predictionRepository := prediction.NewPredictionRepository(db)
	chatRepository := chat.NewChatRepository(db)
	transportRepository := transport.NewTransportRepository(db)
	midtransRepository := midtrans.NewMidtransRepository(db)
	adminRepository := admin.NewAdminRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	userService := user.NewUserService(userRepository, jwtService, s3, mailer, google, utils.GetConfig("APP_URL"), log)
	listingService := listing.NewListingService(listingRepository, userRepository, s3, broker, log)
	orderService := order.NewOrderService(orderRepository, listingRepository, broker, log)
	queryService := query.NewQueryService(queryRepository, mailer, broker, log)
	predictionService := prediction.NewPredictionService(predictionClient, predictionRepository, log)
	chatService := chat.NewChatService(chatRepository, listingRepository, broker, log)
	transportService := transport.NewTransportService(transportRepository, orderRepository, broker, log)
	midtransService := midtrans.NewMidtransService(midtransRepository, orderRepository, gateway, broker, log)
	adminService := admin.NewAdminService(adminRepository, s3, broker, log)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	listingHandler := handlers.NewListingHandler(listingService, validator)
	orderHandler := handlers.NewOrderHandler(orderService, validator)
	queryHandler := handlers.NewQueryHandler(queryService, validator)
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	chatHandler := handlers.NewChatHandler(chatService, validator)
	transportHandler := handlers.NewTransportHandler(transportService, validator)
	adminHandler := handlers.NewAdminHandler(adminService, validator)
	eventHandler := handlers.NewEventHandler(broker, log)
	midtransHandler := handlers.NewMidtransHandler(midtransService)

	// routes
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       userHandler,
		ListingHandler:    listingHandler,
		OrderHandler:      orderHandler,
		QueryHandler:      queryHandler,
		PredictionHandler: predictionHandler,
		ChatHandler:       chatHandler,
		TransportHandler:  transportHandler,
		AdminHandler:      adminHandler,
		EventHandler:      eventHandler,
		MidtransHandler:   midtransHandler,
		Middleware:        middleware.NewMiddleware(userRepository, log),
		JWTService:        jwtService,
	}
	routesConfig.Setup()
	return app, broker, nil
}
