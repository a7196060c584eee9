package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-retail-backoffice/internal/handler"
	"go-retail-backoffice/internal/middleware"
	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/service"
	"go-retail-backoffice/internal/ws"
	"go-retail-backoffice/pkg/database"
	"go-retail-backoffice/pkg/mailer"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Product{}, &model.ProductSize{},
		&model.UploadBatch{}, &model.QuantityChange{},
		&model.Order{}, &model.OrderItem{},
		&model.User{},
	)
	rdb := database.ConnectRedis()

	// 3. Setup WebSocket Hub for live stock updates
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	otpStore := repository.NewRedisOTPStore(rdb)

	shopName := os.Getenv("SHOP_NAME")
	if shopName == "" {
		shopName = "Elite sports"
	}

	catalogService := service.NewCatalogService(productRepo)
	importService := service.NewImportService(productRepo, batchRepo, wsHub)
	orderService := service.NewOrderService(productRepo, orderRepo, wsHub, shopName)
	authService := service.NewAuthService(userRepo, otpStore, mailer.NewSMTPMailer())

	productHandler := handler.NewProductHandler(catalogService, importService)
	orderHandler := handler.NewOrderHandler(orderService)
	authHandler := handler.NewAuthHandler(authService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail Back-Office v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/elite")

	// Auth
	api.Post("/user/register", authHandler.Register)
	api.Post("/user/login", authHandler.Login)
	api.Post("/user/verify-otp", authHandler.VerifyOTP)

	// Catalog
	api.Post("/product/add", productHandler.CreateProduct)
	api.Get("/product/all", middleware.RequireAuth(), productHandler.GetProducts)
	api.Post("/product/bulk/add", productHandler.BulkImport)
	api.Delete("/product/bulk/rollback/:uploadId", productHandler.RollbackBatch)
	api.Get("/product/bulk/batches", productHandler.GetBatches)
	api.Get("/product/:id", middleware.RequireAuth(), productHandler.GetProduct)
	api.Put("/product/update/:id", middleware.RequireAuth(), productHandler.UpdateProduct)
	api.Delete("/product/delete/:id", middleware.RequireAuth(), productHandler.DeleteProduct)

	// Orders
	api.Post("/orders", orderHandler.CreateOrder)
	api.Get("/orders", orderHandler.GetOrders)
	api.Put("/orders/:id/cancel", orderHandler.CancelOrder)
	api.Put("/orders/:id", orderHandler.UpdateOrder)
	api.Get("/orders/:id/invoice", orderHandler.GetInvoice)
	api.Get("/orders/:id", orderHandler.GetOrder)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "5151"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
