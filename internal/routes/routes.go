package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/handlers"
	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/realtime"
	"github.com/example/velora/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, rdb *redis.Client, hub *realtime.Hub, cfg *config.Config) {
	checkoutStore := services.NewCheckoutStore(rdb, cfg.CheckoutTTL)
	productCache := services.NewProductCache(rdb, cfg.CacheTTL)
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	notifier := services.NewNotifier(db, hub, mailer)

	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db, productCache)
	cartHandler := handlers.NewCartHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(db, checkoutStore)
	orderHandler := handlers.NewOrderHandler(db, cfg, checkoutStore, productCache, notifier)
	voucherHandler := handlers.NewVoucherHandler(db)
	reviewHandler := handlers.NewReviewHandler(db, notifier)
	blogHandler := handlers.NewBlogHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	wsHandler := handlers.NewWSHandler(db, hub)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/categories/:id", catalogHandler.GetCategory)
	api.Get("/banners", catalogHandler.ListBanners)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.Get)
	api.Get("/products/:productId/reviews", reviewHandler.ListByProduct)
	api.Get("/blog", blogHandler.List)
	api.Get("/blog/:slug", blogHandler.Get)

	// Authenticated routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Get("/cart", cartHandler.List)
	protected.Post("/cart", cartHandler.Add)
	protected.Put("/cart/:id", cartHandler.UpdateQuantity)
	protected.Delete("/cart/:id", cartHandler.Remove)

	protected.Post("/checkout", checkoutHandler.Create)
	protected.Get("/checkout/:tokenId", checkoutHandler.Get)

	protected.Post("/orders", orderHandler.Create)
	protected.Get("/orders", orderHandler.List)
	protected.Get("/orders/:id", orderHandler.Get)
	protected.Post("/orders/cancel", orderHandler.Cancel)

	protected.Post("/vouchers/apply", voucherHandler.Apply)

	protected.Post("/reviews", reviewHandler.Create)
	protected.Delete("/reviews/:id", reviewHandler.Delete)

	protected.Get("/notifications", notificationHandler.List)
	protected.Patch("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Patch("/notifications/:id/read", notificationHandler.MarkRead)

	protected.Get("/messages/:userId", wsHandler.History)

	// Realtime channel; token comes via query param on the upgrade.
	app.Get("/ws", middleware.AuthMiddleware(cfg), wsHandler.Upgrade, websocket.New(wsHandler.Serve))

	// Staff routes
	staff := protected.Group("", middleware.RequireStaff(db))

	staff.Patch("/orders/:id/status", orderHandler.UpdateStatus)

	staff.Post("/vouchers", voucherHandler.Create)
	staff.Get("/vouchers", voucherHandler.List)
	staff.Put("/vouchers/:id", voucherHandler.Update)
	staff.Delete("/vouchers/:id", voucherHandler.Delete)

	staff.Post("/products", productHandler.Create)
	staff.Put("/products/:id", productHandler.Update)
	staff.Delete("/products/:id", productHandler.Delete)

	staff.Post("/categories", catalogHandler.CreateCategory)
	staff.Put("/categories/:id", catalogHandler.UpdateCategory)
	staff.Delete("/categories/:id", catalogHandler.DeleteCategory)

	staff.Post("/banners", catalogHandler.CreateBanner)
	staff.Put("/banners/:id", catalogHandler.UpdateBanner)
	staff.Delete("/banners/:id", catalogHandler.DeleteBanner)

	staff.Post("/blog", blogHandler.Create)
	staff.Put("/blog/:id", blogHandler.Update)
	staff.Delete("/blog/:id", blogHandler.Delete)

	staff.Get("/admin/stats", adminHandler.DashboardStats)
	staff.Get("/admin/orders", adminHandler.ListAllOrders)
	staff.Get("/admin/users", adminHandler.ListUsers)
}
