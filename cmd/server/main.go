package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/database"
	"github.com/example/velora/internal/realtime"
	"github.com/example/velora/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	rdb := database.ConnectRedis(cfg.RedisURL)

	hub := realtime.NewHub()

	app := fiber.New(fiber.Config{
		AppName: "Velora Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, rdb, hub, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down")
		hub.Shutdown()
		_ = app.Shutdown()
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
