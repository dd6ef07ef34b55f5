package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"vidgrab/config"
	"vidgrab/handlers"
	"vidgrab/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Create storage directory
	if err := os.MkdirAll(config.StorageDir, 0755); err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}

	// Strategy registry and classification rules, optionally overridden
	// from a YAML file so they can be tuned without a rebuild.
	strategies := config.DefaultStrategies()
	rules := config.DefaultClassifyRules()
	if config.StrategyFilePath != "" {
		var err error
		strategies, rules, err = config.LoadStrategyFile(config.StrategyFilePath)
		if err != nil {
			log.Fatalf("Failed to load strategy file: %v", err)
		}
		log.Printf("Loaded %d strategies and %d rules from %s\n", len(strategies), len(rules), config.StrategyFilePath)
	}

	// Wire services. The tracker handle is shared between the web layer
	// and the async job runners.
	engine := services.NewYTDLP()
	if err := engine.CheckBinary(); err != nil {
		log.Printf("Warning: %v\n", err)
	}

	tracker := services.NewTracker()
	extractor := services.NewOrchestrator(engine, strategies, rules)
	downloader := services.NewDownloader(tracker, engine, services.NewFFmpeg())
	handler := handlers.New(extractor, downloader, tracker)

	// Start the reaper
	reaper := services.StartReaper(tracker)
	defer reaper.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:       "vidgrab",
		ServerHeader:  "vidgrab",
		CaseSensitive: true,
		StrictRouting: false,
		// Disable body limit for file streaming
		BodyLimit: 0,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Accept",
	}))

	// API routes
	api := app.Group("/api")
	api.Post("/info", handler.HandleInfo)
	api.Post("/download", handler.HandleDownload)
	api.Get("/progress/:id", handler.HandleProgress)
	api.Get("/file/:id", handler.HandleFile)
	api.Delete("/jobs/:id", handler.HandleDeleteJob)

	// Health check
	app.Get("/health", handlers.HandleHealth)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down: %v\n", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%d", config.Port)
	log.Printf("Starting server on http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
