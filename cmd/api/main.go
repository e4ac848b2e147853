package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/chartgen/chartgen-api/internal/core/llm"
	"github.com/chartgen/chartgen-api/internal/core/render"
	"github.com/chartgen/chartgen-api/internal/modules/charts/handlers"
	"github.com/chartgen/chartgen-api/internal/modules/charts/repositories"
	"github.com/chartgen/chartgen-api/internal/modules/charts/services"
	"github.com/chartgen/chartgen-api/internal/shared/config"
	"github.com/chartgen/chartgen-api/internal/shared/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)

	log.Printf("🚀 Starting %s v%s (%s)", cfg.AppName, cfg.AppVersion, cfg.Env)

	llmService, err := llm.NewService(llm.ProviderConfig{
		Type:     llm.ProviderType(cfg.LLMProvider),
		Endpoint: cfg.LLMEndpoint,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	log.Printf("🤖 LLM provider ready: %s (%s)", llmService.GetProviderName(), cfg.LLMModel)

	sessionRepo := repositories.NewSessionRepo()
	dataService := services.NewDataService(sessionRepo, cfg.MinRowsForChart, cfg.MaxRowsForChart)
	chartService := services.NewChartService(sessionRepo, llmService, render.NewEngine())

	dataHandler := handlers.NewDataHandler(dataService, cfg.MaxUploadSize, cfg.AllowedFileTypes)
	chartHandler := handlers.NewChartHandler(chartService)
	healthHandler := handlers.NewHealthHandler(cfg.AppName, cfg.AppVersion, chartService)

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: int(cfg.MaxUploadSize) + 1024*1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.GetHealth)

	data := app.Group("/api/data")
	data.Post("/upload", dataHandler.UploadDataLegacy)
	data.Post("/upload/:session_id", dataHandler.UploadData)
	data.Get("/sessions/:session_id", dataHandler.GetSession)
	data.Delete("/sessions/:session_id", dataHandler.DeleteSession)

	chartsGroup := app.Group("/api/charts")
	chartsGroup.Post("/generate/:session_id", chartHandler.GenerateChart)
	chartsGroup.Get("/supported-types", chartHandler.GetSupportedTypes)

	log.Printf("✅ Routes registered, listening on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
