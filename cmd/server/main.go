package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sparradar/backend/config"
	httpDelivery "github.com/sparradar/backend/internal/delivery/http"
	"github.com/sparradar/backend/internal/infrastructure/cache"
	"github.com/sparradar/backend/internal/infrastructure/catalog"
	"github.com/sparradar/backend/internal/infrastructure/llm"
	"github.com/sparradar/backend/internal/infrastructure/storage"
	"github.com/sparradar/backend/internal/usecase"
)

func main() {
	// Local development settings live in .env; missing file is fine
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting SparRadar Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Catalog index is process-wide state, loaded once at startup
	catalogIndex := usecase.NewCatalogIndex()
	entries, err := catalog.LoadDir(cfg.Catalog.DataDir)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	catalogIndex.Load(entries)
	if catalogIndex.Size() == 0 {
		log.Printf("WARNING: catalog is empty - product search will return no hits")
	}

	// Model client
	modelClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.RequestsPerMinute)
	if cfg.Server.Environment == "development" {
		modelClient.SetDebug(true)
		log.Printf("LLM client debug mode enabled")
	}
	log.Printf("LLM configured: %s (model: %s, max steps: %d)", cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.MaxSteps)

	// Resolution pipeline
	toolSet := usecase.NewToolSet(catalogIndex, usecase.NewEvaluator())
	resolver := usecase.NewResolver(modelClient, toolSet, usecase.ResolverConfig{MaxSteps: cfg.LLM.MaxSteps})
	enricher := usecase.NewEnricher(catalogIndex)

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	listService := usecase.NewShoppingListService(memoryCache, resolver, enricher, usecase.ShoppingListServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})

	// Persistence (markets directory, user accounts)
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	authService := usecase.NewAuthService(storage.NewUserRepo(db), cfg.Auth.JWTSecret)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		listService,
		authService,
		storage.NewMarketRepo(db),
		cfg.Server.Environment == "production",
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, authService)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
