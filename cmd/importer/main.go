package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sparradar/backend/config"
	"github.com/sparradar/backend/internal/domain"
	"github.com/sparradar/backend/internal/infrastructure/catalog"
	"github.com/sparradar/backend/internal/infrastructure/storage"
)

// importMarket is one entry of the markets.json manifest
type importMarket struct {
	MarketID  string `json:"marketId"`
	Franchise string `json:"franchise"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	ZipCode   string `json:"zipCode"`
	City      string `json:"city"`
}

// The importer is a one-shot batch job: it reads the markets manifest
// and each market's product CSV export, and loads both into the store
// of record. The server's in-memory catalog index is built separately
// at startup from the same CSV files.
func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	manifestPath := filepath.Join(cfg.Catalog.DataDir, "markets.json")
	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("Failed to read markets manifest %s: %v", manifestPath, err)
	}

	var markets []importMarket
	if err := json.Unmarshal(manifest, &markets); err != nil {
		log.Fatalf("Failed to parse markets manifest: %v", err)
	}

	marketRepo := storage.NewMarketRepo(db)
	productRepo := storage.NewProductRepo(db)
	ctx := context.Background()

	for _, market := range markets {
		csvPath := filepath.Join(cfg.Catalog.DataDir, "products_"+market.MarketID+".csv")
		if _, err := os.Stat(csvPath); err != nil {
			log.Printf("File %s does not exist. Skipping market with ID %s.", csvPath, market.MarketID)
			continue
		}

		products, err := catalog.ParseCSVFile(csvPath)
		if err != nil {
			log.Fatalf("Failed to parse %s: %v", csvPath, err)
		}
		log.Printf("Loaded %d products for market with ID %s.", len(products), market.MarketID)

		log.Printf("Importing market: %s (%s)...", market.Name, market.MarketID)
		saved, err := marketRepo.Save(ctx, &domain.Market{
			MarketID:  market.MarketID,
			Franchise: market.Franchise,
			Name:      market.Name,
			Address:   market.Address,
			ZipCode:   market.ZipCode,
			City:      market.City,
		})
		if err != nil {
			log.Fatalf("Failed to save market %s: %v", market.MarketID, err)
		}

		count, err := productRepo.SaveBatch(ctx, saved.ID, products)
		if err != nil {
			log.Fatalf("Failed to import products for market %s: %v", market.MarketID, err)
		}
		log.Printf("Finished importing %d products for market %s.", count, market.MarketID)
	}
}
