package storage

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open establishes the sqlite connection and migrates the schema
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(&UserModel{}, &MarketModel{}, &ProductModel{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	log.Printf("[DB] Database connection established: %s", path)
	return db, nil
}
