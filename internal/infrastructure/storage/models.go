package storage

import "time"

// UserModel is the persisted user account row
type UserModel struct {
	ID          uint   `gorm:"primaryKey"`
	Gender      string `gorm:"size:16"`
	FirstName   string
	LastName    string
	Email       string `gorm:"uniqueIndex;not null"`
	ZipCode     string
	City        string
	Address     string
	Password    string `gorm:"type:text;not null"`
	LastLoginAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// MarketModel is one market whose catalog can be imported
type MarketModel struct {
	ID        uint   `gorm:"primaryKey"`
	MarketID  string `gorm:"uniqueIndex;not null"`
	Franchise string
	Name      string
	Address   string
	ZipCode   string
	City      string
	Products  []ProductModel `gorm:"foreignKey:MarketRef"`
}

func (MarketModel) TableName() string {
	return "markets"
}

// ProductModel is a catalog product of record, scoped to a market.
// Prices are stored in minor currency units exactly as imported.
type ProductModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	ProductID   string `gorm:"index;not null"`
	Grammage    string
	RetailPrice int64
	MarketRef   uint `gorm:"index"`
}

func (ProductModel) TableName() string {
	return "products"
}
