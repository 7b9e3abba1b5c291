package domain

import "time"

// User is a registered account. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID          uint      `json:"id"`
	Gender      string    `json:"gender,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	ZipCode     string    `json:"zipCode,omitempty"`
	City        string    `json:"city,omitempty"`
	Address     string    `json:"address,omitempty"`
	Password    string    `json:"-"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// Market is one physical market whose catalog can be imported.
type Market struct {
	ID        uint   `json:"id"`
	MarketID  string `json:"marketId"`
	Franchise string `json:"franchise"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	ZipCode   string `json:"zipCode"`
	City      string `json:"city"`
}

// PaginationMeta describes one page of a listing response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}
