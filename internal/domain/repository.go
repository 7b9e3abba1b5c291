package domain

import (
	"context"
	"time"
)

// ResultCache defines the interface for caching parse results
type ResultCache interface {
	Get(ctx context.Context, key string) (*FinalResult, error)
	Set(ctx context.Context, key string, value *FinalResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogSearcher is the read side of the catalog index as seen by the
// tool capability set.
type CatalogSearcher interface {
	Search(query string) []SearchHit
	SearchMultiple(queries []string) map[string][]SearchHit
	Lookup(productID string) (CatalogEntry, bool)
}

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// MarketRepository persists market records and serves the directory listing
type MarketRepository interface {
	Save(ctx context.Context, market *Market) (*Market, error)
	List(ctx context.Context, page, limit int) ([]Market, *PaginationMeta, error)
}

// ProductRepository persists catalog products of record
type ProductRepository interface {
	SaveBatch(ctx context.Context, marketID uint, products []CatalogEntry) (int, error)
}
