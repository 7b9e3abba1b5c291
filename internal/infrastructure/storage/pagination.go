package storage

import (
	"math"

	"github.com/sparradar/backend/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// NormalizePagination clamps page and limit to their allowed ranges,
// applying defaults for unset values.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Paginate is a gorm scope applying offset/limit for the given page
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	page, limit = NormalizePagination(page, limit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// BuildMeta creates pagination metadata for a listing response
func BuildMeta(total int64, page, limit int) *domain.PaginationMeta {
	page, limit = NormalizePagination(page, limit)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &domain.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
