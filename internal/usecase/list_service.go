package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/sparradar/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	cacheKeyNoiseRegex  = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	cacheKeySpacesRegex = regexp.MustCompile(`\s+`)
)

// ShoppingListServiceConfig holds configuration for the shopping list service
type ShoppingListServiceConfig struct {
	CacheTTL time.Duration
}

// ShoppingListService handles end-to-end parsing of a shopping list
// with result caching. Flow: check cache -> resolve via the model loop
// -> enrich against the catalog -> cache -> return.
type ShoppingListService struct {
	cache    domain.ResultCache
	resolver *Resolver
	enricher *Enricher
	cacheTTL time.Duration
}

// NewShoppingListService creates the service with its dependencies
func NewShoppingListService(
	cache domain.ResultCache,
	resolver *Resolver,
	enricher *Enricher,
	config ShoppingListServiceConfig,
) *ShoppingListService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ShoppingListService{
		cache:    cache,
		resolver: resolver,
		enricher: enricher,
		cacheTTL: cacheTTL,
	}
}

// Parse resolves the raw lines into a priced, enriched result. Failed
// runs surface a single coarse error and are never cached; either a
// full FinalResult is returned or nothing.
func (s *ShoppingListService) Parse(ctx context.Context, lines []string) (*domain.FinalResult, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			return nil, domain.ErrInvalidRequest
		}
	}

	cacheKey := generateParseCacheKey(lines)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			log.Printf("[LIST] Cache hit for %d lines", len(lines))
			return cached, nil
		}
	}

	claim, err := s.resolver.Resolve(ctx, lines)
	if err != nil {
		return nil, err
	}

	result := s.enricher.Enrich(claim)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			log.Printf("[LIST] Failed to cache result: %v", err)
		}
	}

	return result, nil
}

// generateParseCacheKey builds a normalized key from the input lines.
// Format: "parse:{normalized lines joined with |}"
func generateParseCacheKey(lines []string) string {
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := cacheKeyNoiseRegex.ReplaceAllString(strings.ToLower(line), " ")
		cleaned = cacheKeySpacesRegex.ReplaceAllString(strings.TrimSpace(cleaned), " ")
		normalized = append(normalized, cleaned)
	}
	return fmt.Sprintf("parse:%s", strings.Join(normalized, "|"))
}
