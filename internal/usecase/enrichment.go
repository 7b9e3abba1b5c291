package usecase

import (
	"github.com/sparradar/backend/internal/domain"
)

// Enricher cross-references a StructuredClaim against the live catalog
// to attach authoritative product metadata. Only the model-asserted
// ProductID is trusted as a join key; product text the model produced
// is never copied into the result.
type Enricher struct {
	catalog domain.CatalogSearcher
}

// NewEnricher creates an enricher over the given catalog
func NewEnricher(catalog domain.CatalogSearcher) *Enricher {
	return &Enricher{catalog: catalog}
}

// Enrich joins each claimed item against the catalog by exact product
// ID. A nil or stale ProductID degrades that item's product fields to
// nil; enrichment itself never fails. TotalPrice is passed through
// verbatim from the claim.
func (e *Enricher) Enrich(claim *domain.StructuredClaim) *domain.FinalResult {
	items := make([]domain.EnrichedItem, 0, len(claim.Items))

	for _, item := range claim.Items {
		enriched := domain.EnrichedItem{
			Name:      item.Name,
			Amount:    item.Amount,
			ProductID: item.ProductID,
		}

		if item.ProductID != nil {
			if entry, ok := e.catalog.Lookup(*item.ProductID); ok {
				title := entry.Title
				price := float64(entry.RetailPrice)
				grammage := entry.Grammage
				enriched.ProductName = &title
				enriched.Price = &price
				enriched.Grammage = &grammage
			}
		}

		items = append(items, enriched)
	}

	return &domain.FinalResult{
		Items:      items,
		TotalPrice: claim.TotalPrice,
	}
}
