package domain

// CatalogEntry is one product row from a market catalog export.
// Prices are stored in minor currency units (cents) exactly as imported.
// Entries are immutable once loaded; the full set is replaced wholesale
// on each catalog load.
type CatalogEntry struct {
	Title       string `json:"title"`
	ProductID   string `json:"productId"`
	Grammage    string `json:"grammage"`
	RetailPrice int64  `json:"retailPrice"`
}

// SearchHit is a read-only projection of a CatalogEntry scoped to one
// query, ranked by ascending match distance (lower = better).
type SearchHit struct {
	Title     string  `json:"title"`
	ProductID string  `json:"productId"`
	Price     int64   `json:"price"`
	Grammage  string  `json:"grammage,omitempty"`
	Distance  float64 `json:"-"`
}

// ResolvedItem is one shopping-list concept as asserted by the model's
// final answer. ProductID is nil when no catalog match was accepted.
type ResolvedItem struct {
	Name      string  `json:"name" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=1"`
	ProductID *string `json:"productId"`
}

// StructuredClaim is the raw output of a resolution run before
// enrichment. TotalPrice is in minor currency units (cents).
type StructuredClaim struct {
	Items      []ResolvedItem `json:"items" validate:"dive"`
	TotalPrice float64        `json:"totalPrice" validate:"gte=0"`
}

// EnrichedItem is a ResolvedItem joined against the live catalog.
// ProductName, Price and Grammage are nil whenever ProductID is nil or
// no longer present in the catalog. Price carries the catalog
// RetailPrice value verbatim (see the unit note on FinalResult).
type EnrichedItem struct {
	Name        string   `json:"name"`
	Amount      float64  `json:"amount"`
	ProductID   *string  `json:"productId"`
	ProductName *string  `json:"productName"`
	Price       *float64 `json:"price"`
	Grammage    *string  `json:"grammage"`
}

// FinalResult is the response of a successful parse. TotalPrice is
// copied from the StructuredClaim without recomputation, so it stays in
// cents while per-item Price mirrors the raw catalog value.
type FinalResult struct {
	Items      []EnrichedItem `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
}

// EvalResult is the tagged outcome of an expression evaluation.
// Exactly one of Result or Error is set.
type EvalResult struct {
	Result *float64 `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}
