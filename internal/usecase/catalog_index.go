package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sparradar/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var indexPunctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// Token match credits for scoring
const (
	creditExact     = 1.0 // Query token equals a title token
	creditContained = 0.7 // Query token is contained in a title token (or vice versa)
	creditFuzzy     = 0.6 // Query token within edit distance 1 of a title token
)

// Scoring weights and bonuses
const (
	coverageWeight      = 80.0 // Max score from query token coverage
	substringBonus      = 20.0 // Whole cleaned query appears in the title
	maxScore            = 100.0
	defaultSearchLimit  = 10
	fuzzyMinTokenLength = 5 // Fuzzy matching only for longer tokens to avoid false positives
)

// unitNoiseWords are package-size tokens that carry no product identity.
// Catalog data is German-language retail, so both German and English
// units appear in free-text queries.
var unitNoiseWords = map[string]bool{
	"g": true, "kg": true, "mg": true, "l": true, "ml": true, "cl": true,
	"stück": true, "stk": true, "pack": true, "packung": true, "dose": true,
	"flasche": true, "becher": true, "beutel": true, "glas": true,
	"oz": true, "lb": true, "lbs": true, "liter": true, "gramm": true,
}

// catalogSnapshot is one immutable generation of the loaded catalog.
// A rebuild creates a fresh snapshot and swaps the pointer, so readers
// always observe a complete set.
type catalogSnapshot struct {
	entries     []domain.CatalogEntry
	byProductID map[string]domain.CatalogEntry
	titleTokens [][]string
	titleLower  []string
}

// CatalogIndex owns the process-wide product catalog and serves fuzzy
// title search over it. Safe for concurrent use; Load replaces the
// whole set atomically from the reader's perspective.
type CatalogIndex struct {
	mu       sync.RWMutex
	snapshot *catalogSnapshot
	limit    int
}

// NewCatalogIndex creates an empty index. Searches against an unbuilt
// index return empty results, not errors.
func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{limit: defaultSearchLimit}
}

// Load replaces the indexed catalog wholesale.
func (ci *CatalogIndex) Load(entries []domain.CatalogEntry) {
	snap := &catalogSnapshot{
		entries:     entries,
		byProductID: make(map[string]domain.CatalogEntry, len(entries)),
		titleTokens: make([][]string, len(entries)),
		titleLower:  make([]string, len(entries)),
	}

	for i, entry := range entries {
		snap.byProductID[entry.ProductID] = entry
		snap.titleTokens[i] = tokenizeTitle(entry.Title)
		snap.titleLower[i] = strings.ToLower(entry.Title)
	}

	ci.mu.Lock()
	ci.snapshot = snap
	ci.mu.Unlock()

	log.Printf("[CATALOG] Indexed %d products", len(entries))
}

// Size returns the number of indexed entries.
func (ci *CatalogIndex) Size() int {
	snap := ci.current()
	if snap == nil {
		return 0
	}
	return len(snap.entries)
}

// Lookup returns the catalog entry for an exact product ID.
func (ci *CatalogIndex) Lookup(productID string) (domain.CatalogEntry, bool) {
	snap := ci.current()
	if snap == nil {
		return domain.CatalogEntry{}, false
	}
	entry, ok := snap.byProductID[productID]
	return entry, ok
}

// Search returns up to 10 hits for the query, ordered by ascending
// match distance. Returns an empty slice when the index is unbuilt or
// nothing matches.
func (ci *CatalogIndex) Search(query string) []domain.SearchHit {
	snap := ci.current()
	if snap == nil {
		return []domain.SearchHit{}
	}

	queryTokens := tokenizeTitle(query)
	queryLower := strings.ToLower(strings.TrimSpace(query))

	var hits []domain.SearchHit
	for i, entry := range snap.entries {
		score := scoreTitleMatch(queryTokens, queryLower, snap.titleTokens[i], snap.titleLower[i])
		if score <= 0 {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Title:     entry.Title,
			ProductID: entry.ProductID,
			Price:     entry.RetailPrice,
			Grammage:  entry.Grammage,
			Distance:  maxScore - score,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if len(hits) > ci.limit {
		hits = hits[:ci.limit]
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	return hits
}

// SearchMultiple runs Search independently per query and maps each
// query to its hits. Every requested query is present as a key.
func (ci *CatalogIndex) SearchMultiple(queries []string) map[string][]domain.SearchHit {
	results := make(map[string][]domain.SearchHit, len(queries))
	for _, query := range queries {
		results[query] = ci.Search(query)
	}
	return results
}

func (ci *CatalogIndex) current() *catalogSnapshot {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.snapshot
}

// scoreTitleMatch computes similarity between a query and a catalog
// title. Each query token earns its best credit against the title's
// tokens (exact, containment, or fuzzy); coverage of the query drives
// most of the score, with a bonus when the whole query appears in the
// title. Returns 0-100.
func scoreTitleMatch(queryTokens []string, queryLower string, titleTokens []string, titleLower string) float64 {
	if len(queryTokens) == 0 {
		// Token-free queries (e.g. "1L") fall back to raw containment
		if len(queryLower) >= 2 && strings.Contains(titleLower, queryLower) {
			return substringBonus
		}
		return 0
	}

	total := 0.0
	for _, qt := range queryTokens {
		total += bestTokenCredit(qt, titleTokens)
	}
	coverage := total / float64(len(queryTokens))

	score := coverage * coverageWeight
	if len(queryLower) >= 3 && strings.Contains(titleLower, queryLower) {
		score += substringBonus
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// bestTokenCredit returns the highest credit the query token earns
// against any title token.
func bestTokenCredit(queryToken string, titleTokens []string) float64 {
	best := 0.0
	for _, tt := range titleTokens {
		switch {
		case queryToken == tt:
			return creditExact
		case len(queryToken) >= 3 && (strings.Contains(tt, queryToken) || strings.Contains(queryToken, tt)):
			if creditContained > best {
				best = creditContained
			}
		case len(queryToken) >= fuzzyMinTokenLength && len(tt) >= fuzzyMinTokenLength:
			if fuzzyTokenMatch(queryToken, tt, 1) && creditFuzzy > best {
				best = creditFuzzy
			}
		}
	}
	return best
}

// tokenizeTitle splits a string into normalized lowercase tokens,
// dropping punctuation, unit noise and pure numeric tokens.
func tokenizeTitle(s string) []string {
	cleaned := indexPunctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if unitNoiseWords[word] {
			continue
		}
		if isNumericToken(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// isNumericToken checks if a string contains only digits
func isNumericToken(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
