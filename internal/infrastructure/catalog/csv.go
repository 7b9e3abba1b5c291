package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sparradar/backend/internal/domain"
)

// Column headers of the market catalog export format.
const (
	headerTitle       = "title"
	headerProductID   = "productId"
	headerGrammage    = "listing.grammage"
	headerRetailPrice = "listing.currentRetailPrice"
)

// ParseCSV reads catalog entries from a market product export. Rows
// with an unparseable price are skipped with a warning rather than
// failing the whole file.
func ParseCSV(r io.Reader) ([]domain.CatalogEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{headerTitle, headerProductID, headerGrammage, headerRetailPrice} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv is missing required column %q", required)
		}
	}

	var entries []domain.CatalogEntry
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		priceField := field(record, columns[headerRetailPrice])
		price, err := strconv.ParseInt(strings.TrimSpace(priceField), 10, 64)
		if err != nil {
			log.Printf("[CATALOG] Skipping line %d: bad price %q", line, priceField)
			continue
		}

		entries = append(entries, domain.CatalogEntry{
			Title:       field(record, columns[headerTitle]),
			ProductID:   field(record, columns[headerProductID]),
			Grammage:    field(record, columns[headerGrammage]),
			RetailPrice: price,
		})
	}

	return entries, nil
}

// ParseCSVFile reads catalog entries from a file on disk
func ParseCSVFile(path string) ([]domain.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// LoadDir reads every products_*.csv file in the data directory and
// returns the combined entry set for the in-memory index.
func LoadDir(dir string) ([]domain.CatalogEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "products_*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing catalog files: %w", err)
	}

	var all []domain.CatalogEntry
	for _, path := range paths {
		entries, err := ParseCSVFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}
		log.Printf("[CATALOG] Loaded %d products from %s", len(entries), filepath.Base(path))
		all = append(all, entries...)
	}

	return all, nil
}

func field(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
