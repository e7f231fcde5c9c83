package speech

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Row store column names, as written by the ingest pipeline.
const (
	ColumnYear       = "year"
	ColumnCeremony   = "ceremony"
	ColumnCategory   = "category"
	ColumnFilmTitle  = "film_title"
	ColumnWinnerRaw  = "winner_raw"
	ColumnWinner     = "winner_clean"
	ColumnSpeechText = "speech_clean"
)

// Catalog is an immutable, key-addressable view of the row store.
// Rows that are not eligible for labeling (missing required fields,
// non-canonical categories, duplicate keys) are dropped at load time.
type Catalog struct {
	records []Record
	byKey   map[Key]int
	skipped int
}

// LoadCatalog reads the row store CSV produced by ingest.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open row store: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read row store %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("row store %s is empty", path)
	}

	header := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		header[cleanCell(cell)] = i
	}
	for _, required := range []string{ColumnYear, ColumnCategory, ColumnFilmTitle, ColumnWinner, ColumnSpeechText} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("row store %s missing column %q", path, required)
		}
	}

	catalog := &Catalog{byKey: make(map[Key]int, len(rows)-1)}
	for _, row := range rows[1:] {
		record, ok := parseRecord(header, row)
		if !ok {
			catalog.skipped++
			continue
		}
		key := record.Key()
		if _, dup := catalog.byKey[key]; dup {
			catalog.skipped++
			continue
		}
		catalog.byKey[key] = len(catalog.records)
		catalog.records = append(catalog.records, record)
	}
	return catalog, nil
}

func parseRecord(header map[string]int, row []string) (Record, bool) {
	cell := func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return cleanCell(row[idx])
	}

	year, err := strconv.Atoi(cell(ColumnYear))
	if err != nil || year <= 0 {
		return Record{}, false
	}
	ceremony := 0
	if raw := cell(ColumnCeremony); raw != "" {
		// Ceremony number is informational; a bad value does not make
		// the row ineligible.
		if parsed, err := strconv.Atoi(raw); err == nil {
			ceremony = parsed
		}
	}

	record := Record{
		Year:       year,
		Ceremony:   ceremony,
		Category:   cell(ColumnCategory),
		FilmTitle:  cell(ColumnFilmTitle),
		WinnerRaw:  cell(ColumnWinnerRaw),
		Winner:     cell(ColumnWinner),
		SpeechText: cell(ColumnSpeechText),
	}
	if !IsCanonicalCategory(record.Category) {
		return Record{}, false
	}
	if !record.Eligible() {
		return Record{}, false
	}
	return record, true
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

// Records returns the eligible rows in file order.
func (c *Catalog) Records() []Record {
	return c.records
}

// Len returns the number of eligible rows.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Skipped returns the number of rows dropped at load time.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// Get returns the record for a key.
func (c *Catalog) Get(key Key) (Record, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// FindByFilm returns records whose film title contains filmQuery
// (case-insensitive). When categoryQuery is non-empty the record's category
// must contain it too.
func (c *Catalog) FindByFilm(filmQuery, categoryQuery string) []Record {
	film := strings.ToLower(strings.TrimSpace(filmQuery))
	category := strings.ToLower(strings.TrimSpace(categoryQuery))
	if film == "" {
		return nil
	}
	var matches []Record
	for _, record := range c.records {
		if !strings.Contains(strings.ToLower(record.FilmTitle), film) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(record.Category), category) {
			continue
		}
		matches = append(matches, record)
	}
	return matches
}
