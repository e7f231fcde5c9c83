package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"podium/internal/speech"
)

// WriteRowStore writes a cleaned row store CSV holding the given records.
func WriteRowStore(t testing.TB, path string, records ...speech.Record) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		speech.ColumnYear, speech.ColumnCeremony, speech.ColumnCategory,
		speech.ColumnFilmTitle, speech.ColumnWinnerRaw, speech.ColumnWinner,
		speech.ColumnSpeechText,
	}
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year), strconv.Itoa(r.Ceremony), r.Category,
			r.FilmTitle, r.WinnerRaw, r.Winner, r.SpeechText,
		}
		if err := w.Write(row); err != nil {
			t.Fatalf("write record %s: %v", r.Key(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush %s: %v", path, err)
	}
}

// Record builds an eligible speech record with predictable fields for tests.
func Record(year int, category string) speech.Record {
	return speech.Record{
		Year:       year,
		Ceremony:   year - 1927,
		Category:   category,
		FilmTitle:  "Film " + strconv.Itoa(year),
		WinnerRaw:  "Winner " + strconv.Itoa(year) + " (role)",
		Winner:     "Winner " + strconv.Itoa(year),
		SpeechText: "Thank you to the Academy and to everyone who made Film " + strconv.Itoa(year) + " possible.",
	}
}
