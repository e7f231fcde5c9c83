package speech_test

import (
	"os"
	"path/filepath"
	"testing"

	"podium/internal/speech"
)

func writeRowStore(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cleaned_speeches.csv")
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatalf("write row store: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeRowStore(t, ""+
		"year,ceremony,category,film_title,winner_raw,winner_clean,speech_clean\n"+
		"2013,86,Directing,Gravity,Alfonso Cuaron (director),Alfonso Cuaron,Thank you to the Academy.\n"+
		"1994,67,Best Picture,Forrest Gump,Wendy Finerman,Wendy Finerman,This moment belongs to everyone.\n")

	catalog, err := speech.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", catalog.Len())
	}
	if catalog.Skipped() != 0 {
		t.Fatalf("expected 0 skipped, got %d", catalog.Skipped())
	}

	record, ok := catalog.Get(speech.Key{Year: 2013, Category: speech.CategoryDirecting})
	if !ok {
		t.Fatal("expected 2013/Directing record")
	}
	if record.FilmTitle != "Gravity" || record.Ceremony != 86 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if got := record.Key().String(); got != "2013/Directing" {
		t.Fatalf("key string = %q", got)
	}
}

func TestLoadCatalogSkipsIneligibleRows(t *testing.T) {
	path := writeRowStore(t, ""+
		"year,ceremony,category,film_title,winner_raw,winner_clean,speech_clean\n"+
		"2013,86,Directing,Gravity,Alfonso Cuaron,Alfonso Cuaron,Thank you.\n"+
		"2013,86,Directing,Gravity,Alfonso Cuaron,Alfonso Cuaron,Duplicate key.\n"+
		"2014,87,Best Makeup,Whiplash,Someone,Someone,Non-canonical category.\n"+
		"2015,88,Directing,The Revenant,,,\n"+
		"bad-year,88,Directing,Spotlight,Tom McCarthy,Tom McCarthy,Words.\n")

	catalog, err := speech.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", catalog.Len())
	}
	if catalog.Skipped() != 4 {
		t.Fatalf("expected 4 skipped, got %d", catalog.Skipped())
	}
}

func TestLoadCatalogRejectsMissingColumns(t *testing.T) {
	path := writeRowStore(t, "year,category,film_title\n2013,Directing,Gravity\n")
	if _, err := speech.LoadCatalog(path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestLoadCatalogStripsBOM(t *testing.T) {
	path := writeRowStore(t, "\ufeff"+
		"year,ceremony,category,film_title,winner_raw,winner_clean,speech_clean\n"+
		"2013,86,Directing,Gravity,Alfonso Cuaron,Alfonso Cuaron,Thank you.\n")

	catalog, err := speech.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if _, ok := catalog.Get(speech.Key{Year: 2013, Category: speech.CategoryDirecting}); !ok {
		t.Fatal("expected BOM-prefixed header to resolve")
	}
}

func TestFindByFilm(t *testing.T) {
	path := writeRowStore(t, ""+
		"year,ceremony,category,film_title,winner_raw,winner_clean,speech_clean\n"+
		"2013,86,Directing,Gravity,Alfonso Cuaron,Alfonso Cuaron,Thank you.\n"+
		"2013,86,Best Picture,12 Years a Slave,Brad Pitt,Brad Pitt,Everyone deserves this.\n"+
		"2014,87,Directing,Birdman,Alejandro Inarritu,Alejandro Inarritu,Gracias.\n")

	catalog, err := speech.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	tests := []struct {
		name     string
		film     string
		category string
		want     int
	}{
		{name: "substring match", film: "grav", want: 1},
		{name: "case insensitive", film: "BIRDMAN", want: 1},
		{name: "category narrows", film: "a", category: "best picture", want: 1},
		{name: "no match", film: "casablanca", want: 0},
		{name: "blank film", film: "  ", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.FindByFilm(tt.film, tt.category)
			if len(got) != tt.want {
				t.Fatalf("FindByFilm(%q, %q) = %d matches, want %d", tt.film, tt.category, len(got), tt.want)
			}
		})
	}
}

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "Best Motion Picture", want: speech.CategoryBestPicture, ok: true},
		{raw: "Directing", want: speech.CategoryDirecting, ok: true},
		{raw: "Actor", want: speech.CategoryLeadActor, ok: true},
		{raw: "Writing (Story and Screenplay)", want: speech.CategoryOriginalWriting, ok: true},
		{raw: "Best Makeup", ok: false},
		{raw: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := speech.CanonicalCategory(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("CanonicalCategory(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRecordEligible(t *testing.T) {
	base := speech.Record{
		Year:       2013,
		Category:   speech.CategoryDirecting,
		FilmTitle:  "Gravity",
		Winner:     "Alfonso Cuaron",
		SpeechText: "Thank you.",
	}
	if !base.Eligible() {
		t.Fatal("expected base record to be eligible")
	}

	mutations := []struct {
		name   string
		mutate func(r speech.Record) speech.Record
	}{
		{"zero year", func(r speech.Record) speech.Record { r.Year = 0; return r }},
		{"blank category", func(r speech.Record) speech.Record { r.Category = " "; return r }},
		{"blank film", func(r speech.Record) speech.Record { r.FilmTitle = ""; return r }},
		{"blank winner", func(r speech.Record) speech.Record { r.Winner = ""; return r }},
		{"blank speech", func(r speech.Record) speech.Record { r.SpeechText = "\n"; return r }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate(base).Eligible() {
				t.Fatal("expected mutated record to be ineligible")
			}
		})
	}
}
