package export

import (
	"math/rand"
	"testing"

	"podium/internal/speech"
	"podium/internal/testsupport"
)

func rec(year int, category, title string) speech.Record {
	r := testsupport.Record(year, category)
	r.FilmTitle = title
	return r
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestSampleTitlesPrefersNearbyYears(t *testing.T) {
	pool := []speech.Record{
		rec(1994, speech.CategoryBestPicture, "Near One"),
		rec(1995, speech.CategoryBestPicture, "Near Two"),
		rec(1996, speech.CategoryBestPicture, "Near Three"),
		rec(1980, speech.CategoryBestPicture, "Far One"),
		rec(2015, speech.CategoryBestPicture, "Far Two"),
	}
	nearby := map[string]bool{"Near One": true, "Near Two": true, "Near Three": true}

	e := &Exporter{rng: testRNG()}
	got := e.sampleTitles(pool, 2, map[string]bool{}, 1995)
	if len(got) != 2 {
		t.Fatalf("sampled %d titles, want 2", len(got))
	}
	for _, title := range got {
		if !nearby[title] {
			t.Errorf("sampled %q from outside the preferred year range", title)
		}
	}
}

func TestSampleTitlesWidensWhenNearbyRunsShort(t *testing.T) {
	pool := []speech.Record{
		rec(1994, speech.CategoryBestPicture, "Near One"),
		rec(1980, speech.CategoryBestPicture, "Far One"),
		rec(1981, speech.CategoryBestPicture, "Far Two"),
		rec(2015, speech.CategoryBestPicture, "Far Three"),
	}

	e := &Exporter{rng: testRNG()}
	got := e.sampleTitles(pool, 3, map[string]bool{}, 1995)
	if len(got) != 3 {
		t.Fatalf("sampled %d titles, want 3", len(got))
	}
	if got[0] != "Near One" {
		t.Errorf("got[0] = %q, want the nearby title taken first", got[0])
	}
	for _, title := range got[1:] {
		if title != "Far One" && title != "Far Two" && title != "Far Three" {
			t.Errorf("widened draw produced %q", title)
		}
	}
}

func TestSampleTitlesSkipsExcludedAndRepeatedTitles(t *testing.T) {
	pool := []speech.Record{
		rec(1994, speech.CategoryBestPicture, "Kept"),
		rec(1998, speech.CategoryDirecting, "Kept"),
		rec(1995, speech.CategoryBestPicture, "Banned"),
		rec(1996, speech.CategoryBestPicture, "Other"),
	}

	e := &Exporter{rng: testRNG()}
	got := e.sampleTitles(pool, 10, map[string]bool{"Banned": true}, 0)
	if len(got) != 2 {
		t.Fatalf("sampled %v, want exactly the two distinct unbanned titles", got)
	}
	seen := map[string]bool{}
	for _, title := range got {
		if title == "Banned" {
			t.Errorf("excluded title leaked into the sample")
		}
		if seen[title] {
			t.Errorf("title %q sampled twice", title)
		}
		seen[title] = true
	}
}

func loadOptionCatalog(t *testing.T, records []speech.Record) (*Exporter, *speech.Catalog) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteRowStore(t, cfg.Paths.SpeechesCSV, records...)
	catalog, err := speech.LoadCatalog(cfg.Paths.SpeechesCSV)
	if err != nil {
		t.Fatalf("speech.LoadCatalog: %v", err)
	}
	return &Exporter{cfg: cfg, catalog: catalog, rng: testRNG()}, catalog
}

func TestPickFilmOptionsFillsTargetFromClusters(t *testing.T) {
	records := []speech.Record{
		rec(1994, speech.CategoryBestPicture, "Anchor Film"),
		rec(1995, speech.CategoryBestPicture, "Companion One"),
		rec(1996, speech.CategoryBestPicture, "Companion Two"),
		rec(2013, speech.CategoryBestPicture, "Distant Winner"),
		rec(1993, speech.CategoryDirecting, "Decoy One"),
		rec(1995, speech.CategoryDirecting, "Decoy Two"),
		rec(2014, speech.CategoryDirecting, "Decoy Three"),
		rec(1994, speech.CategoryLeadActor, "Decoy Four"),
		rec(1996, speech.CategoryLeadActor, "Decoy Five"),
		rec(2015, speech.CategoryLeadActor, "Decoy Six"),
	}
	e, catalog := loadOptionCatalog(t, records)

	anchor, ok := catalog.Get(speech.Key{Year: 1994, Category: speech.CategoryBestPicture})
	if !ok {
		t.Fatal("anchor record missing from catalog")
	}

	options := e.pickFilmOptions(anchor)
	if len(options) != e.cfg.Export.FilmOptions {
		t.Fatalf("options = %v, want %d entries", options, e.cfg.Export.FilmOptions)
	}

	seen := map[string]bool{}
	valid := map[string]bool{}
	for _, r := range records {
		valid[r.FilmTitle] = true
	}
	for _, title := range options {
		if seen[title] {
			t.Errorf("option %q repeated", title)
		}
		seen[title] = true
		if !valid[title] {
			t.Errorf("option %q is not a catalog title", title)
		}
	}
	for _, want := range []string{"Anchor Film", "Companion One", "Companion Two"} {
		if !seen[want] {
			t.Errorf("options %v missing %q", options, want)
		}
	}
}

func TestPickFilmOptionsStopsAtPoolSize(t *testing.T) {
	records := []speech.Record{
		rec(1994, speech.CategoryBestPicture, "Anchor Film"),
		rec(2015, speech.CategoryBestPicture, "Distant Winner"),
		rec(1995, speech.CategoryDirecting, "Decoy One"),
		rec(1996, speech.CategoryLeadActor, "Decoy Two"),
	}
	e, catalog := loadOptionCatalog(t, records)

	anchor, ok := catalog.Get(speech.Key{Year: 1994, Category: speech.CategoryBestPicture})
	if !ok {
		t.Fatal("anchor record missing from catalog")
	}

	options := e.pickFilmOptions(anchor)
	if len(options) != len(records) {
		t.Fatalf("options = %v, want every catalog title once", options)
	}
	seen := map[string]bool{}
	for _, title := range options {
		if seen[title] {
			t.Errorf("option %q repeated", title)
		}
		seen[title] = true
	}
	for _, r := range records {
		if !seen[r.FilmTitle] {
			t.Errorf("options %v missing %q", options, r.FilmTitle)
		}
	}
}
