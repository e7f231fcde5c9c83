package speech

import (
	"fmt"
	"strings"
)

// Key identifies one award win and its acceptance speech. At most one record
// and one label row exist per key.
type Key struct {
	Year     int
	Category string
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.Year, k.Category)
}

// Record is one cleaned acceptance speech, produced by the ingest pipeline
// and treated as read-only input to labeling.
type Record struct {
	Year       int
	Ceremony   int
	Category   string
	FilmTitle  string
	WinnerRaw  string
	Winner     string
	SpeechText string
}

// Key returns the label key joining this record to its labels.
func (r Record) Key() Key {
	return Key{Year: r.Year, Category: r.Category}
}

// Eligible reports whether the record carries every field labeling needs.
func (r Record) Eligible() bool {
	return r.Year > 0 &&
		strings.TrimSpace(r.Category) != "" &&
		strings.TrimSpace(r.FilmTitle) != "" &&
		strings.TrimSpace(r.Winner) != "" &&
		strings.TrimSpace(r.SpeechText) != ""
}
