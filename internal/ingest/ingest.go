package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"podium/internal/config"
	"podium/internal/logging"
	"podium/internal/services"
	"podium/internal/speech"
)

var (
	// Kaggle "Year" fields look like "2016 (89th) Academy Awards".
	kaggleYearPattern = regexp.MustCompile(`^(\d{4})\s+\((\d+)(?:st|nd|rd|th)\)`)
	// Trailing parenthetical notes on winner names, e.g. "(shared)".
	parenNotePattern = regexp.MustCompile(`\s*\(.*?\)\s*$`)
	// The "WINNER NAME:" header line many transcripts open with.
	speechHeaderPattern = regexp.MustCompile(`^\s*[A-Z][A-Z\s.'\-]+:\s*\n?`)
)

// Pipeline cleans and merges the raw sources into the row store CSV.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs an ingest pipeline.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "new", "config is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Report summarizes one ingest run. EmptyWinners and EmptySpeeches count
// merged rows whose cleaned field came out blank; such rows stay in the
// row store but labeling will skip them.
type Report struct {
	KaggleRows     int
	KaggleSkipped  int
	AcademyRows    int
	AcademySkipped int
	Duplicates     int
	Rows           int
	YearMin        int
	YearMax        int
	EmptyWinners   int
	EmptySpeeches  int
	Categories     map[string]int
	OutputPath     string
}

// Run loads whichever raw sources exist, merges them, and writes the row
// store. At least one source must be present and yield eligible rows.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		OutputPath: p.cfg.Paths.SpeechesCSV,
		Categories: make(map[string]int),
	}

	var academy, kaggle []speech.Record
	sources := 0

	academyPath := p.cfg.Ingest.AcademyCSV
	if fileExists(academyPath) {
		sources++
		records, skipped, err := p.loadAcademy(academyPath)
		if err != nil {
			return nil, err
		}
		academy = records
		report.AcademyRows = len(records)
		report.AcademySkipped = skipped
		p.logger.Info("academy source loaded",
			logging.Int("rows", len(records)),
			logging.Int("skipped", skipped))
	} else {
		p.logger.Warn("academy source missing", logging.String("path", academyPath))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kagglePath := p.cfg.Ingest.KaggleCSV
	if fileExists(kagglePath) {
		sources++
		records, skipped, err := p.loadKaggle(kagglePath)
		if err != nil {
			return nil, err
		}
		kaggle = records
		report.KaggleRows = len(records)
		report.KaggleSkipped = skipped
		p.logger.Info("kaggle source loaded",
			logging.Int("rows", len(records)),
			logging.Int("skipped", skipped))
	} else {
		p.logger.Warn("kaggle source missing", logging.String("path", kagglePath))
	}

	if sources == 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "load",
			fmt.Sprintf("no raw sources found (checked %s and %s)", academyPath, kagglePath), nil)
	}

	merged, duplicates := merge(academy, kaggle)
	if len(merged) == 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "merge",
			"sources held no eligible rows", nil)
	}
	report.Duplicates = duplicates
	report.Rows = len(merged)
	report.YearMin = merged[0].Year
	report.YearMax = merged[len(merged)-1].Year
	for _, record := range merged {
		report.Categories[record.Category]++
		if record.Winner == "" {
			report.EmptyWinners++
		}
		if record.SpeechText == "" {
			report.EmptySpeeches++
		}
	}

	if err := writeRowStore(report.OutputPath, merged); err != nil {
		return nil, err
	}
	p.logger.Info("row store written",
		logging.Int("rows", report.Rows),
		logging.Int("duplicates_dropped", duplicates),
		logging.Int("year_min", report.YearMin),
		logging.Int("year_max", report.YearMax),
		logging.Int("empty_winners", report.EmptyWinners),
		logging.Int("empty_speeches", report.EmptySpeeches),
		logging.String("path", report.OutputPath))
	return report, nil
}

// loadKaggle reads the Kaggle dump. Year and ceremony are packed into one
// display string; rows whose year field does not parse are skipped.
func (p *Pipeline) loadKaggle(path string) ([]speech.Record, int, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}
	if err := table.require(path, "Year", "Category", "Film Title", "Winner", "Speech"); err != nil {
		return nil, 0, err
	}

	var records []speech.Record
	skipped := 0
	for _, row := range table.rows {
		if blankRow(row) {
			continue
		}
		match := kaggleYearPattern.FindStringSubmatch(table.cell(row, "Year"))
		if match == nil {
			skipped++
			continue
		}
		year, _ := strconv.Atoi(match[1])
		ceremony, _ := strconv.Atoi(match[2])
		record, ok := p.buildRecord(year, ceremony,
			table.cell(row, "Category"),
			table.cell(row, "Film Title"),
			table.cell(row, "Winner"),
			table.cell(row, "Speech"))
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped, nil
}

// loadAcademy reads the scraped Academy CSV, which carries numeric year
// and ceremony columns.
func (p *Pipeline) loadAcademy(path string) ([]speech.Record, int, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}
	if err := table.require(path, "year", "ceremony", "category", "film_title", "winner", "speech"); err != nil {
		return nil, 0, err
	}

	var records []speech.Record
	skipped := 0
	for _, row := range table.rows {
		if blankRow(row) {
			continue
		}
		year, err := strconv.Atoi(table.cell(row, "year"))
		if err != nil {
			skipped++
			continue
		}
		// ceremony is informational; a bad value does not sink the row
		ceremony, _ := strconv.Atoi(table.cell(row, "ceremony"))
		record, ok := p.buildRecord(year, ceremony,
			table.cell(row, "category"),
			table.cell(row, "film_title"),
			table.cell(row, "winner"),
			table.cell(row, "speech"))
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped, nil
}

// buildRecord applies the shared cleaning rules. Rows outside the
// canonical categories or before the year cutoff are dropped.
func (p *Pipeline) buildRecord(year, ceremony int, rawCategory, filmTitle, winner, speechText string) (speech.Record, bool) {
	category, ok := speech.CanonicalCategory(strings.TrimSpace(rawCategory))
	if !ok {
		return speech.Record{}, false
	}
	if year < p.cfg.Ingest.MinYear {
		return speech.Record{}, false
	}
	winnerRaw := strings.TrimSpace(winner)
	return speech.Record{
		Year:       year,
		Ceremony:   ceremony,
		Category:   category,
		FilmTitle:  strings.TrimSpace(filmTitle),
		WinnerRaw:  winnerRaw,
		Winner:     cleanWinner(winnerRaw),
		SpeechText: cleanSpeech(speechText),
	}, true
}

// cleanWinner drops trailing parenthetical notes and settles shouting
// scraper names into title case.
func cleanWinner(raw string) string {
	name := strings.TrimSpace(parenNotePattern.ReplaceAllString(raw, ""))
	if name == "" || name != strings.ToUpper(name) || name == strings.ToLower(name) {
		return name
	}
	return cases.Title(language.Und).String(name)
}

// cleanSpeech strips the leading "WINNER NAME:" header line transcripts
// often open with.
func cleanSpeech(raw string) string {
	text := strings.TrimSpace(raw)
	text = speechHeaderPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// merge combines both sources, keeping the first row seen per key.
// Academy rows come first, so they win over Kaggle duplicates.
func merge(academy, kaggle []speech.Record) ([]speech.Record, int) {
	byKey := make(map[speech.Key]speech.Record, len(academy)+len(kaggle))
	duplicates := 0
	for _, source := range [][]speech.Record{academy, kaggle} {
		for _, record := range source {
			key := record.Key()
			if _, exists := byKey[key]; exists {
				duplicates++
				continue
			}
			byKey[key] = record
		}
	}

	merged := make([]speech.Record, 0, len(byKey))
	for _, record := range byKey {
		merged = append(merged, record)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Year != merged[j].Year {
			return merged[i].Year < merged[j].Year
		}
		return merged[i].Category < merged[j].Category
	})
	return merged, duplicates
}

// writeRowStore writes the merged rows through a temp file so watchers
// never observe a half-written row store.
func writeRowStore(path string, records []speech.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create row store directory: %w", err)
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create row store: %w", err)
	}

	writer := csv.NewWriter(file)
	header := []string{
		speech.ColumnYear, speech.ColumnCeremony, speech.ColumnCategory,
		speech.ColumnFilmTitle, speech.ColumnWinnerRaw, speech.ColumnWinner,
		speech.ColumnSpeechText,
	}
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("write row store header: %w", err)
	}
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Year), strconv.Itoa(record.Ceremony), record.Category,
			record.FilmTitle, record.WinnerRaw, record.Winner, record.SpeechText,
		}
		if err := writer.Write(row); err != nil {
			file.Close()
			return fmt.Errorf("write row %s: %w", record.Key(), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush row store: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close row store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace row store: %w", err)
	}
	return nil
}

type rawTable struct {
	header map[string]int
	rows   [][]string
}

func readTable(path string) (*rawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "read",
			fmt.Sprintf("source %s has no header row", path), nil)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[cleanHeaderCell(name)] = i
	}
	return &rawTable{header: header, rows: rows[1:]}, nil
}

func (t *rawTable) require(path string, columns ...string) error {
	for _, column := range columns {
		if _, ok := t.header[column]; !ok {
			return services.Wrap(services.ErrValidation, "ingest", "read",
				fmt.Sprintf("source %s missing column %q", path, column), nil)
		}
	}
	return nil
}

func (t *rawTable) cell(row []string, column string) string {
	idx, ok := t.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cleanHeaderCell(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
