package export

import "podium/internal/speech"

// optionYearRange bounds how far an option's ceremony year may sit from
// the anchor year before the sampler widens its search.
const optionYearRange = 5

// pickFilmOptions assembles the multiple-choice films for one speech:
// the correct title, two more winners from the same category, and a
// decoy cluster seeded from another category so the category alone
// never gives the answer away. Short pools pad from the whole catalog.
// The result is shuffled.
func (e *Exporter) pickFilmOptions(record speech.Record) []string {
	pool := e.catalog.Records()
	used := map[string]bool{record.FilmTitle: true}
	options := []string{record.FilmTitle}

	sameCategory := filterRecords(pool, func(r speech.Record) bool {
		return r.Category == record.Category
	})
	companions := e.sampleTitles(sameCategory, 2, used, record.Year)
	markUsed(used, companions)
	options = append(options, companions...)

	otherCategories := filterRecords(pool, func(r speech.Record) bool {
		return r.Category != record.Category
	})
	seeds := e.sampleTitles(otherCategories, 1, used, record.Year)
	if len(seeds) == 0 {
		seeds = e.sampleTitles(pool, 1, used, 0)
	}
	if len(seeds) > 0 {
		seed := seeds[0]
		used[seed] = true
		options = append(options, seed)
		if seedRecord, ok := firstByTitle(pool, seed); ok {
			seedCategory := filterRecords(pool, func(r speech.Record) bool {
				return r.Category == seedRecord.Category
			})
			peers := e.sampleTitles(seedCategory, 2, used, seedRecord.Year)
			markUsed(used, peers)
			options = append(options, peers...)
		}
	}

	if target := e.cfg.Export.FilmOptions; len(options) < target {
		options = append(options, e.sampleTitles(pool, target-len(options), used, 0)...)
	}

	e.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// sampleTitles draws up to n distinct film titles from pool, never
// returning one in exclude. When year is set, titles within
// optionYearRange of it are preferred; the draw widens to the rest of
// the pool only when the nearby titles cannot fill n.
func (e *Exporter) sampleTitles(pool []speech.Record, n int, exclude map[string]bool, year int) []string {
	if n <= 0 {
		return nil
	}
	if year > 0 {
		nearby := uniqueTitles(pool, exclude, func(r speech.Record) bool {
			return r.Year >= year-optionYearRange && r.Year <= year+optionYearRange
		})
		if len(nearby) >= n {
			return e.sample(nearby, n)
		}
		nearbySet := make(map[string]bool, len(nearby))
		markUsed(nearbySet, nearby)
		far := uniqueTitles(pool, exclude, func(r speech.Record) bool {
			return !nearbySet[r.FilmTitle]
		})
		return append(nearby, e.sample(far, n-len(nearby))...)
	}
	return e.sample(uniqueTitles(pool, exclude, nil), n)
}

// sample draws up to n titles uniformly without replacement.
func (e *Exporter) sample(titles []string, n int) []string {
	if n > len(titles) {
		n = len(titles)
	}
	if n <= 0 {
		return nil
	}
	picks := make([]string, 0, n)
	for _, idx := range e.rng.Perm(len(titles))[:n] {
		picks = append(picks, titles[idx])
	}
	return picks
}

// uniqueTitles collects distinct film titles from pool in encounter
// order, dropping excluded and blank titles. A nil keep accepts every
// record.
func uniqueTitles(pool []speech.Record, exclude map[string]bool, keep func(speech.Record) bool) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, r := range pool {
		if r.FilmTitle == "" || exclude[r.FilmTitle] || seen[r.FilmTitle] {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		seen[r.FilmTitle] = true
		titles = append(titles, r.FilmTitle)
	}
	return titles
}

func filterRecords(pool []speech.Record, keep func(speech.Record) bool) []speech.Record {
	var out []speech.Record
	for _, r := range pool {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func firstByTitle(pool []speech.Record, title string) (speech.Record, bool) {
	for _, r := range pool {
		if r.FilmTitle == title {
			return r, true
		}
	}
	return speech.Record{}, false
}

func markUsed(set map[string]bool, titles []string) {
	for _, title := range titles {
		set[title] = true
	}
}
