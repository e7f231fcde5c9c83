package export

import (
	"context"

	"podium/internal/labels"
	"podium/internal/parse"
	"podium/internal/speech"
)

// TaskCoverage counts catalog rows by labeling state for one task.
// Every row lands in exactly one bucket: Labeled rows hold the task's
// output cell, Pending rows could be labeled on the next run, and
// Blocked rows wait on an upstream dependency cell.
type TaskCoverage struct {
	Task    string
	Column  string
	Labeled int
	Pending int
	Blocked int
}

// ScoreDistribution tallies the stored scores of one integer column.
// Counts[i] holds the number of cells scored i+1.
type ScoreDistribution struct {
	Task   string
	Column string
	Counts [parse.MaxScore]int
}

// Coverage summarizes labeling progress across the catalog.
type Coverage struct {
	Records  int
	Eligible int
	Tasks    []TaskCoverage
	Scores   []ScoreDistribution
}

// Coverage reports per-task progress, score distributions, and how many
// speeches currently qualify for the game payload.
func (e *Exporter) Coverage(ctx context.Context) (*Coverage, error) {
	columns := make(map[string]map[speech.Key]labels.Value, len(e.registry.Tasks()))
	for _, task := range e.registry.Tasks() {
		values, err := e.store.ColumnValues(ctx, task.Column)
		if err != nil {
			return nil, err
		}
		columns[task.Column] = values
	}

	cov := &Coverage{Records: e.catalog.Len()}
	for _, task := range e.registry.Tasks() {
		tc := TaskCoverage{Task: task.Name, Column: task.Column}
		for _, record := range e.catalog.Records() {
			key := record.Key()
			if _, ok := columns[task.Column][key]; ok {
				tc.Labeled++
				continue
			}
			ready := true
			for _, dep := range task.Dependencies {
				if _, ok := columns[dep][key]; !ok {
					ready = false
					break
				}
			}
			if ready {
				tc.Pending++
			} else {
				tc.Blocked++
			}
		}
		cov.Tasks = append(cov.Tasks, tc)

		if task.Parser == parse.KindScore {
			dist := ScoreDistribution{Task: task.Name, Column: task.Column}
			for _, value := range columns[task.Column] {
				if value.Kind == labels.ValueInt && value.Int >= parse.MinScore && value.Int <= parse.MaxScore {
					dist.Counts[value.Int-1]++
				}
			}
			cov.Scores = append(cov.Scores, dist)
		}
	}

	minGrade := int64(e.cfg.Export.MinSnippetGrade)
	for _, record := range e.catalog.Records() {
		if grade, ok := columns[columnGrading][record.Key()]; ok && grade.Kind == labels.ValueInt && grade.Int >= minGrade {
			cov.Eligible++
		}
	}
	return cov, nil
}
