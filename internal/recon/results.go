package recon

import (
	"treeworks/jobrecon/internal/models"
)

// Results holds everything one reconciliation run produced: the classified
// records grouped by category, plus the skip counters that make the totals
// reconcilable by the operator. Results are produced fresh on every run.
type Results struct {
	Mode models.Mode

	// ByCategory maps each category to its classified records, in driving
	// table order. Only categories that received records have keys.
	ByCategory map[models.Category][]models.ClassifiedRecord

	// Processed is the number of driving records that received a
	// classification.
	Processed int

	// InvalidKeys counts driving rows ignored because their job key was
	// blank or failed normalization.
	InvalidKeys int

	// FilteredOut counts driving rows removed by field filters or the
	// exclusion set before classification.
	FilteredOut int

	// SkippedRows counts rows abandoned by per-row processing failures.
	SkippedRows int
}

func newResults(mode models.Mode) *Results {
	return &Results{
		Mode:       mode,
		ByCategory: make(map[models.Category][]models.ClassifiedRecord),
	}
}

func (r *Results) add(rec models.ClassifiedRecord) {
	r.ByCategory[rec.Category] = append(r.ByCategory[rec.Category], rec)
	r.Processed++
}

// Count returns the number of records classified into a category.
func (r *Results) Count(cat models.Category) int {
	return len(r.ByCategory[cat])
}

// Total returns the number of classified records across all categories.
// It always equals Processed: every record lands in exactly one category.
func (r *Results) Total() int {
	total := 0
	for _, recs := range r.ByCategory {
		total += len(recs)
	}
	return total
}
