// Package report aggregates a run's classifications into operator-facing
// totals and flattened record sets. Everything here is a pure function of
// the classification set.
package report

import (
	"github.com/schollz/closestmatch"

	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/recon"
)

// Summary holds the aggregate counts for one reconciliation run.
type Summary struct {
	// TotalMatched counts records classified Matched.
	TotalMatched int

	// TotalMismatched sums every non-matched category.
	TotalMismatched int

	// MatchPercent is matched / (matched + mismatched) * 100, defined as 0
	// when nothing was classified.
	MatchPercent float64

	// CategoryCounts holds the per-category counts, non-empty categories
	// only.
	CategoryCounts map[models.Category]int

	// Skip counters carried through so exported totals reconcile with the
	// input row counts.
	InvalidKeys int
	FilteredOut int
	SkippedRows int
}

// Summarize computes the aggregate counts for a run.
func Summarize(res *recon.Results) Summary {
	s := Summary{
		CategoryCounts: make(map[models.Category]int),
		InvalidKeys:    res.InvalidKeys,
		FilteredOut:    res.FilteredOut,
		SkippedRows:    res.SkippedRows,
	}

	for cat, recs := range res.ByCategory {
		if len(recs) == 0 {
			continue
		}
		s.CategoryCounts[cat] = len(recs)
		if cat.IsMatch() {
			s.TotalMatched += len(recs)
		} else {
			s.TotalMismatched += len(recs)
		}
	}

	if total := s.TotalMatched + s.TotalMismatched; total > 0 {
		s.MatchPercent = float64(s.TotalMatched) / float64(total) * 100
	}
	return s
}

// FlattenMismatches produces the single combined mismatch list: every
// non-matched record in category report order, each carrying its category
// label for export.
func FlattenMismatches(res *recon.Results) []models.ClassifiedRecord {
	var out []models.ClassifiedRecord
	for _, cat := range models.AllCategories {
		if cat.IsMatch() {
			continue
		}
		out = append(out, res.ByCategory[cat]...)
	}
	return out
}

// AttachSuggestions fills in each name-mismatch record's Suggestion with the
// rejected candidate closest to the driving record's contractor name, as a
// review aid. Records without candidates are left untouched.
func AttachSuggestions(res *recon.Results) {
	for _, cat := range []models.Category{
		models.CategoryNameMismatchSecondary,
		models.CategoryNameMismatchTertiary,
	} {
		recs := res.ByCategory[cat]
		for i := range recs {
			recs[i].Suggestion = closestCandidate(&recs[i])
		}
	}
}

func closestCandidate(rec *models.ClassifiedRecord) string {
	if len(rec.CandidateNames) == 0 {
		return ""
	}
	if len(rec.CandidateNames) == 1 {
		return rec.CandidateNames[0]
	}

	driving := rec.PrimaryName
	if cat := rec.Category; cat == models.CategoryNameMismatchTertiary && rec.SecondaryName != "" {
		driving = rec.SecondaryName
	}
	if driving == "" {
		return rec.CandidateNames[0]
	}

	cm := closestmatch.New(rec.CandidateNames, []int{2, 3})
	if best := cm.Closest(driving); best != "" {
		return best
	}
	return rec.CandidateNames[0]
}
