// Package recon implements the record reconciliation engine: keyed joins
// across the primary, secondary and tertiary tables, fuzzy contractor-name
// matching, tolerant cost comparison, and an exhaustive mutually-exclusive
// classification of every driving record.
package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"treeworks/jobrecon/internal/logging"
	"treeworks/jobrecon/internal/match"
	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/normalize"
	"treeworks/jobrecon/internal/reconerror"
)

// Inputs are the tables supplied for a run. Tables a mode does not need may
// be nil.
type Inputs struct {
	Primary   *models.Table
	Secondary *models.Table
	Tertiary  *models.Table
}

// Engine reconciles the input tables under a RunConfig. It is stateless
// across runs: every Run starts fresh and nothing is cached between calls.
type Engine struct {
	matcher   *match.Matcher
	norm      *normalize.Normalizer
	tolerance decimal.Decimal
	log       logging.Logger
}

// New creates an Engine. Nil arguments fall back to defaults.
func New(norm *normalize.Normalizer, matcher *match.Matcher, tolerance decimal.Decimal, logger logging.Logger) *Engine {
	if norm == nil {
		norm = normalize.Default()
	}
	if matcher == nil {
		matcher = match.NewMatcher(norm, match.DefaultThresholds())
	}
	if tolerance.IsZero() {
		tolerance = match.DefaultCostTolerance
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{
		matcher:   matcher,
		norm:      norm,
		tolerance: tolerance,
		log:       logger,
	}
}

// requiredSources lists which tables each mode consumes.
var requiredSources = map[models.Mode][]models.Source{
	models.ModePrimarySecondary:  {models.SourcePrimary, models.SourceSecondary},
	models.ModeSecondaryTertiary: {models.SourceSecondary, models.SourceTertiary},
	models.ModeThreeWay:          {models.SourcePrimary, models.SourceSecondary, models.SourceTertiary},
}

// Run reconciles the inputs under cfg. Structural problems (missing tables,
// unresolved required columns) are fatal and reported before any row is
// processed; per-row failures are recovered, counted and logged.
func (e *Engine) Run(in Inputs, cfg models.RunConfig) (*Results, error) {
	sources, ok := requiredSources[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("unknown reconciliation mode %q", cfg.Mode)
	}
	if err := e.validate(in, cfg.Mode, sources); err != nil {
		return nil, err
	}

	e.log.Info("Starting reconciliation",
		logging.Field{Key: logging.FieldMode, Value: string(cfg.Mode)})

	res := newResults(cfg.Mode)
	switch cfg.Mode {
	case models.ModePrimarySecondary:
		e.runPrimarySecondary(res, in, cfg)
	case models.ModeSecondaryTertiary:
		e.runSecondaryTertiary(res, in, cfg)
	case models.ModeThreeWay:
		e.runThreeWay(res, in, cfg)
	}

	e.log.Info("Reconciliation complete",
		logging.Field{Key: logging.FieldMode, Value: string(cfg.Mode)},
		logging.Field{Key: "processed", Value: res.Processed},
		logging.Field{Key: "invalid_keys", Value: res.InvalidKeys},
		logging.Field{Key: "filtered_out", Value: res.FilteredOut},
		logging.Field{Key: "skipped_rows", Value: res.SkippedRows})
	return res, nil
}

// validate rejects the run up front when a required table is absent or lacks
// required columns. No partial results are produced on failure.
func (e *Engine) validate(in Inputs, mode models.Mode, sources []models.Source) error {
	for _, src := range sources {
		t := in.table(src)
		if t == nil {
			return &reconerror.MissingTableError{Source: string(src), Mode: string(mode)}
		}
		var missing []string
		for _, field := range requiredColumns(src) {
			if t.Column(field) == "" {
				missing = append(missing, string(field))
			}
		}
		if len(missing) > 0 {
			return &reconerror.MissingColumnError{Source: string(src), Fields: missing}
		}
	}
	return nil
}

func (in Inputs) table(src models.Source) *models.Table {
	switch src {
	case models.SourcePrimary:
		return in.Primary
	case models.SourceSecondary:
		return in.Secondary
	case models.SourceTertiary:
		return in.Tertiary
	}
	return nil
}

// requiredColumns mirrors the resolver's required sets without importing the
// resolver: the engine only checks what a mode consumes.
func requiredColumns(src models.Source) []models.LogicalField {
	switch src {
	case models.SourcePrimary:
		return []models.LogicalField{
			models.FieldJobKey, models.FieldContractor, models.FieldDate,
			models.FieldPOType, models.FieldStatus, models.FieldClient,
		}
	default:
		return []models.LogicalField{
			models.FieldJobKey, models.FieldContractor, models.FieldCost,
		}
	}
}

// classify runs one per-record classification, converting a panic in the
// classification path into a counted, logged skip so one malformed row never
// aborts the run.
func (e *Engine) classify(res *Results, src models.Source, row int, fn func() models.ClassifiedRecord) {
	defer func() {
		if r := recover(); r != nil {
			recErr := &reconerror.RecordError{
				Source: string(src),
				Row:    row,
				Err:    fmt.Errorf("%v", r),
			}
			res.SkippedRows++
			e.log.WithError(recErr).Warn("Skipping record after processing failure",
				logging.Field{Key: logging.FieldSource, Value: string(src)},
				logging.Field{Key: logging.FieldRow, Value: row})
		}
	}()
	res.add(fn())
}

// buildIndex maps job key to the join-side records sharing it, preserving
// original order. Excluded contractors and invalid keys never enter the
// index: the join side is filtered before any classification is attempted.
func buildIndex(t *models.Table, exclusions models.StringSet) map[string][]*models.Record {
	idx := make(map[string][]*models.Record)
	for i := range t.Records {
		rec := &t.Records[i]
		if rec.JobKey == "" {
			continue
		}
		if exclusions.Has(rec.Contractor) {
			continue
		}
		idx[rec.JobKey] = append(idx[rec.JobKey], rec)
	}
	return idx
}

// candidateNames collects the contractor names of a rejected candidate set
// for operator review.
func candidateNames(cands []*models.Record) []string {
	names := make([]string, 0, len(cands))
	for _, c := range cands {
		names = append(names, c.Contractor)
	}
	return names
}
