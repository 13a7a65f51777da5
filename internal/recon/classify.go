package recon

import (
	"treeworks/jobrecon/internal/match"
	"treeworks/jobrecon/internal/models"
)

// runPrimarySecondary classifies every filtered primary record against the
// secondary table: missing, name mismatch, zero-cost quote, or matched.
func (e *Engine) runPrimarySecondary(res *Results, in Inputs, cfg models.RunConfig) {
	secIdx := buildIndex(in.Secondary, cfg.Exclusions)
	for _, p := range e.filterPrimary(res, in.Primary, cfg) {
		rec := p
		e.classify(res, models.SourcePrimary, rec.Row, func() models.ClassifiedRecord {
			return e.classifyPrimarySecondary(rec, in.Primary, secIdx)
		})
	}
}

// classifyPrimarySecondary resolves one primary record's secondary leg. The
// candidate scan honors original table order: the first candidate whose name
// matches wins, with no best-match ranking. The name match is resolved
// before the zero-cost check.
func (e *Engine) classifyPrimarySecondary(p *models.Record, primary *models.Table, secIdx map[string][]*models.Record) models.ClassifiedRecord {
	out := models.ClassifiedRecord{
		JobKey:      p.JobKey,
		PrimaryName: p.Contractor,
		Client:      p.Field(primary.Column(models.FieldClient)),
		POType:      p.Field(primary.Column(models.FieldPOType)),
		Status:      p.Field(primary.Column(models.FieldStatus)),
		Period:      p.Period,
	}

	cands := secIdx[p.JobKey]
	if len(cands) == 0 {
		out.Category = models.CategoryMissingInSecondary
		return out
	}

	hit := e.firstNameMatch(p.Contractor, cands)
	if hit == nil {
		out.Category = models.CategoryNameMismatchSecondary
		out.SecondaryName = cands[0].Contractor
		out.SecondaryCost = cands[0].Cost
		out.CandidateNames = candidateNames(cands)
		return out
	}

	out.SecondaryName = hit.Contractor
	out.SecondaryCost = hit.Cost
	if hit.Cost.IsZero() {
		out.Category = models.CategoryNoQuote
		return out
	}

	out.Category = models.CategoryMatched
	return out
}

// runSecondaryTertiary classifies the secondary table against the tertiary.
// Secondary records collapsing to the same (job key, canonical name) pair
// are deduplicated first so one underlying entity is not classified twice.
func (e *Engine) runSecondaryTertiary(res *Results, in Inputs, cfg models.RunConfig) {
	terIdx := buildIndex(in.Tertiary, cfg.Exclusions)
	for _, s := range e.dedupSecondary(e.filterSecondary(res, in.Secondary, cfg)) {
		rec := s
		e.classify(res, models.SourceSecondary, rec.Row, func() models.ClassifiedRecord {
			return e.classifySecondaryTertiary(rec, terIdx)
		})
	}
}

// classifySecondaryTertiary resolves one secondary record's tertiary leg.
// Both sides carry an expected nonzero value here, so the cost-related
// failure mode is a tolerance comparison rather than a zero check.
func (e *Engine) classifySecondaryTertiary(s *models.Record, terIdx map[string][]*models.Record) models.ClassifiedRecord {
	out := models.ClassifiedRecord{
		JobKey:        s.JobKey,
		SecondaryName: s.Contractor,
		SecondaryCost: s.Cost,
		Period:        s.Period,
	}

	cands := terIdx[s.JobKey]
	if len(cands) == 0 {
		out.Category = models.CategoryMissingInTertiary
		return out
	}

	hit := e.firstNameMatch(s.Contractor, cands)
	if hit == nil {
		out.Category = models.CategoryNameMismatchTertiary
		out.TertiaryName = cands[0].Contractor
		out.TertiaryCost = cands[0].Cost
		out.CandidateNames = candidateNames(cands)
		return out
	}

	out.TertiaryName = hit.Contractor
	out.TertiaryCost = hit.Cost
	if !match.CostMatches(s.Cost, hit.Cost, e.tolerance) {
		out.Category = models.CategoryCostMismatch
		out.Difference = match.CostDifference(s.Cost, hit.Cost)
		out.DiffPercent = match.CostDiffPercent(s.Cost, hit.Cost)
		return out
	}

	out.Category = models.CategoryMatched
	return out
}

// runThreeWay chains both joins in a single pass per primary record. A row
// is classified exactly once, by the first terminal condition it hits:
// the secondary leg's outcomes short-circuit; rows surviving with a
// nonzero-cost secondary match continue to the tertiary leg.
func (e *Engine) runThreeWay(res *Results, in Inputs, cfg models.RunConfig) {
	secIdx := buildIndex(in.Secondary, cfg.Exclusions)
	terIdx := buildIndex(in.Tertiary, cfg.Exclusions)

	for _, p := range e.filterPrimary(res, in.Primary, cfg) {
		rec := p
		e.classify(res, models.SourcePrimary, rec.Row, func() models.ClassifiedRecord {
			first := e.classifyPrimarySecondary(rec, in.Primary, secIdx)
			if first.Category != models.CategoryMatched {
				return first
			}

			// The secondary leg matched with nonzero cost; drive the
			// tertiary leg from the matched secondary record's name and
			// cost, keeping the primary record's context.
			sec := &models.Record{
				JobKey:     rec.JobKey,
				Contractor: first.SecondaryName,
				Cost:       first.SecondaryCost,
				Period:     rec.Period,
			}
			second := e.classifySecondaryTertiary(sec, terIdx)
			second.PrimaryName = rec.Contractor
			second.Client = first.Client
			second.POType = first.POType
			second.Status = first.Status
			return second
		})
	}
}

// firstNameMatch scans candidates in original order and returns the first
// whose contractor name matches, or nil.
func (e *Engine) firstNameMatch(name string, cands []*models.Record) *models.Record {
	for _, c := range cands {
		if e.matcher.Matches(name, c.Contractor) {
			return c
		}
	}
	return nil
}
