package recon

import (
	"sort"
	"time"

	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/normalize"
)

// filterPrimary applies the run's field filters and exclusion set to the
// primary table and drops rows without a valid job key, counting each kind
// of removal so the operator can reconcile the totals.
func (e *Engine) filterPrimary(res *Results, t *models.Table, cfg models.RunConfig) []*models.Record {
	var kept []*models.Record
	for i := range t.Records {
		rec := &t.Records[i]

		if cfg.Exclusions.Has(rec.Contractor) {
			res.FilteredOut++
			continue
		}
		if !cfg.Filters.Periods.Allows(rec.Period) ||
			!cfg.Filters.POTypes.Allows(rec.Field(t.Column(models.FieldPOType))) ||
			!cfg.Filters.Status.Allows(rec.Field(t.Column(models.FieldStatus))) ||
			!cfg.Filters.Clients.Allows(rec.Field(t.Column(models.FieldClient))) {
			res.FilteredOut++
			continue
		}
		if rec.JobKey == "" {
			res.InvalidKeys++
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// filterSecondary applies the exclusion set and key validity to the
// secondary table when it drives a run. Field filters only apply to the
// primary table.
func (e *Engine) filterSecondary(res *Results, t *models.Table, cfg models.RunConfig) []*models.Record {
	var kept []*models.Record
	for i := range t.Records {
		rec := &t.Records[i]
		if cfg.Exclusions.Has(rec.Contractor) {
			res.FilteredOut++
			continue
		}
		if rec.JobKey == "" {
			res.InvalidKeys++
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// dedupSecondary collapses secondary records sharing a (job key, canonical
// contractor name) pair to their first occurrence, so one underlying entity
// is classified once.
func (e *Engine) dedupSecondary(recs []*models.Record) []*models.Record {
	seen := make(map[string]struct{}, len(recs))
	var out []*models.Record
	for _, rec := range recs {
		key := rec.JobKey + "\x00" + e.norm.Name(rec.Contractor)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// FilterOptions are the distinct filterable values present in a primary
// table, for building filter inputs.
type FilterOptions struct {
	Periods []string
	POTypes []string
	Status  []string
	Clients []string
}

// CollectFilterOptions enumerates a primary table's distinct period buckets
// (chronological, with the no-date sentinel last), PO types, statuses and
// client names.
func CollectFilterOptions(t *models.Table) FilterOptions {
	periods := make(map[string]struct{})
	poTypes := make(map[string]struct{})
	statuses := make(map[string]struct{})
	clients := make(map[string]struct{})

	for i := range t.Records {
		rec := &t.Records[i]
		if rec.Period != "" {
			periods[rec.Period] = struct{}{}
		}
		if v := rec.Field(t.Column(models.FieldPOType)); v != "" {
			poTypes[v] = struct{}{}
		}
		if v := rec.Field(t.Column(models.FieldStatus)); v != "" {
			statuses[v] = struct{}{}
		}
		if v := rec.Field(t.Column(models.FieldClient)); v != "" {
			clients[v] = struct{}{}
		}
	}

	return FilterOptions{
		Periods: sortPeriods(periods),
		POTypes: sortedKeys(poTypes),
		Status:  sortedKeys(statuses),
		Clients: sortedKeys(clients),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortPeriods orders month buckets chronologically and appends the no-date
// sentinel last when present.
func sortPeriods(set map[string]struct{}) []string {
	hasNoDate := false
	var buckets []string
	for k := range set {
		if k == normalize.NoDateBucket {
			hasNoDate = true
			continue
		}
		buckets = append(buckets, k)
	}
	sort.Slice(buckets, func(i, j int) bool {
		ti, erri := time.Parse("Jan 2006", buckets[i])
		tj, errj := time.Parse("Jan 2006", buckets[j])
		if erri != nil || errj != nil {
			return buckets[i] < buckets[j]
		}
		return ti.Before(tj)
	})
	if hasNoDate {
		buckets = append(buckets, normalize.NoDateBucket)
	}
	return buckets
}
