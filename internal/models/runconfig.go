package models

// Mode selects the join/classification protocol for a run.
type Mode string

const (
	// ModePrimarySecondary joins the tracker into the TM report.
	ModePrimarySecondary Mode = "primary-secondary"
	// ModeSecondaryTertiary joins the TM report into the ledger.
	ModeSecondaryTertiary Mode = "secondary-tertiary"
	// ModeThreeWay chains both joins in a single pass per primary record.
	ModeThreeWay Mode = "three-way"
)

// ParseMode maps a user-supplied mode string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePrimarySecondary, ModeSecondaryTertiary, ModeThreeWay:
		return Mode(s), true
	}
	return "", false
}

// StringSet is a membership predicate over strings. A nil or empty set means
// "no restriction".
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, skipping blanks.
func NewStringSet(values ...string) StringSet {
	if len(values) == 0 {
		return nil
	}
	s := make(StringSet, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	if len(s) == 0 {
		return nil
	}
	return s
}

// Allows reports whether v passes the filter. Empty sets allow everything.
func (s StringSet) Allows(v string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[v]
	return ok
}

// Has reports strict membership, with no empty-set special case.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Filters restricts the primary table before joining. Each field is a
// set-membership predicate; an empty set means no restriction on that field.
type Filters struct {
	Periods StringSet
	POTypes StringSet
	Status  StringSet
	Clients StringSet
}

// RunConfig is the complete, immutable configuration for one reconciliation
// run. It is passed explicitly into each call; nothing carries over between
// runs.
type RunConfig struct {
	Mode Mode

	// Exclusions removes records whose raw contractor name matches exactly,
	// from every side of every join, before classification.
	Exclusions StringSet

	Filters Filters
}
