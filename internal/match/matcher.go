// Package match decides whether two contractor names refer to the same
// entity and whether two monetary values agree within tolerance.
//
// Name matching is a short-circuiting cascade, each stage cheaper and
// stricter than the next. Character similarity alone both over-matches short
// distinct names and under-matches legitimate variants carrying corporate
// suffixes, so each stage targets one of those failure modes.
package match

import (
	"strings"

	"treeworks/jobrecon/internal/normalize"
)

// Thresholds are the tunable cut-offs of the name-matching cascade. The
// defaults were chosen empirically against real contractor data.
type Thresholds struct {
	// TokenSet is the minimum token-set similarity score (stage 5).
	TokenSet int
	// Partial is the minimum partial-ratio score (stage 6).
	Partial int
	// Ratio is the minimum plain character-similarity score (stage 7).
	Ratio int
	// SubstringMinTokens is the minimum token count of the shorter
	// normalized name before the substring stage applies.
	SubstringMinTokens int
	// SubstringLengthRatio is the minimum length of the shorter normalized
	// name relative to the longer before the substring stage applies. The
	// guard stops a short fragment from validating against an unrelated
	// longer name.
	SubstringLengthRatio float64
}

// DefaultThresholds returns the stock cascade cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TokenSet:             90,
		Partial:              95,
		Ratio:                80,
		SubstringMinTokens:   2,
		SubstringLengthRatio: 0.70,
	}
}

// Matcher decides whether two contractor-name strings refer to the same
// entity. Matches is deterministic, commutative and total: blank names never
// match anything, including each other.
type Matcher struct {
	norm       *normalize.Normalizer
	thresholds Thresholds
}

// NewMatcher creates a Matcher using the given normalizer for the
// canonical-form stages and the given thresholds for the similarity stages.
func NewMatcher(norm *normalize.Normalizer, thresholds Thresholds) *Matcher {
	if norm == nil {
		norm = normalize.Default()
	}
	return &Matcher{norm: norm, thresholds: thresholds}
}

// Matches runs the cascade over two raw contractor names; the first stage to
// succeed wins.
func (m *Matcher) Matches(a, b string) bool {
	ca := collapseSpace(strings.ToLower(strings.TrimSpace(a)))
	cb := collapseSpace(strings.ToLower(strings.TrimSpace(b)))

	// Stage 1: blank names never match.
	if ca == "" || cb == "" {
		return false
	}

	// Stage 2: case/whitespace-insensitive equality.
	if ca == cb {
		return true
	}

	// Stage 3: canonical-form equality (suffix/prefix stripped).
	na, nb := m.norm.Name(a), m.norm.Name(b)
	if na != "" && na == nb {
		return true
	}

	// Stage 4: guarded substring check on canonical forms.
	if m.substringMatch(na, nb) {
		return true
	}

	// Stages 5-7: similarity ratios on the case-folded originals.
	if TokenSetRatio(ca, cb) >= m.thresholds.TokenSet {
		return true
	}
	if PartialRatio(ca, cb) >= m.thresholds.Partial {
		return true
	}
	return Ratio(ca, cb) >= m.thresholds.Ratio
}

// substringMatch reports whether the shorter canonical name is contained in
// the longer. It only applies when the shorter name has enough tokens and is
// long enough relative to the longer name.
func (m *Matcher) substringMatch(na, nb string) bool {
	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if shorter == "" {
		return false
	}
	if len(strings.Fields(shorter)) < m.thresholds.SubstringMinTokens {
		return false
	}
	if float64(len(shorter)) < m.thresholds.SubstringLengthRatio*float64(len(longer)) {
		return false
	}
	return strings.Contains(longer, shorter)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
