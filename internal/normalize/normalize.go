// Package normalize converts raw cell values into the canonical typed fields
// the reconciliation engine joins and compares on: job keys, contractor
// names, monetary costs and calendar-month buckets.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"unicode"
)

// ErrInvalidKey reports a job identifier that was blank or resolved to just
// the bare tag with no suffix. Rows with invalid keys are excluded from the
// join population and counted, never fatal.
var ErrInvalidKey = errors.New("invalid job key")

// NoDateBucket is the sentinel period bucket for records with no parseable
// date. It is a valid bucket, not an error.
const NoDateBucket = "No Date"

// periodLayout renders month buckets, e.g. "Mar 2025".
const periodLayout = "Jan 2006"

// DefaultKeyTag is the fixed tag every normalized job key carries.
const DefaultKeyTag = "TM"

// DefaultNameSuffixes are the legal/business-type suffixes stripped from
// contractor names before matching. Declared order decides which suffix is
// removed first when several apply; stripping repeats until stable.
var DefaultNameSuffixes = []string{
	"tree services",
	"tree solutions",
	"tree surgery",
	"tree care",
	"tree specialists",
	"arboriculture",
	"arborists",
	"contracting",
	"contractors",
	"limited",
	"ltd.",
	"ltd",
	"(south west)",
	"(south east)",
	"(north)",
	"(midlands)",
}

// DefaultNamePrefixes are the prefixes stripped from contractor names, first
// match in declared order.
var DefaultNamePrefixes = []string{
	"the",
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// currency symbols and thousands separators removed before cost parsing.
var costReplacer = strings.NewReplacer("£", "", "$", "", "€", "", ",", "", " ", "")

// Normalizer derives canonical fields from raw cell values. The zero value
// is not usable; construct with New or Default.
type Normalizer struct {
	tag      string
	suffixes []string
	prefixes []string
}

// New creates a Normalizer with the given key tag and contractor-name strip
// lists. Empty arguments fall back to the package defaults.
func New(tag string, suffixes, prefixes []string) *Normalizer {
	if tag == "" {
		tag = DefaultKeyTag
	}
	if suffixes == nil {
		suffixes = DefaultNameSuffixes
	}
	if prefixes == nil {
		prefixes = DefaultNamePrefixes
	}
	return &Normalizer{
		tag:      strings.ToUpper(tag),
		suffixes: suffixes,
		prefixes: prefixes,
	}
}

// Default returns a Normalizer with the stock tag and strip lists.
func Default() *Normalizer {
	return New("", nil, nil)
}

// Tag returns the job-key tag in use.
func (n *Normalizer) Tag() string {
	return n.tag
}

// JobKey normalizes a raw job identifier: trims, uppercases, drops a
// trailing spreadsheet ".0" artifact, and prepends the tag unless already
// present. Blank values and the bare tag fail with ErrInvalidKey.
func (n *Normalizer) JobKey(raw string) (string, error) {
	val := strings.ToUpper(strings.TrimSpace(raw))
	val = strings.TrimSuffix(val, ".0")
	if val == "" || val == n.tag {
		return "", ErrInvalidKey
	}
	if strings.HasPrefix(val, n.tag) {
		return val, nil
	}
	return n.tag + val, nil
}

// Cost coerces a raw cell value to a decimal. Currency symbols and thousands
// separators are tolerated. Missing and unparseable values normalize to
// exactly zero, not to a missing sentinel: zero cost drives the NoQuote
// classification downstream.
func (n *Normalizer) Cost(raw string) decimal.Decimal {
	cleaned := costReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	dec, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return dec
}

// periodFormats are tried in order after the strict day/month/year layout.
var periodFormats = []string{
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2006",
	"January 2006",
}

// PeriodBucket derives the month-year bucket from a raw date value. A strict
// dd/mm/yyyy parse is attempted first, then a lenient pass over common
// formats. It never fails: missing or unparseable input yields NoDateBucket.
func (n *Normalizer) PeriodBucket(raw string) string {
	cleaned := whitespaceRE.ReplaceAllString(strings.TrimSpace(raw), " ")
	if cleaned == "" {
		return NoDateBucket
	}
	if t, err := time.Parse("02/01/2006", cleaned); err == nil {
		return t.Format(periodLayout)
	}
	for _, layout := range periodFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(periodLayout)
		}
	}
	return NoDateBucket
}

// Name canonicalizes a contractor name for matching: lower-cases, trims,
// folds diacritics, collapses whitespace, then strips known suffixes and
// prefixes until the name is stable. The result is a fixpoint: normalizing
// an already-normalized name returns it unchanged, which the dedup key
// relies on.
func (n *Normalizer) Name(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = foldDiacritics(name)
	name = whitespaceRE.ReplaceAllString(name, " ")
	if name == "" {
		return ""
	}

	for {
		stripped := n.stripOnce(name)
		if stripped == name {
			return name
		}
		name = stripped
	}
}

// stripOnce removes one suffix or prefix, first match in declared order. A
// strip that would empty the name is skipped so bare suffix words survive.
func (n *Normalizer) stripOnce(name string) string {
	for _, suffix := range n.suffixes {
		if rest, ok := strings.CutSuffix(name, " "+suffix); ok && rest != "" {
			return strings.TrimSpace(rest)
		}
	}
	for _, prefix := range n.prefixes {
		if rest, ok := strings.CutPrefix(name, prefix+" "); ok && rest != "" {
			return strings.TrimSpace(rest)
		}
	}
	return name
}

// foldDiacritics strips combining marks so "José" and "Jose" compare equal.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
