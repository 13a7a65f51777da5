// Package columns resolves the logical fields the engine needs against the
// physical headers an arbitrary uploaded table actually carries. Header
// spelling varies across uploads, so each logical field has a list of
// acceptable aliases; the first header, in header order, whose normalized
// form equals any alias wins. All functions are pure over header lists.
package columns

import (
	"regexp"
	"strings"

	"treeworks/jobrecon/internal/models"
)

var spaceRE = regexp.MustCompile(`\s+`)

// placeholderRE matches auto-generated headers spreadsheet tools emit for
// unnamed columns, e.g. "Unnamed: 3" or "Column12".
var placeholderRE = regexp.MustCompile(`^(unnamed:?\s*\d*|column\s*\d+|field\s*\d+)$`)

// bannerKeywords mark a first row as a section banner rather than a header
// row, e.g. a title line a report tool prepends above the real headers.
var bannerKeywords = []string{
	"report",
	"summary",
	"export",
	"generated",
	"period",
}

// NormalizeHeader canonicalizes a header for alias comparison: lower-cased,
// trimmed, inner whitespace collapsed.
func NormalizeHeader(h string) string {
	return spaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// Resolve returns the first physical header, in header order, whose
// normalized form equals any alias's normalized form. The bool is false when
// no header matched.
func Resolve(headers []string, aliases []string) (string, bool) {
	wanted := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		wanted[NormalizeHeader(alias)] = struct{}{}
	}
	for _, h := range headers {
		if _, ok := wanted[NormalizeHeader(h)]; ok {
			return h, true
		}
	}
	return "", false
}

// ResolveAll resolves every logical field in the alias map against the
// headers. It returns the column map for the fields that resolved and the
// sorted list of fields that did not.
func ResolveAll(headers []string, aliases map[models.LogicalField][]string) (map[models.LogicalField]string, []models.LogicalField) {
	resolved := make(map[models.LogicalField]string, len(aliases))
	var missing []models.LogicalField
	for _, field := range fieldOrder {
		list, ok := aliases[field]
		if !ok {
			continue
		}
		if header, ok := Resolve(headers, list); ok {
			resolved[field] = header
		} else {
			missing = append(missing, field)
		}
	}
	return resolved, missing
}

// fieldOrder keeps ResolveAll's missing-field reporting deterministic.
var fieldOrder = []models.LogicalField{
	models.FieldJobKey,
	models.FieldContractor,
	models.FieldCost,
	models.FieldDate,
	models.FieldPOType,
	models.FieldStatus,
	models.FieldClient,
}

// IsVoid reports whether a header is structurally void: blank or an
// auto-generated placeholder.
func IsVoid(header string) bool {
	n := NormalizeHeader(header)
	return n == "" || placeholderRE.MatchString(n)
}

// StripVoid removes structurally void headers, preserving order. Rows keyed
// by the surviving headers are unaffected.
func StripVoid(headers []string) []string {
	var kept []string
	for _, h := range headers {
		if !IsVoid(h) {
			kept = append(kept, h)
		}
	}
	return kept
}

// IsBannerRow reports whether a sheet's first row is a non-data section
// banner rather than a header row. Heuristic: the first cell's normalized
// text contains a known banner keyword, or is itself a placeholder, and the
// row is mostly empty.
func IsBannerRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	first := NormalizeHeader(cells[0])
	if first == "" {
		return false
	}

	filled := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			filled++
		}
	}
	if filled > 2 {
		return false
	}

	if placeholderRE.MatchString(first) {
		return true
	}
	for _, kw := range bannerKeywords {
		if strings.Contains(first, kw) {
			return true
		}
	}
	return false
}

// HeaderRowIndex returns the index of the header row in a sheet's rows,
// skipping a leading banner row when one is detected.
func HeaderRowIndex(rows [][]string) int {
	if len(rows) > 1 && IsBannerRow(rows[0]) {
		return 1
	}
	return 0
}
