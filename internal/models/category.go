package models

import "github.com/shopspring/decimal"

// Category is the single mutually-exclusive outcome assigned to a job key
// within a reconciliation run. Every driving record lands in exactly one
// category; nothing is dropped and nothing is double-counted.
type Category string

const (
	CategoryMatched               Category = "matched"
	CategoryMissingInSecondary    Category = "missing_in_secondary"
	CategoryMissingInTertiary     Category = "missing_in_tertiary"
	CategoryNameMismatchSecondary Category = "name_mismatch_secondary"
	CategoryNameMismatchTertiary  Category = "name_mismatch_tertiary"
	CategoryNoQuote               Category = "no_quote"
	CategoryCostMismatch          Category = "cost_mismatch"
)

// AllCategories lists every category in report order.
var AllCategories = []Category{
	CategoryMatched,
	CategoryMissingInSecondary,
	CategoryMissingInTertiary,
	CategoryNameMismatchSecondary,
	CategoryNameMismatchTertiary,
	CategoryNoQuote,
	CategoryCostMismatch,
}

// categoryLabels are the operator-facing names used in summaries and exports.
var categoryLabels = map[Category]string{
	CategoryMatched:               "Matched",
	CategoryMissingInSecondary:    "Missing in Secondary",
	CategoryMissingInTertiary:     "Missing in Tertiary",
	CategoryNameMismatchSecondary: "Name Mismatch (Primary vs Secondary)",
	CategoryNameMismatchTertiary:  "Name Mismatch (Secondary vs Tertiary)",
	CategoryNoQuote:               "No Quote in Secondary (Cost=0)",
	CategoryCostMismatch:          "Cost Mismatch",
}

// Label returns the operator-facing name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsMatch reports whether the category counts toward the matched total.
func (c Category) IsMatch() bool {
	return c == CategoryMatched
}

// ClassifiedRecord is one reconciled job key with its classification and the
// context an operator needs to review it. Cost fields are only meaningful
// for the categories that set them.
type ClassifiedRecord struct {
	Category Category
	JobKey   string

	PrimaryName   string
	SecondaryName string
	TertiaryName  string

	SecondaryCost decimal.Decimal
	TertiaryCost  decimal.Decimal

	// Difference and DiffPercent are populated for cost mismatches.
	Difference  decimal.Decimal
	DiffPercent string

	// CandidateNames holds every rejected candidate's contractor name when
	// a name mismatch is reported, for operator review.
	CandidateNames []string

	// Suggestion is the closest candidate name to the driving record's
	// contractor, when one could be computed.
	Suggestion string

	// Context carried over from the driving record.
	Client string
	POType string
	Status string
	Period string
}
