// Package export renders classified reconciliation results to files: a
// flattened all-mismatches CSV and a drill-down workbook with one sheet per
// category. It owns all file I/O on the output side.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/recon"
	"treeworks/jobrecon/internal/report"
)

// mismatchRow is the flattened CSV shape of one classified record.
type mismatchRow struct {
	JobKey        string `csv:"Job No"`
	MismatchType  string `csv:"Mismatch Type"`
	PrimaryName   string `csv:"Tracker Contractor"`
	SecondaryName string `csv:"Report Contractor"`
	TertiaryName  string `csv:"Ledger Contact"`
	SecondaryCost string `csv:"Report Cost"`
	TertiaryCost  string `csv:"Ledger Total"`
	Difference    string `csv:"Difference"`
	DiffPercent   string `csv:"Diff %"`
	Suggestion    string `csv:"Closest Candidate"`
	Client        string `csv:"Client"`
	POType        string `csv:"PO Type"`
	Status        string `csv:"Status"`
	Period        string `csv:"Month"`
}

func toRow(rec *models.ClassifiedRecord) mismatchRow {
	return mismatchRow{
		JobKey:        rec.JobKey,
		MismatchType:  rec.Category.Label(),
		PrimaryName:   rec.PrimaryName,
		SecondaryName: rec.SecondaryName,
		TertiaryName:  rec.TertiaryName,
		SecondaryCost: costString(rec.SecondaryCost),
		TertiaryCost:  costString(rec.TertiaryCost),
		Difference:    costString(rec.Difference),
		DiffPercent:   rec.DiffPercent,
		Suggestion:    rec.Suggestion,
		Client:        rec.Client,
		POType:        rec.POType,
		Status:        rec.Status,
		Period:        rec.Period,
	}
}

// costString renders a cost for export, leaving zero cells blank so absent
// values do not read as genuine zero quotes.
func costString(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

// WriteMismatchCSV writes the flattened mismatch list to a CSV file, every
// record carrying its category label.
func WriteMismatchCSV(path string, records []models.ClassifiedRecord) error {
	rows := make([]mismatchRow, 0, len(records))
	for i := range records {
		rows = append(rows, toRow(&records[i]))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("writing CSV file %s: %w", path, err)
	}
	return nil
}

// WriteWorkbook writes a drill-down workbook: a Summary sheet with the
// aggregate counts, then one sheet per non-empty category in report order.
func WriteWorkbook(path string, res *recon.Results, sum report.Summary) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}
	writeSummarySheet(f, summarySheet, res, sum)

	for _, cat := range models.AllCategories {
		recs := res.ByCategory[cat]
		if len(recs) == 0 {
			continue
		}
		if err := writeCategorySheet(f, cat, recs); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, res *recon.Results, sum report.Summary) {
	rows := [][]interface{}{
		{"Mode", string(res.Mode)},
		{"Match %", fmt.Sprintf("%.1f%%", sum.MatchPercent)},
		{"Jobs Matching", sum.TotalMatched},
		{"Not Matching", sum.TotalMismatched},
		{"Rows Ignored (blank key)", sum.InvalidKeys},
		{"Rows Filtered Out", sum.FilteredOut},
		{"Rows Skipped (errors)", sum.SkippedRows},
		{},
	}
	for _, cat := range models.AllCategories {
		if n, ok := sum.CategoryCounts[cat]; ok {
			rows = append(rows, []interface{}{cat.Label(), n})
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(sheet, cell, &row)
	}
}

// categoryHeader is the column order of every category sheet.
var categoryHeader = []interface{}{
	"Job No", "Tracker Contractor", "Report Contractor", "Ledger Contact",
	"Report Cost", "Ledger Total", "Difference", "Diff %",
	"Closest Candidate", "Client", "PO Type", "Status", "Month",
}

func writeCategorySheet(f *excelize.File, cat models.Category, recs []models.ClassifiedRecord) error {
	sheet := sheetName(cat)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	_ = f.SetSheetRow(sheet, "A1", &categoryHeader)
	for i := range recs {
		rec := &recs[i]
		row := []interface{}{
			rec.JobKey, rec.PrimaryName, rec.SecondaryName, rec.TertiaryName,
			costString(rec.SecondaryCost), costString(rec.TertiaryCost),
			costString(rec.Difference), rec.DiffPercent,
			rec.Suggestion, rec.Client, rec.POType, rec.Status, rec.Period,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheet, cell, &row)
	}
	return nil
}

// sheetName maps a category to a workbook-safe sheet name (31-char limit).
func sheetName(cat models.Category) string {
	switch cat {
	case models.CategoryNameMismatchSecondary:
		return "Name Mismatch (Secondary)"
	case models.CategoryNameMismatchTertiary:
		return "Name Mismatch (Tertiary)"
	default:
		return cat.Label()
	}
}
