package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/recon"
	"treeworks/jobrecon/internal/report"
)

func TestWriteMismatchCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatches.csv")

	records := []models.ClassifiedRecord{
		{
			Category:      models.CategoryCostMismatch,
			JobKey:        "TM102",
			SecondaryName: "Acme Ltd",
			TertiaryName:  "Acme Limited",
			SecondaryCost: decimal.RequireFromString("1000"),
			TertiaryCost:  decimal.RequireFromString("1200"),
			Difference:    decimal.RequireFromString("200"),
			DiffPercent:   "16.7%",
			Period:        "Mar 2025",
		},
		{
			Category:    models.CategoryMissingInSecondary,
			JobKey:      "TM103",
			PrimaryName: "Jones & Co",
			Client:      "Network South",
		},
	}

	require.NoError(t, WriteMismatchCSV(path, records))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Job No", "Mismatch Type", "Tracker Contractor", "Report Contractor",
		"Ledger Contact", "Report Cost", "Ledger Total", "Difference",
		"Diff %", "Closest Candidate", "Client", "PO Type", "Status", "Month",
	}, rows[0])

	assert.Equal(t, "TM102", rows[1][0])
	assert.Equal(t, "Cost Mismatch", rows[1][1])
	assert.Equal(t, "1000.00", rows[1][5])
	assert.Equal(t, "1200.00", rows[1][6])
	assert.Equal(t, "200.00", rows[1][7])
	assert.Equal(t, "16.7%", rows[1][8])

	assert.Equal(t, "TM103", rows[2][0])
	assert.Equal(t, "Missing in Secondary", rows[2][1])
	assert.Equal(t, "", rows[2][5], "zero costs export as blank cells")
}

func TestWriteMismatchCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteMismatchCSV(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Job No", "header row is written even with no records")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	res := &recon.Results{
		Mode: models.ModeThreeWay,
		ByCategory: map[models.Category][]models.ClassifiedRecord{
			models.CategoryMatched: {
				{Category: models.CategoryMatched, JobKey: "TM1", PrimaryName: "Acme Ltd"},
			},
			models.CategoryNoQuote: {
				{Category: models.CategoryNoQuote, JobKey: "TM2", PrimaryName: "Jones & Co", Period: "Mar 2025"},
			},
		},
		Processed: 2,
	}
	sum := report.Summarize(res)

	require.NoError(t, WriteWorkbook(path, res, sum))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Matched")
	assert.Contains(t, sheets, "No Quote in Secondary (Cost=0)")
	assert.NotContains(t, sheets, "Cost Mismatch", "empty categories get no sheet")

	rows, err := f.GetRows("No Quote in Secondary (Cost=0)")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TM2", rows[1][0])
	assert.Equal(t, "Jones & Co", rows[1][1])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mode", "three-way"}, summary[0])
}
