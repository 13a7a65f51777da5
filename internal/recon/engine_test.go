package recon

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeworks/jobrecon/internal/logging"
	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/reconerror"
)

func newTestEngine() *Engine {
	return New(nil, nil, decimal.Decimal{}, &logging.MockLogger{})
}

const (
	hdrTMNo   = "REPORT TM NO."
	hdrTPName = "REPORT TP/DC NAME (IF APPLICABLE)"
	hdrDate   = "FF INSPECTION DATE"
	hdrPOType = "PO TYPE"
	hdrStatus = "STATUS"
	hdrClient = "CLIENT NAME"
)

func primaryTable(recs ...models.Record) *models.Table {
	return &models.Table{
		Source:  models.SourcePrimary,
		Headers: []string{hdrTMNo, hdrTPName, hdrDate, hdrPOType, hdrStatus, hdrClient},
		Columns: map[models.LogicalField]string{
			models.FieldJobKey:     hdrTMNo,
			models.FieldContractor: hdrTPName,
			models.FieldDate:       hdrDate,
			models.FieldPOType:     hdrPOType,
			models.FieldStatus:     hdrStatus,
			models.FieldClient:     hdrClient,
		},
		Records: recs,
	}
}

func primaryRec(row int, key, contractor, period, poType, status, client string) models.Record {
	return models.Record{
		Row:        row,
		JobKey:     key,
		Contractor: contractor,
		Period:     period,
		Fields: map[string]string{
			hdrPOType: poType,
			hdrStatus: status,
			hdrClient: client,
		},
	}
}

func sideTable(src models.Source, keyHdr, nameHdr, costHdr string, recs ...models.Record) *models.Table {
	return &models.Table{
		Source:  src,
		Headers: []string{keyHdr, nameHdr, costHdr},
		Columns: map[models.LogicalField]string{
			models.FieldJobKey:     keyHdr,
			models.FieldContractor: nameHdr,
			models.FieldCost:       costHdr,
		},
		Records: recs,
	}
}

func secondaryTable(recs ...models.Record) *models.Table {
	return sideTable(models.SourceSecondary, "JobNo", "treeprofessional", "TPCost", recs...)
}

func tertiaryTable(recs ...models.Record) *models.Table {
	return sideTable(models.SourceTertiary, "InvoiceNumber", "ContactName", "Total", recs...)
}

func sideRec(row int, key, contractor, cost string) models.Record {
	return models.Record{
		Row:        row,
		JobKey:     key,
		Contractor: contractor,
		Cost:       decimal.RequireFromString(cost),
	}
}

func TestRunPrimarySecondary(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Primary: primaryTable(
			primaryRec(1, "TM100", "Acme Tree Services Ltd", "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(2, "TM101", "Smith Arborists", "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(3, "TM102", "Lost & Found", "Apr 2025", "Emergency", "Open", "Network North"),
			primaryRec(4, "TM103", "Green Team", "Apr 2025", "Standard", "Complete", "Network North"),
		),
		Secondary: secondaryTable(
			sideRec(1, "TM100", "acme tree", "0"),
			sideRec(2, "TM101", "Jones & Co", "500"),
			sideRec(3, "TM103", "Green Team", "750"),
		),
	}

	res, err := e.Run(in, models.RunConfig{Mode: models.ModePrimarySecondary})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, res.Processed, res.Total(), "every record lands in exactly one category")
	assert.Equal(t, 1, res.Count(models.CategoryNoQuote))
	assert.Equal(t, 1, res.Count(models.CategoryNameMismatchSecondary))
	assert.Equal(t, 1, res.Count(models.CategoryMissingInSecondary))
	assert.Equal(t, 1, res.Count(models.CategoryMatched))

	noQuote := res.ByCategory[models.CategoryNoQuote][0]
	assert.Equal(t, "TM100", noQuote.JobKey)
	assert.Equal(t, "acme tree", noQuote.SecondaryName)
	assert.Equal(t, "Network South", noQuote.Client)
	assert.Equal(t, "Standard", noQuote.POType)
	assert.Equal(t, "Complete", noQuote.Status)
	assert.Equal(t, "Mar 2025", noQuote.Period)

	mismatch := res.ByCategory[models.CategoryNameMismatchSecondary][0]
	assert.Equal(t, "TM101", mismatch.JobKey)
	assert.Equal(t, "Smith Arborists", mismatch.PrimaryName)
	assert.Equal(t, "Jones & Co", mismatch.SecondaryName)
	assert.Equal(t, []string{"Jones & Co"}, mismatch.CandidateNames)

	missing := res.ByCategory[models.CategoryMissingInSecondary][0]
	assert.Equal(t, "TM102", missing.JobKey)
	assert.Empty(t, missing.SecondaryName)

	matched := res.ByCategory[models.CategoryMatched][0]
	assert.Equal(t, "TM103", matched.JobKey)
	assert.True(t, decimal.RequireFromString("750").Equal(matched.SecondaryCost))
}

func TestRunPrimarySecondaryFirstCandidateWins(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Primary: primaryTable(
			primaryRec(1, "TM200", "ACME LIMITED", "Mar 2025", "Standard", "Complete", "Network South"),
		),
		Secondary: secondaryTable(
			sideRec(1, "TM200", "Acme Ltd", "100"),
			sideRec(2, "TM200", "acme limited", "999"),
		),
	}

	res, err := e.Run(in, models.RunConfig{Mode: models.ModePrimarySecondary})
	require.NoError(t, err)

	require.Equal(t, 1, res.Count(models.CategoryMatched))
	matched := res.ByCategory[models.CategoryMatched][0]
	assert.Equal(t, "Acme Ltd", matched.SecondaryName, "first matching candidate in table order wins")
	assert.True(t, decimal.RequireFromString("100").Equal(matched.SecondaryCost))
}

func TestRunSecondaryTertiary(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Secondary: secondaryTable(
			sideRec(1, "TM102", "Acme Ltd", "1000"),
			sideRec(2, "TM103", "Green Team", "800"),
			sideRec(3, "TM104", "Smith & Sons", "300"),
			sideRec(4, "TM105", "Oak Crew", "250"),
		),
		Tertiary: tertiaryTable(
			sideRec(1, "TM102", "Acme Limited", "1200"),
			sideRec(2, "TM103", "Green Team", "802"),
			sideRec(3, "TM104", "Totally Different Name", "300"),
		),
	}

	res, err := e.Run(in, models.RunConfig{Mode: models.ModeSecondaryTertiary})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, res.Processed, res.Total())

	require.Equal(t, 1, res.Count(models.CategoryCostMismatch))
	cm := res.ByCategory[models.CategoryCostMismatch][0]
	assert.Equal(t, "TM102", cm.JobKey)
	assert.Equal(t, "Acme Limited", cm.TertiaryName)
	assert.True(t, decimal.RequireFromString("200").Equal(cm.Difference))
	assert.Equal(t, "16.7%", cm.DiffPercent)

	require.Equal(t, 1, res.Count(models.CategoryMatched))
	assert.Equal(t, "TM103", res.ByCategory[models.CategoryMatched][0].JobKey,
		"costs within tolerance reconcile")

	require.Equal(t, 1, res.Count(models.CategoryNameMismatchTertiary))
	nm := res.ByCategory[models.CategoryNameMismatchTertiary][0]
	assert.Equal(t, "TM104", nm.JobKey)
	assert.Equal(t, []string{"Totally Different Name"}, nm.CandidateNames)

	require.Equal(t, 1, res.Count(models.CategoryMissingInTertiary))
	assert.Equal(t, "TM105", res.ByCategory[models.CategoryMissingInTertiary][0].JobKey)
}

func TestRunSecondaryTertiaryDedup(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Secondary: secondaryTable(
			sideRec(1, "TM200", "Acme Ltd", "100"),
			sideRec(2, "TM200", "ACME Limited", "100"),
		),
		Tertiary: tertiaryTable(
			sideRec(1, "TM200", "Acme", "100"),
		),
	}

	res, err := e.Run(in, models.RunConfig{Mode: models.ModeSecondaryTertiary})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed, "rows collapsing to one (key, canonical name) pair classify once")
	assert.Equal(t, 1, res.Count(models.CategoryMatched))
}

func TestRunThreeWay(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Primary: primaryTable(
			primaryRec(1, "TM1", "Acme Ltd", "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(2, "TM2", "Beta Felling", "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(3, "TM3", "Gamma Grounds", "Apr 2025", "Standard", "Open", "Network North"),
			primaryRec(4, "TM4", "Delta Crew", "Apr 2025", "Emergency", "Open", "Network North"),
		),
		Secondary: secondaryTable(
			sideRec(1, "TM1", "Acme Limited", "1000"),
			sideRec(2, "TM2", "Beta Felling", "0"),
			sideRec(3, "TM4", "Delta Crew", "500"),
		),
		Tertiary: tertiaryTable(
			sideRec(1, "TM1", "Acme", "1005"),
		),
	}

	res, err := e.Run(in, models.RunConfig{Mode: models.ModeThreeWay})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, res.Processed, res.Total())

	require.Equal(t, 1, res.Count(models.CategoryMatched))
	matched := res.ByCategory[models.CategoryMatched][0]
	assert.Equal(t, "TM1", matched.JobKey)
	assert.Equal(t, "Acme Ltd", matched.PrimaryName)
	assert.Equal(t, "Acme Limited", matched.SecondaryName)
	assert.Equal(t, "Acme", matched.TertiaryName)
	assert.Equal(t, "Network South", matched.Client, "primary context carries through both legs")

	require.Equal(t, 1, res.Count(models.CategoryNoQuote))
	assert.Equal(t, "TM2", res.ByCategory[models.CategoryNoQuote][0].JobKey,
		"zero-cost secondary leg short-circuits before the tertiary join")

	require.Equal(t, 1, res.Count(models.CategoryMissingInSecondary))
	assert.Equal(t, "TM3", res.ByCategory[models.CategoryMissingInSecondary][0].JobKey)

	require.Equal(t, 1, res.Count(models.CategoryMissingInTertiary))
	mit := res.ByCategory[models.CategoryMissingInTertiary][0]
	assert.Equal(t, "TM4", mit.JobKey)
	assert.Equal(t, "Delta Crew", mit.PrimaryName)
	assert.True(t, decimal.RequireFromString("500").Equal(mit.SecondaryCost))
	assert.Equal(t, "Emergency", mit.POType)
}

func TestRunExclusions(t *testing.T) {
	e := newTestEngine()
	excluded := "Peter Dubiez Tree Solutions"

	in := Inputs{
		Primary: primaryTable(
			primaryRec(1, "TM1", excluded, "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(2, "TM2", "Acme Ltd", "Mar 2025", "Standard", "Complete", "Network South"),
		),
		Secondary: secondaryTable(
			sideRec(1, "TM2", excluded, "400"),
		),
	}

	cfg := models.RunConfig{
		Mode:       models.ModePrimarySecondary,
		Exclusions: models.NewStringSet(excluded),
	}
	res, err := e.Run(in, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilteredOut, "excluded driving row produces no classification")
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Count(models.CategoryMissingInSecondary),
		"excluded join-side candidates never enter the index")
}

func TestRunFiltersAndInvalidKeys(t *testing.T) {
	e := newTestEngine()

	in := Inputs{
		Primary: primaryTable(
			primaryRec(1, "TM1", "Acme Ltd", "Mar 2025", "Standard", "Complete", "Network South"),
			primaryRec(2, "TM2", "Acme Ltd", "Apr 2025", "Standard", "Complete", "Network South"),
			primaryRec(3, "TM3", "Acme Ltd", "Mar 2025", "Emergency", "Complete", "Network South"),
			primaryRec(4, "", "Acme Ltd", "Mar 2025", "Standard", "Complete", "Network South"),
		),
		Secondary: secondaryTable(
			sideRec(1, "TM1", "Acme Ltd", "100"),
		),
	}

	cfg := models.RunConfig{
		Mode: models.ModePrimarySecondary,
		Filters: models.Filters{
			Periods: models.NewStringSet("Mar 2025"),
			POTypes: models.NewStringSet("Standard"),
		},
	}
	res, err := e.Run(in, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 2, res.FilteredOut)
	assert.Equal(t, 1, res.InvalidKeys)
	assert.Equal(t, 1, res.Count(models.CategoryMatched))
}

func TestRunMissingTable(t *testing.T) {
	e := newTestEngine()

	_, err := e.Run(Inputs{Primary: primaryTable()}, models.RunConfig{Mode: models.ModePrimarySecondary})
	var mte *reconerror.MissingTableError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, string(models.SourceSecondary), mte.Source)
}

func TestRunMissingColumns(t *testing.T) {
	e := newTestEngine()

	broken := secondaryTable()
	delete(broken.Columns, models.FieldCost)

	in := Inputs{Primary: primaryTable(), Secondary: broken}
	_, err := e.Run(in, models.RunConfig{Mode: models.ModePrimarySecondary})

	var mce *reconerror.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, string(models.SourceSecondary), mce.Source)
	assert.Contains(t, mce.Fields, string(models.FieldCost))
}

func TestRunUnknownMode(t *testing.T) {
	e := newTestEngine()
	_, err := e.Run(Inputs{}, models.RunConfig{Mode: "sideways"})
	assert.Error(t, err)
}

func TestCollectFilterOptions(t *testing.T) {
	tbl := primaryTable(
		primaryRec(1, "TM1", "Acme", "Apr 2025", "Standard", "Complete", "Network South"),
		primaryRec(2, "TM2", "Acme", "No Date", "Emergency", "Open", "Network North"),
		primaryRec(3, "TM3", "Acme", "Mar 2025", "Standard", "Complete", "Network South"),
		primaryRec(4, "TM4", "Acme", "Dec 2024", "Standard", "Complete", "Network South"),
	)

	opts := CollectFilterOptions(tbl)
	assert.Equal(t, []string{"Dec 2024", "Mar 2025", "Apr 2025", "No Date"}, opts.Periods,
		"periods chronological with the no-date bucket last")
	assert.Equal(t, []string{"Emergency", "Standard"}, opts.POTypes)
	assert.Equal(t, []string{"Complete", "Open"}, opts.Status)
	assert.Equal(t, []string{"Network North", "Network South"}, opts.Clients)
}
