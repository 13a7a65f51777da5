// Package ingest loads uploaded spreadsheet and CSV files into the tables
// the engine consumes. It owns all file I/O on the input side; the engine
// itself never touches files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"treeworks/jobrecon/internal/columns"
	"treeworks/jobrecon/internal/logging"
	"treeworks/jobrecon/internal/models"
	"treeworks/jobrecon/internal/normalize"
)

// Loader parses input files into normalized Tables. A Table is built once
// per upload and is read-only afterwards.
type Loader struct {
	norm    *normalize.Normalizer
	aliases map[models.Source]map[models.LogicalField][]string
	log     logging.Logger
}

// NewLoader creates a Loader. A nil aliases map uses the default header
// aliases per source.
func NewLoader(norm *normalize.Normalizer, aliases map[models.Source]map[models.LogicalField][]string, logger logging.Logger) *Loader {
	if norm == nil {
		norm = normalize.Default()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Loader{norm: norm, aliases: aliases, log: logger}
}

// Load reads a file into a Table for the given source role, dispatching on
// the file extension (.xlsx or .csv).
func (l *Loader) Load(path string, src models.Source) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return l.LoadXLSX(path, src)
	case ".csv":
		return l.LoadCSV(path, src)
	default:
		return nil, fmt.Errorf("unsupported input file type %q", filepath.Ext(path))
	}
}

// LoadXLSX reads the first sheet of a workbook into a Table.
func (l *Loader) LoadXLSX(path string, src models.Source) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.log.WithError(cerr).Warn("Failed to close workbook",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	l.log.Info("Loaded workbook",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldSource, Value: string(src)},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return l.build(src, rows)
}

// LoadCSV reads a CSV file into a Table. Ragged rows are tolerated: short
// rows are padded, long rows keep their extra cells unaddressed.
func (l *Loader) LoadCSV(path string, src models.Source) (*models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			l.log.WithError(cerr).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %w", path, err)
	}

	l.log.Info("Loaded CSV file",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldSource, Value: string(src)},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return l.build(src, rows)
}

// build turns raw rows into a normalized Table: it locates the header row
// (skipping a leading banner), strips void columns, resolves the source's
// logical fields, and derives each record's canonical fields. Missing
// columns do not fail the build; the engine rejects a mode up front when a
// required field is absent.
func (l *Loader) build(src models.Source, rows [][]string) (*models.Table, error) {
	headerIdx := columns.HeaderRowIndex(rows)
	if headerIdx >= len(rows) {
		return nil, errors.New("no header row found")
	}

	// Drop structurally void columns, remembering where the survivors sit
	// in the raw rows.
	var headers []string
	var positions []int
	for i, h := range rows[headerIdx] {
		if columns.IsVoid(h) {
			continue
		}
		headers = append(headers, strings.TrimSpace(h))
		positions = append(positions, i)
	}
	if len(headers) == 0 {
		return nil, errors.New("header row has no usable columns")
	}

	aliases := l.aliasesFor(src)
	colmap, missing := columns.ResolveAll(headers, aliases)
	if len(missing) > 0 {
		fields := make([]string, len(missing))
		for i, f := range missing {
			fields[i] = string(f)
		}
		l.log.Warn("Some logical fields did not resolve",
			logging.Field{Key: logging.FieldSource, Value: string(src)},
			logging.Field{Key: logging.FieldColumn, Value: strings.Join(fields, ", ")})
	}

	t := &models.Table{
		Source:  src,
		Headers: headers,
		Columns: colmap,
	}

	for rowNum, raw := range rows[headerIdx+1:] {
		if isEmptyRow(raw) {
			continue
		}
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if positions[i] < len(raw) {
				fields[h] = strings.TrimSpace(raw[positions[i]])
			}
		}
		rec := models.Record{
			Row:    rowNum + 1,
			Fields: fields,
		}
		if col := colmap[models.FieldJobKey]; col != "" {
			if key, err := l.norm.JobKey(fields[col]); err == nil {
				rec.JobKey = key
			}
		}
		if col := colmap[models.FieldContractor]; col != "" {
			rec.Contractor = fields[col]
		}
		if col := colmap[models.FieldCost]; col != "" {
			rec.Cost = l.norm.Cost(fields[col])
		}
		if col := colmap[models.FieldDate]; col != "" {
			rec.Period = l.norm.PeriodBucket(fields[col])
		} else {
			rec.Period = normalize.NoDateBucket
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func (l *Loader) aliasesFor(src models.Source) map[models.LogicalField][]string {
	if l.aliases != nil {
		if m, ok := l.aliases[src]; ok {
			return m
		}
	}
	return columns.DefaultAliases(src)
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
