package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xuri/excelize/v2"
)

// Table is a parsed input file.
type Table struct {
	// Name is the sheet name for XLSX and the file base name for CSV.
	Name    string
	Columns []string
	Types   []DataType
	Keys    []string
	Rows    [][]any
}

// Options control parsing.
type Options struct {
	// Sheet selects the XLSX sheet. Empty means the first one.
	Sheet string

	// Delimiter of CSV files. Zero means ','; ".tsv" files default to tab.
	Delimiter rune

	// NullLiteral is read as SQL NULL, e.g. "NULL" or "\N".
	NullLiteral string
}

// ReadFile reads a CSV, TSV or XLSX file, optionally zstd compressed, picking
// the format by extension.
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := filepath.Base(path)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, ext)
	}

	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	switch ext {
	case ".csv":
		return ReadCSV(r, base, opts)
	case ".tsv":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		return ReadCSV(r, base, opts)
	case ".xlsx":
		return ReadXLSX(r, opts)
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}
}

// ReadCSV parses delimited text. name becomes Table.Name.
func ReadCSV(r io.Reader, name string, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := newTable(name, header)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if err := t.appendRow(line, record, opts.NullLiteral); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadXLSX parses one sheet of a workbook.
func ReadXLSX(r io.Reader, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := newTable(sheet, header)
	for line := 2; rows.Next(); line++ {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if len(cells) == 0 {
			continue
		}
		// Trailing empty cells are not stored in the sheet.
		for len(cells) < len(t.Columns) {
			cells = append(cells, "")
		}
		if err := t.appendRow(line, cells, opts.NullLiteral); err != nil {
			return nil, err
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return t, nil
}

func newTable(name string, header []string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		Types:   make([]DataType, len(header)),
	}
	for i, h := range header {
		col, typ, key := ParseHeader(h)
		t.Columns[i], t.Types[i] = col, typ
		if key {
			t.Keys = append(t.Keys, col)
		}
	}
	return t
}

func (t *Table) appendRow(line int, record []string, nullLiteral string) error {
	if len(record) != len(t.Columns) {
		return fmt.Errorf("row %d: %d values, expected %d", line, len(record), len(t.Columns))
	}
	row := make([]any, len(record))
	for i, raw := range record {
		v, err := Convert(raw, t.Types[i], nullLiteral)
		if err != nil {
			return fmt.Errorf("row %d, column %s: %w", line, t.Columns[i], err)
		}
		row[i] = v
	}
	t.Rows = append(t.Rows, row)
	return nil
}
