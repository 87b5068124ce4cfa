// Package table reads and writes the delimited feature tables produced by OpenSMILE.
// Cells are kept as raw strings so a table can be rewritten with another delimiter
// without altering any value.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Delimiters used by OpenSMILE output and by the normalized rewrite.
const (
	Semicolon rune = ';'
	Comma     rune = ','
)

var (
	// ErrNoColumns is returned when the input has no header row at all.
	ErrNoColumns = errors.New("table: no columns to parse")
	// ErrMissingColumn is returned when a named column is not in the header.
	ErrMissingColumn = errors.New("table: missing column")
	// ErrNotNumeric is returned when a non-missing cell cannot be parsed as a float.
	ErrNotNumeric = errors.New("table: value is not numeric")
)

// naTokens mirrors the default missing-value markers of dataframe CSV readers.
var naTokens = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"<NA>":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"1.#IND":   {},
	"1.#QNAN":  {},
}

// IsMissing reports whether a raw cell represents a missing value.
func IsMissing(cell string) bool {
	_, ok := naTokens[strings.TrimSpace(cell)]
	return ok
}

// Table is a header plus data rows. Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Index returns the position of the first column with the given name.
func (t *Table) Index(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// Float parses the cell at row, col. ok is false when the cell is missing.
func (t *Table) Float(row, col int) (v float64, ok bool, err error) {
	cell := t.Rows[row][col]
	if IsMissing(cell) {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: row %d column %q: %q", ErrNotNumeric, row, t.Header[col], cell)
	}
	return v, true, nil
}

// Filter returns a new table holding only the rows keep accepts.
// Row slices are shared with the receiver.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Header: t.Header}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Read parses a delimited table with a header row.
// Blank lines are skipped. Short rows are padded with missing cells;
// rows longer than the header are an error.
func Read(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("read row: line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// Write emits the header and rows verbatim using delim.
func (t *Table) Write(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
