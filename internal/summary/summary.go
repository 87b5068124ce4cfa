// Package summary computes the per-file quality summary of a GeMAPS frame table.
package summary

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/opensmile-check/internal/table"
)

// GeMAPS columns the summary depends on.
const (
	ColumnFrameTime = "frameTime"
	ColumnLoudness  = "Loudness_sma3"
	ColumnPitch     = "F0semitoneFrom27.5Hz_sma3nz"
	ColumnName      = "name"
)

// DefaultLoudnessThreshold is the exclusive lower bound for a loud frame.
const DefaultLoudnessThreshold = 0.1

// ErrNoCompleteFrames is returned when every frame misses at least one required value.
var ErrNoCompleteFrames = errors.New("summary: no complete frames")

// Header lists the summary CSV columns in output order.
var Header = []string{
	"filename",
	"row_count",
	"final_timestamp",
	"filtered_row_count",
	"filtered_final_timestamp",
	"loud_row_count",
	"nonzero_pitch_count",
	"fraction_loud_bins",
	"fraction_nonzero_bins",
}

var validate = validator.New()

// Options tunes Compute.
type Options struct {
	LoudnessThreshold float64 `validate:"gte=0"`
}

// DefaultOptions returns the thresholds used by the OpenSMILE checks.
func DefaultOptions() Options {
	return Options{LoudnessThreshold: DefaultLoudnessThreshold}
}

// Summary is the one-row quality record for a single audio file.
type Summary struct {
	Filename string
	RowCount int `validate:"gte=1"`
	// FinalTimestamp is nil when the last unfiltered frame has no frameTime.
	FinalTimestamp         *float64
	FilteredRowCount       int     `validate:"gte=1,ltefield=RowCount"`
	FilteredFinalTimestamp float64
	LoudRowCount           int     `validate:"gte=0,ltefield=FilteredRowCount"`
	NonzeroPitchCount      int     `validate:"gte=0,ltefield=FilteredRowCount"`
	FractionLoudBins       float64 `validate:"gte=0,lte=1"`
	FractionNonzeroBins    float64 `validate:"gte=0,lte=1"`
}

// Compute derives the summary from an unfiltered GeMAPS frame table.
// Rows missing any of frameTime, loudness or pitch are excluded from the
// filtered statistics. A missing required column or a non-numeric value in
// one is returned as an error.
func Compute(frames *table.Table, opts Options) (*Summary, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("summary options: %w", err)
	}
	if frames.Empty() {
		return nil, ErrNoCompleteFrames
	}

	timeCol, err := frames.Index(ColumnFrameTime)
	if err != nil {
		return nil, err
	}
	loudCol, err := frames.Index(ColumnLoudness)
	if err != nil {
		return nil, err
	}
	pitchCol, err := frames.Index(ColumnPitch)
	if err != nil {
		return nil, err
	}
	nameCol, err := frames.Index(ColumnName)
	if err != nil {
		return nil, err
	}

	s := &Summary{RowCount: frames.Len()}

	last := frames.Len() - 1
	if ts, ok, err := frames.Float(last, timeCol); err != nil {
		return nil, err
	} else if ok {
		s.FinalTimestamp = &ts
	}

	first := -1
	for i := range frames.Rows {
		ts, tsOK, err := frames.Float(i, timeCol)
		if err != nil {
			return nil, err
		}
		loud, loudOK, err := frames.Float(i, loudCol)
		if err != nil {
			return nil, err
		}
		pitch, pitchOK, err := frames.Float(i, pitchCol)
		if err != nil {
			return nil, err
		}
		if !tsOK || !loudOK || !pitchOK {
			continue
		}

		if first < 0 {
			first = i
		}
		s.FilteredRowCount++
		s.FilteredFinalTimestamp = ts
		if loud > opts.LoudnessThreshold {
			s.LoudRowCount++
		}
		if pitch != 0 {
			s.NonzeroPitchCount++
		}
	}

	if s.FilteredRowCount == 0 {
		return nil, ErrNoCompleteFrames
	}

	if name := frames.Rows[first][nameCol]; !table.IsMissing(name) {
		s.Filename = name
	}
	s.FractionLoudBins = float64(s.LoudRowCount) / float64(s.FilteredRowCount)
	s.FractionNonzeroBins = float64(s.NonzeroPitchCount) / float64(s.FilteredRowCount)

	return s, nil
}

// Validate checks the count and fraction invariants.
func (s *Summary) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return nil
}

// Table renders the summary as a header plus exactly one row.
func (s *Summary) Table() *table.Table {
	finalTS := ""
	if s.FinalTimestamp != nil {
		finalTS = formatFloat(*s.FinalTimestamp)
	}
	return &table.Table{
		Header: Header,
		Rows: [][]string{{
			s.Filename,
			strconv.Itoa(s.RowCount),
			finalTS,
			strconv.Itoa(s.FilteredRowCount),
			formatFloat(s.FilteredFinalTimestamp),
			strconv.Itoa(s.LoudRowCount),
			strconv.Itoa(s.NonzeroPitchCount),
			formatFloat(s.FractionLoudBins),
			formatFloat(s.FractionNonzeroBins),
		}},
	}
}

// formatFloat writes the shortest representation that round-trips, switching
// to exponent notation outside [1e-4, 1e16) and always keeping a decimal point
// in plain notation, e.g. 1.0, 0.75, 1e-05.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	plain := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(plain, ".") {
		plain += ".0"
	}
	return plain
}
