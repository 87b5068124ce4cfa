package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gemapsSample = `name;frameTime;Loudness_sma3;F0semitoneFrom27.5Hz_sma3nz
'unknown';0.000000;0.2;12.5
'unknown';0.010000;;13.0
'unknown';0.020000;0.05;0
`

func TestRead(t *testing.T) {
	t.Run("parses header and rows", func(t *testing.T) {
		tbl, err := Read(strings.NewReader(gemapsSample), Semicolon)
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "frameTime", "Loudness_sma3", "F0semitoneFrom27.5Hz_sma3nz"}, tbl.Header)
		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, []string{"'unknown'", "0.010000", "", "13.0"}, tbl.Rows[1])
	})

	t.Run("header only is an empty table", func(t *testing.T) {
		tbl, err := Read(strings.NewReader("a;b;c\n"), Semicolon)
		require.NoError(t, err)
		assert.True(t, tbl.Empty())
	})

	t.Run("zero bytes has no columns", func(t *testing.T) {
		_, err := Read(strings.NewReader(""), Semicolon)
		assert.ErrorIs(t, err, ErrNoColumns)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		tbl, err := Read(strings.NewReader("a;b\n\n1;2\n\n3;4\n"), Semicolon)
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("short rows are padded", func(t *testing.T) {
		tbl, err := Read(strings.NewReader("a;b;c\n1;2\n"), Semicolon)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", ""}, tbl.Rows[0])
	})

	t.Run("long rows are rejected", func(t *testing.T) {
		_, err := Read(strings.NewReader("a;b\n1;2;3\n"), Semicolon)
		assert.Error(t, err)
	})

	t.Run("bare quote is rejected", func(t *testing.T) {
		_, err := Read(strings.NewReader("a;b\n1;x\"y\n"), Semicolon)
		assert.Error(t, err)
	})
}

func TestIsMissing(t *testing.T) {
	tests := []struct {
		cell     string
		expected bool
	}{
		{"", true},
		{" ", true},
		{"NaN", true},
		{"nan", true},
		{"NA", true},
		{"NULL", true},
		{"<NA>", true},
		{"0", false},
		{"0.0", false},
		{"-1.5", false},
		{"'unknown'", false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMissing(tt.cell))
		})
	}
}

func TestTable_IndexAndFloat(t *testing.T) {
	tbl, err := Read(strings.NewReader("x;y\n1.5;NaN\nabc;2\n"), Semicolon)
	require.NoError(t, err)

	x, err := tbl.Index("x")
	require.NoError(t, err)
	y, err := tbl.Index("y")
	require.NoError(t, err)

	_, err = tbl.Index("z")
	assert.ErrorIs(t, err, ErrMissingColumn)

	v, ok, err := tbl.Float(0, x)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok, err = tbl.Float(0, y)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = tbl.Float(1, x)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestTable_Filter(t *testing.T) {
	tbl, err := Read(strings.NewReader("x\n1\n\"\"\n3\n"), Comma)
	require.NoError(t, err)

	out := tbl.Filter(func(row []string) bool { return !IsMissing(row[0]) })
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, tbl.Header, out.Header)
}

func TestTable_WriteRoundTrip(t *testing.T) {
	in := "name;frameTime;note\n'unknown';0.01;has,comma\n\"quoted;semi\";0.02;\"say \"\"hi\"\"\"\n"
	orig, err := Read(strings.NewReader(in), Semicolon)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, orig.Write(&buf, Comma))

	assert.True(t, strings.HasPrefix(buf.String(), "name,frameTime,note\n"))

	again, err := Read(&buf, Comma)
	require.NoError(t, err)
	assert.Equal(t, orig.Header, again.Header)
	assert.Equal(t, orig.Rows, again.Rows)
}
