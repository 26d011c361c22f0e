// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package table_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

type env struct {
	sheet     string
	top, left int
	tables    []*table.Table
}

func (e env) Locate(name string) (expr.Location, error) {
	for _, t := range e.tables {
		if name == "" || name == t.Name() {
			return expr.Location{Sheet: e.sheet, Top: e.top, Left: e.left, Table: t}, nil
		}
	}
	return expr.Location{}, fmt.Errorf("table %q not found", name)
}

func TestSimple(t *testing.T) {
	tbl, err := table.New("simple", table.Data{
		Columns: []any{"A", "B", "C"},
		Rows:    [][]any{{1, 2, 3}, {4, 5, 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Height())
	assert.Equal(t, 3, tbl.Width())
	assert.Equal(t, []any{0, 1}, tbl.Index())

	grid, err := tbl.Materialize(nil, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"A", "B", "C"}, {1, 2, 3}, {4, 5, 6}}, grid)

	v, err := tbl.Cell(1, "B")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestFormulas(t *testing.T) {
	tbl, err := table.New("table_1", table.Data{
		Columns: []any{"col_1", "col_2", "col_3"},
		Rows: [][]any{
			{1, 4, expr.Call("SUM", expr.Cell{Col: "col_1"}, expr.Cell{Col: "col_2"})},
			{2, 5, expr.Call("SUM", expr.Cell{Col: "col_1"}, expr.Cell{Col: "col_2"})},
			{3, 6, table.Value{V: expr.Add(expr.Cell{Col: "col_1", Static: expr.Known(3)}, 6)}},
		},
	})
	require.NoError(t, err)

	values := make(map[table.Coord]any)
	grid, err := tbl.Materialize(env{sheet: "Sheet1", tables: []*table.Table{tbl}}, 0, 0, values)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"col_1", "col_2", "col_3"},
		{1, 4, "=SUM('Sheet1'!A2,'Sheet1'!B2)"},
		{2, 5, "=SUM('Sheet1'!A3,'Sheet1'!B3)"},
		{3, 6, "='Sheet1'!A4+6"},
	}, grid)
	assert.Equal(t, map[table.Coord]any{{Row: 3, Col: 2}: int64(9)}, values)

	// Placed elsewhere, the relative references move along.
	grid, err = tbl.Materialize(env{sheet: "Sheet1", top: 5, left: 1, tables: []*table.Table{tbl}}, 5, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "=SUM('Sheet1'!B7,'Sheet1'!C7)", grid[1][2])
}

func TestIndex(t *testing.T) {
	tbl, err := table.New("idx", table.Data{
		Columns:    []any{"a", "b"},
		Index:      []any{"x", "y"},
		IndexNames: []any{"x"},
		Rows:       [][]any{{1, 2}, {3, 4}},
	}, table.WithIndex(true))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Width())

	grid, err := tbl.Materialize(nil, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"x_1", "a", "b"}, {"x", 1, 2}, {"y", 3, 4}}, grid)

	off, err := tbl.ColumnOffset("b")
	require.NoError(t, err)
	assert.Equal(t, 2, off)
	off, err = tbl.RowOffset("y")
	require.NoError(t, err)
	assert.Equal(t, 2, off)

	noHeader, err := table.New("nh", table.Data{
		Columns: []any{"a"}, Index: []any{"x"}, Rows: [][]any{{1}},
	}, table.WithIndex(true), table.WithHeader(false))
	require.NoError(t, err)
	grid, err = noHeader.Materialize(nil, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"x", 1}}, grid)
}

func TestMultiLevel(t *testing.T) {
	tbl, err := table.New("ml", table.Data{
		Columns: []any{
			expr.Tuple{"g1", "a"}, expr.Tuple{"g1", "b"}, expr.Tuple{"g2", "a"},
		},
		Index:      []any{expr.Tuple{"r", 1}, expr.Tuple{"r", 2}},
		IndexNames: []any{"k", "n"},
		Rows:       [][]any{{1, 2, 3}, {4, 5, 6}},
	}, table.WithIndex(true))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.HeaderHeight())
	assert.Equal(t, 2, tbl.IndexWidth())
	assert.Equal(t, 4, tbl.Height())
	assert.Equal(t, 5, tbl.Width())

	grid, err := tbl.Materialize(nil, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{nil, nil, "g1", "g1", "g2"},
		{"k", "n", "a", "b", "a"},
		{"r", 1, 1, 2, 3},
		{"r", 2, 4, 5, 6},
	}, grid)

	off, err := tbl.ColumnOffset(expr.Tuple{"g2", "a"})
	require.NoError(t, err)
	assert.Equal(t, 4, off)
	_, err = tbl.ColumnOffset("g2")
	assert.ErrorIs(t, err, table.ErrLabelNotFound)
}

func TestNewErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		Data table.Data
		Opts []table.Option
		Err  error
	}{
		"ragged": {
			Data: table.Data{Columns: []any{"a", "b"}, Rows: [][]any{{1}}},
			Err:  table.ErrShape,
		},
		"index": {
			Data: table.Data{Columns: []any{"a"}, Index: []any{1, 2}, Rows: [][]any{{1}}},
			Err:  table.ErrShape,
		},
		"duplicate": {
			Data: table.Data{Columns: []any{"a", "a"}},
			Err:  table.ErrShape,
		},
		"levels": {
			Data: table.Data{Columns: []any{expr.Tuple{"a", "b"}, "c"}},
			Err:  table.ErrShape,
		},
		"columnStyle": {
			Data: table.Data{Columns: []any{"a"}},
			Opts: []table.Option{table.WithColumnStyle("b", style.Bold)},
			Err:  table.ErrLabelNotFound,
		},
		"width": {
			Data: table.Data{Columns: []any{"a"}},
			Opts: []table.Option{table.WithColumnWidth("b", 12)},
			Err:  table.ErrLabelNotFound,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := table.New("t", tc.Data, tc.Opts...)
			assert.ErrorIs(t, err, tc.Err)
		})
	}
}

func TestMaterializeErrors(t *testing.T) {
	tbl, err := table.New("t", table.Data{
		Columns: []any{"a"},
		Rows:    [][]any{{expr.Cell{Col: "missing"}}},
	})
	require.NoError(t, err)
	_, err = tbl.Materialize(env{sheet: "S", tables: []*table.Table{tbl}}, 0, 0, nil)
	assert.ErrorIs(t, err, table.ErrLabelNotFound)

	_, err = tbl.IndexOffset()
	assert.ErrorIs(t, err, table.ErrNoIndex)
	assert.True(t, errors.Is(err, expr.ErrLabelNotFound))
}

func TestArrayFormula(t *testing.T) {
	src, err := table.New("src", table.Data{
		Columns: []any{"x", "y"},
		Rows:    [][]any{{1, 2}, {3, 4}},
	})
	require.NoError(t, err)
	f := expr.Call("TRANSPOSE", expr.Range{Left: "x", Right: "y", Table: "src"})

	arr, err := table.NewArrayFormula("arr", f, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, arr.HeaderHeight())
	got, cached, ok := arr.ArrayFormula()
	require.True(t, ok)
	assert.Nil(t, cached)
	assert.Equal(t, f, got)

	grid, err := arr.Materialize(env{sheet: "Sheet1", tables: []*table.Table{src}}, 4, 0, nil)
	require.NoError(t, err)
	want := "{=TRANSPOSE('Sheet1'!$A$2:$B$3)}"
	assert.Equal(t, [][]any{{want, want}, {want, want}}, grid)

	arr, err = table.NewArrayFormula("arr", f, 2, 2, table.WithCachedValues([][]any{{1, 3}, {2, 4}}))
	require.NoError(t, err)
	grid, err = arr.Materialize(nil, 4, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1, 3}, {2, 4}}, grid)

	_, err = table.NewArrayFormula("arr", f, 2, 2, table.WithCachedValues([][]any{{1}}))
	assert.ErrorIs(t, err, table.ErrShape)
	_, err = table.NewArrayFormula("arr", f, 0, 2)
	assert.ErrorIs(t, err, table.ErrShape)
}

func TestStyles(t *testing.T) {
	pct, ok := style.Named("pct")
	require.True(t, ok)
	red := style.CellStyle{TextColor: style.Some(style.RGB(0xFF0000))}
	tbl, err := table.New("styled", table.Data{
		Columns: []any{"a", "b", "c"},
		Rows: [][]any{
			{1, 0.5, table.Value{V: 3, Style: style.Bold}},
			{4, 0.25, 6},
		},
	},
		table.WithColumnStyle("b", pct),
		table.WithRowStyle(1, red),
		table.WithColumnHeaderStyle("c", style.CellStyle{}),
	)
	require.NoError(t, err)

	even := style.CellStyle{BgColor: style.Some(style.RGB(0xEAF1FA))}
	odd := style.CellStyle{BgColor: style.Some(style.RGB(0xFFFFFF))}
	got := tbl.Styles(new(style.Cache))
	assert.Equal(t, map[table.Coord]style.CellStyle{
		{Row: 0, Col: 0}: style.Bold,
		{Row: 0, Col: 1}: style.Bold,
		{Row: 1, Col: 0}: even,
		{Row: 1, Col: 1}: style.Merge(even, pct),
		{Row: 1, Col: 2}: style.Merge(even, style.Bold),
		{Row: 2, Col: 0}: style.Merge(odd, red),
		{Row: 2, Col: 1}: style.Merge(odd, pct, red),
		{Row: 2, Col: 2}: style.Merge(odd, red),
	}, got)

	plain, _ := style.NamedTable("plain")
	tbl, err = table.New("plain", table.Data{
		Columns: []any{"a"}, Index: []any{"x"}, Rows: [][]any{{1}},
	}, table.WithStyle(plain), table.WithIndex(true), table.WithColumnWidth("a", 20))
	require.NoError(t, err)
	assert.Equal(t, map[table.Coord]style.CellStyle{
		{Row: 0, Col: 0}: style.Bold,
		{Row: 0, Col: 1}: style.Bold,
		{Row: 1, Col: 0}: style.Bold,
	}, tbl.Styles(nil))
	assert.Equal(t, map[int]float64{1: 20}, tbl.ColumnWidths())
}

func TestStripesUnderIndex(t *testing.T) {
	tbl, err := table.New("t", table.Data{
		Columns: []any{"a"}, Index: []any{"x"}, Rows: [][]any{{1}},
	}, table.WithIndex(true))
	require.NoError(t, err)
	s := tbl.Styles(nil)
	assert.Equal(t, style.CellStyle{Bold: style.Some(true), BgColor: style.Some(style.RGB(0xEAF1FA))}, s[table.Coord{Row: 1, Col: 0}])
}

func TestStyled(t *testing.T) {
	v, err := table.Styled(0.5, "pct")
	require.NoError(t, err)
	s, ok := table.StyleOf(v)
	assert.True(t, ok)
	assert.True(t, s.Percentage.V)
	assert.Equal(t, 0.5, table.Unwrap(v))
	assert.Equal(t, 1, table.Unwrap(1))

	_, err = table.Styled(1, "fancy")
	assert.Error(t, err)
}

func TestIntegerLabels(t *testing.T) {
	tbl, err := table.New("t", table.Data{
		Columns: []any{"a", "b"},
		Rows: [][]any{
			{1, nil},
			{2, expr.Cell{Col: "a", Row: int64(0)}},
		},
	})
	require.NoError(t, err)
	v, err := tbl.Cell(uint16(1), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	grid, err := tbl.Materialize(env{sheet: "Sheet1", tables: []*table.Table{tbl}}, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "='Sheet1'!$A$2", grid[2][1])
}
