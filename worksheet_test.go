// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

func mustTable(t *testing.T, name string, data table.Data, opts ...table.Option) *table.Table {
	t.Helper()
	tbl, err := table.New(name, data, opts...)
	require.NoError(t, err)
	return tbl
}

func mustSheet(t *testing.T, name string) *xltable.Worksheet {
	t.Helper()
	ws, err := xltable.NewWorksheet(name)
	require.NoError(t, err)
	return ws
}

func abc(t *testing.T) *table.Table {
	return mustTable(t, "table_1", table.Data{
		Columns: []any{"A", "B", "C"},
		Rows:    [][]any{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}},
	})
}

func TestSimpleTable(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	row, col, err := ws.AddTable(abc(t))
	require.NoError(t, err)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
	assert.Equal(t, 5, ws.NextRow())

	row, _, err = ws.AddTable(mustTable(t, "table_2", table.Data{
		Columns: []any{"X", "Y"},
		Rows:    [][]any{{1, 4}, {2, 5}, {3, 6}},
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, row)
	assert.Equal(t, 10, ws.NextRow())

	g, err := ws.Grid(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"A", "B", "C"},
		{1, 4, 7},
		{2, 5, 8},
		{3, 6, 9},
		{nil, nil, nil},
		{"X", "Y", nil},
		{1, 4, nil},
		{2, 5, nil},
		{3, 6, nil},
	}, g.Cells)

	var n int
	for i, r := range g.Rows() {
		assert.Len(t, r, 3)
		n = i + 1
	}
	assert.Equal(t, 9, n)
}

func TestNextRow(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(abc(t), xltable.AtRow(20), xltable.WithRowSpaces(3))
	require.NoError(t, err)
	assert.Equal(t, 27, ws.NextRow())

	// a table placed above does not move the cursor back
	_, _, err = ws.AddTable(mustTable(t, "side", table.Data{Columns: []any{"a"}, Rows: [][]any{{1}}}),
		xltable.AtRow(0), xltable.AtCol(10))
	require.NoError(t, err)
	assert.Equal(t, 27, ws.NextRow())

	ws.SetNextRow(40)
	row, _, err := ws.AddTable(mustTable(t, "next", table.Data{Columns: []any{"a"}}))
	require.NoError(t, err)
	assert.Equal(t, 40, row)
	assert.Equal(t, 42, ws.NextRow())

	row, col, err := ws.TablePos("side")
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 10}, [2]int{row, col})
	_, _, err = ws.TablePos("nope")
	assert.ErrorIs(t, err, xltable.ErrTableNotFound)
	_, err = ws.Table("nope")
	assert.ErrorIs(t, err, xltable.ErrTableNotFound)
	assert.Len(t, ws.Tables(), 3)
}

func TestAddTableErrors(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(abc(t))
	require.NoError(t, err)

	_, _, err = ws.AddTable(abc(t))
	assert.ErrorIs(t, err, xltable.ErrDuplicateTableName)

	other := mustTable(t, "other", table.Data{Columns: []any{"a"}, Rows: [][]any{{1}}})
	_, _, err = ws.AddTable(other, xltable.AtRow(2), xltable.AtCol(2))
	assert.ErrorIs(t, err, xltable.ErrOverlap)
	_, _, err = ws.AddTable(other, xltable.AtRow(-1))
	assert.ErrorIs(t, err, xltable.ErrInvalidArgument)
	_, _, err = ws.AddTable(other, xltable.AtRow(2), xltable.AtCol(3))
	assert.NoError(t, err)

	assert.ErrorIs(t, ws.AddValue(-1, 0, 1), xltable.ErrInvalidArgument)
	assert.ErrorIs(t, ws.AddRowGroup(true, "missing"), xltable.ErrTableNotFound)
	assert.ErrorIs(t, ws.AddRowGroup(true), xltable.ErrInvalidArgument)
}

func TestSheetNames(t *testing.T) {
	for name, ok := range map[string]bool{
		"Sheet1":                             true,
		"Bob's":                              true,
		"":                                   false,
		"'quoted'":                           false,
		"a/b":                                false,
		"what?":                              false,
		"[x]":                                false,
		"0123456789012345678901234567890":    true,
		"0123456789012345678901234567890123": false,
	} {
		err := xltable.ValidSheetName(name)
		if ok {
			assert.NoError(t, err, name)
		} else {
			assert.ErrorIs(t, err, xltable.ErrInvalidArgument, name)
		}
	}
}

func TestFreeValues(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(abc(t))
	require.NoError(t, err)
	require.NoError(t, ws.AddValue(6, 4, "x"))
	require.NoError(t, ws.AddValue(0, 4, expr.Call("SUM", expr.Column{Col: "A", Table: "table_1"})))
	require.NoError(t, ws.AddValue(1, 4, table.Value{V: expr.Add(1, 2), Style: style.Bold}))
	require.NoError(t, ws.AddValue(2, 0, "over"))

	g, err := ws.Grid(nil)
	require.NoError(t, err)
	assert.Equal(t, 7, g.Height())
	assert.Equal(t, 5, g.Width())
	assert.Equal(t, "=SUM('Sheet1'!$A$2:$A$4)", g.Cells[0][4])
	assert.Equal(t, "=1+2", g.Cells[1][4])
	assert.Equal(t, "over", g.Cells[2][0])
	assert.Equal(t, "x", g.Cells[6][4])
	assert.Nil(t, g.Cells[5][0])
	assert.Equal(t, map[xltable.Coord]any{{Row: 1, Col: 4}: int64(3)}, g.Values)
	assert.Equal(t, style.Bold, g.Styles[xltable.Coord{Row: 1, Col: 4}])

	// a relative reference needs a table
	require.NoError(t, ws.AddValue(7, 0, expr.Cell{Col: "A"}))
	_, err = ws.Grid(nil)
	assert.ErrorIs(t, err, xltable.ErrNoActiveTable)
}

func TestStyles(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	pct, _ := style.Named("pct")
	tbl := mustTable(t, "t", table.Data{
		Columns: []any{"a", "b"},
		Rows:    [][]any{{1, 0.5}},
	}, table.WithColumnStyle("b", pct))
	_, _, err := ws.AddTable(tbl, xltable.AtRow(2), xltable.AtCol(1))
	require.NoError(t, err)
	red := style.CellStyle{TextColor: style.Some(style.RGB(0xFF0000))}
	require.NoError(t, ws.AddValue(3, 2, table.Value{V: 0.75, Style: red}))

	even := style.CellStyle{BgColor: style.Some(style.RGB(0xEAF1FA))}
	assert.Equal(t, map[xltable.Coord]style.CellStyle{
		{Row: 2, Col: 1}: style.Bold,
		{Row: 2, Col: 2}: style.Bold,
		{Row: 3, Col: 1}: even,
		{Row: 3, Col: 2}: style.Merge(even, pct, red),
	}, ws.Styles(nil))
}

func TestColumnWidthsAndGroups(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(mustTable(t, "t1", table.Data{Columns: []any{"a", "b"}, Rows: [][]any{{1, 2}}},
		table.WithColumnWidth("b", 10)))
	require.NoError(t, err)
	_, _, err = ws.AddTable(mustTable(t, "t2", table.Data{Columns: []any{"c"}, Rows: [][]any{{1}, {2}}},
		table.WithColumnWidth("c", 15)), xltable.AtCol(1))
	require.NoError(t, err)
	_, _, err = ws.AddTable(mustTable(t, "t3", table.Data{Columns: []any{"d"}},
		table.WithColumnWidth("d", 5)), xltable.AtCol(1))
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 15}, ws.ColumnWidths())

	require.NoError(t, ws.AddRowGroup(true, "t2", "t1"))
	require.NoError(t, ws.AddRowGroup(false, "t1"))
	assert.Equal(t, []xltable.RowGroup{
		{First: 0, Last: 5, Collapsed: true},
		{First: 0, Last: 1},
	}, ws.RowGroups())
}

func TestCharts(t *testing.T) {
	ws := mustSheet(t, "Data Sheet")
	_, _, err := ws.AddTable(abc(t))
	require.NoError(t, err)

	c, err := xltable.NewChart(xltable.ChartColumn, "stacked")
	require.NoError(t, err)
	assert.Equal(t, 480, c.Width)
	c.AddSeries(expr.Column{Col: "B", Table: "table_1"},
		xltable.WithCategories(expr.Column{Col: "A", Table: "table_1"}),
		xltable.WithSeriesName("B values"),
		xltable.WithMarker(xltable.Marker{Type: "square"}))
	require.NoError(t, ws.AddChart(c, 0, 5))

	g, err := ws.Grid(nil)
	require.NoError(t, err)
	require.Len(t, g.Charts, 1)
	pc := g.Charts[0]
	assert.Equal(t, 5, pc.Col)
	assert.Equal(t, []xltable.ResolvedSeries{{
		Values:     "='Data Sheet'!$B$2:$B$4",
		Categories: "='Data Sheet'!$A$2:$A$4",
		Name:       "B values",
		Marker:     &xltable.Marker{Type: "square"},
	}}, pc.Series)

	_, err = xltable.NewChart(xltable.ChartLine, "stacked")
	assert.ErrorIs(t, err, xltable.ErrInvalidArgument)
	_, err = xltable.NewChart("donut", "")
	assert.ErrorIs(t, err, xltable.ErrInvalidArgument)

	lo, hi, err := xltable.Axis{Minimum: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Maximum: 10}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, 43831.0, *lo)
	assert.Equal(t, 10.0, *hi)
	_, _, err = xltable.Axis{Maximum: "x"}.Bounds()
	assert.ErrorIs(t, err, xltable.ErrInvalidArgument)
}

func TestArrayFormulaGrid(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(abc(t))
	require.NoError(t, err)
	arr, err := table.NewArrayFormula("arr", expr.Call("TRANSPOSE", expr.Column{Col: "A", Table: "table_1"}), 3, 1)
	require.NoError(t, err)
	_, _, err = ws.AddTable(arr)
	require.NoError(t, err)

	g, err := ws.Grid(nil)
	require.NoError(t, err)
	want := "{=TRANSPOSE('Sheet1'!$A$2:$A$4)}"
	assert.Equal(t, []any{want, want, want}, g.Cells[5])
	assert.True(t, xltable.IsArrayFormula(g.Cells[5][0]))
	assert.Equal(t, []xltable.ArrayRange{{
		Top: 5, Left: 0, Bottom: 5, Right: 2,
		Formula: "=TRANSPOSE('Sheet1'!$A$2:$A$4)",
	}}, g.Arrays)
}

func TestValueInsideArrayFormula(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	arr, err := table.NewArrayFormula("arr", expr.Call("ROW"), 2, 2)
	require.NoError(t, err)
	_, _, err = ws.AddTable(arr)
	require.NoError(t, err)
	require.NoError(t, ws.AddValue(2, 0, "below"))
	g, err := ws.Grid(nil)
	require.NoError(t, err)
	assert.Equal(t, "below", g.Cells[2][0])

	require.NoError(t, ws.AddValue(1, 1, "free"))
	_, err = ws.Grid(nil)
	assert.ErrorIs(t, err, xltable.ErrOverlap)
}
