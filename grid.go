// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"fmt"
	"iter"
	"strings"

	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

// Coord is a (row, col) position on a sheet, zero based.
type Coord = table.Coord

// ArrayRange is an array formula over a rectangle of a sheet.
type ArrayRange struct {
	Top, Left, Bottom, Right int
	// Formula starts with "=".
	Formula string
	// Values are the cached results, if given.
	Values [][]any
}

// RowGroup is an outline group of rows, First and Last included.
type RowGroup struct {
	First, Last int
	Collapsed   bool
}

// Grid is a worksheet with every table placed and every formula resolved.
type Grid struct {
	Name string
	// Cells is a dense row-major grid; nil is an empty cell.
	// A string starting with "=" is a formula, with "{=" an array formula.
	Cells [][]any
	// Values are the known results of formulas.
	Values       map[Coord]any
	Styles       map[Coord]style.CellStyle
	Arrays       []ArrayRange
	Charts       []PlacedChart
	Groups       []RowGroup
	ColumnWidths map[int]float64
}

// Height is the number of rows.
func (g *Grid) Height() int { return len(g.Cells) }

// Width is the number of columns.
func (g *Grid) Width() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return len(g.Cells[0])
}

// Rows iterates over the rows of the grid.
func (g *Grid) Rows() iter.Seq2[int, []any] {
	return func(yield func(int, []any) bool) {
		for i, row := range g.Cells {
			if !yield(i, row) {
				return
			}
		}
	}
}

// Grid places the tables and values of the worksheet onto one grid,
// resolving every expression.
//
// Tables are looked up in wb; a nil wb means a workbook of this worksheet only.
// Each call does a fresh resolution.
func (ws *Worksheet) Grid(wb *Workbook) (*Grid, error) {
	if wb == nil {
		wb = NewWorkbook()
		wb.sheets = []*Worksheet{ws}
	}
	logger := wb.logger.With("sheet", ws.name)
	g := &Grid{Name: ws.name, Values: make(map[Coord]any)}

	type block struct {
		cells    [][]any
		row, col int
	}
	blocks := make([]block, 0, len(ws.tables))
	var height, width int
	for _, p := range ws.tables {
		e := env{wb: wb, sheet: ws, table: p.t}
		cells, err := p.t.Materialize(e, p.row, p.col, g.Values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ws.name, err)
		}
		blocks = append(blocks, block{cells: cells, row: p.row, col: p.col})
		if n := len(cells); n != 0 {
			height = max(height, p.row+n)
			width = max(width, p.col+len(cells[0]))
		}

		var formulas int
		if f, cached, ok := p.t.ArrayFormula(); ok {
			ctx := expr.Context{Env: e, Row: p.row, Col: p.col, Top: p.row, Left: p.col}
			text, err := expr.ToFormula(f, ctx)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", ws.name, p.t.Name(), err)
			}
			ar := ArrayRange{
				Top: p.row + p.t.HeaderHeight(), Left: p.col + p.t.IndexWidth(),
				Bottom: p.bottom(), Right: p.right(),
				Formula: text, Values: cached,
			}
			// An array formula cannot be partially overwritten.
			for k := range ws.values {
				if k.Row >= ar.Top && k.Row <= ar.Bottom && k.Col >= ar.Left && k.Col <= ar.Right {
					return nil, fmt.Errorf("%s: value at (%d, %d) is inside array formula %q: %w",
						ws.name, k.Row, k.Col, p.t.Name(), ErrOverlap)
				}
			}
			g.Arrays = append(g.Arrays, ar)
			formulas = 1
		} else {
			for _, row := range cells {
				for _, v := range row {
					if _, ok := Formula(v); ok {
						formulas++
					}
				}
			}
		}
		logger.Debug("materialized", "table", p.t.Name(),
			"top", p.row, "left", p.col, "height", p.t.Height(), "width", p.t.Width(),
			"formulas", formulas)
	}
	for k := range ws.values {
		height = max(height, k.Row+1)
		width = max(width, k.Col+1)
	}

	g.Cells = make([][]any, height)
	for i := range g.Cells {
		g.Cells[i] = make([]any, width)
	}
	for _, b := range blocks {
		for i, row := range b.cells {
			copy(g.Cells[b.row+i][b.col:], row)
		}
	}

	free := env{wb: wb, sheet: ws}
	for k, v := range ws.values {
		v = table.Unwrap(v)
		if e, ok := v.(expr.Expr); ok {
			f, err := expr.ToFormula(e, expr.Context{Env: free, Row: k.Row, Col: k.Col})
			if err != nil {
				return nil, fmt.Errorf("%s: value at (%d, %d): %w", ws.name, k.Row, k.Col, err)
			}
			if known, ok := e.Value(); ok {
				g.Values[k] = known
			} else {
				delete(g.Values, k)
			}
			v = f
		} else {
			delete(g.Values, k)
		}
		g.Cells[k.Row][k.Col] = v
	}

	g.Styles = ws.Styles(&wb.styles)
	g.ColumnWidths = ws.ColumnWidths()
	g.Groups = ws.RowGroups()

	for _, pc := range ws.charts {
		series, err := pc.chart.Series(expr.Context{Env: free, Row: pc.row, Col: pc.col})
		if err != nil {
			return nil, fmt.Errorf("%s: chart at (%d, %d): %w", ws.name, pc.row, pc.col, err)
		}
		g.Charts = append(g.Charts, PlacedChart{Row: pc.row, Col: pc.col, Chart: pc.chart, Series: series})
	}
	return g, nil
}

// IsArrayFormula reports whether v is the text of an array formula cell.
func IsArrayFormula(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "{=")
}
