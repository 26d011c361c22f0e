// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"

	"github.com/UNO-SOFT/xltable/expr"
)

// Materialize returns the cells of the table placed at (top, left),
// with every expression resolved to a formula against env.
// The known values of the formulas are stored into values (if not nil),
// keyed by sheet coordinates.
//
// The returned grid has exactly Height() rows and Width() columns;
// nil means an empty cell.
func (t *Table) Materialize(env expr.Env, top, left int, values map[Coord]any) ([][]any, error) {
	hh, iw := t.HeaderHeight(), t.IndexWidth()
	grid := make([][]any, t.Height())
	for i := range grid {
		grid[i] = make([]any, t.Width())
	}

	var arrayFormula string
	if t.array != nil && t.array.values == nil {
		ctx := expr.Context{Env: env, Row: top, Col: left, Top: top, Left: left}
		f, err := expr.ToFormula(t.array.formula, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		arrayFormula = "{" + f + "}"
	}

	for i, row := range t.rows {
		r := hh + i
		for j, v := range row {
			c := iw + j
			if arrayFormula != "" {
				grid[r][c] = arrayFormula
				continue
			}
			if w, ok := v.(Value); ok {
				v = w.V
			}
			if e, ok := v.(expr.Expr); ok {
				ctx := expr.Context{Env: env, Row: top + r, Col: left + c, Top: top, Left: left}
				f, err := expr.ToFormula(e, ctx)
				if err != nil {
					return nil, fmt.Errorf("%s[%s, %s]: %w", t.name,
						expr.LabelString(t.index[i]), expr.LabelString(t.columns[j]), err)
				}
				if k, ok := e.Value(); ok && values != nil {
					values[Coord{Row: top + r, Col: left + c}] = k
				}
				v = f
			}
			grid[r][c] = v
		}
	}

	for lvl := 0; lvl < hh; lvl++ {
		for j, col := range t.columns {
			grid[lvl][iw+j] = level(col, lvl)
		}
	}
	for lvl := 0; lvl < iw; lvl++ {
		for i, row := range t.index {
			grid[hh+i][lvl] = level(row, lvl)
		}
	}
	if hh != 0 && iw != 0 {
		names := t.cornerLabels()
		for lvl := 0; lvl < iw; lvl++ {
			grid[hh-1][lvl] = level(names, lvl)
		}
	}
	return grid, nil
}

// cornerLabels returns the index names shown above the index,
// suffixed with _1, _2... while they collide with a row label.
func (t *Table) cornerLabels() any {
	if t.rowDepth == 1 {
		var name any
		if len(t.indexNames) != 0 {
			name = t.indexNames[0]
		}
		base := name
		if base == nil {
			base = ""
		}
		for i := 1; t.hasRow(name); i++ {
			name = fmt.Sprintf("%v_%d", base, i)
		}
		return name
	}

	base := make(expr.Tuple, t.rowDepth)
	for i := range base {
		base[i] = ""
		if i < len(t.indexNames) && t.indexNames[i] != nil {
			base[i] = t.indexNames[i]
		}
	}
	names := base
	for i := 1; t.hasRow(names); i++ {
		names = make(expr.Tuple, len(base))
		for j, b := range base {
			names[j] = fmt.Sprintf("%v_%d", b, i)
		}
	}
	return names
}

func (t *Table) hasRow(label any) bool {
	_, ok := t.rowKeys[expr.Key(label)]
	return ok
}
