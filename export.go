// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"errors"
	"fmt"
)

// Export writes every worksheet to w, in order.
//
// Each worksheet is resolved completely before any of its rows are
// handed to w; the first error aborts the export.
// The caller closes w.
func (wb *Workbook) Export(w Writer) error {
	if wb.err != nil {
		return wb.err
	}
	if wb.calcMode != "" {
		if cs, ok := w.(CalcModeSetter); ok {
			if err := cs.SetCalcMode(wb.calcMode); err != nil {
				return err
			}
		}
	}
	for _, ws := range wb.sheets {
		g, err := ws.Grid(wb)
		if err != nil {
			return err
		}
		if err = wb.writeGrid(w, g); err != nil {
			return fmt.Errorf("%s: %w", ws.name, err)
		}
	}
	return nil
}

func (wb *Workbook) writeGrid(w Writer, g *Grid) error {
	cols := make([]Column, g.Width())
	for c, width := range g.ColumnWidths {
		if c < len(cols) {
			cols[c].Width = width
		}
	}
	sh, err := w.NewSheet(g.Name, cols)
	if err != nil {
		return err
	}
	arrays, _ := sh.(ArrayFormulaSetter)
	var inArray map[Coord]struct{}
	if arrays != nil {
		inArray = make(map[Coord]struct{})
		for _, a := range g.Arrays {
			for r := a.Top; r <= a.Bottom; r++ {
				for c := a.Left; c <= a.Right; c++ {
					inArray[Coord{Row: r, Col: c}] = struct{}{}
				}
			}
		}
	}

	row := make([]any, g.Width())
	for r, cells := range g.Rows() {
		for c, v := range cells {
			k := Coord{Row: r, Col: c}
			if _, ok := inArray[k]; ok {
				v = nil
			}
			s := g.Styles[k]
			if v == nil && s.IsZero() {
				row[c] = nil
				continue
			}
			cell := Cell{Value: v, Style: s}
			if cached, ok := g.Values[k]; ok {
				cell.Cached, cell.HasCached = cached, true
			}
			row[c] = cell
		}
		if err := sh.AppendRow(row...); err != nil {
			return errors.Join(err, sh.Close())
		}
	}

	if arrays != nil {
		for _, a := range g.Arrays {
			if err := arrays.SetArrayFormula(a); err != nil {
				return errors.Join(err, sh.Close())
			}
		}
	}
	if len(g.Groups) != 0 {
		if rg, ok := sh.(RowGrouper); ok {
			for _, grp := range g.Groups {
				if err := rg.GroupRows(grp); err != nil {
					return errors.Join(err, sh.Close())
				}
			}
		} else {
			wb.logger.Debug("row groups are not supported", "sheet", g.Name, "writer", fmt.Sprintf("%T", w))
		}
	}
	if len(g.Charts) != 0 {
		if ca, ok := sh.(ChartAdder); ok {
			for _, pc := range g.Charts {
				if err := ca.AddChart(pc); err != nil {
					return errors.Join(err, sh.Close())
				}
			}
		} else {
			wb.logger.Debug("charts are not supported", "sheet", g.Name, "writer", fmt.Sprintf("%T", w))
		}
	}
	return sh.Close()
}
