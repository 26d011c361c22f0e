// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"github.com/UNO-SOFT/xltable/style"
)

// Styles returns the styles of the cells with a non-default style,
// keyed by offset from the top-left of the table.
//
// Layers, from general to specific: header and index,
// table stripes and border, column styles, row styles, cell styles.
// Merges go through cache, which may be nil.
func (t *Table) Styles(cache *style.Cache) map[Coord]style.CellStyle {
	hh, iw := t.HeaderHeight(), t.IndexWidth()
	m := make(map[Coord]style.CellStyle)
	set := func(r, c int, s style.CellStyle) {
		if s.IsZero() {
			delete(m, Coord{r, c})
			return
		}
		m[Coord{r, c}] = s
	}
	over := func(r, c int, s style.CellStyle) {
		set(r, c, cache.Merge(m[Coord{r, c}], s))
	}

	header := style.Bold
	if t.headerStyle != nil {
		header = *t.headerStyle
	}
	colHeader := make(map[int]style.CellStyle, len(t.colHeaders))
	for _, l := range t.colHeaders {
		c, _ := t.ColumnOffset(l.label)
		colHeader[c] = l.v
	}
	for r := 0; r < hh; r++ {
		for c := 0; c < t.Width(); c++ {
			if s, ok := colHeader[c]; ok {
				set(r, c, s)
			} else {
				set(r, c, header)
			}
		}
	}

	index := style.Bold
	if t.indexStyle != nil {
		index = *t.indexStyle
	}
	rowIndex := make(map[int]style.CellStyle, len(t.rowIndexes))
	for _, l := range t.rowIndexes {
		r, _ := t.RowOffset(l.label)
		rowIndex[r] = l.v
	}
	for c := 0; c < iw; c++ {
		for r := hh; r < t.Height(); r++ {
			if s, ok := rowIndex[r]; ok {
				set(r, c, s)
			} else {
				set(r, c, index)
			}
		}
	}

	if !t.style.IsZero() {
		for i := range t.rows {
			r := hh + i
			stripe := t.style.Row(i)
			for c := 0; c < t.Width(); c++ {
				// the index style stays above the stripes
				set(r, c, cache.Merge(stripe, m[Coord{r, c}]))
			}
		}
	}

	for _, l := range t.colStyles {
		c, _ := t.ColumnOffset(l.label)
		for r := hh; r < t.Height(); r++ {
			over(r, c, l.v)
		}
	}
	for _, l := range t.rowStyles {
		r, _ := t.RowOffset(l.label)
		for c := iw; c < t.Width(); c++ {
			over(r, c, l.v)
		}
	}
	for i, row := range t.rows {
		for j, v := range row {
			if w, ok := v.(Value); ok && !w.Style.IsZero() {
				over(hh+i, iw+j, w.Style)
			}
		}
	}
	return m
}

// StyleOf returns the style wrapped around a value, if any.
func StyleOf(v any) (style.CellStyle, bool) {
	w, ok := v.(Value)
	return w.Style, ok && !w.Style.IsZero()
}

// Unwrap returns the bare value of a Value, or v itself.
func Unwrap(v any) any {
	if w, ok := v.(Value); ok {
		return w.V
	}
	return v
}

