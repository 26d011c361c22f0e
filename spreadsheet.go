// Copyright 2020, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"io"
	"strings"

	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

// Writer writes the spreadsheet consisting of the sheets created
// with NewSheet. The write finishes when Close is called.
//
// The writer SHOULD allow writing to separate sheets concurrently,
// and document if it does not provide this functionality.
type Writer interface {
	io.Closer
	NewSheet(name string, cols []Column) (Sheet, error)
}

// Sheet should be Closed when finished.
//
// AppendRow gets nil for an empty cell, a Cell, or a bare value.
// A string starting with "=" is a formula.
type Sheet interface {
	io.Closer
	AppendRow(values ...any) error
}

// ArrayFormulaSetter is implemented by sheets that can write array formulas.
// Without it, the cells of an array formula hold the "{=...}" text.
type ArrayFormulaSetter interface {
	SetArrayFormula(ArrayRange) error
}

// RowGrouper is implemented by sheets that can group (outline) rows.
type RowGrouper interface {
	GroupRows(RowGroup) error
}

// ChartAdder is implemented by sheets that can draw charts.
type ChartAdder interface {
	AddChart(PlacedChart) error
}

// CalcModeSetter is implemented by writers that can set the calculation mode.
type CalcModeSetter interface {
	SetCalcMode(mode string) error
}

// Column contains the Name of the column, its Width, and header's style and column's style.
//
// The header row is written only if any of the columns has a Name.
type Column struct {
	Name           string
	Width          float64
	Header, Column style.CellStyle
}

// Cell is a value with its style.
type Cell struct {
	Value any
	Style style.CellStyle
	// Cached is the known result of the formula in Value.
	Cached    any
	HasCached bool
}

// CellOf returns v as a Cell.
func CellOf(v any) Cell {
	switch x := v.(type) {
	case Cell:
		return x
	case table.Value:
		return Cell{Value: x.V, Style: x.Style}
	}
	return Cell{Value: v}
}

// Formula returns the formula text, without the leading "=", if v is a formula.
func Formula(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "=") {
		return "", false
	}
	return s[1:], true
}

// Number is a string that contains a number.
type Number string
