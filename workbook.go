// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xltable lays out named tables on worksheets and resolves the
// formulas referring to them into spreadsheet addresses.
//
// Tables may refer to each other by name, even across worksheets;
// the references are resolved only when the workbook is exported,
// after every table has been placed.
package xltable

import (
	"fmt"
	"log/slog"

	"github.com/UNO-SOFT/xltable/addr"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

// Calculation modes.
const (
	CalcAuto        = "auto"
	CalcManual      = "manual"
	CalcAutoNoTable = "autoNoTable"
)

// Workbook is an ordered collection of worksheets.
//
// A Workbook is not safe for concurrent use.
type Workbook struct {
	sheets   []*Worksheet
	calcMode string
	logger   *slog.Logger
	styles   style.Cache
	err      error
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithLogger sets the logger. The default discards everything.
func WithLogger(lgr *slog.Logger) Option { return func(wb *Workbook) { wb.logger = lgr } }

// WithCalcMode sets the calculation mode, see SetCalcMode.
// An invalid mode is reported by Export.
func WithCalcMode(mode string) Option {
	return func(wb *Workbook) {
		if err := wb.SetCalcMode(mode); err != nil {
			wb.err = err
		}
	}
}

// NewWorkbook returns a new, empty Workbook.
func NewWorkbook(opts ...Option) *Workbook {
	wb := &Workbook{}
	for _, o := range opts {
		o(wb)
	}
	if wb.logger == nil {
		wb.logger = slog.New(slog.DiscardHandler)
	}
	return wb
}

// AddSheet appends the worksheet.
func (wb *Workbook) AddSheet(ws *Worksheet) error {
	for _, s := range wb.sheets {
		if s.name == ws.name {
			return fmt.Errorf("%q: %w", ws.name, ErrDuplicateSheetName)
		}
	}
	wb.sheets = append(wb.sheets, ws)
	return nil
}

// NewSheet creates a new worksheet and appends it.
func (wb *Workbook) NewSheet(name string) (*Worksheet, error) {
	ws, err := NewWorksheet(name)
	if err != nil {
		return nil, err
	}
	if err = wb.AddSheet(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Sheets returns the worksheets in order.
func (wb *Workbook) Sheets() []*Worksheet { return append([]*Worksheet(nil), wb.sheets...) }

// Sheet returns the named worksheet.
func (wb *Workbook) Sheet(name string) (*Worksheet, error) {
	for _, ws := range wb.sheets {
		if ws.name == name {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrWorksheetNotFound)
}

// SetCalcMode sets the calculation mode: CalcAuto, CalcManual or CalcAutoNoTable.
func (wb *Workbook) SetCalcMode(mode string) error {
	switch mode {
	case CalcAuto, CalcManual, CalcAutoNoTable, "":
		wb.calcMode, wb.err = mode, nil
		return nil
	}
	return fmt.Errorf("calc mode %q: %w", mode, ErrInvalidArgument)
}

func (wb *Workbook) CalcMode() string { return wb.calcMode }

// Lookup finds a table by name, which may be qualified by a sheet name
// as "sheet!table" or "'sheet name'!table".
func (wb *Workbook) Lookup(name string) (*table.Table, *Worksheet, error) {
	return env{wb: wb}.lookup(name)
}

// env resolves table names for the expressions of one table (or free
// standing value) of one worksheet.
type env struct {
	wb    *Workbook
	sheet *Worksheet
	table *table.Table
}

var _ expr.Env = env{}

func (e env) Locate(name string) (expr.Location, error) {
	t, ws, err := e.lookup(name)
	if err != nil {
		return expr.Location{}, err
	}
	p, _ := ws.contains(t)
	return expr.Location{Sheet: ws.name, Top: p.row, Left: p.col, Table: t}, nil
}

func (e env) lookup(name string) (*table.Table, *Worksheet, error) {
	if name == "" {
		if e.table == nil {
			return nil, nil, ErrNoActiveTable
		}
		if e.sheet != nil {
			if _, ok := e.sheet.contains(e.table); !ok {
				return nil, nil, fmt.Errorf("%q on %q: %w", e.table.Name(), e.sheet.name, ErrActiveTableMismatch)
			}
			return e.table, e.sheet, nil
		}
		for _, ws := range e.wb.sheets {
			if _, ok := ws.contains(e.table); ok {
				return e.table, ws, nil
			}
		}
		return nil, nil, fmt.Errorf("%q: %w", e.table.Name(), ErrTableNotFound)
	}

	if sheet, tbl, ok := addr.SplitQualified(name); ok {
		for _, ws := range e.sheets() {
			if ws.name != sheet {
				continue
			}
			t, err := ws.Table(tbl)
			return t, ws, err
		}
		return nil, nil, fmt.Errorf("%q: %w", sheet, ErrWorksheetNotFound)
	}

	if e.sheet != nil {
		if t, err := e.sheet.Table(name); err == nil {
			return t, e.sheet, nil
		}
	}
	for _, ws := range e.wb.sheets {
		if t, err := ws.Table(name); err == nil {
			return t, ws, nil
		}
	}
	return nil, nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
}

// sheets returns the worksheets of the workbook, and the active one if not in it.
func (e env) sheets() []*Worksheet {
	if e.sheet == nil {
		return e.wb.sheets
	}
	for _, ws := range e.wb.sheets {
		if ws == e.sheet {
			return e.wb.sheets
		}
	}
	return append([]*Worksheet{e.sheet}, e.wb.sheets...)
}
