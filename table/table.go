// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package table holds named blocks of data that may contain formulas
// referring to other tables.
package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/style"
)

var (
	ErrLabelNotFound = expr.ErrLabelNotFound
	ErrNoIndex       = fmt.Errorf("table has no index: %w", expr.ErrLabelNotFound)
	ErrShape         = errors.New("bad data shape")
)

// Coord is a (row, col) position, zero based.
type Coord struct{ Row, Col int }

// Value is a cell value with a style.
type Value struct {
	V     any
	Style style.CellStyle
}

// Styled returns v with the named cell style (pct, iso-date, 2dp, 2dpc).
func Styled(v any, name string) (Value, error) {
	s, ok := style.Named(name)
	if !ok {
		return Value{}, fmt.Errorf("unknown cell style %q", name)
	}
	return Value{V: v, Style: s}, nil
}

// Data is the content of a table.
type Data struct {
	// Columns are the column labels, a Tuple for each column if multi-level.
	Columns []any
	// Index are the row labels. When nil, rows are labelled 0, 1, 2...
	// Integer labels match by value, whatever their integer type.
	Index []any
	// Rows[i][j] is the value at Index[i], Columns[j]:
	// a scalar, an expr.Expr or a Value.
	Rows [][]any
	// IndexNames are the names of the index levels, shown above the index.
	IndexNames []any
}

type labelled[T any] struct {
	label any
	v     T
}

// Table is a named block of data.
// A Table is not modified after New returns.
type Table struct {
	name           string
	columns, index []any
	colKeys        map[string]int
	rowKeys        map[string]int
	rows           [][]any
	indexNames     []any
	colDepth       int
	rowDepth       int

	header, withIndex bool

	style       style.TableStyle
	headerStyle *style.CellStyle
	indexStyle  *style.CellStyle
	colStyles   []labelled[style.CellStyle]
	rowStyles   []labelled[style.CellStyle]
	colHeaders  []labelled[style.CellStyle]
	rowIndexes  []labelled[style.CellStyle]
	widths      []labelled[float64]

	array *arrayFormula
}

// Option configures a Table.
type Option func(*Table)

// WithHeader sets whether the column labels are written above the data.
// The default is true, false for array formulas.
func WithHeader(b bool) Option { return func(t *Table) { t.header = b } }

// WithIndex sets whether the row labels are written left of the data.
// The default is false.
func WithIndex(b bool) Option { return func(t *Table) { t.withIndex = b } }

// WithStyle sets the table style. The default is style.DefaultTable().
func WithStyle(s style.TableStyle) Option { return func(t *Table) { t.style = s } }

// WithColumnStyle sets the style of the data cells of a column.
func WithColumnStyle(col any, s style.CellStyle) Option {
	return func(t *Table) { t.colStyles = append(t.colStyles, labelled[style.CellStyle]{col, s}) }
}

// WithRowStyle sets the style of the data cells of a row.
func WithRowStyle(row any, s style.CellStyle) Option {
	return func(t *Table) { t.rowStyles = append(t.rowStyles, labelled[style.CellStyle]{row, s}) }
}

// WithHeaderStyle sets the style of the header cells, bold by default.
func WithHeaderStyle(s style.CellStyle) Option { return func(t *Table) { t.headerStyle = &s } }

// WithColumnHeaderStyle sets the style of the header cells of one column.
func WithColumnHeaderStyle(col any, s style.CellStyle) Option {
	return func(t *Table) { t.colHeaders = append(t.colHeaders, labelled[style.CellStyle]{col, s}) }
}

// WithIndexStyle sets the style of the index cells, bold by default.
func WithIndexStyle(s style.CellStyle) Option { return func(t *Table) { t.indexStyle = &s } }

// WithRowIndexStyle sets the style of the index cells of one row.
func WithRowIndexStyle(row any, s style.CellStyle) Option {
	return func(t *Table) { t.rowIndexes = append(t.rowIndexes, labelled[style.CellStyle]{row, s}) }
}

// WithColumnWidth sets the width of a column.
func WithColumnWidth(col any, width float64) Option {
	return func(t *Table) { t.widths = append(t.widths, labelled[float64]{col, width}) }
}

// New returns a new table.
func New(name string, data Data, opts ...Option) (*Table, error) {
	t := &Table{name: name, header: true, style: style.DefaultTable()}
	for _, o := range opts {
		o(t)
	}
	if err := t.init(data); err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	return t, nil
}

func (t *Table) init(data Data) error {
	if t.name == "" {
		return errors.New("empty table name")
	}
	t.columns = slices.Clone(data.Columns)
	t.index = slices.Clone(data.Index)
	if t.index == nil {
		t.index = make([]any, len(data.Rows))
		for i := range t.index {
			t.index[i] = i
		}
	}
	if len(t.index) != len(data.Rows) {
		return fmt.Errorf("%d row labels for %d rows: %w", len(t.index), len(data.Rows), ErrShape)
	}
	t.rows = make([][]any, len(data.Rows))
	for i, r := range data.Rows {
		if len(r) != len(t.columns) {
			return fmt.Errorf("row %d has %d values for %d columns: %w", i, len(r), len(t.columns), ErrShape)
		}
		t.rows[i] = slices.Clone(r)
	}
	var err error
	if t.colKeys, t.colDepth, err = keys(t.columns); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if t.rowKeys, t.rowDepth, err = keys(t.index); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	t.indexNames = slices.Clone(data.IndexNames)
	if len(t.indexNames) > t.rowDepth {
		return fmt.Errorf("%d index names for %d levels: %w", len(t.indexNames), t.rowDepth, ErrShape)
	}

	for _, l := range t.colStyles {
		if _, err := t.columnPos(l.label); err != nil {
			return err
		}
	}
	for _, l := range t.colHeaders {
		if _, err := t.columnPos(l.label); err != nil {
			return err
		}
	}
	for _, l := range t.widths {
		if _, err := t.columnPos(l.label); err != nil {
			return err
		}
	}
	for _, l := range t.rowStyles {
		if _, err := t.rowPos(l.label); err != nil {
			return err
		}
	}
	for _, l := range t.rowIndexes {
		if _, err := t.rowPos(l.label); err != nil {
			return err
		}
	}
	return nil
}

// keys maps the labels to their positions and returns the number of levels.
func keys(labels []any) (map[string]int, int, error) {
	m := make(map[string]int, len(labels))
	depth := 1
	for i, l := range labels {
		d := 1
		if tup, ok := l.(expr.Tuple); ok {
			d = len(tup)
			if d == 0 {
				return nil, 0, fmt.Errorf("empty label at %d: %w", i, ErrShape)
			}
		}
		if i == 0 {
			depth = d
		} else if d != depth {
			return nil, 0, fmt.Errorf("label %s has %d levels, not %d: %w", expr.LabelString(l), d, depth, ErrShape)
		}
		k := expr.Key(l)
		if _, ok := m[k]; ok {
			return nil, 0, fmt.Errorf("duplicate label %s: %w", expr.LabelString(l), ErrShape)
		}
		m[k] = i
	}
	return m, depth, nil
}

// level returns the i-th level of a label.
func level(label any, i int) any {
	if tup, ok := label.(expr.Tuple); ok {
		return tup[i]
	}
	return label
}

func (t *Table) Name() string { return t.name }

// Columns returns the column labels.
func (t *Table) Columns() []any { return slices.Clone(t.columns) }

// Index returns the row labels.
func (t *Table) Index() []any { return slices.Clone(t.index) }

// HeaderHeight is the number of header rows.
func (t *Table) HeaderHeight() int {
	if !t.header {
		return 0
	}
	return t.colDepth
}

// IndexWidth is the number of index columns.
func (t *Table) IndexWidth() int {
	if !t.withIndex {
		return 0
	}
	return t.rowDepth
}

// Width is the number of columns the table occupies on a sheet.
func (t *Table) Width() int { return len(t.columns) + t.IndexWidth() }

// Height is the number of rows the table occupies on a sheet.
func (t *Table) Height() int { return len(t.rows) + t.HeaderHeight() }

func (t *Table) columnPos(col any) (int, error) {
	if i, ok := t.colKeys[expr.Key(col)]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("column %s not found in table %q: %w", expr.LabelString(col), t.name, ErrLabelNotFound)
}

func (t *Table) rowPos(row any) (int, error) {
	if i, ok := t.rowKeys[expr.Key(row)]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("row %s not found in table %q: %w", expr.LabelString(row), t.name, ErrLabelNotFound)
}

// ColumnOffset returns the column of the label relative to the left of the table.
func (t *Table) ColumnOffset(col any) (int, error) {
	i, err := t.columnPos(col)
	return i + t.IndexWidth(), err
}

// RowOffset returns the row of the label relative to the top of the table.
func (t *Table) RowOffset(row any) (int, error) {
	i, err := t.rowPos(row)
	return i + t.HeaderHeight(), err
}

// IndexOffset returns the column of the row labels.
func (t *Table) IndexOffset() (int, error) {
	if !t.withIndex {
		return 0, fmt.Errorf("%q: %w", t.name, ErrNoIndex)
	}
	return 0, nil
}

// Cell returns the value at (row, col), as given to New.
func (t *Table) Cell(row, col any) (any, error) {
	r, err := t.rowPos(row)
	if err != nil {
		return nil, err
	}
	c, err := t.columnPos(col)
	if err != nil {
		return nil, err
	}
	return t.rows[r][c], nil
}

// ColumnWidths returns the widths of the columns, keyed by offset from the left of the table.
func (t *Table) ColumnWidths() map[int]float64 {
	if len(t.widths) == 0 {
		return nil
	}
	m := make(map[int]float64, len(t.widths))
	for _, w := range t.widths {
		c, _ := t.ColumnOffset(w.label)
		m[c] = w.v
	}
	return m
}

var _ expr.Layout = (*Table)(nil)
