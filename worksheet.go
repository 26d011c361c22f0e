// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

// MaxSheetNameLength is the maximum length of a sheet name, in runes.
const MaxSheetNameLength = 31

type placed struct {
	t        *table.Table
	row, col int
}

func (p placed) bottom() int { return p.row + p.t.Height() - 1 }
func (p placed) right() int  { return p.col + p.t.Width() - 1 }

func (p placed) overlaps(q placed) bool {
	if p.t.Height() == 0 || p.t.Width() == 0 || q.t.Height() == 0 || q.t.Width() == 0 {
		return false
	}
	return p.row <= q.bottom() && q.row <= p.bottom() &&
		p.col <= q.right() && q.col <= p.right()
}

type placedChart struct {
	chart    *Chart
	row, col int
}

type group struct {
	tables    []string
	collapsed bool
}

// Worksheet is a collection of tables placed at specific locations,
// free standing values and charts.
type Worksheet struct {
	name    string
	tables  []placed
	byName  map[string]int
	values  map[Coord]any
	charts  []placedChart
	groups  []group
	nextRow int
}

// NewWorksheet returns an empty worksheet.
func NewWorksheet(name string) (*Worksheet, error) {
	if err := ValidSheetName(name); err != nil {
		return nil, err
	}
	return &Worksheet{name: name, byName: make(map[string]int), values: make(map[Coord]any)}, nil
}

// ValidSheetName checks whether name can be used as a sheet name.
func ValidSheetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty sheet name: %w", ErrInvalidArgument)
	case utf8.RuneCountInString(name) > MaxSheetNameLength:
		return fmt.Errorf("sheet name %q is longer than %d: %w", name, MaxSheetNameLength, ErrInvalidArgument)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("sheet name %q starts or ends with a quote: %w", name, ErrInvalidArgument)
	case strings.ContainsAny(name, `:\/?*[]`):
		return fmt.Errorf("sheet name %q contains one of :\\/?*[]: %w", name, ErrInvalidArgument)
	}
	return nil
}

func (ws *Worksheet) Name() string { return ws.name }

type placement struct {
	row       int
	hasRow    bool
	col       int
	rowSpaces int
}

// PlaceOption sets where AddTable puts a table.
type PlaceOption func(*placement)

// AtRow puts the table at the given row instead of the next free one.
func AtRow(row int) PlaceOption { return func(p *placement) { p.row, p.hasRow = row, true } }

// AtCol puts the table at the given column instead of the first one.
func AtCol(col int) PlaceOption { return func(p *placement) { p.col = col } }

// WithRowSpaces sets the number of empty rows left below the table, 1 by default.
func WithRowSpaces(n int) PlaceOption { return func(p *placement) { p.rowSpaces = n } }

// AddTable adds the table to the worksheet, and returns its top-left corner.
//
// Without AtRow, the table starts at NextRow.
func (ws *Worksheet) AddTable(t *table.Table, opts ...PlaceOption) (row, col int, err error) {
	p := placement{row: ws.nextRow, rowSpaces: 1}
	for _, o := range opts {
		o(&p)
	}
	if p.row < 0 || p.col < 0 || p.rowSpaces < 0 {
		return 0, 0, fmt.Errorf("%s: place %q at (%d, %d) with %d row spaces: %w",
			ws.name, t.Name(), p.row, p.col, p.rowSpaces, ErrInvalidArgument)
	}
	if _, ok := ws.byName[t.Name()]; ok {
		return 0, 0, fmt.Errorf("%s: %q: %w", ws.name, t.Name(), ErrDuplicateTableName)
	}
	np := placed{t: t, row: p.row, col: p.col}
	for _, q := range ws.tables {
		if np.overlaps(q) {
			return 0, 0, fmt.Errorf("%s: %q at (%d, %d) and %q at (%d, %d): %w",
				ws.name, t.Name(), np.row, np.col, q.t.Name(), q.row, q.col, ErrOverlap)
		}
	}
	ws.nextRow = max(p.row+t.Height()+p.rowSpaces, ws.nextRow)
	ws.byName[t.Name()] = len(ws.tables)
	ws.tables = append(ws.tables, np)
	return p.row, p.col, nil
}

// AddValue puts a single value at (row, col).
// The value may be an expression or a table.Value.
func (ws *Worksheet) AddValue(row, col int, v any) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("%s: value at (%d, %d): %w", ws.name, row, col, ErrInvalidArgument)
	}
	ws.values[Coord{Row: row, Col: col}] = v
	return nil
}

// AddChart puts the chart with its top-left corner at (row, col).
func (ws *Worksheet) AddChart(c *Chart, row, col int) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("%s: chart at (%d, %d): %w", ws.name, row, col, ErrInvalidArgument)
	}
	ws.charts = append(ws.charts, placedChart{chart: c, row: row, col: col})
	return nil
}

// AddRowGroup groups the rows from the first row of the given tables
// to the last one, including any rows between them.
func (ws *Worksheet) AddRowGroup(collapsed bool, tables ...string) error {
	if len(tables) == 0 {
		return fmt.Errorf("%s: empty row group: %w", ws.name, ErrInvalidArgument)
	}
	for _, name := range tables {
		if _, ok := ws.byName[name]; !ok {
			return fmt.Errorf("%s: %q: %w", ws.name, name, ErrTableNotFound)
		}
	}
	ws.groups = append(ws.groups, group{tables: tables, collapsed: collapsed})
	return nil
}

// NextRow is the row the next table starts at, unless placed explicitly.
func (ws *Worksheet) NextRow() int { return ws.nextRow }

// SetNextRow sets the row the next table starts at.
func (ws *Worksheet) SetNextRow(row int) { ws.nextRow = row }

// TablePos returns the top-left corner of the named table.
func (ws *Worksheet) TablePos(name string) (row, col int, err error) {
	i, ok := ws.byName[name]
	if !ok {
		return 0, 0, fmt.Errorf("%s: %q: %w", ws.name, name, ErrTableNotFound)
	}
	p := ws.tables[i]
	return p.row, p.col, nil
}

// Table returns the named table.
func (ws *Worksheet) Table(name string) (*table.Table, error) {
	i, ok := ws.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", ws.name, name, ErrTableNotFound)
	}
	return ws.tables[i].t, nil
}

// Tables returns the tables in the order they were added.
func (ws *Worksheet) Tables() []*table.Table {
	ts := make([]*table.Table, len(ws.tables))
	for i, p := range ws.tables {
		ts[i] = p.t
	}
	return ts
}

func (ws *Worksheet) contains(t *table.Table) (placed, bool) {
	if i, ok := ws.byName[t.Name()]; ok && ws.tables[i].t == t {
		return ws.tables[i], true
	}
	return placed{}, false
}

// ColumnWidths returns the widths of the sheet columns,
// the maximum where tables share a column.
func (ws *Worksheet) ColumnWidths() map[int]float64 {
	m := make(map[int]float64)
	for _, p := range ws.tables {
		for c, w := range p.t.ColumnWidths() {
			c += p.col
			if old, ok := m[c]; !ok || w > old {
				m[c] = w
			}
		}
	}
	return m
}

// Styles returns the styles of all cells with a non-default style.
// The style of a free standing table.Value overrides the table's.
func (ws *Worksheet) Styles(cache *style.Cache) map[Coord]style.CellStyle {
	m := make(map[Coord]style.CellStyle)
	for _, p := range ws.tables {
		for k, s := range p.t.Styles(cache) {
			m[Coord{Row: p.row + k.Row, Col: p.col + k.Col}] = s
		}
	}
	for k, v := range ws.values {
		if s, ok := table.StyleOf(v); ok {
			m[k] = cache.Merge(m[k], s)
		}
	}
	return m
}

// RowGroups returns the row ranges of the groups.
func (ws *Worksheet) RowGroups() []RowGroup {
	gs := make([]RowGroup, 0, len(ws.groups))
	for _, g := range ws.groups {
		rg := RowGroup{First: -1, Collapsed: g.collapsed}
		for _, name := range g.tables {
			p := ws.tables[ws.byName[name]]
			if rg.First < 0 || p.row < rg.First {
				rg.First = p.row
			}
			rg.Last = max(rg.Last, p.bottom())
		}
		gs = append(gs, rg)
	}
	return gs
}
