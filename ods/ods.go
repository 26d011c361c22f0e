// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package ods writes workbooks as OpenDocument spreadsheets.
package ods

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/style"
)

var (
	_ = (xltable.Writer)((*ODSWriter)(nil))
	_ = (xltable.CalcModeSetter)((*ODSWriter)(nil))
	_ = (xltable.ArrayFormulaSetter)((*ODSSheet)(nil))
	_ = (xltable.RowGrouper)((*ODSSheet)(nil))
)

const mimeType = "application/vnd.oasis.opendocument.spreadsheet"

// ODSWriter writes an OpenDocument spreadsheet.
//
// Sheets can be written concurrently; everything is kept in memory till Close.
type ODSWriter struct {
	zw       *zip.Writer
	styles   map[style.CellStyle]int
	order    []style.CellStyle
	sheets   []*ODSSheet
	calcMode string
	mu       sync.Mutex
}

// NewWriter starts the OpenDocument package on w.
func NewWriter(w io.Writer) (*ODSWriter, error) {
	zw := zip.NewWriter(w)
	// mimetype must be the first, uncompressed entry.
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, err
	}
	if _, err = io.WriteString(fw, mimeType); err != nil {
		return nil, err
	}
	return &ODSWriter{zw: zw}, nil
}

// SetCalcMode sets whether the document is recalculated automatically: auto, manual or autoNoTable.
func (ow *ODSWriter) SetCalcMode(mode string) error {
	switch mode {
	case xltable.CalcAuto, xltable.CalcManual, xltable.CalcAutoNoTable:
	default:
		return fmt.Errorf("calc mode %q: %w", mode, xltable.ErrInvalidArgument)
	}
	ow.mu.Lock()
	ow.calcMode = mode
	ow.mu.Unlock()
	return nil
}

func (ow *ODSWriter) NewSheet(name string, columns []xltable.Column) (xltable.Sheet, error) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.zw == nil {
		return nil, fmt.Errorf("%s: writer is closed", name)
	}
	for _, s := range ow.sheets {
		if s.Name == name {
			return nil, fmt.Errorf("%s: %w", name, xltable.ErrDuplicateSheetName)
		}
	}
	ods := &ODSSheet{ow: ow, Name: name, cols: make([]column, len(columns))}
	var header []cell
	for i, c := range columns {
		ods.cols[i] = column{width: c.Width, style: ow.styleName(c.Column)}
		if c.Name != "" {
			if header == nil {
				header = make([]cell, len(columns))
			}
			header[i] = cell{value: c.Name, style: ow.styleName(c.Header)}
		}
	}
	if header != nil {
		ods.rows = append(ods.rows, header)
	}
	ow.sheets = append(ow.sheets, ods)
	return ods, nil
}

// Close writes the sheets and finishes the package. It does not close the underlying writer.
func (ow *ODSWriter) Close() error {
	if ow == nil {
		return nil
	}
	ow.mu.Lock()
	defer ow.mu.Unlock()
	zw := ow.zw
	ow.zw = nil
	if zw == nil {
		return nil
	}
	var buf bytes.Buffer
	for _, f := range []struct {
		name  string
		write func(*quicktemplate.Writer)
	}{
		{"META-INF/manifest.xml", writeManifest},
		{"styles.xml", writeDocumentStyles},
		{"settings.xml", ow.writeSettings},
		{"content.xml", ow.writeContent},
	} {
		buf.Reset()
		qw := quicktemplate.AcquireWriter(&buf)
		f.write(qw)
		quicktemplate.ReleaseWriter(qw)
		fw, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err = fw.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return zw.Close()
}

type column struct {
	width float64
	style string
}

type cell struct {
	value     any
	formula   string
	style     string
	cached    any
	hasCached bool
	// matrix is the rows and columns spanned by an array formula.
	matrix [2]int
}

// ODSSheet is a sheet of an ODSWriter.
type ODSSheet struct {
	ow     *ODSWriter
	Name   string
	cols   []column
	rows   [][]cell
	groups []xltable.RowGroup
	mu     sync.Mutex
}

func (ods *ODSSheet) Close() error { return nil }

// AppendRow appends a row. The values may be xltable.Cell values,
// formulas are strings starting with "=".
func (ods *ODSSheet) AppendRow(values ...any) error {
	row := make([]cell, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		c := xltable.CellOf(v)
		row[i].style = ods.ow.style(c.Style)
		if f, ok := xltable.Formula(c.Value); ok {
			row[i].formula = OpenFormula(f)
			row[i].cached, row[i].hasCached = c.Cached, c.HasCached
			continue
		}
		row[i].value = c.Value
	}
	ods.mu.Lock()
	ods.rows = append(ods.rows, row)
	ods.mu.Unlock()
	return nil
}

func (ods *ODSSheet) at(r, c int) *cell {
	for len(ods.rows) <= r {
		ods.rows = append(ods.rows, nil)
	}
	if n := c + 1 - len(ods.rows[r]); n > 0 {
		ods.rows[r] = append(ods.rows[r], make([]cell, n)...)
	}
	return &ods.rows[r][c]
}

// SetArrayFormula sets the formula of the top-left cell of the range,
// and the cached values of the whole range.
func (ods *ODSSheet) SetArrayFormula(a xltable.ArrayRange) error {
	f, ok := xltable.Formula(a.Formula)
	if !ok || a.Bottom < a.Top || a.Right < a.Left || a.Top < 0 || a.Left < 0 {
		return fmt.Errorf("%s: array formula %+v: %w", ods.Name, a, xltable.ErrInvalidArgument)
	}
	ods.mu.Lock()
	defer ods.mu.Unlock()
	for i, row := range a.Values {
		for j, v := range row {
			c := ods.at(a.Top+i, a.Left+j)
			c.value = v
		}
	}
	c := ods.at(a.Top, a.Left)
	c.formula = OpenFormula(f)
	c.matrix = [2]int{a.Bottom - a.Top + 1, a.Right - a.Left + 1}
	if len(a.Values) != 0 && len(a.Values[0]) != 0 {
		c.cached, c.hasCached = a.Values[0][0], true
	}
	return nil
}

// GroupRows groups the rows. Groups must be disjoint or nested.
func (ods *ODSSheet) GroupRows(g xltable.RowGroup) error {
	if g.First < 0 || g.Last < g.First {
		return fmt.Errorf("%s: row group %+v: %w", ods.Name, g, xltable.ErrInvalidArgument)
	}
	ods.mu.Lock()
	defer ods.mu.Unlock()
	for _, h := range ods.groups {
		disjoint := g.Last < h.First || h.Last < g.First
		nested := (h.First <= g.First && g.Last <= h.Last) || (g.First <= h.First && h.Last <= g.Last)
		if !disjoint && !nested {
			return fmt.Errorf("%s: row group %+v overlaps %+v: %w", ods.Name, g, h, xltable.ErrInvalidArgument)
		}
	}
	ods.groups = append(ods.groups, g)
	return nil
}

// sortedGroups returns the groups ordered for opening: by first row, the outer first.
func (ods *ODSSheet) sortedGroups() []xltable.RowGroup {
	groups := slices.Clone(ods.groups)
	slices.SortStableFunc(groups, func(a, b xltable.RowGroup) int {
		if a.First != b.First {
			return a.First - b.First
		}
		return b.Last - a.Last
	})
	return groups
}

// normalize returns v as a string, float64, bool, time.Time or nil.
func normalize(v any) any {
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	switch x := v.(type) {
	case nil, string, float64, bool:
		return v
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case xltable.Number:
		if f, err := strconv.ParseFloat(string(x), 64); err == nil {
			return f
		}
		return string(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
