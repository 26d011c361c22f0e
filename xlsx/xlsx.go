// Copyright 2020, 2023, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx writes workbooks as Office Open XML spreadsheets, using excelize.
package xlsx

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/style"
)

var (
	_ = (xltable.Writer)((*XLSXWriter)(nil))
	_ = (xltable.CalcModeSetter)((*XLSXWriter)(nil))
	_ = (xltable.ArrayFormulaSetter)((*XLSXSheet)(nil))
	_ = (xltable.RowGrouper)((*XLSXSheet)(nil))
	_ = (xltable.ChartAdder)((*XLSXSheet)(nil))
)

type XLSXWriter struct {
	w      io.Writer
	xl     *excelize.File
	styles map[style.CellStyle]int
	sheets []string
	mu     sync.Mutex
}

type XLSXSheet struct {
	xlw  *XLSXWriter
	xl   *excelize.File
	Name string
	row  int64
	mu   sync.Mutex
}

// NewWriter returns a new xltable.Writer.
//
// This writer allows concurrent writes to separate sheets.
//
// This writer collects everything in memory, so big sheets may impose problems.
func NewWriter(w io.Writer) *XLSXWriter {
	return &XLSXWriter{w: w, xl: excelize.NewFile()}
}

func (xlw *XLSXWriter) Close() error {
	if xlw == nil {
		return nil
	}
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	xl, w := xlw.xl, xlw.w
	xlw.xl, xlw.w = nil, nil
	if xl == nil || w == nil {
		return nil
	}
	_, err := xl.WriteTo(w)
	return err
}

// SetCalcMode sets the calculation mode of the workbook: auto, manual or autoNoTable.
func (xlw *XLSXWriter) SetCalcMode(mode string) error {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	return xlw.xl.SetCalcProps(&excelize.CalcPropsOptions{CalcMode: &mode})
}

func (xlw *XLSXWriter) NewSheet(name string, columns []xltable.Column) (xltable.Sheet, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	xlw.sheets = append(xlw.sheets, name)
	if len(xlw.sheets) == 1 { // first
		if err := xlw.xl.SetSheetName("Sheet1", name); err != nil {
			return nil, err
		}
	} else if _, err := xlw.xl.NewSheet(name); err != nil {
		return nil, err
	}
	var hasHeader bool
	for i, c := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if c.Width > 0 {
			if err = xlw.xl.SetColWidth(name, col, col, c.Width); err != nil {
				return nil, err
			}
		}
		if s, err := xlw.getStyle(c.Column); err != nil {
			return nil, err
		} else if s != 0 {
			if err = xlw.xl.SetColStyle(name, col, s); err != nil {
				return nil, err
			}
		}
		if s, err := xlw.getStyle(c.Header); err != nil {
			return nil, err
		} else if s != 0 {
			if err = xlw.xl.SetCellStyle(name, col+"1", col+"1", s); err != nil {
				return nil, err
			}
		}
		if c.Name != "" {
			hasHeader = true
			if err = xlw.xl.SetCellStr(name, col+"1", c.Name); err != nil {
				return nil, err
			}
		}
	}
	xls := &XLSXSheet{xlw: xlw, xl: xlw.xl, Name: name}
	if hasHeader {
		xls.row++
	}
	return xls, nil
}

func (xlw *XLSXWriter) style(s style.CellStyle) (int, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	return xlw.getStyle(s)
}

// getStyle returns the excelize style ID of s, 0 for the default.
// Must be called with mu held.
func (xlw *XLSXWriter) getStyle(s style.CellStyle) (int, error) {
	if s.IsZero() {
		return 0, nil
	}
	if id, ok := xlw.styles[s]; ok {
		return id, nil
	}
	id, err := xlw.xl.NewStyle(convertStyle(s))
	if err != nil {
		return 0, fmt.Errorf("style %+v: %w", s, err)
	}
	if xlw.styles == nil {
		xlw.styles = make(map[style.CellStyle]int)
	}
	xlw.styles[s] = id
	return id, nil
}

func hexColor(c style.RGB) string { return strings.TrimPrefix(c.Hex(), "#") }

func convertStyle(s style.CellStyle) *excelize.Style {
	var st excelize.Style
	if s.Bold.V || s.Size.Set || s.TextColor.Set {
		st.Font = &excelize.Font{Bold: s.Bold.V, Size: s.Size.V}
		if s.TextColor.Set {
			st.Font.Color = hexColor(s.TextColor.V)
		}
	}
	if s.BgColor.Set {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexColor(s.BgColor.V)}}
	}
	if b := s.Border.V; s.Border.Set && b > 0 {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: "000000", Style: b})
		}
	}
	if s.Align.Set || s.VAlign.Set || s.TextWrap.V {
		st.Alignment = &excelize.Alignment{Horizontal: s.Align.V, Vertical: s.VAlign.V, WrapText: s.TextWrap.V}
	}
	if code := s.NumberFormatCode(); code != "" {
		st.CustomNumFmt = &code
	}
	return &st
}

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

func (xls *XLSXSheet) Close() error { return nil }

// AppendRow writes the next row. The values may be xltable.Cell values,
// formulas are strings starting with "=".
func (xls *XLSXSheet) AppendRow(values ...any) error {
	xls.mu.Lock()
	defer xls.mu.Unlock()
	if xls.row >= MaxRowCount {
		return xltable.ErrTooManyRows
	}
	xls.row++
	for i, v := range values {
		if v == nil {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(i+1, int(xls.row))
		if err != nil {
			return fmt.Errorf("%d/%d: %w", i, int(xls.row), err)
		}
		c := xltable.CellOf(v)
		if !c.Style.IsZero() {
			id, err := xls.xlw.style(c.Style)
			if err != nil {
				return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
			}
			if err = xls.xl.SetCellStyle(xls.Name, axis, axis, id); err != nil {
				return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
			}
		}
		if f, ok := xltable.Formula(c.Value); ok {
			if c.HasCached {
				if err = xls.setValue(axis, c.Cached, c.Style); err != nil {
					return err
				}
			}
			if err = xls.xl.SetCellFormula(xls.Name, axis, f); err != nil {
				return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
			}
			continue
		}
		if err = xls.setValue(axis, c.Value, c.Style); err != nil {
			return err
		}
	}
	return nil
}

func (xls *XLSXSheet) setValue(axis string, v any, st style.CellStyle) error {
	if v == nil {
		return nil
	}
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	var err error
	var isNil, printed bool
	switch x := v.(type) {
	case time.Time:
		if isNil = x.IsZero(); !isNil {
			if st.DateFormat.Set {
				err = xls.xl.SetCellValue(xls.Name, axis, x)
			} else {
				err = xls.xl.SetCellStr(xls.Name, axis, x.Format("2006-01-02"))
			}
			printed = true
		}
	case sql.NullTime:
		if x.Valid {
			return xls.setValue(axis, x.Time, st)
		}
		isNil = true
	case sql.NullFloat64:
		if x.Valid {
			err = xls.xl.SetCellFloat(xls.Name, axis, x.Float64, -1, 64)
			printed = true
		} else {
			isNil = true
		}
	case sql.NullInt64:
		if x.Valid {
			err = xls.xl.SetCellInt(xls.Name, axis, x.Int64)
			printed = true
		} else {
			isNil = true
		}
	case sql.NullString:
		if x.Valid {
			v = x.String
		} else {
			v, isNil = "", true
		}
	case xltable.Number:
		if f, perr := strconv.ParseFloat(string(x), 64); perr == nil {
			err = xls.xl.SetCellFloat(xls.Name, axis, f, -1, 64)
		} else {
			err = xls.xl.SetCellStr(xls.Name, axis, string(x))
		}
		printed = true
	case fmt.Stringer:
		v = x.String()
	}
	if isNil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
	}
	if printed {
		return nil
	}
	if s, ok := v.(string); ok {
		err = xls.xl.SetCellStr(xls.Name, axis, s)
	} else {
		err = xls.xl.SetCellValue(xls.Name, axis, v)
	}
	if err != nil {
		return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
	}
	return nil
}

// SetArrayFormula writes an array formula over a range, with its cached values if known.
func (xls *XLSXSheet) SetArrayFormula(a xltable.ArrayRange) error {
	xls.mu.Lock()
	defer xls.mu.Unlock()
	tl, err := excelize.CoordinatesToCellName(a.Left+1, a.Top+1)
	if err != nil {
		return err
	}
	br, err := excelize.CoordinatesToCellName(a.Right+1, a.Bottom+1)
	if err != nil {
		return err
	}
	for i, row := range a.Values {
		for j, v := range row {
			axis, err := excelize.CoordinatesToCellName(a.Left+j+1, a.Top+i+1)
			if err != nil {
				return err
			}
			if err = xls.setValue(axis, v, style.CellStyle{}); err != nil {
				return err
			}
		}
	}
	typ, ref := excelize.STCellFormulaTypeArray, tl+":"+br
	if err = xls.xl.SetCellFormula(xls.Name, tl, strings.TrimPrefix(a.Formula, "="),
		excelize.FormulaOpts{Type: &typ, Ref: &ref},
	); err != nil {
		return fmt.Errorf("%s[%s]: %w", xls.Name, ref, err)
	}
	return nil
}

// GroupRows sets the outline level of the rows to 1, and hides them if collapsed.
func (xls *XLSXSheet) GroupRows(g xltable.RowGroup) error {
	xls.mu.Lock()
	defer xls.mu.Unlock()
	for r := g.First + 1; r <= g.Last+1; r++ {
		if err := xls.xl.SetRowOutlineLevel(xls.Name, r, 1); err != nil {
			return fmt.Errorf("%s: row %d: %w", xls.Name, r, err)
		}
		if g.Collapsed {
			if err := xls.xl.SetRowVisible(xls.Name, r, false); err != nil {
				return fmt.Errorf("%s: row %d: %w", xls.Name, r, err)
			}
		}
	}
	return nil
}
