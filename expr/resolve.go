// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UNO-SOFT/xltable/addr"
)

// Layout is the shape of a table, as needed to resolve references into it.
// Offsets are relative to the top-left corner of the table.
type Layout interface {
	ColumnOffset(col any) (int, error)
	RowOffset(row any) (int, error)
	// IndexOffset is the column of the (first level of the) row labels.
	IndexOffset() (int, error)
	HeaderHeight() int
	Height() int
}

// Location is a table placed on a worksheet.
type Location struct {
	Sheet     string
	Top, Left int
	Table     Layout
}

// Env finds tables by name.
// The empty name refers to the table being written.
type Env interface {
	Locate(table string) (Location, error)
}

// Context is where an expression is resolved.
type Context struct {
	Env Env
	// Row and Col are the sheet coordinates of the cell being written.
	Row, Col int
	// Top and Left are the origin of the table the cell belongs to.
	Top, Left int
}

// ToFormula returns the expression as a formula, with a leading "=".
func ToFormula(e Expr, ctx Context) (string, error) {
	s, err := Resolve(e, ctx)
	if err != nil {
		return "", err
	}
	return "=" + StripParens(s), nil
}

// Resolve returns the textual form of the expression, without a leading "=".
func Resolve(e Expr, ctx Context) (string, error) {
	switch e := e.(type) {
	case Constant:
		return Render(e.V), nil
	case Formula:
		return resolveFormula(e, ctx)
	case BinaryOp:
		l, err := Resolve(e.LHS, ctx)
		if err != nil {
			return "", err
		}
		r, err := Resolve(e.RHS, ctx)
		if err != nil {
			return "", err
		}
		return "(" + l + string(e.Op) + r + ")", nil
	case nil:
		return "", errors.New("nil expression")
	}

	if ctx.Env == nil {
		return "", fmt.Errorf("%T: no environment to resolve references", e)
	}
	switch e := e.(type) {
	case Cell:
		return resolveCell(e, ctx)
	case Column:
		loc, col, err := locateColumn(ctx, e.Table, e.Col)
		if err != nil {
			return "", err
		}
		return columnRange(loc, col, e.IncludeHeader)
	case Index:
		loc, err := ctx.Env.Locate(e.Table)
		if err != nil {
			return "", err
		}
		col, err := loc.Table.IndexOffset()
		if err != nil {
			return "", fmt.Errorf("%q: %w", e.Table, err)
		}
		return columnRange(loc, col, e.IncludeHeader)
	case Range:
		return resolveRange(e, ctx)
	}
	return "", fmt.Errorf("unknown expression %T", e)
}

func resolveFormula(f Formula, ctx Context) (string, error) {
	var buf strings.Builder
	buf.WriteString(f.Name)
	buf.WriteByte('(')
	for i, a := range f.Args {
		if i != 0 {
			buf.WriteByte(',')
		}
		if a == nil {
			continue
		}
		s, err := Resolve(From(a), ctx)
		if err != nil {
			return "", fmt.Errorf("%s arg %d: %w", f.Name, i, err)
		}
		buf.WriteString(StripParens(s))
	}
	buf.WriteByte(')')
	return buf.String(), nil
}

func locateColumn(ctx Context, table string, label any) (Location, int, error) {
	loc, err := ctx.Env.Locate(table)
	if err != nil {
		return loc, 0, err
	}
	col, err := loc.Table.ColumnOffset(label)
	if err != nil {
		return loc, 0, err
	}
	return loc, col, nil
}

func resolveCell(c Cell, ctx Context) (string, error) {
	loc, col, err := locateColumn(ctx, c.Table, c.Col)
	if err != nil {
		return "", err
	}
	row, fixed := ctx.Row-ctx.Top, false
	if c.Row != nil {
		if row, err = loc.Table.RowOffset(c.Row); err != nil {
			return "", err
		}
		fixed = true
	}
	return addr.Cell(loc.Sheet, loc.Top+row+c.RowOffset, loc.Left+col, fixed)
}

func columnRange(loc Location, col int, includeHeader bool) (string, error) {
	top := loc.Table.HeaderHeight()
	if includeHeader {
		top = 0
	}
	bottom := loc.Table.Height() - 1
	return addr.Range(loc.Sheet, loc.Top+top, loc.Left+col, loc.Top+bottom, loc.Left+col)
}

func resolveRange(r Range, ctx Context) (string, error) {
	loc, left, err := locateColumn(ctx, r.Table, r.Left)
	if err != nil {
		return "", err
	}
	right, err := loc.Table.ColumnOffset(r.Right)
	if err != nil {
		return "", err
	}
	top := loc.Table.HeaderHeight()
	if r.IncludeHeader {
		top = 0
	}
	if r.Top != nil {
		if top, err = loc.Table.RowOffset(r.Top); err != nil {
			return "", err
		}
	}
	bottom := loc.Table.Height() - 1
	if r.Bottom != nil {
		if bottom, err = loc.Table.RowOffset(r.Bottom); err != nil {
			return "", err
		}
	}
	return addr.Range(loc.Sheet, loc.Top+top, loc.Left+left, loc.Top+bottom, loc.Left+right)
}

// Render returns the formula literal of a constant value.
// Strings are quoted with embedded quotes doubled, booleans are TRUE/FALSE.
func Render(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return `"` + strings.ReplaceAll(x, `"`, `""`) + `"`
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return strconv.FormatFloat(SerialDate(x), 'g', -1, 64)
	case fmt.Stringer:
		return Render(x.String())
	}
	return fmt.Sprint(v)
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// SerialDate returns t as a spreadsheet serial date number (days since 1899-12-30).
func SerialDate(t time.Time) float64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := math.Round(day.Sub(excelEpoch).Hours() / 24)
	h, mi, s := t.Clock()
	frac := (float64(h)*3600 + float64(mi)*60 + float64(s) + float64(t.Nanosecond())/1e9) / 86400
	return days + frac
}

// StripParens removes one pair of parentheses enclosing the whole string.
// "(a)+(b)" is left as is.
func StripParens(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	var depth int
	var inString, inName bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			inString = c != '"'
		case inName:
			inName = c != '\''
		case c == '"':
			inString = true
		case c == '\'':
			inName = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	if depth != 0 {
		return s
	}
	return s[1 : len(s)-1]
}
