// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package expr builds spreadsheet formulas that refer to tables by name and
// to cells by column and row labels. The references are resolved to concrete
// addresses only when the tables have been placed on their worksheets.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLabelNotFound is returned when a row or column label is not in a table.
var ErrLabelNotFound = errors.New("label not found")

// Expr is a formula expression: one of Cell, Column, Index, Range, Formula,
// BinaryOp or Constant.
type Expr interface {
	// Value returns the statically known value of the expression, if any.
	Value() (any, bool)
	isExpr()
}

// Static is a precomputed value carried by an expression.
// Writers may store it as the cached result of the formula.
type Static struct {
	V     any
	Known bool
}

// Known returns a Static holding v.
func Known(v any) Static { return Static{V: v, Known: true} }

// Value implements Expr.
func (s Static) Value() (any, bool) { return s.V, s.Known }

// Cell refers to a single cell of a table.
type Cell struct {
	// Col is the column label.
	Col any
	// Row is the row label. A nil Row refers to the row being resolved,
	// and the resulting address is relative.
	// Integer labels match by value, so int64(0) finds the default row 0.
	Row any
	// RowOffset is added to the row.
	RowOffset int
	// Table names the table, empty for the table the expression is in.
	// It may be qualified with a sheet name as in "Sheet1!table".
	Table string
	Static
}

// Column refers to the data cells of a column.
type Column struct {
	Col           any
	IncludeHeader bool
	Table         string
	Static
}

// Index refers to the row labels of a table.
type Index struct {
	IncludeHeader bool
	Table         string
	Static
}

// Range refers to a rectangle of a table.
type Range struct {
	// Left and Right are column labels.
	Left, Right any
	// Top is the top row label; nil means the first data row,
	// or the first header row if IncludeHeader is set.
	Top any
	// Bottom is the bottom row label; nil means the last row.
	Bottom        any
	IncludeHeader bool
	Table         string
	Static
}

// Formula is a call of a spreadsheet function, NAME(arg1,arg2,...).
type Formula struct {
	Name string
	// Args are expressions or constants; nil args are left empty.
	Args []any
	Static
}

// Call returns the Formula name(args...).
func Call(name string, args ...any) Formula { return Formula{Name: name, Args: args} }

// Constant is a literal value.
type Constant struct {
	V any
}

// Value implements Expr.
func (c Constant) Value() (any, bool) { return c.V, true }

func (Cell) isExpr()     {}
func (Column) isExpr()   {}
func (Index) isExpr()    {}
func (Range) isExpr()    {}
func (Formula) isExpr()  {}
func (BinaryOp) isExpr() {}
func (Constant) isExpr() {}

// From returns v if it is an Expr, or a Constant holding v.
func From(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Constant{V: v}
}

// IsExpr reports whether v is an expression.
func IsExpr(v any) bool {
	_, ok := v.(Expr)
	return ok
}

// Tuple is a multi-level label.
type Tuple []any

// Key returns a string identifying the label, usable as a map key.
// Integers of any kind with the same value share a key;
// otherwise labels of different types never do.
func Key(label any) string {
	if i, ok := toInt(label); ok {
		return fmt.Sprintf("int:%d", i)
	}
	switch l := label.(type) {
	case nil:
		return "<nil>"
	case uint:
		return fmt.Sprintf("int:%d", l)
	case uint64:
		return fmt.Sprintf("int:%d", l)
	case Tuple:
		parts := make([]string, len(l))
		for i, p := range l {
			parts[i] = Key(p)
		}
		return "(" + strings.Join(parts, "\x1f") + ")"
	}
	return fmt.Sprintf("%T:%v", label, label)
}

// LabelString is the label as shown in error messages.
func LabelString(label any) string {
	if t, ok := label.(Tuple); ok {
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprint(p)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprint(label)
}
