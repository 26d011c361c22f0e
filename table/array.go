// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"
	"slices"

	"github.com/UNO-SOFT/xltable/expr"
)

type arrayFormula struct {
	formula expr.Expr
	values  [][]any
}

// NewArrayFormula returns a table of width x height cells holding one array formula.
//
// The columns are labelled 0..width-1, the rows 0..height-1.
// The header is not written unless WithHeader(true) is given.
func NewArrayFormula(name string, formula expr.Expr, width, height int, opts ...Option) (*Table, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("array formula %q: %dx%d: %w", name, width, height, ErrShape)
	}
	data := Data{Columns: make([]any, width), Rows: make([][]any, height)}
	for i := range data.Columns {
		data.Columns[i] = i
	}
	for i := range data.Rows {
		data.Rows[i] = make([]any, width)
	}
	t, err := New(name, data, append([]Option{WithHeader(false)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if t.array == nil {
		t.array = &arrayFormula{}
	}
	t.array.formula = formula
	if v := t.array.values; v != nil {
		if len(v) != height {
			return nil, fmt.Errorf("array formula %q: %d cached rows for %d: %w", name, len(v), height, ErrShape)
		}
		for i, r := range v {
			if len(r) != width {
				return nil, fmt.Errorf("array formula %q: cached row %d has %d values for %d: %w", name, i, len(r), width, ErrShape)
			}
			copy(t.rows[i], r)
		}
	}
	return t, nil
}

// WithCachedValues gives the precalculated result of an array formula.
// The cells hold these values instead of the formula text.
func WithCachedValues(rows [][]any) Option {
	return func(t *Table) {
		if t.array == nil {
			t.array = &arrayFormula{}
		}
		t.array.values = make([][]any, len(rows))
		for i, r := range rows {
			t.array.values[i] = slices.Clone(r)
		}
	}
}

// ArrayFormula returns the formula of an array formula table, and its cached values if given.
func (t *Table) ArrayFormula() (expr.Expr, [][]any, bool) {
	if t.array == nil || t.array.formula == nil {
		return nil, nil, false
	}
	return t.array.formula, t.array.values, true
}
