// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package style describes how cells and tables look, independently of the
// spreadsheet format they are written to.
package style

import (
	"fmt"
	"strings"
)

// RGB is a 24-bit colour, 0xRRGGBB.
type RGB uint32

// Hex returns the colour as #RRGGBB.
func (c RGB) Hex() string { return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF) }

// Opt is an optional field of a style. The zero Opt is unset.
type Opt[T comparable] struct {
	V   T
	Set bool
}

// Some returns a set Opt.
func Some[T comparable](v T) Opt[T] { return Opt[T]{V: v, Set: true} }

// Or returns the value if set, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Set {
		return o.V
	}
	return def
}

func pick[T comparable](a, b Opt[T]) Opt[T] {
	if b.Set {
		return b
	}
	return a
}

// CellStyle is the style of a cell or a range of cells.
//
// CellStyle is comparable, so it can be used as a map key.
type CellStyle struct {
	Bold         Opt[bool]
	Percentage   Opt[bool]
	ThousandsSep Opt[bool]
	TextWrap     Opt[bool]
	// DecimalPlaces is the number of decimal places to display.
	DecimalPlaces Opt[int]
	// DateFormat uses %Y, %m, %d, %H, %M and %S placeholders.
	DateFormat Opt[string]
	// NumberFormat overrides the format derived from the fields above.
	NumberFormat Opt[string]
	// Size is the text size in points, see SizeAlias for named sizes.
	Size      Opt[float64]
	TextColor Opt[RGB]
	BgColor   Opt[RGB]
	Border    Opt[int]
	Align     Opt[string]
	VAlign    Opt[string]
}

// IsZero reports whether no field is set.
func (s CellStyle) IsZero() bool { return s == CellStyle{} }

// Merge returns s overridden by every field set in o.
func (s CellStyle) Merge(o CellStyle) CellStyle {
	return CellStyle{
		Bold:          pick(s.Bold, o.Bold),
		Percentage:    pick(s.Percentage, o.Percentage),
		ThousandsSep:  pick(s.ThousandsSep, o.ThousandsSep),
		TextWrap:      pick(s.TextWrap, o.TextWrap),
		DecimalPlaces: pick(s.DecimalPlaces, o.DecimalPlaces),
		DateFormat:    pick(s.DateFormat, o.DateFormat),
		NumberFormat:  pick(s.NumberFormat, o.NumberFormat),
		Size:          pick(s.Size, o.Size),
		TextColor:     pick(s.TextColor, o.TextColor),
		BgColor:       pick(s.BgColor, o.BgColor),
		Border:        pick(s.Border, o.Border),
		Align:         pick(s.Align, o.Align),
		VAlign:        pick(s.VAlign, o.VAlign),
	}
}

// Merge folds the styles left to right; the rightmost set field wins.
func Merge(styles ...CellStyle) CellStyle {
	var s CellStyle
	for _, o := range styles {
		s = s.Merge(o)
	}
	return s
}

var dateTokens = strings.NewReplacer(
	"%Y", "yyyy",
	"%m", "mm",
	"%d", "dd",
	"%H", "hh",
	"%M", "mm",
	"%S", "ss",
)

// ExcelDateFormat translates %Y/%m/%d/%H/%M/%S placeholders to
// spreadsheet number format tokens.
func ExcelDateFormat(format string) string { return dateTokens.Replace(format) }

// NumberFormatCode returns the spreadsheet number format of the style,
// or "" for the general format.
func (s CellStyle) NumberFormatCode() string {
	if s.NumberFormat.Set {
		return s.NumberFormat.V
	}
	if s.DateFormat.Set && s.DateFormat.V != "" {
		return ExcelDateFormat(s.DateFormat.V)
	}
	format := "0"
	if s.ThousandsSep.V {
		format = "#,##0"
	}
	if n := s.DecimalPlaces.V; s.DecimalPlaces.Set && n > 0 {
		format += "." + strings.Repeat("0", n)
	}
	if s.Percentage.V {
		format += "%"
	}
	if format == "0" {
		return ""
	}
	return format
}

var sizes = map[string]float64{
	"x-small":  6,
	"small":    8,
	"normal":   11,
	"medium":   11,
	"large":    16,
	"x-large":  20,
	"xx-large": 24,
}

// SizeAlias returns the text size for one of the named sizes:
// x-small, small, normal, medium, large, x-large and xx-large.
func SizeAlias(name string) (Opt[float64], error) {
	if v, ok := sizes[name]; ok {
		return Some(v), nil
	}
	return Opt[float64]{}, fmt.Errorf("unknown text size %q", name)
}

// Cache memoizes merges. The zero Cache is ready to use; a nil *Cache merges
// without memoization.
type Cache struct {
	m map[[2]CellStyle]CellStyle
}

// Merge returns a.Merge(b), reusing a previous result for the same pair.
func (c *Cache) Merge(a, b CellStyle) CellStyle {
	if c == nil {
		return a.Merge(b)
	}
	k := [2]CellStyle{a, b}
	if s, ok := c.m[k]; ok {
		return s
	}
	s := a.Merge(b)
	if c.m == nil {
		c.m = make(map[[2]CellStyle]CellStyle)
	}
	c.m[k] = s
	return s
}

// Len returns the number of memoized merges.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.m)
}
