// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package style

import "slices"

// TableStyle is applied to the data rows of a whole table.
type TableStyle struct {
	// StripeColors are the background colours of consecutive data rows.
	StripeColors []RGB
	Border       Opt[int]
}

// IsZero reports whether the table style has neither stripes nor border.
func (t TableStyle) IsZero() bool { return len(t.StripeColors) == 0 && !t.Border.Set }

// Row returns the style of the i-th data row.
func (t TableStyle) Row(i int) CellStyle {
	var s CellStyle
	if n := len(t.StripeColors); n != 0 {
		s.BgColor = Some(t.StripeColors[i%n])
	}
	s.Border = t.Border
	return s
}

var (
	// Bold is the default style of header and index cells.
	Bold = CellStyle{Bold: Some(true)}

	tableStyles = map[string]TableStyle{
		"default": {StripeColors: []RGB{0xEAF1FA, 0xFFFFFF}},
		"plain":   {},
	}

	cellStyles = map[string]CellStyle{
		"pct":      {Percentage: Some(true), DecimalPlaces: Some(2)},
		"iso-date": {DateFormat: Some("%Y-%m-%d")},
		"2dp":      {DecimalPlaces: Some(2)},
		"2dpc":     {DecimalPlaces: Some(2), ThousandsSep: Some(true)},
	}
)

// DefaultTable is the style of tables that do not name one.
func DefaultTable() TableStyle { t, _ := NamedTable("default"); return t }

// NamedTable returns one of the named table styles: default (blue stripes)
// or plain.
func NamedTable(name string) (TableStyle, bool) {
	t, ok := tableStyles[name]
	t.StripeColors = slices.Clone(t.StripeColors)
	return t, ok
}

// Named returns one of the named cell styles:
//   - pct: percentage with two decimal places
//   - iso-date: date in YYYY-MM-DD format
//   - 2dp: two decimal places
//   - 2dpc: thousand separated number to two decimal places
func Named(name string) (CellStyle, bool) {
	s, ok := cellStyles[name]
	return s, ok
}
