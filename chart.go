// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"fmt"
	"slices"
	"time"

	"github.com/UNO-SOFT/xltable/expr"
)

// ChartType is the type of a chart.
type ChartType string

// Chart types. The subtypes each accepts are in ChartSubtypes.
const (
	ChartArea    = ChartType("area")
	ChartBar     = ChartType("bar")
	ChartColumn  = ChartType("column")
	ChartLine    = ChartType("line")
	ChartPie     = ChartType("pie")
	ChartScatter = ChartType("scatter")
	ChartStock   = ChartType("stock")
	ChartRadar   = ChartType("radar")
)

// ChartSubtypes lists the subtypes of each chart type. The empty subtype is always allowed.
var ChartSubtypes = map[ChartType][]string{
	ChartArea:    {"stacked", "percent_stacked"},
	ChartBar:     {"stacked", "percent_stacked"},
	ChartColumn:  {"stacked", "percent_stacked"},
	ChartLine:    nil,
	ChartPie:     nil,
	ChartScatter: {"straight_with_markers", "straight", "smooth_with_markers", "smooth"},
	ChartStock:   nil,
	ChartRadar:   {"with_markers", "filled"},
}

// Axis of a chart.
type Axis struct {
	Title string
	// Minimum and Maximum are numbers or time.Time values.
	Minimum, Maximum any
	NumberFormat     string
	Reverse          bool
}

// Bounds returns the limits of the axis as numbers,
// dates converted to serial dates.
func (a Axis) Bounds() (lo, hi *float64, err error) {
	conv := func(v any) (*float64, error) {
		var f float64
		switch x := v.(type) {
		case nil:
			return nil, nil
		case time.Time:
			f = expr.SerialDate(x)
		case float64:
			f = x
		case float32:
			f = float64(x)
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		default:
			return nil, fmt.Errorf("axis bound %v (%T): %w", v, v, ErrInvalidArgument)
		}
		return &f, nil
	}
	if lo, err = conv(a.Minimum); err != nil {
		return nil, nil, err
	}
	hi, err = conv(a.Maximum)
	return lo, hi, err
}

// Line style of a series.
type Line struct {
	// Color is like "#1F77B4".
	Color string
	Width float64
	None  bool
}

// Marker of the data points of a series.
type Marker struct {
	// Type is like "square", "circle" or "none".
	Type string
	Size int
}

// Series is one data series of a chart.
type Series struct {
	Values     expr.Expr
	Categories expr.Expr
	Name       string
	Line       *Line
	Marker     *Marker
	// Trendline is like "linear" or "exp".
	Trendline string
}

// SeriesOption sets an optional field of a Series.
type SeriesOption func(*Series)

func WithCategories(e expr.Expr) SeriesOption { return func(s *Series) { s.Categories = e } }
func WithSeriesName(name string) SeriesOption { return func(s *Series) { s.Name = name } }
func WithLine(l Line) SeriesOption            { return func(s *Series) { s.Line = &l } }
func WithMarker(m Marker) SeriesOption        { return func(s *Series) { s.Marker = &m } }
func WithTrendline(t string) SeriesOption     { return func(s *Series) { s.Trendline = t } }

// Chart draws series of table data.
type Chart struct {
	Type    ChartType
	Subtype string
	Title   string
	// LegendPosition is right (default), left, top, bottom or none.
	LegendPosition string
	XAxis, YAxis   Axis
	// ShowBlanks is gap, zero or span.
	ShowBlanks    string
	Width, Height int

	series []Series
}

// NewChart returns a chart of 480x288 pixels.
func NewChart(typ ChartType, subtype string) (*Chart, error) {
	subtypes, ok := ChartSubtypes[typ]
	if !ok {
		return nil, fmt.Errorf("chart type %q: %w", typ, ErrInvalidArgument)
	}
	if subtype != "" && !slices.Contains(subtypes, subtype) {
		return nil, fmt.Errorf("chart %s subtype %q: %w", typ, subtype, ErrInvalidArgument)
	}
	return &Chart{Type: typ, Subtype: subtype, Width: 480, Height: 288}, nil
}

// AddSeries adds a data series.
func (c *Chart) AddSeries(values expr.Expr, opts ...SeriesOption) {
	s := Series{Values: values}
	for _, o := range opts {
		o(&s)
	}
	c.series = append(c.series, s)
}

// ResolvedSeries is a Series with its expressions resolved to formulas.
type ResolvedSeries struct {
	Values, Categories string
	Name               string
	Line               *Line
	Marker             *Marker
	Trendline          string
}

// Series returns the series with the expressions resolved.
func (c *Chart) Series(ctx expr.Context) ([]ResolvedSeries, error) {
	rs := make([]ResolvedSeries, 0, len(c.series))
	for i, s := range c.series {
		r := ResolvedSeries{Name: s.Name, Line: s.Line, Marker: s.Marker, Trendline: s.Trendline}
		var err error
		if r.Values, err = expr.ToFormula(s.Values, ctx); err != nil {
			return nil, fmt.Errorf("series %d values: %w", i, err)
		}
		if s.Categories != nil {
			if r.Categories, err = expr.ToFormula(s.Categories, ctx); err != nil {
				return nil, fmt.Errorf("series %d categories: %w", i, err)
			}
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// PlacedChart is a chart on a worksheet, with the series resolved.
type PlacedChart struct {
	Row, Col int
	Chart    *Chart
	Series   []ResolvedSeries
}
