// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/UNO-SOFT/xltable"
)

var chartTypes = map[xltable.ChartType]map[string]excelize.ChartType{
	xltable.ChartArea:    {"": excelize.Area, "stacked": excelize.AreaStacked, "percent_stacked": excelize.AreaPercentStacked},
	xltable.ChartBar:     {"": excelize.Bar, "stacked": excelize.BarStacked, "percent_stacked": excelize.BarPercentStacked},
	xltable.ChartColumn:  {"": excelize.Col, "stacked": excelize.ColStacked, "percent_stacked": excelize.ColPercentStacked},
	xltable.ChartLine:    {"": excelize.Line},
	xltable.ChartPie:     {"": excelize.Pie},
	xltable.ChartStock:   {"": excelize.StockHighLowClose},
	xltable.ChartRadar:   {"": excelize.Radar, "with_markers": excelize.Radar},
	xltable.ChartScatter: {"": excelize.Scatter, "straight_with_markers": excelize.Scatter, "straight": excelize.Scatter, "smooth_with_markers": excelize.Scatter, "smooth": excelize.Scatter},
}

// AddChart draws the chart with its top-left corner at the chart's cell.
func (xls *XLSXSheet) AddChart(pc xltable.PlacedChart) error {
	c, err := convertChart(pc)
	if err != nil {
		return fmt.Errorf("%s: %w", xls.Name, err)
	}
	axis, err := excelize.CoordinatesToCellName(pc.Col+1, pc.Row+1)
	if err != nil {
		return err
	}
	xls.mu.Lock()
	defer xls.mu.Unlock()
	if err = xls.xl.AddChart(xls.Name, axis, c); err != nil {
		return fmt.Errorf("%s[%s]: %w", xls.Name, axis, err)
	}
	return nil
}

func convertChart(pc xltable.PlacedChart) (*excelize.Chart, error) {
	ch := pc.Chart
	typ, ok := chartTypes[ch.Type][ch.Subtype]
	if !ok {
		return nil, fmt.Errorf("chart %s subtype %q: %w", ch.Type, ch.Subtype, xltable.ErrInvalidArgument)
	}
	c := excelize.Chart{
		Type:         typ,
		Legend:       excelize.ChartLegend{Position: ch.LegendPosition},
		ShowBlanksAs: ch.ShowBlanks,
	}
	if ch.Width > 0 && ch.Height > 0 {
		c.Dimension = excelize.ChartDimension{Width: uint(ch.Width), Height: uint(ch.Height)}
	}
	if ch.Title != "" {
		c.Title = []excelize.RichTextRun{{Text: ch.Title}}
	}
	var err error
	if c.XAxis, err = convertAxis(ch.XAxis); err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	if c.YAxis, err = convertAxis(ch.YAxis); err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}
	smooth := strings.HasPrefix(ch.Subtype, "smooth")
	noMarkers := ch.Subtype == "straight" || ch.Subtype == "smooth"
	for i, s := range pc.Series {
		if s.Trendline != "" {
			return nil, fmt.Errorf("series %d trendline %q: %w", i, s.Trendline, xltable.ErrInvalidArgument)
		}
		cs := excelize.ChartSeries{
			Name:       s.Name,
			Values:     strings.TrimPrefix(s.Values, "="),
			Categories: strings.TrimPrefix(s.Categories, "="),
		}
		cs.Line.Smooth = smooth
		if l := s.Line; l != nil {
			if l.None {
				cs.Line.Type = excelize.ChartLineNone
			} else {
				cs.Line.Type = excelize.ChartLineSolid
				cs.Line.Width = l.Width
				if l.Color != "" {
					cs.Line.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(l.Color, "#")}}
				}
			}
		}
		if noMarkers {
			cs.Marker.Symbol = "none"
		}
		if m := s.Marker; m != nil {
			cs.Marker.Symbol, cs.Marker.Size = m.Type, m.Size
		}
		c.Series = append(c.Series, cs)
	}
	return &c, nil
}

func convertAxis(a xltable.Axis) (excelize.ChartAxis, error) {
	var ca excelize.ChartAxis
	var err error
	if ca.Minimum, ca.Maximum, err = a.Bounds(); err != nil {
		return ca, err
	}
	ca.ReverseOrder = a.Reverse
	ca.NumFmt.CustomNumFmt = a.NumberFormat
	if a.Title != "" {
		ca.Title = []excelize.RichTextRun{{Text: a.Title}}
	}
	return ca, nil
}
