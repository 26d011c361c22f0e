// Copyright 2021, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package pdf prints workbooks as PDF tables, using maroto.
//
// Formulas are printed by their known value, or by their text when it is unknown.
package pdf

import (
	"io"
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/style"
)

var _ = (xltable.Writer)((*PDFWriter)(nil))

// GridSum is the sum of the column sizes of a row.
const GridSum = 120

// Options of the PDF.
type Options struct {
	Landscape   bool
	FontSize    float64
	PageNumbers bool
	// Family is the font family of the cells, arial by default.
	Family string
}

// PDFWriter collects the sheets and prints them one after the other at Close.
type PDFWriter struct {
	w      io.Writer
	opts   Options
	sheets []*PDFSheet
	mu     sync.Mutex
}

// PDFSheet is a sheet of a PDFWriter.
type PDFSheet struct {
	Name string
	cols []xltable.Column
	rows [][]xltable.Cell
	mu   sync.Mutex
}

// NewWriter returns a writer printing to w.
func NewWriter(w io.Writer, opts Options) *PDFWriter {
	if opts.FontSize <= 0 {
		opts.FontSize = 8
	}
	if opts.Family == "" {
		opts.Family = fontfamily.Arial
	}
	return &PDFWriter{w: w, opts: opts}
}

func (pw *PDFWriter) NewSheet(name string, columns []xltable.Column) (xltable.Sheet, error) {
	sh := &PDFSheet{Name: name, cols: columns}
	var hasHeader bool
	header := make([]xltable.Cell, len(columns))
	for i, c := range columns {
		header[i] = xltable.Cell{Value: c.Name, Style: style.Merge(style.Bold, c.Header)}
		hasHeader = hasHeader || c.Name != ""
	}
	if hasHeader {
		sh.rows = append(sh.rows, header)
	}
	pw.mu.Lock()
	pw.sheets = append(pw.sheets, sh)
	pw.mu.Unlock()
	return sh, nil
}

func (sh *PDFSheet) Close() error { return nil }

func (sh *PDFSheet) AppendRow(values ...any) error {
	row := make([]xltable.Cell, len(values))
	for i, v := range values {
		if v != nil {
			row[i] = xltable.CellOf(v)
		}
		if i < len(sh.cols) {
			row[i].Style = sh.cols[i].Column.Merge(row[i].Style)
		}
	}
	sh.mu.Lock()
	sh.rows = append(sh.rows, row)
	sh.mu.Unlock()
	return nil
}

// Close generates the document and writes it to the underlying writer.
func (pw *PDFWriter) Close() error {
	if pw == nil {
		return nil
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	w := pw.w
	pw.w = nil
	if w == nil {
		return nil
	}
	cb := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithMaxGridSize(GridSum)
	if pw.opts.Landscape {
		cb = cb.WithOrientation(orientation.Horizontal)
	}
	if pw.opts.PageNumbers {
		cb = cb.WithPageNumber(props.PageNumber{Place: props.Bottom, Size: pw.opts.FontSize})
	}
	m := maroto.New(cb.Build())
	for i, sh := range pw.sheets {
		sh.mu.Lock()
		if i != 0 {
			m.AddRow(pw.opts.FontSize)
		}
		m.AddRows(text.NewAutoRow(sh.Name, props.Text{
			Family: pw.opts.Family, Style: fontstyle.Bold,
			Size: pw.opts.FontSize * 1.375, Bottom: 2,
		}))
		m.AddRows(pw.sheetRows(sh)...)
		sh.mu.Unlock()
	}
	doc, err := m.Generate()
	if err != nil {
		return err
	}
	_, err = w.Write(doc.GetBytes())
	return err
}

func (pw *PDFWriter) sheetRows(sh *PDFSheet) []core.Row {
	texts := make([][]string, len(sh.rows))
	for i, r := range sh.rows {
		texts[i] = make([]string, len(r))
		for j, c := range r {
			texts[i][j] = CellText(c)
		}
	}
	sizes := GridSizes(texts, GridSum)
	rows := make([]core.Row, 0, len(sh.rows))
	for i, r := range sh.rows {
		cols := make([]core.Col, 0, len(sizes))
		for j, size := range sizes {
			var c xltable.Cell
			if j < len(r) {
				c = r[j]
			}
			var s string
			if j < len(texts[i]) {
				s = texts[i][j]
			}
			cc := col.New(size).Add(text.New(s, pw.textProps(c.Style)))
			if cp := cellProps(c.Style); cp != nil {
				cc = cc.WithStyle(cp)
			}
			cols = append(cols, cc)
		}
		rows = append(rows, row.New().Add(cols...))
	}
	return rows
}

func (pw *PDFWriter) textProps(s style.CellStyle) props.Text {
	p := props.Text{
		Family: pw.opts.Family,
		Size:   s.Size.Or(pw.opts.FontSize),
		Top:    0.5, Bottom: 0.5, Left: 1, Right: 1,
	}
	if s.Bold.V {
		p.Style = fontstyle.Bold
	}
	switch s.Align.V {
	case "center":
		p.Align = align.Center
	case "right":
		p.Align = align.Right
	default:
		p.Align = align.Left
	}
	if s.TextColor.Set {
		p.Color = color(s.TextColor.V)
	}
	return p
}

func cellProps(s style.CellStyle) *props.Cell {
	if !s.BgColor.Set && !(s.Border.Set && s.Border.V > 0) {
		return nil
	}
	var p props.Cell
	if s.BgColor.Set {
		p.BackgroundColor = color(s.BgColor.V)
	}
	if s.Border.Set && s.Border.V > 0 {
		p.BorderType = border.Full
		p.BorderThickness = 0.2 * float64(s.Border.V)
	}
	return &p
}

func color(c style.RGB) *props.Color {
	return &props.Color{Red: int(c>>16) & 0xff, Green: int(c>>8) & 0xff, Blue: int(c) & 0xff}
}

// CellText returns the printed text of the cell: the known value of a formula,
// or the formula itself.
func CellText(c xltable.Cell) string {
	v := c.Value
	if f, ok := xltable.Formula(v); ok {
		if !c.HasCached {
			return "=" + f
		}
		v = c.Cached
	}
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		if c.Style.DateFormat.Set {
			return formatTime(t, c.Style.DateFormat.V)
		}
		return t.Format(time.DateOnly)
	}
	return xltable.FormatValue(v)
}

var timeLayouts = map[byte]string{'Y': "2006", 'm': "01", 'd': "02", 'H': "15", 'M': "04", 'S': "05"}

func formatTime(t time.Time, format string) string {
	var layout []byte
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			if s, ok := timeLayouts[format[i+1]]; ok {
				layout = append(layout, s...)
				i++
				continue
			}
		}
		layout = append(layout, format[i])
	}
	return t.Format(string(layout))
}

// GridSizes distributes sum among the columns, proportional to the
// average text length in each column. Every column gets at least 1.
func GridSizes(rows [][]string, sum int) []int {
	var n int
	for _, r := range rows {
		n = max(n, len(r))
	}
	if n == 0 {
		return nil
	}
	widths := make([]float64, n)
	var total float64
	for _, r := range rows {
		for i, s := range r {
			widths[i] += float64(utf8.RuneCountInString(s))
		}
	}
	for i := range widths {
		widths[i] = max(widths[i], 1)
		total += widths[i]
	}
	sizes := make([]int, n)
	remain := sum
	for i, w := range widths {
		sizes[i] = max(1, int(math.Floor(w/total*float64(sum))))
		remain -= sizes[i]
	}
	// give the rounding leftover to the widest column
	if remain > 0 {
		var widest int
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		sizes[widest] += remain
	}
	return sizes
}
