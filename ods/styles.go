// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	"fmt"
	"strings"

	"github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/xltable/style"
)

// styleName returns the automatic style name of s, registering it if new.
// Must be called with mu held.
func (ow *ODSWriter) styleName(s style.CellStyle) string {
	if s.IsZero() {
		return ""
	}
	i, ok := ow.styles[s]
	if !ok {
		if ow.styles == nil {
			ow.styles = make(map[style.CellStyle]int)
		}
		ow.order = append(ow.order, s)
		i = len(ow.order)
		ow.styles[s] = i
	}
	return fmt.Sprintf("ce%d", i)
}

func (ow *ODSWriter) style(s style.CellStyle) string {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	return ow.styleName(s)
}

// writeStyles writes the data and cell styles, as automatic styles.
func writeStyles(qw *quicktemplate.Writer, styles []style.CellStyle) {
	e, n := qw.E(), qw.N()
	for i, s := range styles {
		dataStyle := fmt.Sprintf("N%d", i+1)
		if !writeDataStyle(qw, dataStyle, s) {
			dataStyle = ""
		}
		n.S(`<style:style style:name="ce`)
		n.D(i + 1)
		n.S(`" style:family="table-cell" style:parent-style-name="Default"`)
		if dataStyle != "" {
			n.S(` style:data-style-name="`)
			n.S(dataStyle)
			n.S(`"`)
		}
		n.S(`><style:table-cell-properties`)
		if s.BgColor.Set {
			n.S(` fo:background-color="`)
			n.S(s.BgColor.V.Hex())
			n.S(`"`)
		}
		if s.Border.Set && s.Border.V > 0 {
			n.S(` fo:border="`)
			n.S(borderWidth(s.Border.V))
			n.S(` solid #000000"`)
		}
		if s.TextWrap.V {
			n.S(` fo:wrap-option="wrap"`)
		}
		if s.VAlign.Set {
			n.S(` style:vertical-align="`)
			e.S(verticalAlign(s.VAlign.V))
			n.S(`"`)
		}
		n.S(`/>`)
		if s.Align.Set {
			n.S(`<style:paragraph-properties fo:text-align="`)
			e.S(textAlign(s.Align.V))
			n.S(`"/>`)
		}
		if s.Bold.V || s.Size.Set || s.TextColor.Set {
			n.S(`<style:text-properties`)
			if s.Bold.V {
				n.S(` fo:font-weight="bold"`)
			}
			if s.Size.Set {
				n.S(` fo:font-size="`)
				n.F(s.Size.V)
				n.S(`pt"`)
			}
			if s.TextColor.Set {
				n.S(` fo:color="`)
				n.S(s.TextColor.V.Hex())
				n.S(`"`)
			}
			n.S(`/>`)
		}
		n.S("</style:style>\n")
	}
}

func borderWidth(b int) string {
	switch b {
	case 1:
		return "0.74pt"
	case 2:
		return "1.76pt"
	default:
		return "2.49pt"
	}
}

func textAlign(s string) string {
	switch s {
	case "left":
		return "start"
	case "right":
		return "end"
	}
	return s
}

func verticalAlign(s string) string {
	switch s {
	case "vcenter", "center":
		return "middle"
	}
	return s
}

// writeDataStyle writes the number or date style of s, and reports whether s needs one.
func writeDataStyle(qw *quicktemplate.Writer, name string, s style.CellStyle) bool {
	e, n := qw.E(), qw.N()
	if s.DateFormat.Set && !s.NumberFormat.Set {
		n.S(`<number:date-style style:name="`)
		n.S(name)
		n.S(`">`)
		writeDateParts(qw, s.DateFormat.V)
		n.S("</number:date-style>\n")
		return true
	}
	code := s.NumberFormatCode()
	if code == "" {
		return false
	}
	percent := strings.HasSuffix(code, "%")
	var decimals int
	if i := strings.IndexByte(code, '.'); i >= 0 {
		decimals = strings.Count(code[i:], "0") + strings.Count(code[i:], "#")
	}
	kind := "number"
	if percent {
		kind = "percentage"
	}
	n.S(`<number:`)
	n.S(kind)
	n.S(`-style style:name="`)
	n.S(name)
	n.S(`"><number:number number:decimal-places="`)
	n.D(decimals)
	n.S(`" number:min-integer-digits="1"`)
	if strings.Contains(code, ",") {
		n.S(` number:grouping="true"`)
	}
	n.S(`/>`)
	if percent {
		n.S(`<number:text>%</number:text>`)
	}
	n.S(`</number:`)
	e.S(kind)
	n.S("-style>\n")
	return true
}

var dateParts = map[byte]string{
	'Y': `<number:year number:style="long"/>`,
	'm': `<number:month number:style="long"/>`,
	'd': `<number:day number:style="long"/>`,
	'H': `<number:hours number:style="long"/>`,
	'M': `<number:minutes number:style="long"/>`,
	'S': `<number:seconds number:style="long"/>`,
}

func writeDateParts(qw *quicktemplate.Writer, format string) {
	e, n := qw.E(), qw.N()
	var text strings.Builder
	flush := func() {
		if text.Len() != 0 {
			n.S(`<number:text>`)
			e.S(text.String())
			n.S(`</number:text>`)
			text.Reset()
		}
	}
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			if part, ok := dateParts[format[i+1]]; ok {
				flush()
				n.S(part)
				i++
				continue
			}
		}
		text.WriteByte(format[i])
	}
	flush()
}
