// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	"strconv"
	"time"

	"github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/xltable"
)

const (
	xmlHeader  = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	namespaces = ` xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"` +
		` xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"` +
		` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"` +
		` xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"` +
		` xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"` +
		` xmlns:number="urn:oasis:names:tc:opendocument:xmlns:datastyle:1.0"` +
		` xmlns:config="urn:oasis:names:tc:opendocument:xmlns:config:1.0"` +
		` xmlns:of="urn:oasis:names:tc:opendocument:xmlns:of:1.2"` +
		` office:version="1.2"`
)

func writeManifest(qw *quicktemplate.Writer) {
	n := qw.N()
	n.S(xmlHeader)
	n.S(`<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">` + "\n")
	n.S(`<manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="` + mimeType + `"/>` + "\n")
	for _, fn := range []string{"content.xml", "styles.xml", "settings.xml"} {
		n.S(`<manifest:file-entry manifest:full-path="`)
		n.S(fn)
		n.S(`" manifest:media-type="text/xml"/>` + "\n")
	}
	n.S("</manifest:manifest>\n")
}

func writeDocumentStyles(qw *quicktemplate.Writer) {
	n := qw.N()
	n.S(xmlHeader)
	n.S(`<office:document-styles` + namespaces + `><office:styles>`)
	n.S(`<style:style style:name="Default" style:family="table-cell"/>`)
	n.S("</office:styles></office:document-styles>\n")
}

func (ow *ODSWriter) writeSettings(qw *quicktemplate.Writer) {
	n := qw.N()
	n.S(xmlHeader)
	n.S(`<office:document-settings` + namespaces + `><office:settings>`)
	n.S(`<config:config-item-set config:name="ooo:configuration-settings">`)
	n.S(`<config:config-item config:name="AutoCalculate" config:type="boolean">`)
	n.S(strconv.FormatBool(ow.calcMode != xltable.CalcManual))
	n.S(`</config:config-item></config:config-item-set>`)
	n.S("</office:settings></office:document-settings>\n")
}

// writeContent writes content.xml. Must be called with mu held.
func (ow *ODSWriter) writeContent(qw *quicktemplate.Writer) {
	e, n := qw.E(), qw.N()
	n.S(xmlHeader)
	n.S(`<office:document-content` + namespaces + ">\n<office:automatic-styles>\n")
	colStyles := make(map[float64]int)
	for _, ods := range ow.sheets {
		for _, c := range ods.cols {
			if _, ok := colStyles[c.width]; !ok && c.width > 0 {
				colStyles[c.width] = len(colStyles) + 1
				n.S(`<style:style style:name="co`)
				n.D(colStyles[c.width])
				n.S(`" style:family="table-column"><style:table-column-properties style:column-width="`)
				// a character is about 7 pixels of 96 DPI
				n.FPrec(c.width*7/96, 3)
				n.S(`in"/></style:style>` + "\n")
			}
		}
	}
	writeStyles(qw, ow.order)
	n.S("</office:automatic-styles>\n<office:body><office:spreadsheet>\n")
	for _, ods := range ow.sheets {
		ods.mu.Lock()
		n.S(`<table:table table:name="`)
		e.S(ods.Name)
		n.S(`">`)
		for _, c := range ods.cols {
			n.S(`<table:table-column`)
			if c.width > 0 {
				n.S(` table:style-name="co`)
				n.D(colStyles[c.width])
				n.S(`"`)
			}
			if c.style != "" {
				n.S(` table:default-cell-style-name="`)
				n.S(c.style)
				n.S(`"`)
			}
			n.S(`/>`)
		}
		n.S("\n")
		ods.writeRows(qw)
		n.S("</table:table>\n")
		ods.mu.Unlock()
	}
	n.S("</office:spreadsheet></office:body></office:document-content>\n")
}

func (ods *ODSSheet) writeRows(qw *quicktemplate.Writer) {
	n := qw.N()
	groups := ods.sortedGroups()
	var open []xltable.RowGroup
	var next int
	for r, row := range ods.rows {
		for ; next < len(groups) && groups[next].First == r; next++ {
			g := groups[next]
			open = append(open, g)
			n.S(`<table:table-row-group`)
			if g.Collapsed {
				n.S(` table:display="false"`)
			}
			n.S(`>`)
		}
		var collapsed bool
		for _, g := range open {
			collapsed = collapsed || g.Collapsed
		}
		n.S(`<table:table-row`)
		if collapsed {
			n.S(` table:visibility="collapse"`)
		}
		n.S(`>`)
		if len(row) == 0 {
			n.S(`<table:table-cell/>`)
		}
		for _, c := range row {
			writeCell(qw, c)
		}
		n.S("</table:table-row>\n")
		for len(open) != 0 && open[len(open)-1].Last <= r {
			open = open[:len(open)-1]
			n.S("</table:table-row-group>\n")
		}
	}
	for range open {
		n.S("</table:table-row-group>\n")
	}
}

func writeCell(qw *quicktemplate.Writer, c cell) {
	e, n := qw.E(), qw.N()
	n.S(`<table:table-cell`)
	if c.style != "" {
		n.S(` table:style-name="`)
		n.S(c.style)
		n.S(`"`)
	}
	v := c.value
	if c.formula != "" {
		n.S(` table:formula="`)
		e.S(c.formula)
		n.S(`"`)
		if c.matrix != [2]int{} {
			n.S(` table:number-matrix-rows-spanned="`)
			n.D(c.matrix[0])
			n.S(`" table:number-matrix-columns-spanned="`)
			n.D(c.matrix[1])
			n.S(`"`)
		}
		v = nil
		if c.hasCached {
			v = c.cached
		}
	}
	var text string
	switch x := normalize(v).(type) {
	case nil:
		n.S(`/>`)
		return
	case string:
		n.S(` office:value-type="string"`)
		text = x
	case float64:
		text = strconv.FormatFloat(x, 'g', -1, 64)
		n.S(` office:value-type="float" office:value="`)
		n.S(text)
		n.S(`"`)
	case bool:
		text = "FALSE"
		if x {
			text = "TRUE"
		}
		n.S(` office:value-type="boolean" office:boolean-value="`)
		n.S(strconv.FormatBool(x))
		n.S(`"`)
	case time.Time:
		text = x.Format("2006-01-02T15:04:05")
		n.S(` office:value-type="date" office:date-value="`)
		n.S(text)
		n.S(`"`)
	}
	n.S(`><text:p>`)
	e.S(text)
	n.S("</text:p></table:table-cell>")
}
