// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	"regexp"
	"strings"

	"github.com/xuri/efp"
)

var rxCellRef = regexp.MustCompile(`^\$?[A-Za-z]{1,3}\$?[0-9]+$`)

// OpenFormula translates an Excel formula (without the leading "=")
// to OpenFormula, as used in the table:formula attribute, with the "of:=" prefix.
//
// References become [.A1] or ['Sheet'.A1:.B2], arguments are separated by ";".
func OpenFormula(formula string) string {
	p := efp.ExcelParser()
	var buf strings.Builder
	buf.WriteString("of:=")
	var stack []string
	for _, t := range p.Parse(formula) {
		switch t.TType {
		case efp.TokenTypeNoop:
		case efp.TokenTypeFunction:
			if t.TSubType == efp.TokenSubTypeStart {
				stack = append(stack, t.TValue)
				switch t.TValue {
				case "ARRAY":
					buf.WriteByte('{')
				case "ARRAYROW":
				default:
					buf.WriteString(t.TValue)
					buf.WriteByte('(')
				}
				continue
			}
			var name string
			if len(stack) != 0 {
				name, stack = stack[len(stack)-1], stack[:len(stack)-1]
			}
			switch name {
			case "ARRAY":
				buf.WriteByte('}')
			case "ARRAYROW":
			default:
				buf.WriteByte(')')
			}
		case efp.TokenTypeSubexpression:
			if t.TSubType == efp.TokenSubTypeStart {
				stack = append(stack, "")
				buf.WriteByte('(')
			} else {
				if len(stack) != 0 {
					stack = stack[:len(stack)-1]
				}
				buf.WriteByte(')')
			}
		case efp.TokenTypeArgument:
			if len(stack) != 0 && stack[len(stack)-1] == "ARRAY" {
				buf.WriteByte('|')
			} else {
				buf.WriteByte(';')
			}
		case efp.TokenTypeOperand:
			switch t.TSubType {
			case efp.TokenSubTypeText:
				buf.WriteByte('"')
				buf.WriteString(strings.ReplaceAll(t.TValue, `"`, `""`))
				buf.WriteByte('"')
			case efp.TokenSubTypeLogical:
				buf.WriteString(t.TValue)
				buf.WriteString("()")
			case efp.TokenSubTypeRange:
				buf.WriteString(reference(t.TValue))
			default:
				buf.WriteString(t.TValue)
			}
		case efp.TokenTypeWhitespace:
			buf.WriteByte(' ')
		default:
			buf.WriteString(t.TValue)
		}
	}
	return buf.String()
}

// reference converts Sheet!$A$1:$B$2 to ['Sheet'.$A$1:.$B$2].
// Names that are not cell references are returned as is.
func reference(ref string) string {
	var sheet string
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		sheet, ref = ref[:i], ref[i+1:]
	}
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return ref
	}
	for _, p := range parts {
		if !rxCellRef.MatchString(p) {
			if sheet != "" {
				return sheet + "!" + ref
			}
			return ref
		}
	}
	var buf strings.Builder
	buf.WriteByte('[')
	if sheet != "" {
		buf.WriteString("'" + strings.ReplaceAll(sheet, "'", "''") + "'")
	}
	for i, p := range parts {
		if i != 0 {
			buf.WriteByte(':')
		}
		buf.WriteByte('.')
		buf.WriteString(p)
	}
	buf.WriteByte(']')
	return buf.String()
}
