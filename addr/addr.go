// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package addr converts zero-based (row, col) coordinates to spreadsheet
// addresses such as A1, $B$7 or 'Sheet1'!$A$2:$A$4.
package addr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidArgument is returned for negative coordinates.
var ErrInvalidArgument = errors.New("invalid argument")

// ColumnName returns the letters of the zero-based column:
// 0 is "A", 25 is "Z", 26 is "AA", 702 is "AAA".
func ColumnName(col int) (string, error) {
	if col < 0 {
		return "", fmt.Errorf("column %d: %w", col, ErrInvalidArgument)
	}
	return excelize.ColumnNumberToName(col + 1)
}

// ColumnIndex is the inverse of ColumnName.
func ColumnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return -1, err
	}
	return n - 1, nil
}

// Cell returns the address of the zero-based (row, col).
// Fixed addresses are anchored with '$' on both the column and the row.
// A non-empty sheet prefixes the address with 'sheet'!.
func Cell(sheet string, row, col int, fixed bool) (string, error) {
	if row < 0 || col < 0 {
		return "", fmt.Errorf("(%d, %d): %w", row, col, ErrInvalidArgument)
	}
	a, err := excelize.CoordinatesToCellName(col+1, row+1, fixed)
	if err != nil {
		return "", fmt.Errorf("(%d, %d): %w", row, col, err)
	}
	return Prefix(sheet) + a, nil
}

// Range returns the fixed address of the rectangle spanning the two corners,
// prefixed with the sheet name when it is not empty.
func Range(sheet string, top, left, bottom, right int) (string, error) {
	a, err := Cell("", top, left, true)
	if err != nil {
		return "", err
	}
	b, err := Cell("", bottom, right, true)
	if err != nil {
		return "", err
	}
	return Prefix(sheet) + a + ":" + b, nil
}

// Prefix returns the 'sheet'! prefix, or "" for an empty sheet name.
// Quotes inside the name are doubled.
func Prefix(sheet string) string {
	if sheet == "" {
		return ""
	}
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!"
}

// SplitQualified splits a "sheet!name" qualifier.
// Quotes around the sheet and the name are stripped.
// ok is false if name has no qualifier.
func SplitQualified(name string) (sheet, table string, ok bool) {
	i := strings.IndexByte(name, '!')
	if i < 0 {
		return "", name, false
	}
	return unquote(name[:i]), unquote(name[i+1:]), true
}

func unquote(s string) string {
	s = strings.Trim(s, "'")
	return strings.ReplaceAll(s, "''", "'")
}
