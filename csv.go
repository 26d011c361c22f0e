// Copyright 2020, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/UNO-SOFT/xltable/table"
)

// EncName is the default charset of CSV files, from $LANG.
var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	} else {
		EncName = ""
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the named encoding; nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

// CsvReadCloser is a csv.Reader that closes the underlying file.
type CsvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens the named file ("" or "-" is stdin) as CSV,
// decoding from encName. The separator is the first character
// that is not a letter, a number, a quote or an underscore.
func OpenCsv(fn, encName string) (CsvReadCloser, error) {
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return CsvReadCloser{}, err
		}
	}
	cr, err := NewCsvReader(fh, encName)
	if err != nil {
		fh.Close()
		return CsvReadCloser{}, err
	}
	return CsvReadCloser{Reader: cr, Closer: fh}, nil
}

// NewCsvReader returns a csv.Reader reading r in encName,
// with the separator sniffed as in OpenCsv.
func NewCsvReader(r io.Reader, encName string) (*csv.Reader, error) {
	if encName != "" {
		enc, err := GetEncoding(encName)
		if err != nil {
			return nil, err
		}
		if enc != nil {
			r = enc.NewDecoder().Reader(r)
		}
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		return nil, err
	}
	sep := rune(',')
	for _, r := range string(b) {
		if r == '"' || r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		if r == '\n' || r == '\r' {
			break
		}
		sep = r
		break
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	return cr, nil
}

// ReadTable reads a table from CSV: the first record is the column labels,
// the rest are the rows. Fields that look like numbers become Number.
func ReadTable(name string, cr *csv.Reader, opts ...table.Option) (*table.Table, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	data := table.Data{Columns: make([]any, len(header))}
	for i, h := range uniqueNames(header) {
		data.Columns[i] = h
	}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		row := make([]any, len(header))
		for i := range row {
			if i >= len(rec) {
				break
			}
			if s := rec[i]; LooksNumeric(s) {
				row[i] = Number(s)
			} else {
				row[i] = s
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return table.New(name, data, opts...)
}

// uniqueNames suffixes repeated names with _1, _2... until they are unique.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	for i, n := range names {
		name := n
		if _, dup := used[name]; dup {
			for j := 1; ; j++ {
				name = fmt.Sprintf("%s_%d", n, j)
				_, taken := seen[name]
				if _, dup := used[name]; !dup && !taken {
					break
				}
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// LooksNumeric reports whether s is a decimal number that does not start
// with a superfluous zero, as identifiers often do.
func LooksNumeric(s string) bool {
	if s == "" {
		return false
	}
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}
	if strings.ContainsAny(s, "xXpP_") || strings.EqualFold(digits, "inf") ||
		strings.EqualFold(digits, "infinity") || strings.EqualFold(digits, "nan") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// WriteCSV writes the resolved grid of the worksheet, see Worksheet.Grid.
func (ws *Worksheet) WriteCSV(w *csv.Writer, wb *Workbook) error {
	g, err := ws.Grid(wb)
	if err != nil {
		return err
	}
	rec := make([]string, g.Width())
	for _, row := range g.Rows() {
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatValue returns the text of a cell value.
func FormatValue(v any) string {
	v = table.Unwrap(v)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Number:
		return string(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
