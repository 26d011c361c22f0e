// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/pdf"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
)

func TestCellText(t *testing.T) {
	day := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, tc := range []struct {
		in   xltable.Cell
		want string
	}{
		{xltable.Cell{Value: "=A1+1"}, "=A1+1"},
		{xltable.Cell{Value: "=1+2", Cached: int64(3), HasCached: true}, "3"},
		{xltable.Cell{Value: 1.5}, "1.5"},
		{xltable.Cell{Value: xltable.Number("007")}, "007"},
		{xltable.Cell{Value: day}, "2025-03-04"},
		{xltable.Cell{Value: day, Style: style.CellStyle{DateFormat: style.Some("%d/%m/%Y %H:%M")}}, "04/03/2025 05:06"},
		{xltable.Cell{}, ""},
	} {
		assert.Equal(t, tc.want, pdf.CellText(tc.in))
	}
}

func TestGridSizes(t *testing.T) {
	assert.Nil(t, pdf.GridSizes(nil, 12))
	sizes := pdf.GridSizes([][]string{{"aaa", "a"}, {"aaaaa", ""}}, 12)
	assert.Equal(t, []int{11, 1}, sizes)
	sizes = pdf.GridSizes([][]string{{"ab", "cd", "ef"}}, 10)
	assert.Equal(t, []int{4, 3, 3}, sizes)
}

func TestExport(t *testing.T) {
	wb := xltable.NewWorkbook()
	ws, err := wb.NewSheet("Sheet1")
	require.NoError(t, err)
	tbl, err := table.New("t", table.Data{
		Columns: []any{"a", "b"},
		Rows:    [][]any{{1, expr.Mul(expr.Cell{Col: "a"}, 2)}, {2, "x"}},
	}, table.WithColumnStyle("a", style.CellStyle{Border: style.Some(1), Align: style.Some("right")}))
	require.NoError(t, err)
	_, _, err = ws.AddTable(tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := pdf.NewWriter(&buf, pdf.Options{PageNumbers: true})
	require.NoError(t, wb.Export(w))
	require.NoError(t, w.Close())
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	require.NoError(t, w.Close(), "second Close is a no-op")
}
