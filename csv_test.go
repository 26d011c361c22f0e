// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable_test

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/table"
)

func TestReadTable(t *testing.T) {
	cr, err := xltable.NewCsvReader(strings.NewReader("name;amount;id\nalpha;1.5;007\nbeta;-2;12\n"), "")
	require.NoError(t, err)
	tbl, err := xltable.ReadTable("data", cr)
	require.NoError(t, err)
	assert.Equal(t, []any{"name", "amount", "id"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Height())

	for _, tc := range []struct {
		Row  int
		Col  string
		Want any
	}{
		{0, "name", "alpha"},
		{0, "amount", xltable.Number("1.5")},
		{0, "id", "007"},
		{1, "amount", xltable.Number("-2")},
		{1, "id", xltable.Number("12")},
	} {
		v, err := tbl.Cell(tc.Row, tc.Col)
		require.NoError(t, err)
		assert.Equal(t, tc.Want, v, "%d/%s", tc.Row, tc.Col)
	}
}

func TestReadTableCharset(t *testing.T) {
	// "árvíztűrő" in ISO-8859-2
	latin2 := "n\xe9v\n\xe1rv\xedzt\xfbr\xf5\n"
	cr, err := xltable.NewCsvReader(strings.NewReader(latin2), "iso-8859-2")
	require.NoError(t, err)
	tbl, err := xltable.ReadTable("t", cr)
	require.NoError(t, err)
	assert.Equal(t, []any{"név"}, tbl.Columns())
	v, err := tbl.Cell(0, "név")
	require.NoError(t, err)
	assert.Equal(t, "árvíztűrő", v)

	_, err = xltable.GetEncoding("no-such-charset")
	assert.Error(t, err)
	enc, err := xltable.GetEncoding("UTF-8")
	assert.NoError(t, err)
	assert.Nil(t, enc)
}

func TestLooksNumeric(t *testing.T) {
	for s, want := range map[string]bool{
		"1": true, "0": true, "-0.5": true, "1e3": true, "3.14": true,
		"": false, "007": false, "abc": false, "NaN": false, "Inf": false,
		"0x1F": false, "1_000": false, "1,5": false,
	} {
		assert.Equal(t, want, xltable.LooksNumeric(s), s)
	}
}

func TestWriteCSV(t *testing.T) {
	ws := mustSheet(t, "Sheet1")
	_, _, err := ws.AddTable(mustTable(t, "t", table.Data{
		Columns: []any{"a", "b", "c"},
		Rows: [][]any{
			{1, 0.5, expr.Call("SUM", expr.Cell{Col: "a"}, expr.Cell{Col: "b"})},
			{xltable.Number("2"), true, table.Value{V: "x,y"}},
		},
	}))
	require.NoError(t, err)
	require.NoError(t, ws.AddValue(4, 1, "end"))

	var buf strings.Builder
	require.NoError(t, ws.WriteCSV(csv.NewWriter(&buf), nil))
	assert.Equal(t, "a,b,c\n"+
		"1,0.5,\"=SUM('Sheet1'!A2,'Sheet1'!B2)\"\n"+
		"2,TRUE,\"x,y\"\n"+
		",,\n"+
		",end,\n", buf.String())
}

func TestReadTableRepeatedHeader(t *testing.T) {
	cr := csv.NewReader(strings.NewReader("a,a,a_1,a\n1,2,3,4\n"))
	tbl, err := xltable.ReadTable("t", cr)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "a_2", "a_1", "a_3"}, tbl.Columns())
	v, err := tbl.Cell(0, "a_2")
	require.NoError(t, err)
	assert.Equal(t, xltable.Number("2"), v)
}
