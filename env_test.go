// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xltable/table"
)

func TestEnvActiveTable(t *testing.T) {
	wb := NewWorkbook()
	ws1, err := wb.NewSheet("One")
	require.NoError(t, err)
	ws2, err := wb.NewSheet("Two")
	require.NoError(t, err)
	tbl, err := table.New("t", table.Data{Columns: []any{"a"}, Rows: [][]any{{1}}})
	require.NoError(t, err)
	_, _, err = ws1.AddTable(tbl, AtRow(3), AtCol(2))
	require.NoError(t, err)

	loc, err := env{wb: wb, sheet: ws1, table: tbl}.Locate("")
	require.NoError(t, err)
	assert.Equal(t, "One", loc.Sheet)
	assert.Equal(t, 3, loc.Top)
	assert.Equal(t, 2, loc.Left)

	_, err = env{wb: wb, sheet: ws2, table: tbl}.Locate("")
	assert.ErrorIs(t, err, ErrActiveTableMismatch)

	_, ws, err := env{wb: wb, table: tbl}.lookup("")
	require.NoError(t, err)
	assert.Same(t, ws1, ws)

	// same name, different table
	other, err := table.New("t", table.Data{Columns: []any{"a"}})
	require.NoError(t, err)
	_, err = env{wb: wb, table: other}.Locate("")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = env{wb: wb}.Locate("")
	assert.ErrorIs(t, err, ErrNoActiveTable)

	// the active sheet is searched even if it is not in the workbook
	loose, err := NewWorksheet("Loose")
	require.NoError(t, err)
	_, _, err = loose.AddTable(other)
	require.NoError(t, err)
	loc, err = env{wb: wb, sheet: loose}.Locate("Loose!t")
	require.NoError(t, err)
	assert.Equal(t, "Loose", loc.Sheet)
}
