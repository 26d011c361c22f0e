// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xltable

import (
	"errors"

	"github.com/UNO-SOFT/xltable/addr"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/table"
)

var (
	ErrLabelNotFound   = expr.ErrLabelNotFound
	ErrNoIndex         = table.ErrNoIndex
	ErrShape           = table.ErrShape
	ErrInvalidArgument = addr.ErrInvalidArgument

	ErrTableNotFound     = errors.New("table not found")
	ErrWorksheetNotFound = errors.New("worksheet not found")
	// ErrNoActiveTable and ErrActiveTableMismatch mean a reference
	// without a table name was resolved outside of any table.
	ErrNoActiveTable       = errors.New("no active table")
	ErrActiveTableMismatch = errors.New("active table is not on the active worksheet")
	ErrDuplicateTableName  = errors.New("duplicate table name")
	ErrDuplicateSheetName  = errors.New("duplicate sheet name")
	ErrOverlap             = errors.New("tables overlap")
	ErrTooManyRows         = errors.New("too many rows")
)
