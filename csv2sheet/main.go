// Copyright 2020, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command csv2sheet converts CSV files to an xlsx or ods workbook,
// one sheet per CSV file, optionally with column totals.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/expr"
	"github.com/UNO-SOFT/xltable/ods"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
	"github.com/UNO-SOFT/xltable/xlsx"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		logger.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	fs := flag.NewFlagSet("csv2sheet", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", xltable.EncName, "csv charset name")
	flagTotals := fs.Bool("totals", false, "add a SUM row under the numeric columns")
	flagCalcMode := fs.String("calc-mode", "", "calculation mode: auto, manual or autoNoTable")
	flagStyle := fs.String("style", "default", "table style: default or plain")
	_ = fs.String("config", "", "YAML config file")

	app := ffcli.Command{Name: "csv2sheet", FlagSet: fs,
		ShortUsage: "csv2sheet [flags] <output.xlsx|output.ods> [sheet:]<input.csv>...",
		Options: []ff.Option{
			ff.WithEnvVarPrefix("XLTABLE"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithAllowMissingConfigFile(true),
		},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return flag.ErrHelp
			}
			ts, ok := style.NamedTable(*flagStyle)
			if !ok {
				return fmt.Errorf("unknown table style %q", *flagStyle)
			}
			var opts []xltable.Option
			opts = append(opts, xltable.WithLogger(logger))
			if *flagCalcMode != "" {
				opts = append(opts, xltable.WithCalcMode(*flagCalcMode))
			}
			wb := xltable.NewWorkbook(opts...)
			for i, fn := range args[1:] {
				if err := ctx.Err(); err != nil {
					return err
				}
				sheetName := fmt.Sprintf("Sheet%d", i+1)
				if i := strings.IndexByte(fn, ':'); i >= 0 {
					sheetName, fn = fn[:i], fn[i+1:]
				} else if fn != "" && fn != "-" {
					sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
				}
				if err := addCSV(wb, sheetName, fn, *flagEnc, *flagTotals, ts); err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
			}
			return writeFile(args[0], wb)
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

func addCSV(wb *xltable.Workbook, sheetName, fn, encName string, totals bool, ts style.TableStyle) error {
	cr, err := xltable.OpenCsv(fn, encName)
	if err != nil {
		return err
	}
	defer cr.Close()
	ws, err := wb.NewSheet(sheetName)
	if err != nil {
		return err
	}
	t, err := xltable.ReadTable(tableName(sheetName), cr.Reader, table.WithStyle(ts))
	if err != nil {
		return err
	}
	var spaces []xltable.PlaceOption
	if totals {
		spaces = append(spaces, xltable.WithRowSpaces(0))
	}
	if _, _, err = ws.AddTable(t, spaces...); err != nil {
		return err
	}
	logger.Debug("read", "file", fn, "sheet", sheetName, "rows", t.Height()-t.HeaderHeight())
	if !totals {
		return nil
	}
	tot, err := Totals(t)
	if err != nil || tot == nil {
		return err
	}
	_, _, err = ws.AddTable(tot)
	return err
}

// tableName returns a table name usable in an expression.
func tableName(sheetName string) string {
	return strings.Map(func(r rune) rune {
		if r == '!' {
			return '_'
		}
		return r
	}, sheetName)
}

// Totals returns a one-row table of SUM formulas under the numeric columns of t,
// or nil if t has none.
func Totals(t *table.Table) (*table.Table, error) {
	cols, index := t.Columns(), t.Index()
	row := make([]any, len(cols))
	var numeric int
	for i, c := range cols {
		var hasNumber, other bool
		for _, r := range index {
			v, err := t.Cell(r, c)
			if err != nil {
				return nil, err
			}
			switch x := v.(type) {
			case xltable.Number:
				hasNumber = true
			case string:
				other = other || x != ""
			case nil:
			default:
				other = true
			}
		}
		if hasNumber && !other {
			row[i] = expr.Call("SUM", expr.Column{Col: c, Table: t.Name()})
			numeric++
		}
	}
	if numeric == 0 {
		return nil, nil
	}
	if row[0] == nil {
		row[0] = "Total"
	}
	return table.New(t.Name()+"_total", table.Data{Columns: cols, Rows: [][]any{row}},
		table.WithHeader(false),
		table.WithStyle(style.TableStyle{}),
		table.WithRowStyle(0, style.Bold),
	)
}

func writeFile(fn string, wb *xltable.Workbook) error {
	fh := os.Stdout
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Create(fn); err != nil {
			return err
		}
	}
	defer fh.Close()
	var w xltable.Writer
	if strings.HasSuffix(fn, ".xlsx") {
		w = xlsx.NewWriter(fh)
	} else {
		var err error
		if w, err = ods.NewWriter(fh); err != nil {
			return err
		}
	}
	if err := export(w, wb); err != nil {
		return err
	}
	return fh.Close()
}

func export(w xltable.Writer, wb *xltable.Workbook) error {
	if err := wb.Export(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
