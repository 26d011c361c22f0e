// Copyright 2021, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command csv2pdf prints a CSV file as a PDF table.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/xltable"
	"github.com/UNO-SOFT/xltable/pdf"
	"github.com/UNO-SOFT/xltable/style"
	"github.com/UNO-SOFT/xltable/table"
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
	alternateColor := Color{RGB: 0xE6E6E6}

	fs := flag.NewFlagSet("csv2pdf", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", xltable.EncName, "csv charset name")
	flagOut := fs.String("o", "", "output file name (default input file + .pdf)")
	fs.Var(&alternateColor, "alternate-color", "alternate color")
	flagLandscape := fs.Bool("L", false, "landscape orientation (default: portrait)")
	flagFontSize := fs.Float64("f", 8, "font size")
	flagPrintPagenum := fs.Bool("print-pagenum", false, "print page numbers")

	app := ffcli.Command{Name: "csv2pdf", FlagSet: fs,
		ShortUsage: "csv2pdf [flags] <input.csv>",
		Options:    []ff.Option{ff.WithEnvVarPrefix("XLTABLE")},
		Exec: func(ctx context.Context, args []string) error {
			var inp string
			if len(args) != 0 {
				inp = args[0]
			}
			cr, err := xltable.OpenCsv(inp, *flagEnc)
			if err != nil {
				return err
			}
			defer cr.Close()

			t, err := xltable.ReadTable("csv", cr.Reader,
				table.WithStyle(style.TableStyle{StripeColors: []style.RGB{0xFFFFFF, alternateColor.RGB}}),
			)
			if err != nil {
				return err
			}
			logger.Debug("read", "file", inp, "rows", t.Height()-t.HeaderHeight(), "columns", t.Width())

			wb := xltable.NewWorkbook(xltable.WithLogger(logger))
			ws, err := wb.NewSheet(sheetName(inp))
			if err != nil {
				return err
			}
			if _, _, err = ws.AddTable(t); err != nil {
				return err
			}

			var buf bytes.Buffer
			w := pdf.NewWriter(&buf, pdf.Options{
				Landscape:   *flagLandscape,
				FontSize:    *flagFontSize,
				PageNumbers: *flagPrintPagenum,
			})
			if err = wb.Export(w); err != nil {
				return err
			}
			if err = w.Close(); err != nil {
				return err
			}

			out := *flagOut
			if out == "" && inp != "" && inp != "-" {
				out = inp + ".pdf"
			}
			if out == "" || out == "-" {
				_, err = io.Copy(os.Stdout, &buf)
				return err
			}
			return os.WriteFile(out, buf.Bytes(), 0o644)
		},
	}

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if strings.HasPrefix(a, "-f") && len(a) > 2 && '0' <= a[2] && a[2] <= '9' {
			args = append(args, "-f", a[2:])
		} else {
			args = append(args, a)
		}
	}
	logger.Debug("args", "original", os.Args[1:], "fixed", args)
	if err := app.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

func sheetName(fn string) string {
	if fn == "" || fn == "-" {
		return "Sheet1"
	}
	base := fn
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".csv")
	if xltable.ValidSheetName(base) != nil {
		return "Sheet1"
	}
	return base
}

// Color is an RGB flag value, as hex digits.
type Color struct {
	style.RGB
}

func (c *Color) String() string { return fmt.Sprintf("%06x", uint32(c.RGB)) }

func (c *Color) Set(s string) error {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return err
	}
	if len(b) != 3 {
		return fmt.Errorf("%q: need 6 hex digits", s)
	}
	c.RGB = style.RGB(b[0])<<16 | style.RGB(b[1])<<8 | style.RGB(b[2])
	return nil
}
