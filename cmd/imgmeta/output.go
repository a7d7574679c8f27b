package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const logo = `
  _                                _
 (_)_ __ ___   __ _ _ __ ___   ___| |_ __ _
 | | '_ ' _ \ / _' | '_ ' _ \ / _ \ __/ _' |
 | | | | | | | (_| | | | | | |  __/ || (_| |
 |_|_| |_| |_|\__, |_| |_| |_|\___|\__\__,_|
              |___/
`

// Terminal colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderTable draws a rounded table for terminals and tab separated values
// for pipes and files.
func renderTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	columns := len(headers)
	if columns == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	if isTerminal(w) {
		fmt.Fprintln(w, tw.Render())
	} else {
		fmt.Fprintln(w, tw.RenderTSV())
	}
}

func printColored(w io.Writer, color, symbol, message string) {
	if isTerminal(w) {
		fmt.Fprintln(w, color+symbol+" "+message+colorReset)
		return
	}
	fmt.Fprintln(w, symbol+" "+message)
}

func printSuccess(w io.Writer, message string) { printColored(w, colorGreen, "✓", message) }
func printWarning(w io.Writer, message string) { printColored(w, colorYellow, "!", message) }
func printError(w io.Writer, message string)   { printColored(w, colorRed, "✗", message) }
