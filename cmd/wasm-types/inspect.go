package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

func (a *app) inspectCommand() *cobra.Command {
	var asCSV, interactive bool

	command := &cobra.Command{
		Use:   "inspect <file.wasm>",
		Short: "List the exports of a module",
		Long: `List the exported functions of a core WebAssembly module with their
signatures. With --csv every export is written as a CSV row. With -i an
interactive view lets you call the exported functions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := expectOneArg(args); err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			if interactive {
				return runInteractive(args[0], cfg.Runtime.MemoryLimitPages)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.IO(errors.PhaseLoad, "read "+args[0], err)
			}
			m, err := wasm.Decode(data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asCSV {
				return writeExportsCSV(w, m)
			}
			return printExports(w, args[0], m, isTerminal(w))
		},
	}

	command.Flags().BoolVar(&asCSV, "csv", false, "write exports in CSV format")
	command.Flags().BoolVarP(&interactive, "interactive", "i", false, "call functions from an interactive view")

	return command
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type exportRow struct {
	Name      string  `csv:"name"`
	Kind      string  `csv:"kind"`
	Index     uint32  `csv:"index"`
	TypeIndex *uint32 `csv:"type_index"`
	Params    string  `csv:"params"`
	Results   string  `csv:"results"`
}

// exportRows returns one row per export. Function exports appear in the same
// order in Exports and ExportedFunctions, so they are paired by position.
func exportRows(m *wasm.Module) []exportRow {
	rows := make([]exportRow, 0, len(m.Exports))
	next := 0
	for _, e := range m.Exports {
		r := exportRow{Name: e.Name, Kind: e.Kind.String(), Index: e.Index}
		if e.Kind == wasm.ExportFunc && next < len(m.ExportedFunctions) {
			f := m.ExportedFunctions[next]
			next++
			typeIndex := f.TypeIndex
			r.TypeIndex = &typeIndex
			r.Params = joinTypes(f.Signature.Params)
			r.Results = joinTypes(f.Signature.Results)
		}
		rows = append(rows, r)
	}
	return rows
}

func writeExportsCSV(w io.Writer, m *wasm.Module) error {
	csvWriter := csv.NewWriter(w)

	encoder := csvutil.NewEncoder(csvWriter)
	encoder.AutoHeader = false
	if err := encoder.EncodeHeader(exportRow{}); err != nil {
		return errors.IO(errors.PhaseGenerate, "write csv header", err)
	}
	for _, r := range exportRows(m) {
		if err := encoder.Encode(r); err != nil {
			return errors.IO(errors.PhaseGenerate, "write csv row", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.IO(errors.PhaseGenerate, "flush csv", err)
	}
	return nil
}

func printExports(w io.Writer, filename string, m *wasm.Module, styled bool) error {
	render := func(s string, style func(...string) string) string {
		if styled {
			return style(s)
		}
		return s
	}

	var b strings.Builder
	b.WriteString(render("wasm-types", titleStyle.Render))
	b.WriteString(" ")
	b.WriteString(filename)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Exported functions (%d):\n", len(m.ExportedFunctions))
	for _, f := range m.ExportedFunctions {
		b.WriteString("  ")
		b.WriteString(render(f.Name, funcStyle.Render))
		b.WriteString(" ")
		b.WriteString(render(f.Signature.String(), typeStyle.Render))
		b.WriteString("\n")
	}

	b.WriteString("\nMemory: ")
	if m.HasExportedMemory {
		b.WriteString(render(m.MemoryName, funcStyle.Render))
	} else {
		b.WriteString(render("none", helpStyle.Render))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func joinTypes(types []wasm.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, " ")
}
