// Package clitext renders servicepb responses as aligned text tables for
// cmd/george-cli: a thin text/tabwriter wrapper, not a general lexer or
// markup renderer. A richer interactive shell is out of scope.
package clitext

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table accumulates rows for a single aligned render.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable starts a table with the given column headers.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// Row appends one row. Its length should match the header's.
func (t *Table) Row(cells ...string) {
	t.rows = append(t.rows, cells)
}

// WriteTo renders the table to w, tab-aligned.
func (t *Table) WriteTo(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.header) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.header, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
