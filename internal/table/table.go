// Package table renders result sets as bordered text tables and pages
// output that is too wide for the terminal.
package table

import (
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// DefaultNullMarker is shown in place of SQL NULL.
const DefaultNullMarker = "<null>"

var nullStyle = color.New(color.Faint)

// Cell is one rendered value.
type Cell struct {
	Text string
	Null bool
}

// Table is a header plus body rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]Cell
	// NullMarker overrides DefaultNullMarker when set.
	NullMarker string
}

// Text returns the display text of c, substituting the null marker.
func (t *Table) Text(c Cell) string {
	if !c.Null {
		return c.Text
	}
	marker := t.NullMarker
	if marker == "" {
		marker = DefaultNullMarker
	}
	return nullStyle.Sprint(marker)
}

// Render draws the table. A table without columns renders as "".
func (t *Table) Render() string {
	if len(t.Header) == 0 {
		return ""
	}
	var b strings.Builder
	tw := tablewriter.NewWriter(&b)
	tw.SetHeader(t.Header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = t.Text(c)
		}
		tw.Append(cells)
	}
	tw.Render()
	return b.String()
}
