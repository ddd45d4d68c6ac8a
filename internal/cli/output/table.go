package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by list types that render as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// newTable configures a borderless left-aligned table. columnSep
// separates cells; header formatting is on for column tables and off
// for key-value tables.
func newTable(w io.Writer, columnSep string, formatHeaders bool) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(formatHeaders)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(columnSep)
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// PrintTable renders data with its headers as a borderless table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := newTable(w, "", true)
	table.SetHeader(data.Headers())
	for _, row := range data.Rows() {
		table.Append(row)
	}
	table.Render()
	return nil
}

// SimpleTable renders key-value pairs with a ":" separator, for detail
// views of a single resource.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	table := newTable(w, ":", false)
	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
	return nil
}
