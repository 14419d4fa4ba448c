package masterdata

// MarkerPrefix introduces a table in a spreadsheet grid.
const MarkerPrefix = "@m_"

// RawRow is one spreadsheet row. Rows of the same grid may differ in length.
type RawRow []string

// RawGrid holds the cell contents of one spreadsheet tab.
type RawGrid []RawRow

// Table is an extracted table: row 0 is the column header, the rest are data rows.
// Every row has the header's width.
type Table [][]string

// Tables maps table names to extracted tables.
type Tables map[string]Table

// Header returns the column names of the table, or nil for an empty table.
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Rows returns the data rows, excluding the header.
func (t Table) Rows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// TableResult summarizes one loaded table.
type TableResult struct {
	Table string
	Rows  int
}
