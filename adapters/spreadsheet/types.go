package spreadsheet

// SheetData represents the decoded contents of the first sheet of a workbook
// (or of a whole CSV file): the header row plus every data row keyed by header.
type SheetData struct {
	Headers []string            // Column headers in discovery order
	Rows    []map[string]string // Data rows keyed by header
}
