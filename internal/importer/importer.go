// Package importer turns a raw uploaded spreadsheet into a cards.Dataset.
// Binary decoding is delegated to adapters/spreadsheet; this package owns the
// normalization contract the rest of the system relies on: every row carries
// every discovered column key, absent cells default to "".
package importer

import (
	"io"
	"log"
	"strings"

	"cardstock/adapters/spreadsheet"
	"cardstock/domain/cards"
	"cardstock/internal/errors"
)

// AcceptedExtensions lists the upload extensions the pipeline recognizes.
var AcceptedExtensions = []string{".xlsx", ".csv"}

// Accepts reports whether filename carries a recognized spreadsheet extension.
func Accepts(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range AcceptedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ImportFile decodes src into a Dataset. The column set is the first row's
// keys in header discovery order. Fails with EMPTY_FILE when the decoded
// sequence has zero data rows and PARSE_ERROR when decoding fails.
func ImportFile(src io.Reader, filename string) (cards.Dataset, error) {
	if !Accepts(filename) {
		log.Printf("[ImportFile] FAILED - Unrecognized file type: %s", filename)
		return cards.Dataset{}, errors.ParseError("only .xlsx and .csv files are supported", nil)
	}

	reader := spreadsheet.NewReader(filename)
	sheet, err := reader.Read(src)
	if err != nil {
		log.Printf("[ImportFile] FAILED - Decode error for %s: %v", filename, err)
		return cards.Dataset{}, errors.ParseError("failed to decode spreadsheet", err)
	}

	if len(sheet.Rows) == 0 {
		log.Printf("[ImportFile] FAILED - No data rows in %s", filename)
		return cards.Dataset{}, errors.EmptyFile("the spreadsheet contains no data rows")
	}

	dataset := normalize(sheet)
	log.Printf("[ImportFile] Imported %s (%d columns, %d rows)", filename, len(dataset.Columns), len(dataset.Rows))
	return dataset, nil
}

// normalize builds the Dataset from decoded sheet data. The adapter already
// keys rows by header; this pins the column order and fills any key the
// decoder left out so downstream code never sees a missing key.
func normalize(sheet *spreadsheet.SheetData) cards.Dataset {
	columns := make([]string, len(sheet.Headers))
	copy(columns, sheet.Headers)

	rows := make([]cards.RowRecord, 0, len(sheet.Rows))
	for _, raw := range sheet.Rows {
		record := make(cards.RowRecord, len(columns))
		for _, col := range columns {
			record[col] = raw[col]
		}
		rows = append(rows, record)
	}

	return cards.Dataset{Columns: columns, Rows: rows}
}
