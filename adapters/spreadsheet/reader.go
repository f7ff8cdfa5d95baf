package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Reader decodes Excel and CSV spreadsheet data
type Reader struct {
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader for the given filename, choosing the decoder by
// file extension. Anything that is not .csv is treated as an Excel workbook.
func NewReader(filename string) *Reader {
	ext := strings.ToLower(filepath.Ext(filename))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &Reader{fileType: fileType}
}

// Read decodes the spreadsheet from src into structured form. Only the first
// sheet of a workbook is read. Rows may be empty; emptiness is the caller's
// policy, not a decode error.
func (r *Reader) Read(src io.Reader) (*SheetData, error) {
	log.Printf("[Reader] Starting to read %s data", r.fileType)

	switch r.fileType {
	case "csv":
		return r.readCSV(src)
	case "xlsx":
		return r.readExcel(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcel decodes the first sheet of an Excel workbook
func (r *Reader) readExcel(src io.Reader) (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()
	log.Printf("[Reader] Excel workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	log.Printf("[Reader] Sheet %q read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows), nil
}

// readCSV decodes CSV data
func (r *Reader) readCSV(src io.Reader) (*SheetData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; short rows pad to ""

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	log.Printf("[Reader] CSV data read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows), nil
}

// processRows converts raw string rows into SheetData. The first row is the
// header row; every data row gets every header key, absent cells become "".
func (r *Reader) processRows(rows [][]string) *SheetData {
	if len(rows) == 0 {
		return &SheetData{}
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []map[string]string
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(map[string]string, len(headers))

		for j, header := range headers {
			if j < len(row) {
				rowData[header] = row[j]
			} else {
				rowData[header] = ""
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[Reader] %s data processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &SheetData{
		Headers: headers,
		Rows:    dataRows,
	}
}
