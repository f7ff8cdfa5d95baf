package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	csv := "Name, Reg ,Team\nAlice,A100,Red\nBob,B200\n"

	reader := NewReader("members.csv")
	sheet, err := reader.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantHeaders := []string{"Name", "Reg", "Team"}
	if len(sheet.Headers) != len(wantHeaders) {
		t.Fatalf("Expected %d headers, got %d", len(wantHeaders), len(sheet.Headers))
	}
	for i, h := range wantHeaders {
		if sheet.Headers[i] != h {
			t.Errorf("Expected header %d to be %q (trimmed), got %q", i, h, sheet.Headers[i])
		}
	}

	if len(sheet.Rows) != 2 {
		t.Fatalf("Expected 2 data rows, got %d", len(sheet.Rows))
	}
	if sheet.Rows[0]["Reg"] != "A100" {
		t.Errorf("Expected Reg A100, got %q", sheet.Rows[0]["Reg"])
	}
	// Ragged row: the missing Team cell defaults to "".
	if got, ok := sheet.Rows[1]["Team"]; !ok || got != "" {
		t.Errorf("Expected missing cell to default to empty string, got %q (present=%v)", got, ok)
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	reader := NewReader("only-headers.csv")
	sheet, err := reader.Read(strings.NewReader("Name,Reg\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sheet.Rows) != 0 {
		t.Errorf("Expected no data rows, got %d", len(sheet.Rows))
	}
	if len(sheet.Headers) != 2 {
		t.Errorf("Expected 2 headers, got %d", len(sheet.Headers))
	}
}

func TestReadExcelFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Reg"}); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Alice", "A100"}); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("Failed to add second sheet: %v", err)
	}
	if err := f.SetSheetRow("Second", "A1", &[]interface{}{"Ignored"}); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}

	reader := NewReader("members.xlsx")
	sheet, err := reader.Read(&buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sheet.Headers) != 2 || sheet.Headers[0] != "Name" || sheet.Headers[1] != "Reg" {
		t.Errorf("Unexpected headers: %v", sheet.Headers)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("Expected 1 data row from the first sheet, got %d", len(sheet.Rows))
	}
	if sheet.Rows[0]["Name"] != "Alice" {
		t.Errorf("Expected Name Alice, got %q", sheet.Rows[0]["Name"])
	}
}

func TestReadExcelGarbage(t *testing.T) {
	reader := NewReader("broken.xlsx")
	if _, err := reader.Read(strings.NewReader("this is not a workbook")); err == nil {
		t.Error("Expected an error for a malformed workbook")
	}
}
