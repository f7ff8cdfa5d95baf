package importer

import (
	"strings"
	"testing"

	"cardstock/internal/errors"
)

func TestImportFileCSV(t *testing.T) {
	csv := "Name,Reg,Team\nAlice,A100,Red\nBob,B200,\nCara,C300,Blue\n"

	dataset, err := ImportFile(strings.NewReader(csv), "members.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(dataset.Rows) != 3 {
		t.Errorf("Expected row count to equal the source's data-row count (3), got %d", len(dataset.Rows))
	}

	wantColumns := []string{"Name", "Reg", "Team"}
	if len(dataset.Columns) != len(wantColumns) {
		t.Fatalf("Expected %d columns, got %d", len(wantColumns), len(dataset.Columns))
	}
	for i, col := range wantColumns {
		if dataset.Columns[i] != col {
			t.Errorf("Expected column %d to be %q, got %q", i, col, dataset.Columns[i])
		}
	}

	// Every row carries every discovered column key.
	for i, row := range dataset.Rows {
		for _, col := range dataset.Columns {
			if _, ok := row[col]; !ok {
				t.Errorf("Row %d is missing key %q", i, col)
			}
		}
	}
	if dataset.Rows[1]["Team"] != "" {
		t.Errorf("Expected absent cell to default to empty string, got %q", dataset.Rows[1]["Team"])
	}
}

func TestImportFileEmpty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"header only", "Name,Reg\n"},
		{"zero bytes", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportFile(strings.NewReader(tt.data), "empty.csv")
			if err == nil {
				t.Fatal("Expected an error for a file with no data rows")
			}
			if code := errors.GetCode(err); code != errors.CodeEmptyFile {
				t.Errorf("Expected code %s, got %s", errors.CodeEmptyFile, code)
			}
		})
	}
}

func TestImportFileParseError(t *testing.T) {
	_, err := ImportFile(strings.NewReader("not a workbook"), "broken.xlsx")
	if err == nil {
		t.Fatal("Expected an error for a malformed workbook")
	}
	if code := errors.GetCode(err); code != errors.CodeParseError {
		t.Errorf("Expected code %s, got %s", errors.CodeParseError, code)
	}
}

func TestImportFileUnrecognizedExtension(t *testing.T) {
	_, err := ImportFile(strings.NewReader("irrelevant"), "data.pdf")
	if err == nil {
		t.Fatal("Expected an error for an unrecognized file type")
	}
	if code := errors.GetCode(err); code != errors.CodeParseError {
		t.Errorf("Expected code %s, got %s", errors.CodeParseError, code)
	}
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"members.xlsx", true},
		{"MEMBERS.XLSX", true},
		{"members.csv", true},
		{"members.pdf", false},
		{"members", false},
	}

	for _, tt := range tests {
		if got := Accepts(tt.filename); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
