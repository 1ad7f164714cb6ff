package source

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadCSVPicksLongestColumn(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte(
		"dato;kunde;beskrivelse\n"+
			"12.05.2024;Jensen;montering af 2 lamper i køkkenet efter aftale\n"+
			"13.05.2024;Hansen;udskiftning af defekt sikring i tavlen\n"))

	rows, err := LoadCSV(path, Options{})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	want := []string{
		"montering af 2 lamper i køkkenet efter aftale",
		"udskiftning af defekt sikring i tavlen",
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("LoadCSV = %q, want %q", rows, want)
	}
}

func TestLoadCSVExplicitColumn(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte(
		"dato;kunde;beskrivelse\n"+
			"12.05.2024;Jensen;montering af 2 lamper i køkkenet efter aftale\n"))

	rows, err := LoadCSV(path, Options{TextColumn: "Kunde"})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 1 || rows[0] != "Jensen" {
		t.Errorf("LoadCSV = %q, want the named column", rows)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte("dato;tekst\n12.05.2024;montering\n"))

	if _, err := LoadCSV(path, Options{TextColumn: "beskrivelse"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("LoadCSV with unknown column = %v, want ErrInvalidInput", err)
	}
}

func TestLoadCSVWindows1252(t *testing.T) {
	// 0xf8 is ø in Windows-1252.
	path := writeFile(t, "legacy.csv", []byte(
		"dato;tekst\n12.05.2024;montering af lampe i k\xf8kkenet ved d\xf8ren\n"))

	rows, err := LoadCSV(path, Options{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 1 || rows[0] != "montering af lampe i køkkenet ved døren" {
		t.Errorf("LoadCSV = %q, want decoded Danish letters", rows)
	}
}

func TestLoadCSVUnsupportedEncoding(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte("a;b\n1;2\n"))

	if _, err := LoadCSV(path, Options{Encoding: "koi8-r"}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("LoadCSV with unknown encoding = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadCSVFlattensLineBreaks(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte(
		"dato;beskrivelse\n"+
			"12.05.2024;\"montering af lampe\nsamt stikkontakt i god stand\"\n"+
			`13.05.2024;kontrol af anlæg\r\nalt er i orden her`+"\n"))

	rows, err := LoadCSV(path, Options{TextColumn: "beskrivelse"})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	want := []string{
		"montering af lampe samt stikkontakt i god stand",
		"kontrol af anlæg alt er i orden her",
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("LoadCSV = %q, want %q", rows, want)
	}
}

func TestLoadCSVSkipsBlankAndShortRows(t *testing.T) {
	path := writeFile(t, "lines.csv", []byte(
		"dato;kunde;beskrivelse\n"+
			"12.05.2024;Jensen;montering af 2 lamper i køkkenet efter aftale\n"+
			"13.05.2024;Hansen;   \n"+
			"14.05.2024\n"+
			"15.05.2024;Nielsen;udskiftning af defekt sikring i tavlen\n"))

	rows, err := LoadCSV(path, Options{TextColumn: "beskrivelse"})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("LoadCSV returned %d rows, want 2: %q", len(rows), rows)
	}
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)

	if _, err := LoadCSV(path, Options{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("LoadCSV of empty file = %v, want ErrInvalidInput", err)
	}
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lines.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestLoadXLSXPicksLongestColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"dato", "beskrivelse"},
		{"12.05.2024", "montering af 2 lamper i køkkenet efter aftale"},
		{"13.05.2024", "udskiftning af defekt sikring i tavlen"},
	})

	rows, err := LoadXLSX(path, Options{})
	if err != nil {
		t.Fatalf("LoadXLSX: %v", err)
	}
	want := []string{
		"montering af 2 lamper i køkkenet efter aftale",
		"udskiftning af defekt sikring i tavlen",
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("LoadXLSX = %q, want %q", rows, want)
	}
}

func TestLoadXLSXExplicitColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"dato", "beskrivelse"},
		{"12.05.2024", "montering af 2 lamper i køkkenet efter aftale"},
	})

	rows, err := LoadXLSX(path, Options{TextColumn: "dato"})
	if err != nil {
		t.Fatalf("LoadXLSX: %v", err)
	}
	if len(rows) != 1 || rows[0] != "12.05.2024" {
		t.Errorf("LoadXLSX = %q, want the named column", rows)
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	xlsxPath := writeWorkbook(t, [][]interface{}{
		{"beskrivelse"},
		{"montering af 2 lamper i køkkenet efter aftale"},
	})
	if rows, err := Load(xlsxPath, Options{}); err != nil || len(rows) != 1 {
		t.Errorf("Load(xlsx) = %q, %v", rows, err)
	}

	csvPath := writeFile(t, "lines.csv", []byte(
		"beskrivelse\nmontering af 2 lamper i køkkenet efter aftale\n"))
	if rows, err := Load(csvPath, Options{}); err != nil || len(rows) != 1 {
		t.Errorf("Load(csv) = %q, %v", rows, err)
	}
}
