package parser_test

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/datalens-cli/internal/parser"
)

func TestParseXLSXSheetSelection(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_ = f.SetCellValue("Sheet1", "A1", "first")
	_ = f.SetCellValue("Sheet1", "A2", 1)
	if _, err := f.NewSheet("Yields"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Yields", "A1", "crop")
	_ = f.SetCellValue("Yields", "B1", "tons")
	_ = f.SetCellValue("Yields", "A2", "oats")
	_ = f.SetCellValue("Yields", "B2", 3.5)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	opt := parser.DefaultOptions()
	opt.SheetName = "yields"
	tbl, err := parser.Parse("farm.xlsx", buf.Bytes(), opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Cols() != 2 || !strings.Contains(tbl.Name, "sheet: yields") {
		t.Fatalf("table = %q with %d cols", tbl.Name, tbl.Cols())
	}

	opt = parser.DefaultOptions()
	opt.SheetIndex = 1
	tbl, err = parser.Parse("farm.xlsx", buf.Bytes(), opt)
	if err != nil {
		t.Fatalf("parse first sheet: %v", err)
	}
	if tbl.Names()[0] != "first" {
		t.Fatalf("first sheet columns = %v", tbl.Names())
	}

	opt.SheetIndex = 5
	if _, err := parser.Parse("farm.xlsx", buf.Bytes(), opt); err == nil {
		t.Fatalf("expected out-of-range sheet error")
	}
}
