package analysis

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads one sheet of a workbook into a Table. The first row is the header.
// If sheetName is empty, sheetIndex selects the sheet (1-based; <= 0 means the first).
func ParseXLSX(raw []byte, opt Options, sheetName string, sheetIndex int) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Msg: "open xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Msg: "workbook has no sheets"}
	}
	sheet := ""
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &ParseError{Msg: fmt.Sprintf("sheet '%s' not found; available sheets: %s", sheetName, strings.Join(sheets, ", "))}
		}
	} else {
		idx := sheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, &ParseError{Msg: fmt.Sprintf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))}
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("read sheet '%s'", sheet), Err: err}
	}
	// GetRows omits trailing empty rows but keeps interior blank ones; drop those like
	// the CSV reader skips blank lines.
	var body [][]string
	var header []string
	for i, row := range rows {
		if i == 0 {
			header = row
			continue
		}
		if blankRow(row) {
			continue
		}
		body = append(body, row)
	}
	if len(header) == 0 {
		return nil, &ParseError{Line: 1, Msg: "no columns to parse from sheet " + sheet}
	}
	return NewTable(opt.Name, header, body, opt)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
