package parser

import (
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxParser) Parse(content []byte, opt Options) (*analysis.Table, error) {
	t, err := analysis.ParseXLSX(content, opt.Options, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	if opt.SheetName != "" {
		t.Name = t.Name + " (sheet: " + opt.SheetName + ")"
	}
	return t, nil
}
