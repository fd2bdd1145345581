package parser

import (
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// csvParser handles delimited text. Plain .txt files are sniffed like .csv.
type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvParser) Parse(content []byte, opt Options) (*analysis.Table, error) {
	return analysis.ParseCSV(content, opt.Options)
}
