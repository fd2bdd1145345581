package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Options controls ingestion of tabular data.
type Options struct {
	// Name labels the table, usually the uploaded file name.
	Name string
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, tab for .tsv names, otherwise sniffed among ',', ';', '\t'.
	Delimiter rune
	// Numeric parsing locale. Zero values mean plain "1234.5" notation.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns reasonable defaults for dataset ingestion.
func DefaultOptions() Options {
	return Options{
		MaxRows: 1_000_000,
	}
}

// ParseCSV parses delimited text into a Table. The first record is the header.
func ParseCSV(raw []byte, opt Options) (*Table, error) {
	if !utf8.Valid(raw) {
		return nil, &ParseError{Msg: "input is not valid UTF-8 text"}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ParseError{Msg: "no columns to parse from input"}
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(raw, opt.Name)
	}
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		return nil, csvParseError(err, 1)
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, csvParseError(err, 0)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{Line: line, Msg: "expected " + strconv.Itoa(len(header)) + " fields, saw " + strconv.Itoa(len(rec))}
		}
		records = append(records, rec)
	}
	return NewTable(opt.Name, header, records, opt)
}

func csvParseError(err error, line int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Msg: "malformed delimited text", Err: pe.Err}
	}
	return &ParseError{Line: line, Msg: "read input", Err: err}
}

// sniffDelimiter picks tab for .tsv names, otherwise the most frequent candidate on the
// header line outside quotes. Comma wins ties.
func sniffDelimiter(raw []byte, name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	counts := map[rune]int{}
	inQuote := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == ',' || r == ';' || r == '\t':
			counts[r]++
		}
	}
	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// parseNumeric parses a cell as a float under the configured locale.
// Hex and binary float forms are rejected, as are NaN spellings that are not missing tokens.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := normalizeNumeric(s, opt)
	if raw == "" || strings.ContainsAny(raw, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if math.IsNaN(f) {
		return 0, false
	}
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func normalizeNumeric(s string, opt Options) string {
	raw := strings.TrimSpace(s)
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(opt.ThousandsSeparator), "")
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator != '.' {
		raw = strings.ReplaceAll(raw, string(opt.DecimalSeparator), ".")
	}
	return raw
}
