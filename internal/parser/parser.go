package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// Options configures how a dataset file becomes a table.
type Options struct {
	analysis.Options
	// SheetName selects a workbook sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects a workbook sheet by 1-based position when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the ingestion defaults.
func DefaultOptions() Options {
	return Options{Options: analysis.DefaultOptions(), SheetIndex: 1}
}

// Parser turns the raw bytes of one dataset format into a table.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte, opt Options) (*analysis.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

// Parse selects a parser by filename and parses content. The table is named after
// the base of filename unless opt.Name is set.
func Parse(filename string, content []byte, opt Options) (*analysis.Table, error) {
	p := lookup(filename)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
	}
	if opt.Name == "" {
		opt.Name = filepath.Base(filename)
	}
	return p.Parse(content, opt)
}

// ParseFile reads path and parses it with the matching parser.
func ParseFile(path string, opt Options) (*analysis.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(path, data, opt)
}

func lookup(filename string) Parser {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
