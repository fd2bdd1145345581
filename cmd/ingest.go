package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
)

// ingestFlags are the dataset parsing flags shared by analyze and analyze-batch.
type ingestFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func addIngestFlags(cmd *cobra.Command, f *ingestFlags) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = unlimited; default from config)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// options merges config values with the flags the user actually set.
func (f *ingestFlags) options(cmd *cobra.Command, c *cfgpkg.Global) (parser.Options, error) {
	opt, err := parseOptionsFromConfig(c)
	if err != nil {
		return opt, err
	}
	flags := cmd.Flags()
	if flags.Changed("max-rows") {
		if f.maxRows < 0 {
			return opt, fmt.Errorf("--max-rows must not be negative")
		}
		opt.MaxRows = f.maxRows
	}
	if flags.Changed("delimiter") {
		if opt.Delimiter, err = cfgpkg.ParseDelimiter(f.delimiter); err != nil {
			return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
		}
	}
	if flags.Changed("decimal") {
		if opt.DecimalSeparator, err = cfgpkg.ParseDecimal(f.decimal); err != nil {
			return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
		}
	}
	if flags.Changed("thousands") {
		if opt.ThousandsSeparator, err = cfgpkg.ParseThousands(f.thousands); err != nil {
			return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
		}
	}
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex
	return opt, nil
}

// parseOptionsFromConfig builds ingestion options from configuration alone.
func parseOptionsFromConfig(c *cfgpkg.Global) (parser.Options, error) {
	opt := parser.DefaultOptions()
	opt.MaxRows = c.MaxRows
	var err error
	if opt.Delimiter, err = cfgpkg.ParseDelimiter(c.Delimiter); err != nil {
		return opt, fmt.Errorf("config delimiter: %w", err)
	}
	if opt.DecimalSeparator, err = cfgpkg.ParseDecimal(c.DecimalSeparator); err != nil {
		return opt, fmt.Errorf("config decimal_separator: %w", err)
	}
	if opt.ThousandsSeparator, err = cfgpkg.ParseThousands(c.ThousandsSeparator); err != nil {
		return opt, fmt.Errorf("config thousands_separator: %w", err)
	}
	return opt, nil
}
