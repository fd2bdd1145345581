package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	abOutputDir string
	abFormat    string
	abColumns   []string
	abCategory  string
	abHeadRows  int
	abQuiet     bool
	abIngest    ingestFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress and collision-safe output names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c := settings()
		popt, err := abIngest.options(cmd, c)
		if err != nil {
			return err
		}
		ropt := runOptions(cmd, c, abColumns, abCategory, abHeadRows)
		outDir := abOutputDir
		if outDir == "" {
			outDir = c.OutputDir
		}
		if outDir != "" {
			if err := utils.EnsureDir(outDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		out := cmd.OutOrStdout()

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analyzeFile(path, popt, ropt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			body, err := renderReport(rep, abFormat)
			if err != nil {
				return err
			}
			if outDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, strings.TrimRight(string(body), "\n"))
				}
				continue
			}

			base := summaryBase(path, popt)
			suffix := ".summary" + reportExt(abFormat)
			outFile, err := utils.UniquePath(outDir, base, suffix)
			if err != nil {
				return err
			}
			if filepath.Base(outFile) != base+suffix && !abQuiet {
				warnf(out, "Detected existing summary, writing to %s to avoid overwrite.", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				okf(out, "Wrote analysis of %s to %s", filepath.Base(path), outFile)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutputDir, "output-dir", "o", "", "directory to write one report per file (default: config output_dir, else stdout)")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "md", "report format: md | json | yaml")
	analyzeBatchCmd.Flags().StringSliceVar(&abColumns, "columns", nil, "numeric columns to analyze in every file")
	analyzeBatchCmd.Flags().StringVar(&abCategory, "category", "", "categorical column to count in every file")
	analyzeBatchCmd.Flags().IntVar(&abHeadRows, "head-rows", 0, "number of head rows in each overview (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	addIngestFlags(analyzeBatchCmd, &abIngest)
}

// expandInputs resolves globs, keeps literal paths that exist, and drops
// duplicates and unsupported formats. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok || !parser.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryBase names a report after its input, with the sheet appended for workbooks.
func summaryBase(path string, popt parser.Options) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	if popt.SheetName != "" && strings.EqualFold(filepath.Ext(base), ".xlsx") {
		return safe + "__sheet-" + utils.Slug(popt.SheetName, "sheet")
	}
	return safe
}
