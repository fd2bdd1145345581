package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaChartsDir  string
	anaColumns    []string
	anaCategory   string
	anaHeadRows   int
	anaIngest     ingestFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX dataset and produce a descriptive report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		popt, err := anaIngest.options(cmd, c)
		if err != nil {
			return err
		}
		ropt := runOptions(cmd, c, anaColumns, anaCategory, anaHeadRows)
		rep, err := analyzeFile(path, popt, ropt)
		if err != nil {
			return err
		}
		out, err := renderReport(rep, anaFormat)
		if err != nil {
			return err
		}

		if anaChartsDir != "" {
			written, err := writeCharts(anaChartsDir, rep, chart.Size{Width: c.ChartWidth, Height: c.ChartHeight})
			if err != nil {
				return err
			}
			okf(cmd.OutOrStdout(), "Wrote %d chart(s) to %s", len(written), anaChartsDir)
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			okf(cmd.OutOrStdout(), "Wrote analysis to %s", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "md", "report format: md | json | yaml")
	analyzeCmd.Flags().StringVar(&anaChartsDir, "charts-dir", "", "directory to write PNG charts into")
	analyzeCmd.Flags().StringSliceVar(&anaColumns, "columns", nil, "numeric columns to analyze (default: first numeric columns)")
	analyzeCmd.Flags().StringVar(&anaCategory, "category", "", "categorical column to count (default: first categorical column)")
	analyzeCmd.Flags().IntVar(&anaHeadRows, "head-rows", 0, "number of head rows in the overview (default from config)")
	addIngestFlags(analyzeCmd, &anaIngest)
}

// runOptions applies config defaults; --columns given with an empty value selects nothing.
func runOptions(cmd *cobra.Command, c *cfgpkg.Global, columns []string, category string, headRows int) analysis.RunOptions {
	ropt := analysis.RunOptions{
		Category:         category,
		HeadRows:         c.HeadRows,
		DefaultSelection: c.DefaultSelection,
		KDEPoints:        c.KDEPoints,
	}
	if cmd.Flags().Changed("columns") {
		ropt.Columns = append([]string{}, columns...)
	}
	if cmd.Flags().Changed("head-rows") && headRows >= 0 {
		ropt.HeadRows = headRows
	}
	return ropt
}

func analyzeFile(path string, popt parser.Options, ropt analysis.RunOptions) (*analysis.Report, error) {
	t, err := parser.ParseFile(path, popt)
	if err != nil {
		return nil, err
	}
	rep := analysis.Run(t, ropt)
	log := logger.WithFields(logrus.Fields{"file": filepath.Base(path), "rows": t.Rows(), "cols": len(rep.Overview.Dtypes)})
	log.Debug("report built")
	for _, n := range rep.Notices {
		log.WithFields(logrus.Fields{"artifact": n.Artifact, "column": n.Column, "level": n.Level}).Debug(n.Message)
	}
	return rep, nil
}

func renderReport(rep *analysis.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return []byte(rep.Markdown()), nil
	case "json":
		return utils.PrettyJSON(rep)
	case "yaml", "yml":
		b, err := yaml.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported --format: %s (use md|json|yaml)", format)
}

// reportExt is the file suffix for a report format.
func reportExt(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	}
	return ".md"
}

// writeCharts renders every figure the report has data for into dir as PNG.
func writeCharts(dir string, rep *analysis.Report, size chart.Size) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}
	var written []string
	used := map[string]int{}
	write := func(base string, fig chart.Figure) error {
		// files from an earlier run are replaced; names only differ within one run
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s__%d", base, n)
		}
		path := filepath.Join(dir, base+".png")
		if err := chart.WriteFile(path, fig); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		written = append(written, path)
		return nil
	}
	if rep.Correlation != nil {
		if err := write("heatmap", chart.NewHeatmap(rep.Correlation, size)); err != nil {
			return written, err
		}
	}
	for _, d := range rep.Distributions {
		if err := write("dist_"+utils.Slug(d.Column, "column"), chart.NewDistributionPlot(d, size)); err != nil {
			return written, err
		}
	}
	if rep.PairGrid != nil && rep.PairGrid.Rows > 0 {
		if err := write("pairplot", chart.NewPairPlot(rep.PairGrid, size)); err != nil {
			return written, err
		}
	}
	if rep.Categorical != nil && len(rep.Categorical.Counts) > 0 {
		if err := write("count_"+utils.Slug(rep.Categorical.Column, "category"), chart.NewCountPlot(rep.Categorical, size)); err != nil {
			return written, err
		}
	}
	return written, nil
}
