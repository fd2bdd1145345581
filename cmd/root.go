package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/server"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger for diagnostics; user-facing lines go through okf/warnf/failf.
	logger = logrus.New()
)

var (
	okMark   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}).Render("✓")
	warnMark = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFB74D"}).Render("⚠")
	failMark = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}).Render("✗")
)

var rootCmd = &cobra.Command{
	Use:   "datalens",
	Short: "DataLens CLI: descriptive analytics for tabular datasets",
	Long: `DataLens loads a CSV, TSV or XLSX dataset and produces an overview, summary statistics,
missing-value counts, correlations, distributions and categorical frequencies, either as a
one-shot report or served over HTTP to a browser front end.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		failf(os.Stderr, "Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datalens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		warnf(os.Stderr, "Warning: failed to load config: %v", err)
		c = cfgpkg.Default()
	}
	cfg = c

	l, err := server.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		warnf(os.Stderr, "Warning: %v", err)
		l = logrus.New()
	}
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	logger = l
}

// settings returns the loaded configuration, or the defaults when none was loaded.
func settings() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

func okf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, okMark+" "+fmt.Sprintf(format, a...))
}

func warnf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, warnMark+" "+fmt.Sprintf(format, a...))
}

func failf(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, failMark+" "+fmt.Sprintf(format, a...))
}
