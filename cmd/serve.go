package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/server"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

var (
	srvAddr        string
	srvMaxUploadMB int
	srvSessionTTL  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP with per-session state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scfg, err := serverConfig(cmd, settings())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(scfg, logger)
		okf(cmd.OutOrStdout(), "Serving on %s (sessions expire after %s idle)", scfg.Addr, scfg.SessionTTL)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().IntVar(&srvMaxUploadMB, "max-upload-mb", 0, "maximum upload size in MiB (overrides config)")
	serveCmd.Flags().DurationVar(&srvSessionTTL, "session-ttl", 0, "idle session lifetime, e.g. 30m (overrides config)")
}

// serverConfig maps configuration and flag overrides onto server settings.
func serverConfig(cmd *cobra.Command, c *cfgpkg.Global) (server.Config, error) {
	popt, err := parseOptionsFromConfig(c)
	if err != nil {
		return server.Config{}, err
	}
	scfg := server.Config{
		Addr:           c.ListenAddr,
		MaxUploadBytes: int64(c.MaxUploadMB) << 20,
		SessionTTL:     time.Duration(c.SessionTTLMinutes) * time.Minute,
		Session: session.Options{
			Parse:            popt,
			HeadRows:         c.HeadRows,
			DefaultSelection: c.DefaultSelection,
			KDEPoints:        c.KDEPoints,
		},
		ChartSize: chart.Size{Width: c.ChartWidth, Height: c.ChartHeight},
	}
	f := cmd.Flags()
	if f.Changed("addr") && srvAddr != "" {
		scfg.Addr = srvAddr
	}
	if f.Changed("max-upload-mb") {
		if srvMaxUploadMB <= 0 {
			return scfg, fmt.Errorf("--max-upload-mb must be positive")
		}
		scfg.MaxUploadBytes = int64(srvMaxUploadMB) << 20
	}
	if f.Changed("session-ttl") {
		if srvSessionTTL <= 0 {
			return scfg, fmt.Errorf("--session-ttl must be positive")
		}
		scfg.SessionTTL = srvSessionTTL
	}
	return scfg, nil
}
