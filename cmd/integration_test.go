package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestMain(m *testing.M) {
	cobra.OnInitialize(loadConfig)
	os.Exit(m.Run())
}

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if fl.Value.Type() != "stringSlice" {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	anaColumns, abColumns = nil, nil
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "conf", "datalens.yaml")

	runCmd(t, "config", "set", "head_rows", "9", "--config", cfgPath)
	runCmd(t, "config", "set", "log_format", "json", "--config", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config not saved: %v", err)
	}

	out := runCmd(t, "config", "show", "--config", cfgPath)
	for _, want := range []string{"head_rows: 9", "log_format: json", "listen_addr: :8080", `output_dir: ""`} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := execCmd("config", "set", "chart_width", "5", "--config", cfgPath); err == nil {
		t.Fatalf("expected validation error for tiny chart_width")
	}
	if _, err := execCmd("config", "set", "api_key", "x", "--config", cfgPath); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := execCmd("config", "set", "delimiter", "foo", "--config", cfgPath); err == nil {
		t.Fatalf("expected validation error for unsupported delimiter")
	}
	out = runCmd(t, "config", "show", "--config", cfgPath)
	if !strings.Contains(out, `delimiter: ""`) {
		t.Fatalf("rejected delimiter was saved:\n%s", out)
	}
}

func TestServerConfigFromSettings(t *testing.T) {
	isolateHome(t)
	runCmd(t, "config", "show")
	c := settings()
	c.MaxUploadMB = 4
	c.SessionTTLMinutes = 5
	c.Delimiter = ";"

	scfg, err := serverConfig(serveCmd, c)
	if err != nil {
		t.Fatalf("server config: %v", err)
	}
	if scfg.MaxUploadBytes != 4<<20 {
		t.Fatalf("max upload = %d", scfg.MaxUploadBytes)
	}
	if scfg.SessionTTL.Minutes() != 5 {
		t.Fatalf("ttl = %s", scfg.SessionTTL)
	}
	if scfg.Session.Parse.Delimiter != ';' {
		t.Fatalf("delimiter = %q", scfg.Session.Parse.Delimiter)
	}
	if scfg.Addr != ":8080" || scfg.ChartSize.Width != 800 {
		t.Fatalf("unexpected defaults: %+v", scfg)
	}

	if err := serveCmd.Flags().Set("addr", ":9999"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer resetFlags(rootCmd)
	scfg, err = serverConfig(serveCmd, c)
	if err != nil {
		t.Fatalf("server config: %v", err)
	}
	if scfg.Addr != ":9999" {
		t.Fatalf("addr flag not applied: %s", scfg.Addr)
	}
}
