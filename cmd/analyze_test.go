package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const irisCSV = "sepal_length,sepal_width,petal_length,species\n" +
	"5.1,3.5,1.4,setosa\n" +
	"4.9,3.0,1.4,setosa\n" +
	"6.2,2.9,4.3,versicolor\n" +
	"5.9,3.0,,versicolor\n" +
	"6.7,3.1,5.6,virginica\n"

func writeDataset(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestAnalyze_MarkdownToStdout(t *testing.T) {
	home := isolateHome(t)
	path := writeDataset(t, home, "iris.csv", irisCSV)

	out := runCmd(t, "analyze", path)
	for _, want := range []string{
		"[DATASET OVERVIEW]",
		"Shape: 5 rows, 4 columns",
		"- petal_length: 1",
		"[STATISTICS: sepal_length]",
		"[CATEGORICAL: species]",
		"[PAIRPLOT]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyze_JSONWithChartsAndSelection(t *testing.T) {
	home := isolateHome(t)
	path := writeDataset(t, home, "iris.csv", irisCSV)
	outPath := filepath.Join(home, "report.json")
	charts := filepath.Join(home, "charts")

	runCmd(t, "analyze", path, "--format", "json", "-o", outPath, "--charts-dir", charts,
		"--columns", "sepal_length,petal_length,missing_col", "--category", "species")

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		Selection []string `json:"selection"`
		Category  string   `json:"category"`
		PairGrid  *struct {
			Rows int `json:"rows"`
		} `json:"pair_grid"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if strings.Join(rep.Selection, ",") != "sepal_length,petal_length" {
		t.Fatalf("selection = %v", rep.Selection)
	}
	if rep.Category != "species" || rep.PairGrid == nil || rep.PairGrid.Rows != 4 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	for _, name := range []string{"heatmap.png", "dist_sepal-length.png", "dist_petal-length.png", "pairplot.png", "count_species.png"} {
		info, err := os.Stat(filepath.Join(charts, name))
		if err != nil {
			t.Fatalf("missing chart %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("empty chart %s", name)
		}
	}
}

func TestAnalyze_EmptySelectionYAML(t *testing.T) {
	home := isolateHome(t)
	path := writeDataset(t, home, "iris.csv", irisCSV)

	out := runCmd(t, "analyze", path, "--format", "yaml", "--columns=")
	if !strings.Contains(out, "selection: []") {
		t.Fatalf("expected empty selection in yaml:\n%s", out)
	}
	if !strings.Contains(out, "Select at least two numeric columns for pairplot.") {
		t.Fatalf("expected pairplot notice:\n%s", out)
	}
}

func TestAnalyze_LocaleAndDelimiterFlags(t *testing.T) {
	home := isolateHome(t)
	path := writeDataset(t, home, "eu.csv", "amount;label\n1.234,5;a\n2.000,25;b\n")

	out := runCmd(t, "analyze", path, "--format", "json", "--delimiter", ";", "--decimal", "comma", "--thousands", ".")
	var rep struct {
		NumericColumns []string `json:"numeric_columns"`
		Stats          []struct {
			Column string             `json:"column"`
			Stats  map[string]float64 `json:"stats"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rep.NumericColumns) != 1 || rep.NumericColumns[0] != "amount" {
		t.Fatalf("numeric columns = %v", rep.NumericColumns)
	}
	if got := rep.Stats[0].Stats["Max"]; got != 2000.25 {
		t.Fatalf("max = %v", got)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	home := isolateHome(t)
	path := writeDataset(t, home, "iris.csv", irisCSV)

	if _, err := execCmd("analyze", path, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := execCmd("analyze", path, "--delimiter", ":"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	doc := writeDataset(t, home, "notes.docx", "hello")
	if _, err := execCmd("analyze", doc); err == nil || !strings.Contains(err.Error(), "unsupported dataset format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	bad := writeDataset(t, home, "bad.csv", "a,b\n1,2\n3,4,5\n")
	if _, err := execCmd("analyze", bad); err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected parse error on line 3, got %v", err)
	}
}
