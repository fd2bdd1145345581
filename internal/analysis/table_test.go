package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

func mustParse(t *testing.T, body string) *Table {
	t.Helper()
	tbl, err := ParseCSV([]byte(body), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return tbl
}

func TestParseCSVOverviewShape(t *testing.T) {
	tbl := mustParse(t, "a,b\n1,x\n2,y\n3,z\n")
	ov := TableOverview(tbl, 5)
	if ov.Rows != 3 || ov.Cols != 2 {
		t.Fatalf("shape = %dx%d, want 3x2", ov.Rows, ov.Cols)
	}
	if len(ov.Head) != 3 {
		t.Fatalf("head rows = %d, want 3", len(ov.Head))
	}
	if got := ov.Head[0]; got[0] != int64(1) || got[1] != "x" {
		t.Fatalf("head[0] = %#v", got)
	}
	want := []ColumnType{{"a", "integer", "int64"}, {"b", "text", "object"}}
	if !reflect.DeepEqual(ov.Dtypes, want) {
		t.Fatalf("dtypes = %#v, want %#v", ov.Dtypes, want)
	}
}

func TestOverviewHeadLimitAndEmptyTable(t *testing.T) {
	tbl := mustParse(t, "v\n1\n2\n3\n4\n5\n6\n7\n")
	if got := len(TableOverview(tbl, 0).Head); got != DefaultHeadRows {
		t.Fatalf("head rows = %d, want %d", got, DefaultHeadRows)
	}
	empty := mustParse(t, "a,b\n")
	ov := TableOverview(empty, 5)
	if ov.Rows != 0 || ov.Cols != 2 || len(ov.Head) != 0 {
		t.Fatalf("empty overview = %+v", ov)
	}
}

func TestMissingAndSummaryScenario(t *testing.T) {
	// blank lines are skipped by the reader, so the missing cell needs a sibling column
	tbl := mustParse(t, "x,label\n1,a\n2,b\n3,c\n4,d\n,e\n")

	miss := Missing(tbl)
	if !reflect.DeepEqual(miss.Map(), map[string]int{"x": 1}) {
		t.Fatalf("missing = %#v", miss)
	}
	s, err := Summary(tbl, "x")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	checks := map[string][2]float64{
		"mean":   {float64(s.Mean), 2.5},
		"median": {float64(s.Median), 2.5},
		"min":    {float64(s.Min), 1},
		"max":    {float64(s.Max), 4},
		"p25":    {float64(s.P25), 1.75},
		"p75":    {float64(s.P75), 3.25},
		"var":    {float64(s.Variance), 1.25},
	}
	for name, c := range checks {
		if math.Abs(c[0]-c[1]) > 1e-12 {
			t.Fatalf("%s = %v, want %v", name, c[0], c[1])
		}
	}
	if math.Abs(float64(s.StdDev)-math.Sqrt(1.25)) > 1e-12 {
		t.Fatalf("std = %v", s.StdDev)
	}
	if got := s.Rounded().StdDev; got != 1.118 {
		t.Fatalf("rounded std = %v, want 1.118", got)
	}
}

func TestSummaryOrderingAndIdempotence(t *testing.T) {
	tbl := mustParse(t, "v\n9.5\n-3\n7\n0.25\n12\n7\n-1e3\n")
	a, err := Summary(tbl, "v")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !(a.Min <= a.P25 && a.P25 <= a.P50 && a.P50 <= a.P75 && a.P75 <= a.Max) {
		t.Fatalf("quantiles out of order: %+v", a)
	}
	if a.Median != a.P50 {
		t.Fatalf("median %v != p50 %v", a.Median, a.P50)
	}
	b, _ := Summary(tbl, "v")
	if a != b {
		t.Fatalf("summary not idempotent: %+v vs %+v", a, b)
	}
}

func TestSummaryErrors(t *testing.T) {
	tbl := mustParse(t, "empty,name\n,a\n,b\n")
	var empty *EmptyColumnError
	if _, err := Summary(tbl, "empty"); !errors.As(err, &empty) || empty.Column != "empty" {
		t.Fatalf("want EmptyColumnError, got %v", err)
	}
	if _, err := Summary(tbl, "name"); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("want ErrNotNumeric, got %v", err)
	}
	if _, err := Summary(tbl, "nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("want ErrUnknownColumn, got %v", err)
	}
}

func TestCategoricalScenario(t *testing.T) {
	tbl := mustParse(t, "c,n\na,1\nb,2\na,3\n")
	for _, n := range NumericColumns(tbl) {
		if n == "c" {
			t.Fatalf("categorical column reported as numeric")
		}
	}
	if got := CategoricalColumns(tbl); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("categorical columns = %v", got)
	}
	f, err := CategoricalCounts(tbl, "c")
	if err != nil {
		t.Fatalf("CategoricalCounts: %v", err)
	}
	want := []CategoryCount{{"a", 2}, {"b", 1}}
	if !reflect.DeepEqual(f.Counts, want) {
		t.Fatalf("counts = %#v, want %#v", f.Counts, want)
	}
	again, _ := CategoricalCounts(tbl, "c")
	if !reflect.DeepEqual(f, again) {
		t.Fatalf("counts unstable across calls")
	}
	if _, err := CategoricalCounts(tbl, "n"); !errors.Is(err, ErrNotCategorical) {
		t.Fatalf("want ErrNotCategorical, got %v", err)
	}
}

func TestCategoricalTiesKeepFirstSeenOrderAndMissing(t *testing.T) {
	tbl := mustParse(t, "c\nz\ny\nNA\nz\ny\nx\n")
	f, err := CategoricalCounts(tbl, "c")
	if err != nil {
		t.Fatalf("CategoricalCounts: %v", err)
	}
	want := []CategoryCount{{"z", 2}, {"y", 2}, {"x", 1}}
	if !reflect.DeepEqual(f.Counts, want) {
		t.Fatalf("counts = %#v", f.Counts)
	}
	if f.Missing != 1 {
		t.Fatalf("missing = %d", f.Missing)
	}
	if last := f.WithMissing()[3]; last.Value != MissingLabel || last.Count != 1 {
		t.Fatalf("missing bucket = %#v", last)
	}
}

func TestCorrelationSymmetricAndDiagonal(t *testing.T) {
	tbl := mustParse(t, "a,b,c,k\n1,2,9,5\n2,4.1,7,5\n3,5.9,8,5\n4,8.2,,5\n5,9.7,1,5\n")
	m, err := Correlation(tbl, NumericColumns(tbl))
	if err != nil {
		t.Fatalf("Correlation: %v", err)
	}
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b := float64(m.Values[i][j]), float64(m.Values[j][i])
			if !(a == b || (math.IsNaN(a) && math.IsNaN(b))) {
				t.Fatalf("asymmetric at %d,%d: %v vs %v", i, j, a, b)
			}
		}
	}
	for _, c := range []string{"a", "b", "c"} {
		if v, _ := m.At(c, c); v != 1 {
			t.Fatalf("diag %s = %v, want 1", c, v)
		}
	}
	if v, _ := m.At("k", "k"); !math.IsNaN(v) {
		t.Fatalf("constant column diag = %v, want NaN", v)
	}
	if v, _ := m.At("a", "k"); !math.IsNaN(v) {
		t.Fatalf("constant column pair = %v, want NaN", v)
	}
	if v, _ := m.At("a", "b"); v < 0.99 {
		t.Fatalf("corr(a,b) = %v, want strongly positive", v)
	}
	// pairwise complete: (a,c) uses rows 1,2,3,5 only
	want := pearson([]float64{1, 2, 3, 5}, []float64{9, 7, 8, 1})
	if v, _ := m.At("a", "c"); math.Abs(v-want) > 1e-12 {
		t.Fatalf("corr(a,c) = %v, want %v", v, want)
	}
}

func pearson(x, y []float64) float64 {
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(len(x))
	my /= float64(len(y))
	var sxy, sxx, syy float64
	for i := range x {
		sxy += (x[i] - mx) * (y[i] - my)
		sxx += (x[i] - mx) * (x[i] - mx)
		syy += (y[i] - my) * (y[i] - my)
	}
	return sxy / math.Sqrt(sxx*syy)
}

func TestCorrelationNeedsTwoNumericColumns(t *testing.T) {
	tbl := mustParse(t, "name,city\nann,rome\nbob,oslo\n")
	var insufficient *InsufficientDataError
	if _, err := Correlation(tbl, NumericColumns(tbl)); !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
	rep := Run(tbl, RunOptions{})
	if rep.Correlation != nil {
		t.Fatalf("correlation should be skipped")
	}
	if rep.Overview.Rows != 2 || len(rep.Missing) != 0 {
		t.Fatalf("overview/missing should still be available: %+v", rep.Overview)
	}
	if len(rep.Skipped(ArtifactCorrelation)) != 1 {
		t.Fatalf("want one correlation notice, got %v", rep.Notices)
	}
}

func TestMalformedInputFailsToParse(t *testing.T) {
	cases := map[string][]byte{
		"extra fields": []byte("a,b\n1,2\n3,4,5\n"),
		"empty":        []byte(""),
		"whitespace":   []byte("  \n\n"),
		"bad utf8":     {'a', '\n', 0xff, 0xfe, '\n'},
		"bare quote":   []byte("a,b\n1,x\"y\n"),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tbl, err := ParseCSV(body, DefaultOptions())
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("want ParseError, got %v", err)
			}
			if tbl != nil {
				t.Fatalf("no partial table expected")
			}
		})
	}
	_, err := ParseCSV([]byte("a,b\n1,2\n3,4,5\n"), DefaultOptions())
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestShortRowsArePadded(t *testing.T) {
	tbl := mustParse(t, "a,b,c\n1,2,3\n4\n")
	if tbl.Rows() != 2 {
		t.Fatalf("rows = %d", tbl.Rows())
	}
	if got := Missing(tbl).Map(); !reflect.DeepEqual(got, map[string]int{"b": 1, "c": 1}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestInference(t *testing.T) {
	tbl := mustParse(t, "i,f,mixed,gaps,blank,hex,big\n1,1.5,1,1,,0x10,1e400\n2,2,two,NA,,0x11,2\n3,-3e2,3,3,,0x12,3\n")
	want := map[string]Kind{
		"i":     KindInteger,
		"f":     KindFloat,
		"mixed": KindText,
		"gaps":  KindFloat,
		"blank": KindFloat,
		"hex":   KindText,
		"big":   KindFloat,
	}
	for name, k := range want {
		c, ok := tbl.Column(name)
		if !ok {
			t.Fatalf("missing column %s", name)
		}
		if c.Kind != k {
			t.Fatalf("%s kind = %v, want %v", name, c.Kind, k)
		}
	}
	if got := NumericColumns(tbl); !reflect.DeepEqual(got, []string{"i", "f", "gaps", "blank", "big"}) {
		t.Fatalf("numeric columns = %v", got)
	}
}

func TestLocaleNumbers(t *testing.T) {
	body := []byte("amount;rate\n1.000,5;0,5\n2.500,0;0,75\n")
	plain, err := ParseCSV(body, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if c, _ := plain.Column("amount"); c.Kind != KindText {
		t.Fatalf("amount should be text without locale, got %v", c.Kind)
	}
	opt := DefaultOptions()
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'
	tbl, err := ParseCSV(body, opt)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	c, _ := tbl.Column("amount")
	if v, ok := c.Float(0); !ok || v != 1000.5 {
		t.Fatalf("amount[0] = %v, %v", v, ok)
	}
}

func TestColumnNames(t *testing.T) {
	got := columnNames([]string{"a", " a ", "", "a.1", "a"})
	want := []string{"a", "a.1", "Unnamed: 2", "a.1.1", "a.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestSniffDelimiter(t *testing.T) {
	if d := sniffDelimiter([]byte("a;b;c\n1;2;3"), "x.csv"); d != ';' {
		t.Fatalf("delimiter = %q", d)
	}
	if d := sniffDelimiter([]byte("a,b"), "x.tsv"); d != '\t' {
		t.Fatalf("tsv delimiter = %q", d)
	}
	if d := sniffDelimiter([]byte(`"a;b",c`), "x.csv"); d != ',' {
		t.Fatalf("quoted delimiter = %q", d)
	}
}

func TestResolveSelection(t *testing.T) {
	tbl := mustParse(t, "a,b,c,d,name\n1,2,3,4,x\n")
	if got := ResolveSelection(tbl, nil, 3); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("default selection = %v", got)
	}
	if got := ResolveSelection(tbl, []string{"d", "stale", "name", "d", "a"}, 3); !reflect.DeepEqual(got, []string{"d", "a"}) {
		t.Fatalf("resolved = %v", got)
	}
	if got := ResolveSelection(tbl, []string{"gone"}, 3); got == nil || len(got) != 0 {
		t.Fatalf("stale selection should be empty, got %v", got)
	}
	if got := ResolveCategory(tbl, "stale"); got != "name" {
		t.Fatalf("category = %q", got)
	}
	if got := ResolveCategory(mustParse(t, "a\n1\n"), "a"); got != "" {
		t.Fatalf("category without text columns = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	tbl := mustParse(t, "x,y,s\n1,,a\n2,,b\n3,,c\n4,,d\n")
	rows := Describe(tbl)
	if len(rows) != 2 {
		t.Fatalf("describe rows = %d", len(rows))
	}
	x := rows[0]
	if x.Count != 4 || x.Mean != 2.5 || x.P25 != 1.75 || x.Max != 4 {
		t.Fatalf("describe x = %+v", x)
	}
	if math.Abs(float64(x.Std)-math.Sqrt(5.0/3)) > 1e-12 {
		t.Fatalf("sample std = %v", x.Std)
	}
	if y := rows[1]; y.Count != 0 || !math.IsNaN(float64(y.Mean)) {
		t.Fatalf("describe y = %+v", y)
	}
}

func TestColumnDistribution(t *testing.T) {
	tbl := mustParse(t, "v\n1\n2\n2\n3\n3\n3\n4\n4\n5\n")
	d, err := ColumnDistribution(tbl, "v", 50)
	if err != nil {
		t.Fatalf("ColumnDistribution: %v", err)
	}
	total := 0
	area := 0.0
	for _, b := range d.Bins {
		total += b.Count
		area += b.Density * (b.Hi - b.Lo)
	}
	if total != 9 {
		t.Fatalf("binned %d values, want 9", total)
	}
	if math.Abs(area-1) > 1e-9 {
		t.Fatalf("histogram density integrates to %v", area)
	}
	if len(d.KDE) != 50 || d.Bandwidth <= 0 {
		t.Fatalf("kde points = %d, bandwidth = %v", len(d.KDE), d.Bandwidth)
	}

	flat := mustParse(t, "v\n7\n7\n")
	fd, err := ColumnDistribution(flat, "v", 10)
	if err != nil {
		t.Fatalf("constant column: %v", err)
	}
	if len(fd.Bins) != 1 || fd.Bins[0].Count != 2 || fd.KDE != nil {
		t.Fatalf("constant distribution = %+v", fd)
	}
}

func TestPairsUsesCompleteRows(t *testing.T) {
	tbl := mustParse(t, "a,b,c\n1,2,3\n4,,6\n7,8,9\n")
	g, err := Pairs(tbl, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Pairs: %v", err)
	}
	if g.Rows != 2 || !reflect.DeepEqual(g.Series(0), []float64{1, 7}) {
		t.Fatalf("pair grid = %+v", g)
	}
	var insufficient *InsufficientDataError
	if _, err := Pairs(tbl, []string{"a"}); !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestRunDegradesGracefully(t *testing.T) {
	tbl := mustParse(t, "x,empty,y,kind\n1,,2,a\n2,,4,b\n3,,5,a\n")
	rep := Run(tbl, RunOptions{Columns: []string{"x", "empty", "stale", "y"}, Category: "stale"})
	if !reflect.DeepEqual(rep.Selection, []string{"x", "empty", "y"}) {
		t.Fatalf("selection = %v", rep.Selection)
	}
	if len(rep.Stats) != 2 || rep.Stats[0].Column != "x" || rep.Stats[1].Column != "y" {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	notes := rep.Skipped(ArtifactStatistics)
	if len(notes) != 1 || notes[0].Column != "empty" || notes[0].Level != LevelWarning {
		t.Fatalf("statistics notices = %+v", notes)
	}
	if rep.Correlation == nil || rep.PairGrid == nil {
		t.Fatalf("correlation and pairplot should be computed")
	}
	if rep.Category != "kind" || rep.Categorical == nil || rep.Categorical.Get("a") != 2 {
		t.Fatalf("categorical = %+v", rep.Categorical)
	}
	if len(rep.Distributions) != 2 {
		t.Fatalf("distributions = %d", len(rep.Distributions))
	}
}

func TestRunWithoutNumericOrCategoricalColumns(t *testing.T) {
	rep := Run(mustParse(t, "s\nx\ny\n"), RunOptions{})
	if len(rep.Skipped(ArtifactCorrelation)) != 1 || rep.Skipped(ArtifactCorrelation)[0].Level != LevelWarning {
		t.Fatalf("want warning for missing numeric columns: %+v", rep.Notices)
	}
	rep = Run(mustParse(t, "n\n1\n2\n"), RunOptions{})
	if rep.Categorical != nil || len(rep.Skipped(ArtifactCategorical)) != 1 {
		t.Fatalf("want categorical warning: %+v", rep.Notices)
	}
	if len(rep.Skipped(ArtifactPairplot)) != 1 {
		t.Fatalf("want pairplot info notice: %+v", rep.Notices)
	}
}

func TestMaxRowsWarning(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	tbl, err := ParseCSV([]byte("v\n1\n2\n3\n"), opt)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	rep := Run(tbl, RunOptions{})
	if rep.Overview.Rows != 2 || len(rep.Skipped(ArtifactRows)) != 1 {
		t.Fatalf("rows = %d notices = %+v", rep.Overview.Rows, rep.Notices)
	}
}

func TestMarkdown(t *testing.T) {
	tbl := mustParse(t, "x,y,kind\n1,2,a\n2,4,b\n3,,a\n4,8,a\n")
	tbl.Name = "metrics.csv"
	md := Run(tbl, RunOptions{}).Markdown()
	for _, want := range []string{
		"[DATASET OVERVIEW]",
		"File: metrics.csv",
		"Shape: 4 rows, 3 columns",
		"- y: float (float64), missing 1",
		"[HEAD ROWS]",
		"[DESCRIPTIVE STATISTICS]",
		"[CORRELATIONS]",
		"- x ~ y: r=1.000",
		"[STATISTICS: x]",
		"- 25th Percentile: 1.75",
		"[CATEGORICAL: kind]",
		"- a: 3",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	clean := Run(mustParse(t, "x\n1\n"), RunOptions{}).Markdown()
	if !strings.Contains(clean, "No missing values detected.") {
		t.Fatalf("markdown missing none-detected line:\n%s", clean)
	}
}

func TestFloatJSON(t *testing.T) {
	b, err := Float(math.NaN()).MarshalJSON()
	if err != nil || string(b) != "null" {
		t.Fatalf("NaN json = %s, %v", b, err)
	}
	b, _ = Float(2.5).MarshalJSON()
	if string(b) != "2.5" {
		t.Fatalf("json = %s", b)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Data"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]any{{"group", "score"}, {"A", 10}, {"B", 12.5}, {"A", nil}}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Data", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	tbl, err := ParseXLSX(buf.Bytes(), DefaultOptions(), "data", 0)
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if tbl.Rows() != 3 || tbl.Cols() != 2 {
		t.Fatalf("shape = %dx%d", tbl.Rows(), tbl.Cols())
	}
	if c, _ := tbl.Column("score"); c.Kind != KindFloat || c.MissingCount() != 1 {
		t.Fatalf("score = %v missing %d", c.Kind, c.MissingCount())
	}
	var pe *ParseError
	if _, err := ParseXLSX(buf.Bytes(), DefaultOptions(), "nope", 0); !errors.As(err, &pe) {
		t.Fatalf("want ParseError for missing sheet, got %v", err)
	}
	if _, err := ParseXLSX([]byte("not a zip"), DefaultOptions(), "", 1); !errors.As(err, &pe) {
		t.Fatalf("want ParseError for garbage, got %v", err)
	}
}

func TestRunRoundsStatistics(t *testing.T) {
	tbl := mustParse(t, "x\n0\n0\n1\n")
	rep := Run(tbl, RunOptions{})
	if len(rep.Stats) != 1 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	b, err := json.Marshal(rep.Stats[0].Stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"Mean":0.3333`, `"Std Dev":0.4714`, `"Variance":0.2222`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("missing %s in %s", want, b)
		}
	}
	// full precision remains available through Summary
	s, err := Summary(tbl, "x")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if float64(s.Mean) == 0.3333 {
		t.Fatalf("Summary should not round")
	}
}

func TestRunReusesFrequencies(t *testing.T) {
	tbl := mustParse(t, "kind,other,x\na,p,1\nb,q,2\na,p,3\n")
	first := Run(tbl, RunOptions{})
	again := Run(tbl, RunOptions{Frequencies: first.Categorical})
	if again.Categorical != first.Categorical {
		t.Fatalf("frequencies for the same category should be reused")
	}
	other := Run(tbl, RunOptions{Category: "other", Frequencies: first.Categorical})
	if other.Categorical == first.Categorical || other.Categorical.Column != "other" {
		t.Fatalf("frequencies of another column must not be reused: %+v", other.Categorical)
	}
}

func TestMissingTokensAreExact(t *testing.T) {
	tbl := mustParse(t, "a,b\nnan,NAN\nNaN,x\n1.5,nAn\n")
	a, _ := tbl.Column("a")
	if a.Kind != KindFloat || a.MissingCount() != 2 {
		t.Fatalf("a: kind %v, missing %d", a.Kind, a.MissingCount())
	}
	b, _ := tbl.Column("b")
	if b.Kind != KindText || b.MissingCount() != 0 {
		t.Fatalf("b: kind %v, missing %d", b.Kind, b.MissingCount())
	}
	c := mustParse(t, "v\n1\nNAN\n")
	if col, _ := c.Column("v"); col.Kind != KindText {
		t.Fatalf("NAN spelling should make the column text, got %v", col.Kind)
	}
}

func TestMarkdownTruncatesByRune(t *testing.T) {
	long := strings.Repeat("é", 100)
	cell := formatCell(long)
	if !utf8.ValidString(cell) {
		t.Fatalf("truncated cell is not valid UTF-8: %q", cell)
	}
	if want := strings.Repeat("é", 77) + "..."; cell != want {
		t.Fatalf("cell = %q", cell)
	}
	if formatCell("short") != "short" {
		t.Fatalf("short cells are kept")
	}
}
