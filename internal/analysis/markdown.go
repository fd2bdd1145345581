package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	ov := r.Overview
	b.WriteString("[DATASET OVERVIEW]\n")
	if ov.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", ov.Name))
	}
	b.WriteString(fmt.Sprintf("Shape: %d rows, %d columns\n\n", ov.Rows, ov.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range ov.Dtypes {
		b.WriteString(fmt.Sprintf("- %s: %s (%s)", safeName(c.Name), c.Kind, c.Dtype))
		if n := r.Missing.Get(c.Name); n > 0 {
			b.WriteString(fmt.Sprintf(", missing %d", n))
		}
		b.WriteString("\n")
	}

	if len(ov.Head) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		names := make([]string, len(ov.Dtypes))
		for i, c := range ov.Dtypes {
			names[i] = safeName(c.Name)
		}
		writeTableHeader(&b, names)
		for _, row := range ov.Head {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = formatCell(v)
			}
			writeTableRow(&b, cells)
		}
	}

	if len(r.Describe) > 0 {
		b.WriteString("\n[DESCRIPTIVE STATISTICS]\n")
		writeTableHeader(&b, []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
		for _, d := range r.Describe {
			writeTableRow(&b, []string{
				safeName(d.Column), strconv.Itoa(d.Count),
				fmtFloat(round4(d.Mean)), fmtFloat(round4(d.Std)), fmtFloat(round4(d.Min)),
				fmtFloat(round4(d.P25)), fmtFloat(round4(d.P50)), fmtFloat(round4(d.P75)), fmtFloat(round4(d.Max)),
			})
		}
	}

	b.WriteString("\n[MISSING VALUES]\n")
	if len(r.Missing) == 0 {
		b.WriteString("No missing values detected.\n")
	}
	for _, m := range r.Missing {
		b.WriteString(fmt.Sprintf("- %s: %d\n", safeName(m.Column), m.Count))
	}

	if r.Correlation != nil && len(r.Correlation.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		writeTableHeader(&b, append([]string{""}, r.Correlation.Columns...))
		for i, row := range r.Correlation.Values {
			cells := []string{safeName(r.Correlation.Columns[i])}
			for _, v := range row {
				cells = append(cells, fmtCorr(v))
			}
			writeTableRow(&b, cells)
		}
		// list top pairs by |r|
		pairs := r.Correlation.Pairs()
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	for _, s := range r.Stats {
		b.WriteString(fmt.Sprintf("\n[STATISTICS: %s]\n", safeName(s.Column)))
		for _, nv := range s.Stats.Rounded().Values() {
			b.WriteString(fmt.Sprintf("- %s: %s\n", nv.Name, fmtFloat(nv.Value)))
		}
	}

	if r.PairGrid != nil {
		b.WriteString("\n[PAIRPLOT]\n")
		b.WriteString(fmt.Sprintf("Columns: %s (%d complete rows)\n", strings.Join(r.PairGrid.Columns, ", "), r.PairGrid.Rows))
	}

	if r.Categorical != nil {
		b.WriteString(fmt.Sprintf("\n[CATEGORICAL: %s]\n", safeName(r.Categorical.Column)))
		for _, kv := range r.Categorical.Counts {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(kv.Value), kv.Count))
		}
		if r.Categorical.Missing > 0 {
			b.WriteString(fmt.Sprintf("- %s: %d\n", MissingLabel, r.Categorical.Missing))
		}
	}

	if len(r.Notices) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notices {
			b.WriteString(fmt.Sprintf("- [%s] %s", n.Level, n.Artifact))
			if n.Column != "" {
				b.WriteString(fmt.Sprintf(" (%s)", n.Column))
			}
			b.WriteString(": ")
			b.WriteString(n.Message)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeTableHeader(b *strings.Builder, names []string) {
	writeTableRow(b, names)
	seps := make([]string, len(names))
	for i := range seps {
		seps[i] = "---"
	}
	writeTableRow(b, seps)
}

func writeTableRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		if r := []rune(x); len(r) > 80 {
			x = string(r[:77]) + "..."
		}
		return safeVal(x)
	default:
		return safeVal(fmt.Sprint(x))
	}
}

func fmtFloat(f Float) string {
	v := float64(f)
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtCorr(f Float) string {
	v := float64(f)
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
