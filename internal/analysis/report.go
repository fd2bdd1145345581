package analysis

import (
	"errors"
	"fmt"
)

// Level grades a report notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Artifact names used in notices.
const (
	ArtifactCorrelation  = "correlation"
	ArtifactStatistics   = "statistics"
	ArtifactDistribution = "distribution"
	ArtifactPairplot     = "pairplot"
	ArtifactCategorical  = "categorical"
	ArtifactRows         = "rows"
)

// Notice flags an artifact that was skipped or degraded.
type Notice struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	Column   string `json:"column,omitempty" yaml:"column,omitempty"`
	Level    Level  `json:"level" yaml:"level"`
	Message  string `json:"message" yaml:"message"`
}

// RunOptions scopes a pipeline run.
type RunOptions struct {
	// Columns is the requested numeric selection; nil selects the default.
	Columns []string
	// Category is the requested categorical column; "" or stale selects the first.
	Category         string
	HeadRows         int
	DefaultSelection int
	KDEPoints        int
	// Frequencies are counts computed earlier for the same table; reused when their
	// column is the resolved category.
	Frequencies *CategoricalFrequency
	// SkipDistributions omits histogram/KDE data (e.g. when only statistics are wanted).
	SkipDistributions bool
}

// Report holds every artifact derived from one table. Artifacts that could not be
// computed are nil/empty and explained in Notices.
type Report struct {
	Overview           Overview              `json:"overview" yaml:"overview"`
	Describe           []DescribeRow         `json:"describe" yaml:"describe"`
	Missing            MissingCounts         `json:"missing" yaml:"missing"`
	NumericColumns     []string              `json:"numeric_columns" yaml:"numeric_columns"`
	CategoricalColumns []string              `json:"categorical_columns" yaml:"categorical_columns"`
	Selection          []string              `json:"selection" yaml:"selection"`
	Correlation        *CorrMatrix           `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	Stats              []ColumnStats         `json:"stats" yaml:"stats"`
	Distributions      []*Distribution       `json:"distributions,omitempty" yaml:"distributions,omitempty"`
	PairGrid           *PairGrid             `json:"pair_grid,omitempty" yaml:"pair_grid,omitempty"`
	Category           string                `json:"category,omitempty" yaml:"category,omitempty"`
	Categorical        *CategoricalFrequency `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	Notices            []Notice              `json:"notices" yaml:"notices"`
}

// Skipped returns the notices for one artifact.
func (r *Report) Skipped(artifact string) []Notice {
	var out []Notice
	for _, n := range r.Notices {
		if n.Artifact == artifact {
			out = append(out, n)
		}
	}
	return out
}

func (r *Report) notice(artifact, column string, level Level, msg string) {
	r.Notices = append(r.Notices, Notice{Artifact: artifact, Column: column, Level: level, Message: msg})
}

// Run computes every artifact for t. A failing artifact never aborts the others.
// Categorical analysis runs once per call, independent of the numeric selection.
func Run(t *Table, opt RunOptions) *Report {
	r := &Report{
		Overview:           TableOverview(t, opt.HeadRows),
		Describe:           Describe(t),
		Missing:            Missing(t),
		NumericColumns:     NumericColumns(t),
		CategoricalColumns: CategoricalColumns(t),
		Selection:          ResolveSelection(t, opt.Columns, opt.DefaultSelection),
		Stats:              []ColumnStats{},
		Notices:            []Notice{},
	}
	if t.TotalRows > t.Rows() {
		r.notice(ArtifactRows, "", LevelWarning, fmt.Sprintf("processed only %d/%d rows due to MaxRows", t.Rows(), t.TotalRows))
	}

	if len(r.NumericColumns) == 0 {
		r.notice(ArtifactCorrelation, "", LevelWarning, "No numeric columns found in this dataset for correlation or distribution plots.")
	} else if corr, err := Correlation(t, r.NumericColumns); err != nil {
		r.skip(ArtifactCorrelation, "", err)
	} else {
		r.Correlation = corr
	}

	for _, name := range r.Selection {
		s, err := Summary(t, name)
		if err != nil {
			r.skip(ArtifactStatistics, name, err)
			continue
		}
		c, _ := t.Column(name)
		// statistics leave the pipeline rounded to 4 decimal places
		r.Stats = append(r.Stats, ColumnStats{Column: name, Count: c.Len() - c.MissingCount(), Stats: s.Rounded()})
		if opt.SkipDistributions {
			continue
		}
		d, err := ColumnDistribution(t, name, opt.KDEPoints)
		if err != nil {
			r.skip(ArtifactDistribution, name, err)
			continue
		}
		r.Distributions = append(r.Distributions, d)
	}

	if len(r.Selection) > 1 {
		if g, err := Pairs(t, r.Selection); err != nil {
			r.skip(ArtifactPairplot, "", err)
		} else {
			r.PairGrid = g
		}
	} else if len(r.NumericColumns) > 0 {
		r.notice(ArtifactPairplot, "", LevelInfo, "Select at least two numeric columns for pairplot.")
	}

	r.Category = ResolveCategory(t, opt.Category)
	if r.Category == "" {
		r.notice(ArtifactCategorical, "", LevelWarning, "No categorical columns found in this dataset.")
	} else if opt.Frequencies != nil && opt.Frequencies.Column == r.Category {
		r.Categorical = opt.Frequencies
	} else if f, err := CategoricalCounts(t, r.Category); err != nil {
		r.skip(ArtifactCategorical, r.Category, err)
	} else {
		r.Categorical = f
	}
	return r
}

// skip records an artifact failure with a level matching its error type.
func (r *Report) skip(artifact, column string, err error) {
	var insufficient *InsufficientDataError
	var empty *EmptyColumnError
	switch {
	case errors.As(err, &insufficient):
		r.notice(artifact, column, LevelInfo, err.Error())
	case errors.As(err, &empty):
		r.notice(artifact, column, LevelWarning, err.Error())
	default:
		r.notice(artifact, column, LevelError, err.Error())
	}
}
