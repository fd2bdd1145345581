// Package session holds per-user analysis state: the loaded table and the current
// column selections. A session is either NoTableLoaded or TableLoaded.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
)

// State is the lifecycle state of a session.
type State int

const (
	NoTableLoaded State = iota
	TableLoaded
)

func (s State) String() string {
	if s == TableLoaded {
		return "table_loaded"
	}
	return "no_table_loaded"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrNoTable is returned by operations that need a loaded table.
var ErrNoTable = errors.New("no table loaded")

// Options are the per-session analysis settings.
type Options struct {
	Parse            parser.Options
	HeadRows         int
	DefaultSelection int
	KDEPoints        int
	// Observe, if set, is called after each pipeline run that was not served from cache.
	Observe func(r *analysis.Report, elapsed time.Duration)
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		Parse:            parser.DefaultOptions(),
		HeadRows:         analysis.DefaultHeadRows,
		DefaultSelection: analysis.DefaultSelectionSize,
		KDEPoints:        analysis.DefaultKDEPoints,
	}
}

// Info is a snapshot of a session for listing and status endpoints.
type Info struct {
	ID       string    `json:"id"`
	State    State     `json:"state"`
	File     string    `json:"file,omitempty"`
	Rows     int       `json:"rows,omitempty"`
	Cols     int       `json:"cols,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	ID  string
	opt Options

	mu       sync.RWMutex
	state    State
	table    *analysis.Table
	loadedAt time.Time
	// selection is the raw user request; nil means the default selection.
	selection []string
	category  string
	freqs     map[string]*analysis.CategoricalFrequency
}

// New returns an empty session.
func New(id string, opt Options) *Session {
	s := &Session{ID: id, opt: opt}
	s.reset()
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := Info{ID: s.ID, State: s.state}
	if s.table != nil {
		info.File = s.table.Name
		info.Rows = s.table.Rows()
		info.Cols = s.table.Cols()
		info.LoadedAt = s.loadedAt
	}
	return info
}

// Load parses raw input and replaces the session table. On failure the session ends
// up in NoTableLoaded with no partial table, whatever it held before.
func (s *Session) Load(filename string, raw []byte) (analysis.Overview, error) {
	t, err := parser.Parse(filename, raw, s.opt.Parse)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if err != nil {
		return analysis.Overview{}, err
	}
	s.table = t
	s.state = TableLoaded
	s.loadedAt = time.Now()
	return analysis.TableOverview(t, s.opt.HeadRows), nil
}

// Unload drops the table and returns to NoTableLoaded.
func (s *Session) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.table = nil
	s.state = NoTableLoaded
	s.loadedAt = time.Time{}
	s.selection = nil
	s.category = ""
	s.freqs = map[string]*analysis.CategoricalFrequency{}
}

// Table returns the loaded table or ErrNoTable.
func (s *Session) Table() (*analysis.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != TableLoaded {
		return nil, ErrNoTable
	}
	return s.table, nil
}

// Select stores the numeric column selection. Names are validated when read, so a
// selection that went stale after a reload silently shrinks instead of failing.
// A nil slice restores the default selection.
func (s *Session) Select(columns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if columns == nil {
		s.selection = nil
		return
	}
	s.selection = append([]string{}, columns...)
}

// SelectCategory stores the categorical column selection.
func (s *Session) SelectCategory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = name
}

// Selection returns the valid numeric selection against the loaded table.
func (s *Session) Selection() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != TableLoaded {
		return nil, ErrNoTable
	}
	return analysis.ResolveSelection(s.table, s.selection, s.opt.DefaultSelection), nil
}

// Category returns the valid categorical selection, or "" when the table has none.
func (s *Session) Category() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != TableLoaded {
		return "", ErrNoTable
	}
	return analysis.ResolveCategory(s.table, s.category), nil
}

// Report runs the pipeline for the current selections. Statistics are recomputed on
// every call; only categorical counts are kept for the lifetime of the load.
func (s *Session) Report() (*analysis.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TableLoaded {
		return nil, ErrNoTable
	}
	sel := analysis.ResolveSelection(s.table, s.selection, s.opt.DefaultSelection)
	cat := analysis.ResolveCategory(s.table, s.category)
	start := time.Now()
	r := analysis.Run(s.table, analysis.RunOptions{
		Columns:          sel,
		Category:         cat,
		HeadRows:         s.opt.HeadRows,
		DefaultSelection: s.opt.DefaultSelection,
		KDEPoints:        s.opt.KDEPoints,
		Frequencies:      s.freqs[cat],
	})
	if s.opt.Observe != nil {
		s.opt.Observe(r, time.Since(start))
	}
	if r.Categorical != nil {
		s.freqs[cat] = r.Categorical
	}
	return r, nil
}

// Categorical returns the frequency counts of a categorical column, computing them at
// most once per load. An empty name selects the current category; a name that is not
// a categorical column of the loaded table falls back the same way a stale category does.
func (s *Session) Categorical(name string) (*analysis.CategoricalFrequency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TableLoaded {
		return nil, ErrNoTable
	}
	if name == "" {
		name = s.category
	}
	name = analysis.ResolveCategory(s.table, name)
	if name == "" {
		return nil, analysis.ErrNotCategorical
	}
	if f, ok := s.freqs[name]; ok {
		return f, nil
	}
	f, err := analysis.CategoricalCounts(s.table, name)
	if err != nil {
		return nil, err
	}
	s.freqs[name] = f
	return f, nil
}
