package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/chart"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request error")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps pipeline and session errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		parseErr     *analysis.ParseError
		insufficient *analysis.InsufficientDataError
		empty        *analysis.EmptyColumnError
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, analysis.ErrUnknownColumn):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoTable):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &parseErr), errors.As(err, &insufficient), errors.As(err, &empty), errors.Is(err, chart.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrNotNumeric), errors.Is(err, analysis.ErrNotCategorical), errors.Is(err, chart.ErrUnsupportedFormat), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) (*session.Session, *analysis.Table, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, nil, false
	}
	t, err := sess.Table()
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, false
	}
	return sess, t, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	s.metrics.sessions.Set(float64(s.store.Len()))
	s.log.WithField("session", sess.ID).Info("session created")
	writeJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.sessions.Set(float64(s.store.Len()))
	s.log.WithField("session", id).Info("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if r.ContentLength > s.cfg.MaxUploadBytes {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		s.writeError(w, r, &http.MaxBytesError{Limit: s.cfg.MaxUploadBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: multipart form: %v", errBadRequest, err))
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		s.writeError(w, r, fmt.Errorf("%w: missing form field \"file\"", errBadRequest))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		s.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	name := path.Base(hdr.Filename)
	ov, err := sess.Load(name, raw)
	log := s.log.WithFields(logrus.Fields{"session": sess.ID, "file": name, "bytes": len(raw)})
	if err != nil {
		s.metrics.uploads.WithLabelValues("parse_error").Inc()
		log.WithError(err).Warn("upload rejected")
		s.writeError(w, r, err)
		return
	}
	s.metrics.uploads.WithLabelValues("ok").Inc()
	log.WithFields(logrus.Fields{"rows": ov.Rows, "cols": ov.Cols}).Info("table loaded")
	writeJSON(w, http.StatusOK, ov)
}

// applySelection stores the selections named in the query. A present but empty
// columns parameter selects nothing; an absent one keeps the current selection.
func applySelection(sess *session.Session, r *http.Request) {
	q := r.URL.Query()
	if q.Has("columns") {
		cols := []string{}
		for _, c := range strings.Split(q.Get("columns"), ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		sess.Select(cols)
	}
	if q.Has("category") {
		sess.SelectCategory(q.Get("category"))
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	applySelection(sess, r)
	rep, err := sess.Report()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.TableOverview(t, s.cfg.Session.HeadRows))
}

func (s *Server) handleMissing(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Missing(t))
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Describe(t))
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.table(w, r)
	if !ok {
		return
	}
	m, err := analysis.Correlation(t, analysis.NumericColumns(t))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.table(w, r)
	if !ok {
		return
	}
	col := chi.URLParam(r, "column")
	st, err := analysis.Summary(t, col)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := t.Column(col)
	writeJSON(w, http.StatusOK, analysis.ColumnStats{Column: col, Count: c.Len() - c.MissingCount(), Stats: st.Rounded()})
}

func (s *Server) handleCategorical(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	f, err := sess.Categorical(chi.URLParam(r, "column"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleChart renders /charts/{kind}.{png|svg}. Every request builds its own figure.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, t, ok := s.table(w, r)
	if !ok {
		return
	}
	file := chi.URLParam(r, "file")
	kind, ext, _ := strings.Cut(file, ".")
	format, err := chart.ParseFormat(ext)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	applySelection(sess, r)
	fig, err := s.figure(sess, t, kind, r.URL.Query().Get("column"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := chart.Bytes(fig, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) figure(sess *session.Session, t *analysis.Table, kind, column string) (chart.Figure, error) {
	size := s.cfg.ChartSize
	switch kind {
	case "heatmap":
		m, err := analysis.Correlation(t, analysis.NumericColumns(t))
		if err != nil {
			return nil, err
		}
		return chart.NewHeatmap(m, size), nil
	case "distribution":
		// an absent or stale column falls back to the first selected one
		if c, ok := t.Column(column); !ok || !c.Kind.IsNumeric() {
			sel, err := sess.Selection()
			if err != nil {
				return nil, err
			}
			if len(sel) == 0 {
				return nil, &analysis.InsufficientDataError{Artifact: "distribution", Have: 0, Need: 1}
			}
			column = sel[0]
		}
		d, err := analysis.ColumnDistribution(t, column, s.cfg.Session.KDEPoints)
		if err != nil {
			return nil, err
		}
		return chart.NewDistributionPlot(d, size), nil
	case "pairplot":
		sel, err := sess.Selection()
		if err != nil {
			return nil, err
		}
		g, err := analysis.Pairs(t, sel)
		if err != nil {
			return nil, err
		}
		return chart.NewPairPlot(g, size), nil
	case "count":
		f, err := sess.Categorical(column)
		if err != nil {
			return nil, err
		}
		return chart.NewCountPlot(f, size), nil
	}
	return nil, fmt.Errorf("%w: unknown chart %q", errBadRequest, kind)
}
