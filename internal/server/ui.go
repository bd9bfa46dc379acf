package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/haskel/studycost/internal/charts"
	"github.com/haskel/studycost/internal/estimate"
	"github.com/haskel/studycost/internal/feature"
	"github.com/haskel/studycost/internal/session"
)

const sessionCookie = "studycost_session"

const (
	viewPredict   = "predict"
	viewVisualize = "visualize"
	viewEDA       = "eda"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	ui *template.Template
}

func newPages() (*pages, error) {
	ui, err := template.ParseFS(templateFS, "templates/ui.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &pages{ui: ui}, nil
}

type uiField struct {
	Name     string
	Label    string
	Value    string
	Min      string
	Max      string
	Options  []string
	Numeric  bool
	HasRange bool
}

type uiBar struct {
	Label   string
	Value   string
	Percent string
}

type uiChart struct {
	Title string
	Kind  charts.Kind
	Bars  []uiBar
}

type uiPage struct {
	View          string
	Version       string
	SchemaVersion string
	Model         string
	Fields        []uiField
	Result        string
	Error         string
	Note          string
	Info          string
	Charts        []uiChart
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r.URL.Query().Get("view"))

	var snap *session.Snapshot
	if sess := s.cookieSession(r); sess != nil {
		last, err := sess.Last(r.Context())
		switch {
		case err == nil:
			snap = last
		case !errors.Is(err, session.ErrNotFound):
			s.logger.Warn("failed to load session for ui", "session", sess.ID, "error", err)
		}
	}

	switch page.View {
	case viewVisualize:
		if snap == nil {
			page.Info = "No prediction yet. Submit the form on the Predict page first."
			break
		}
		page.Result = snap.Formatted
		page.Charts = uiCharts(charts.Visualize(snap))
		if len(snap.Importances) == 0 {
			page.Note = estimate.NoImportanceNote
		}
	case viewEDA:
		if s.deps.Dataset == nil {
			page.Info = "No dataset is configured."
			break
		}
		page.Info = fmt.Sprintf("%d programs from %s.", s.deps.Dataset.Summary.Rows, s.deps.Dataset.Source)
		page.Charts = uiCharts(charts.EDA(s.deps.Dataset.Summary))
	default:
		if snap != nil {
			page.Fields = formFields(s.deps.Estimator.Schema(), recordValues(snap.Record))
			page.Result = snap.Formatted
		}
	}

	s.render(w, http.StatusOK, page)
}

func (s *Server) handleUISubmit(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(viewPredict)

	if err := r.ParseForm(); err != nil {
		page.Error = "The form could not be read."
		s.render(w, http.StatusBadRequest, page)
		return
	}

	schema := s.deps.Estimator.Schema()
	in := make(estimate.Input, len(schema.Fields))
	values := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		v := strings.TrimSpace(r.PostForm.Get(f.Name))
		values[f.Name] = v
		if v == "" {
			in[f.Name] = nil
			continue
		}
		in[f.Name] = v
	}
	page.Fields = formFields(schema, values)

	sess := s.cookieSession(r)
	if sess == nil {
		sess = session.New(s.deps.Sessions)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   s.config.Load().Session.TTLSec,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	res, err := s.deps.Estimator.Estimate(r.Context(), in, sess)
	if err != nil {
		var verr *estimate.ValidationError
		var ierr *estimate.InferenceError
		switch {
		case errors.As(err, &verr):
			page.Error = verr.Error()
			s.render(w, http.StatusBadRequest, page)
		case errors.As(err, &ierr):
			page.Error = "Prediction failed: " + ierr.Error()
			s.render(w, http.StatusUnprocessableEntity, page)
		default:
			s.logger.Error("ui estimate failed", "error", err)
			page.Error = "Something went wrong. Please try again."
			s.render(w, http.StatusInternalServerError, page)
		}
		return
	}

	page.Result = res.Formatted
	page.Note = res.ImportanceNote
	page.Charts = uiCharts(charts.Visualize(res.Snapshot()))
	s.render(w, http.StatusOK, page)
}

func (s *Server) newPage(view string) *uiPage {
	switch view {
	case viewVisualize, viewEDA:
	default:
		view = viewPredict
	}

	schema := s.deps.Estimator.Schema()
	return &uiPage{
		View:          view,
		Version:       s.version,
		SchemaVersion: schema.Version,
		Model:         s.deps.Estimator.Predictor().Name(),
		Fields:        formFields(schema, nil),
	}
}

// cookieSession returns the session named by the request cookie, or nil.
func (s *Server) cookieSession(r *http.Request) *session.Session {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	sess, err := session.Open(s.deps.Sessions, c.Value)
	if err != nil {
		return nil
	}
	return sess
}

func (s *Server) render(w http.ResponseWriter, status int, page *uiPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ui.Execute(w, page); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

func formFields(schema *feature.Schema, values map[string]string) []uiField {
	out := make([]uiField, len(schema.Fields))
	for i, f := range schema.Fields {
		uf := uiField{
			Name:    f.Name,
			Label:   f.DisplayLabel(),
			Value:   values[f.Name],
			Options: f.Options,
			Numeric: f.Kind == feature.KindNumeric,
		}
		if uf.Numeric && f.HasRange() {
			uf.HasRange = true
			uf.Min = strconv.FormatFloat(f.Min, 'f', -1, 64)
			uf.Max = strconv.FormatFloat(f.Max, 'f', -1, 64)
		}
		out[i] = uf
	}
	return out
}

func recordValues(rec feature.Record) map[string]string {
	out := make(map[string]string, len(rec.Entries))
	for _, e := range rec.Entries {
		if e.Value.Kind == feature.KindCategorical {
			out[e.Name] = e.Value.Text
			continue
		}
		out[e.Name] = strconv.FormatFloat(e.Value.Number, 'f', -1, 64)
	}
	return out
}

// uiCharts turns charts into CSS bar rows scaled to the largest value.
func uiCharts(in []charts.Chart) []uiChart {
	out := make([]uiChart, 0, len(in))
	for _, c := range in {
		top := c.Max()
		uc := uiChart{Title: c.Title, Kind: c.Kind}
		for i, label := range c.Labels {
			v := c.Values[i]
			pct := 0.0
			if top > 0 {
				pct = v / top * 100
			}
			uc.Bars = append(uc.Bars, uiBar{
				Label:   label,
				Value:   barValue(c.Kind, v),
				Percent: strconv.FormatFloat(pct, 'f', 1, 64),
			})
		}
		out = append(out, uc)
	}
	return out
}

func barValue(kind charts.Kind, v float64) string {
	switch kind {
	case charts.KindPie:
		return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
	case charts.KindHistogram:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case charts.KindLine:
		return estimate.FormatUSD(v)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
