package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/haskel/studycost/internal/charts"
	"github.com/haskel/studycost/internal/estimate"
	"github.com/haskel/studycost/internal/feature"
	"github.com/haskel/studycost/internal/model"
	"github.com/haskel/studycost/internal/session"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Model   string `json:"model"`
	Schema  string `json:"schema"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every JSON failure.
type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
}

type SchemaResponse struct {
	Version     string               `json:"version"`
	RangePolicy estimate.RangePolicy `json:"range_policy"`
	Fields      []feature.Field      `json:"fields"`
	JSONSchema  map[string]any       `json:"json_schema"`
}

type ModelResponse struct {
	Name           string               `json:"name"`
	SchemaVersion  string               `json:"schema_version,omitempty"`
	Features       []string             `json:"features"`
	Importances    []feature.Importance `json:"importances,omitempty"`
	ImportanceNote string               `json:"importance_note,omitempty"`
	ModelFile      *model.Info          `json:"model_file,omitempty"`
}

type EstimateResponse struct {
	*estimate.Result
	SessionID string         `json:"session_id,omitempty"`
	Charts    []charts.Chart `json:"charts"`
}

type SessionResponse struct {
	ID string `json:"id"`
}

type ChartsResponse struct {
	Charts []charts.Chart `json:"charts"`
}

// pinger is implemented by session stores backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		Name:    "studycost",
		Version: s.version,
		Model:   s.deps.Estimator.Predictor().Name(),
		Schema:  s.deps.Estimator.Schema().Version,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.deps.Sessions.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
				Ready:   false,
				Message: "session store unavailable: " + err.Error(),
			})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, ReadyResponse{Ready: true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Aggregator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "unavailable", "resource monitoring is disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Aggregator.Status())
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := s.deps.Estimator.Schema()

	fields := make([]feature.Field, len(schema.Fields))
	for i, f := range schema.Fields {
		f.Label = f.DisplayLabel()
		fields[i] = f
	}

	s.writeJSON(w, http.StatusOK, SchemaResponse{
		Version:     schema.Version,
		RangePolicy: s.deps.Estimator.Policy(),
		Fields:      fields,
		JSONSchema:  schema.JSONSchema(),
	})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	p := s.deps.Estimator.Predictor()
	resp := ModelResponse{
		Name:          p.Name(),
		SchemaVersion: p.SchemaVersion(),
		Features:      p.Features(),
	}
	if imp, ok := s.deps.Estimator.Importances(); ok {
		resp.Importances = imp
	} else {
		resp.ImportanceNote = estimate.NoImportanceNote
	}
	if path := s.config.Load().Model.Path; path != "" {
		info := model.Stat(path)
		resp.ModelFile = &info
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	s.estimate(w, r, nil)
}

func (s *Server) handleSessionEstimate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	s.estimate(w, r, sess)
}

func (s *Server) estimate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	in, err := s.decodeInput(r)
	if err != nil {
		s.writeEstimateError(w, err)
		return
	}

	res, err := s.deps.Estimator.Estimate(r.Context(), in, sess)
	if err != nil {
		s.writeEstimateError(w, err)
		return
	}

	resp := EstimateResponse{
		Result: res,
		Charts: charts.Visualize(res.Snapshot()),
	}
	if sess != nil {
		resp.SessionID = sess.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// decodeInput checks the body against the schema's JSON Schema and decodes it.
// Type errors and unknown fields become a validation failure; missing fields
// are left for the estimator to report.
func (s *Server) decodeInput(r *http.Request) (estimate.Input, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &estimate.ValidationError{Invalid: map[string]string{"body": "request body too large"}}
		}
		return nil, err
	}

	result, err := s.bodySchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &estimate.ValidationError{Invalid: map[string]string{"body": "invalid JSON"}}
	}
	if !result.Valid() {
		return nil, schemaErrors(result.Errors())
	}

	var in estimate.Input
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, &estimate.ValidationError{Invalid: map[string]string{"body": "invalid JSON"}}
	}
	if in == nil {
		in = estimate.Input{}
	}
	return in, nil
}

func schemaErrors(errs []gojsonschema.ResultError) *estimate.ValidationError {
	verr := &estimate.ValidationError{Invalid: make(map[string]string, len(errs))}
	for _, e := range errs {
		field := e.Field()
		reason := e.Description()
		if e.Type() == "additional_property_not_allowed" {
			if p, ok := e.Details()["property"].(string); ok {
				field = p
				reason = "unknown field"
			}
		}
		if field == "(root)" {
			field = "body"
		}
		if _, seen := verr.Invalid[field]; !seen {
			verr.Invalid[field] = reason
		}
	}
	return verr
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(s.deps.Sessions)
	s.writeJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.lastSnapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	if err := sess.Forget(r.Context()); err != nil {
		s.writeInternal(w, "failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionCharts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.lastSnapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, ChartsResponse{Charts: charts.Visualize(snap)})
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := session.Open(s.deps.Sessions, r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, estimate.KindValidation, err.Error())
		return nil, false
	}
	return sess, true
}

func (s *Server) lastSnapshot(w http.ResponseWriter, r *http.Request) (*session.Snapshot, bool) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return nil, false
	}

	snap, err := sess.Last(r.Context())
	if errors.Is(err, session.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not_found", "no prediction yet for this session")
		return nil, false
	}
	if err != nil {
		s.writeInternal(w, "failed to load session", err)
		return nil, false
	}
	return snap, true
}

func (s *Server) handleEDASummary(w http.ResponseWriter, r *http.Request) {
	if s.deps.Dataset == nil {
		s.writeError(w, http.StatusServiceUnavailable, "unavailable", "no dataset is configured")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Dataset)
}

func (s *Server) handleEDACharts(w http.ResponseWriter, r *http.Request) {
	if s.deps.Dataset == nil {
		s.writeError(w, http.StatusServiceUnavailable, "unavailable", "no dataset is configured")
		return
	}
	s.writeJSON(w, http.StatusOK, ChartsResponse{Charts: charts.EDA(s.deps.Dataset.Summary)})
}

func (s *Server) handleDebugConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.config.Load().Redacted())
}

func (s *Server) handleDebugReload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reload == nil {
		s.writeError(w, http.StatusNotImplemented, "unavailable", "reload is not supported")
		return
	}
	if err := s.deps.Reload(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "reload", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
}

func (s *Server) writeEstimateError(w http.ResponseWriter, err error) {
	var verr *estimate.ValidationError
	var ierr *estimate.InferenceError

	switch {
	case errors.As(err, &verr):
		resp := ErrorResponse{
			Kind:    estimate.KindValidation,
			Message: verr.Error(),
			Missing: verr.Missing,
			Invalid: verr.Invalid,
		}
		s.writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &ierr):
		s.writeError(w, http.StatusUnprocessableEntity, estimate.KindInference, ierr.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, "canceled", err.Error())
	default:
		s.writeInternal(w, "estimate failed", err)
	}
}

func (s *Server) writeInternal(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal", msg)
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, ErrorResponse{Kind: kind, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
