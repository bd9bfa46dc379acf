package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/haskel/studycost/internal/charts"
	"github.com/haskel/studycost/internal/estimate"
	"github.com/haskel/studycost/internal/feature"
	"github.com/haskel/studycost/internal/session"
)

func TestHandleEstimate(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	w := env.do(http.MethodPost, "/v1/estimate", studyInput)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[EstimateResponse](t, w)
	if resp.Estimate != 33160 {
		t.Errorf("expected 33160, got %v", resp.Estimate)
	}
	if resp.Formatted != "$33,160.00" {
		t.Errorf("expected $33,160.00, got %s", resp.Formatted)
	}
	if resp.SessionID != "" {
		t.Errorf("stateless estimate should not carry a session, got %s", resp.SessionID)
	}
	if resp.ImportanceNote != estimate.NoImportanceNote {
		t.Errorf("expected importance note, got %q", resp.ImportanceNote)
	}
	if len(resp.Charts) != 2 || resp.Charts[0].Kind != charts.KindBar || resp.Charts[1].Kind != charts.KindLine {
		t.Errorf("expected input bars and cumulative cost charts, got %+v", resp.Charts)
	}
}

func TestHandleEstimate_ValidationFailures(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	tests := []struct {
		name    string
		body    string
		missing []string
		invalid string
	}{
		{
			name:    "missing field",
			body:    `{"Living_Cost_Index": 70, "Tuition_USD": 20000, "Exchange_Rate": 1, "Rent_USD": 800, "Visa_Fee_USD": 160, "Insurance_USD": 700}`,
			missing: []string{"Duration_Years"},
		},
		{
			name:    "null field",
			body:    strings.Replace(studyInput, `"Rent_USD": 800`, `"Rent_USD": null`, 1),
			missing: []string{"Rent_USD"},
		},
		{
			name:    "string for number",
			body:    strings.Replace(studyInput, `"Rent_USD": 800`, `"Rent_USD": "cheap"`, 1),
			invalid: "Rent_USD",
		},
		{
			name:    "unknown field",
			body:    strings.Replace(studyInput, `"Rent_USD": 800`, `"Rent_USD": 800, "Pets": 2`, 1),
			invalid: "Pets",
		},
		{
			name:    "not json",
			body:    `tuition=20000`,
			invalid: "body",
		},
		{
			name:    "array body",
			body:    `[1, 2, 3]`,
			invalid: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/v1/estimate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}

			resp := decode[ErrorResponse](t, w)
			if resp.Kind != estimate.KindValidation {
				t.Errorf("expected kind validation, got %s", resp.Kind)
			}
			if len(tt.missing) > 0 {
				if len(resp.Missing) != len(tt.missing) || resp.Missing[0] != tt.missing[0] {
					t.Errorf("expected missing %v, got %v", tt.missing, resp.Missing)
				}
				if !strings.Contains(resp.Message, "please fill in all fields") {
					t.Errorf("unexpected message: %s", resp.Message)
				}
			}
			if tt.invalid != "" {
				if _, ok := resp.Invalid[tt.invalid]; !ok {
					t.Errorf("expected %s to be invalid, got %v", tt.invalid, resp.Invalid)
				}
			}
		})
	}
}

func TestHandleEstimate_InferenceFailure(t *testing.T) {
	env := newTestEnv(t, categoricalArtifact(), feature.StudyCostCategorical())

	body := strings.Replace(studyInput, `"Insurance_USD": 700`, `"Insurance_USD": 700, "Country": "Atlantis", "Level": "Master"`, 1)
	w := env.do(http.MethodPost, "/v1/estimate", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[ErrorResponse](t, w)
	if resp.Kind != estimate.KindInference {
		t.Errorf("expected kind inference, got %s", resp.Kind)
	}
	if !strings.Contains(resp.Message, "unknown category") || !strings.Contains(resp.Message, "Atlantis") {
		t.Errorf("expected underlying model message, got %q", resp.Message)
	}
}

func TestHandleEstimate_Categorical(t *testing.T) {
	env := newTestEnv(t, categoricalArtifact(), feature.StudyCostCategorical())

	body := strings.Replace(studyInput, `"Insurance_USD": 700`, `"Insurance_USD": 700, "Country": "USA", "Level": "Master"`, 1)
	w := env.do(http.MethodPost, "/v1/estimate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decode[EstimateResponse](t, w); resp.Estimate != 33160+5000+1000 {
		t.Errorf("expected 39160, got %v", resp.Estimate)
	}

	// Level options are part of the JSON Schema.
	body = strings.Replace(body, `"Master"`, `"Diploma"`, 1)
	if w := env.do(http.MethodPost, "/v1/estimate", body); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", w.Code)
	}
}

func TestHandleSessions(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	w := env.do(http.MethodPost, "/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	id := decode[SessionResponse](t, w).ID

	// Nothing stored yet
	if w := env.do(http.MethodGet, "/v1/sessions/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty session, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/v1/sessions/"+id+"/charts", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for empty session charts, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/v1/sessions/"+id+"/estimate", studyInput)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decode[EstimateResponse](t, w); resp.SessionID != id {
		t.Errorf("expected session id %s, got %s", id, resp.SessionID)
	}

	// A failed submission leaves the stored pair untouched.
	failing := strings.Replace(studyInput, `"Rent_USD": 800`, `"Rent_USD": null`, 1)
	if w := env.do(http.MethodPost, "/v1/sessions/"+id+"/estimate", failing); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/v1/sessions/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	snap := decode[session.Snapshot](t, w)
	if snap.Estimate != 33160 || snap.Formatted != "$33,160.00" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if v, ok := snap.Record.Get("Rent_USD"); !ok || v.Number != 800 {
		t.Errorf("expected stored Rent_USD 800, got %+v", v)
	}

	w = env.do(http.MethodGet, "/v1/sessions/"+id+"/charts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	chartsResp := decode[ChartsResponse](t, w)
	if len(chartsResp.Charts) == 0 || chartsResp.Charts[0].Title != "Input Feature Values" {
		t.Errorf("unexpected charts: %+v", chartsResp.Charts)
	}

	if w := env.do(http.MethodDelete, "/v1/sessions/"+id, ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/v1/sessions/"+id, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestHandleSessions_InvalidID(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	if w := env.do(http.MethodGet, "/v1/sessions/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleEDA(t *testing.T) {
	t.Run("no dataset", func(t *testing.T) {
		env := newTestEnv(t, linearArtifact(), feature.StudyCost())
		if w := env.do(http.MethodGet, "/v1/eda/summary", ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
		if w := env.do(http.MethodGet, "/v1/eda/charts", ""); w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", w.Code)
		}
	})

	t.Run("with dataset", func(t *testing.T) {
		env := newTestEnv(t, linearArtifact(), feature.StudyCost(), withDataset(t))

		w := env.do(http.MethodGet, "/v1/eda/summary", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"source":"test.csv"`) {
			t.Errorf("expected source in summary, got %s", w.Body.String())
		}

		resp := decode[ChartsResponse](t, env.do(http.MethodGet, "/v1/eda/charts", ""))
		if len(resp.Charts) != 4 {
			t.Fatalf("expected 4 charts, got %d", len(resp.Charts))
		}
		if resp.Charts[0].Labels[0] != "USA" {
			t.Errorf("expected most expensive country first, got %v", resp.Charts[0].Labels)
		}
	})
}

func TestHandleUI(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	w := env.do(http.MethodGet, "/ui", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<label for="Living_Cost_Index">Living Cost Index</label>`) {
		t.Error("expected labelled form field")
	}
	if !strings.Contains(body, `min="27" max="122"`) {
		t.Error("expected range attributes")
	}

	w = env.do(http.MethodGet, "/ui?view=visualize", "")
	if !strings.Contains(w.Body.String(), "No prediction yet") {
		t.Error("expected empty visualize view")
	}

	w = env.do(http.MethodGet, "/ui?view=eda", "")
	if !strings.Contains(w.Body.String(), "No dataset is configured") {
		t.Error("expected missing dataset notice")
	}
}

func submitForm(env *testEnv, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ui", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

func studyForm() url.Values {
	return url.Values{
		"Living_Cost_Index": {"70"},
		"Tuition_USD":       {"20000"},
		"Exchange_Rate":     {"1"},
		"Duration_Years":    {"2"},
		"Rent_USD":          {"800"},
		"Visa_Fee_USD":      {"160"},
		"Insurance_USD":     {"700"},
	}
}

func TestHandleUISubmit(t *testing.T) {
	env := newTestEnv(t, linearArtifact(), feature.StudyCost())

	w := submitForm(env, studyForm())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Estimated Total Annual Cost: $33,160.00") {
		t.Error("expected formatted estimate in page")
	}
	if !strings.Contains(w.Body.String(), estimate.NoImportanceNote) {
		t.Error("expected importance note in page")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	sess, err := session.Open(env.store, cookies[0].Value)
	if err != nil {
		t.Fatalf("cookie should carry a valid session id: %v", err)
	}
	snap, err := sess.Last(context.Background())
	if err != nil {
		t.Fatalf("expected stored snapshot: %v", err)
	}
	if snap.Estimate != 33160 {
		t.Errorf("expected stored estimate 33160, got %v", snap.Estimate)
	}

	// Visualize reads the stored pair back through the cookie.
	req := httptest.NewRequest(http.MethodGet, "/ui?view=visualize", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "Input Feature Values") {
		t.Error("expected input chart in visualize view")
	}

	// A failed submission keeps the previous estimate.
	form := studyForm()
	form.Set("Duration_Years", "")
	w = submitForm(env, form, cookies[0])
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "please fill in all fields") {
		t.Error("expected validation message in page")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing session should be reused")
	}

	snap, err = sess.Last(context.Background())
	if err != nil || snap.Estimate != 33160 {
		t.Errorf("expected snapshot to be untouched, got %+v, %v", snap, err)
	}
}
