package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		config   *AuthConfig
		path     string
		user     string
		password string
		want     int
	}{
		{"disabled", NewAuthConfig(false, "", ""), "/v1/estimate", "", "", http.StatusOK},
		{"valid credentials", NewAuthConfig(true, "admin", "secret"), "/v1/estimate", "admin", "secret", http.StatusOK},
		{"wrong password", NewAuthConfig(true, "admin", "secret"), "/v1/estimate", "admin", "nope", http.StatusUnauthorized},
		{"wrong user", NewAuthConfig(true, "admin", "secret"), "/v1/estimate", "root", "secret", http.StatusUnauthorized},
		{"no credentials", NewAuthConfig(true, "admin", "secret"), "/v1/estimate", "", "", http.StatusUnauthorized},
		{"excluded path", NewAuthConfig(true, "admin", "secret"), "/health", "", "", http.StatusOK},
		{"excluded prefix", NewAuthConfig(true, "admin", "secret"), "/ui/static/app.css", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(tt.config, "/health", "/ui/static/*")(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.user != "" {
				req.SetBasicAuth(tt.user, tt.password)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestAuthUpdate(t *testing.T) {
	config := NewAuthConfig(false, "", "")
	handler := Auth(config)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/model", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before update, got %d", w.Code)
	}

	config.Update(true, "admin", "rotated")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/model", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after update, got %d", w.Code)
	}
}

func TestDebugAuth(t *testing.T) {
	basic := NewAuthConfig(true, "admin", "secret")
	disabled := NewAuthConfig(false, "", "")

	tests := []struct {
		name     string
		token    string
		fallback *AuthConfig
		setup    func(*http.Request)
		want     int
	}{
		{"valid bearer", "debug-token", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer debug-token") }, http.StatusOK},
		{"invalid bearer", "debug-token", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong") }, http.StatusForbidden},
		{"basic ignored when token set", "debug-token", basic, func(r *http.Request) { r.SetBasicAuth("admin", "secret") }, http.StatusForbidden},
		{"fallback basic", "", basic, func(r *http.Request) { r.SetBasicAuth("admin", "secret") }, http.StatusOK},
		{"fallback basic wrong", "", basic, func(r *http.Request) { r.SetBasicAuth("admin", "nope") }, http.StatusUnauthorized},
		{"fallback disabled", "", disabled, func(r *http.Request) {}, http.StatusForbidden},
		{"nothing configured", "", nil, func(r *http.Request) {}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := DebugAuth(tt.token, tt.fallback)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}
