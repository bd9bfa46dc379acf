package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
)

// AuthConfig holds Basic Auth credentials.
// Safe for concurrent reads and updates, so SIGHUP can rotate credentials.
type AuthConfig struct {
	mu       sync.RWMutex
	enabled  bool
	user     string
	password string
}

func NewAuthConfig(enabled bool, user, password string) *AuthConfig {
	return &AuthConfig{enabled: enabled, user: user, password: password}
}

// Update replaces the credentials.
func (c *AuthConfig) Update(enabled bool, user, password string) {
	c.mu.Lock()
	c.enabled = enabled
	c.user = user
	c.password = password
	c.mu.Unlock()
}

// Enabled reports whether Basic Auth is active.
func (c *AuthConfig) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

func (c *AuthConfig) check(r *http.Request) bool {
	c.mu.RLock()
	wantUser, wantPass := c.user, c.password
	c.mu.RUnlock()

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userMatch && passMatch
}

// Auth creates a Basic Auth middleware.
// Paths ending with "*" are treated as prefixes (e.g., "/ui/*" matches "/ui/static/app.css").
func Auth(config *AuthConfig, excludePaths ...string) Middleware {
	exactExcludes := make(map[string]bool)
	var prefixExcludes []string

	for _, path := range excludePaths {
		if strings.HasSuffix(path, "*") {
			prefixExcludes = append(prefixExcludes, strings.TrimSuffix(path, "*"))
		} else {
			exactExcludes[path] = true
		}
	}

	excluded := func(path string) bool {
		if exactExcludes[path] {
			return true
		}
		for _, prefix := range prefixExcludes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() || excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !config.check(r) {
				w.Header().Set("WWW-Authenticate", `Basic realm="studycost"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DebugAuth protects debug and profiling endpoints.
// A non-empty token requires "Authorization: Bearer <token>". Otherwise the
// main Basic Auth credentials are used when enabled, and everything is
// refused when they are not.
func DebugAuth(token string, fallback *AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				if !checkBearerToken(r, token) {
					http.Error(w, "Forbidden - Debug authentication required", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if fallback == nil || !fallback.Enabled() {
				http.Error(w, "Forbidden - Debug authentication required", http.StatusForbidden)
				return
			}

			if !fallback.check(r) {
				w.Header().Set("WWW-Authenticate", `Basic realm="studycost-debug"`)
				http.Error(w, "Unauthorized - Debug endpoint requires authentication", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func checkBearerToken(r *http.Request, expected string) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
