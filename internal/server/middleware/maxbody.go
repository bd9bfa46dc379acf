package middleware

import (
	"net/http"
)

// MaxBodySize is the default request body limit. Estimate forms are a few
// hundred bytes, so 64 KiB leaves plenty of room.
const MaxBodySize = 64 << 10

// MaxBody limits request bodies of POST, PUT and PATCH requests.
// If maxSize is 0, MaxBodySize is used.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
