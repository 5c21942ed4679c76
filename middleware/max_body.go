package middleware

import (
	"net/http"
	"strings"
)

// MaxBodyMiddleware caps the request body at max bytes (1 MiB when max <= 0).
// multipart/form-data uploads get uploadMax instead so prize artwork fits.
func MaxBodyMiddleware(max, uploadMax int64) func(http.Handler) http.Handler {
	if max <= 0 {
		max = 1 << 20
	}
	if uploadMax < max {
		uploadMax = max
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := max
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				limit = uploadMax
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
