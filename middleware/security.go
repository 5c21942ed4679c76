package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/utils"

	"go.uber.org/zap"
)

// generateRequestID creates a short random request id
func generateRequestID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

// SecurityHeadersMiddleware sets the browser hardening headers. CORS is handled by the router.
func SecurityHeadersMiddleware(production, hsts bool) func(http.Handler) http.Handler {
	const csp = "default-src 'none'; frame-ancestors 'none'; base-uri 'self';"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			if production {
				w.Header().Set("Content-Security-Policy", csp)
			}
			if hsts {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseRecorder wraps ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestID(r *http.Request) string {
	rid, _ := r.Context().Value(utils.RequestIDKey).(string)
	return rid
}

// RequestLogMiddleware logs every request with its status and duration
func RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", rec.Header().Get("X-Request-ID")),
		)
	})
}

// RequestIDMiddleware injects a request id into context and response headers
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = generateRequestID()
		}
		w.Header().Set("X-Request-ID", rid)
		ctx := context.WithValue(r.Context(), utils.RequestIDKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TimeoutMiddleware cancels the request context after timeout
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoveryMiddleware recovers from panics, logs the stack and returns a generic 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				rid := requestID(r)
				zap.L().Error("panic recovered",
					zap.String("request_id", rid),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
					Success: false,
					Message: "Internal server error",
					Code:    "internal_error",
					Data:    map[string]interface{}{"request_id": rid},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ActivityTracker counts slow responses per client IP and throttles IPs that
// keep producing them.
type ActivityTracker struct {
	slow      time.Duration
	threshold int
	trusted   []string

	mu         sync.Mutex
	suspicious map[string]int
}

func NewActivityTracker(slowMs, threshold int, trusted []string) *ActivityTracker {
	if slowMs <= 0 {
		slowMs = 800
	}
	if threshold <= 0 {
		threshold = 10
	}
	t := &ActivityTracker{
		slow:       time.Duration(slowMs) * time.Millisecond,
		threshold:  threshold,
		trusted:    trusted,
		suspicious: make(map[string]int),
	}
	go t.resetLoop(10 * time.Minute)
	return t
}

// resetLoop forgets all counts every interval
func (t *ActivityTracker) resetLoop(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		t.mu.Lock()
		t.suspicious = make(map[string]int)
		t.mu.Unlock()
	}
}

// MetricsMiddleware records request counts and latency and flags slow responses
func (t *ActivityTracker) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		utils.ObserveHTTPRequest(r.Method, rec.status, elapsed)

		if elapsed > t.slow {
			ip := clientIPGeneric(r, t.trusted)
			t.mu.Lock()
			t.suspicious[ip]++
			t.mu.Unlock()
		}
	})
}

// SuspiciousActivityMiddleware answers 429 to IPs with repeated slow responses
func (t *ActivityTracker) SuspiciousActivityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, t.trusted)
		t.mu.Lock()
		count := t.suspicious[ip]
		t.mu.Unlock()
		if count >= t.threshold {
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many requests", Code: "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
