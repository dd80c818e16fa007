// HTTP middleware for the agent server.

package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/interactionlog"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/ratelimit"
)

// withMiddleware wraps the mux with the standard chain: security headers,
// CORS, rate limiting, request logging. Applied outermost first.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	h := s.requestLogging(handler)
	if s.limiter != nil {
		h = ratelimit.Middleware(s.limiter)(h)
	}
	h = s.cors(h)
	h = securityHeaders(h)
	return h
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// cors adds cross-origin headers and answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	allowed := s.cfg.CORS.AllowedOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		value := allowOriginValue(allowed, origin)
		if value != "" {
			w.Header().Set("Access-Control-Allow-Origin", value)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-PAYMENT")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func allowOriginValue(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if strings.EqualFold(a, origin) {
			return origin
		}
	}
	return ""
}

// statusCapture wraps http.ResponseWriter to record the status code.
type statusCapture struct {
	http.ResponseWriter
	status int
}

func (c *statusCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

// entryAnnotations carries handler-supplied interaction fields from the
// handler back to the logging middleware.
type entryAnnotations struct {
	mu     sync.Mutex
	fields map[string]any
}

type annotationsKey struct{}

// Annotate attaches a field to the interaction entry recorded for the
// current request. No-op outside the logging middleware (e.g. in tests
// that call a handler directly).
func Annotate(ctx context.Context, key string, value any) {
	ann, ok := ctx.Value(annotationsKey{}).(*entryAnnotations)
	if !ok {
		return
	}
	ann.mu.Lock()
	ann.fields[key] = value
	ann.mu.Unlock()
}

// interactionKind maps a request path to the interaction type recorded
// in the log.
func interactionKind(path string) string {
	switch {
	case path == "/mcp":
		return "mcp"
	case strings.HasPrefix(path, "/a2a/"):
		return "a2a"
	case path == "/api/premium":
		return "premium"
	default:
		return "http"
	}
}

// requestLogging logs each request with a trace ID and records it in the
// interaction log.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		capture := &statusCapture{ResponseWriter: w, status: http.StatusOK}
		ann := &entryAnnotations{fields: make(map[string]any)}
		ctx := context.WithValue(r.Context(), annotationsKey{}, ann)

		next.ServeHTTP(capture, r.WithContext(ctx))

		duration := time.Since(start)
		entry := map[string]any{
			interactionlog.TypeField: interactionKind(r.URL.Path),
			"method":                 r.Method,
			"path":                   r.URL.Path,
			"status":                 capture.status,
			"durationMs":             duration.Milliseconds(),
			"traceId":                traceID,
		}
		ann.mu.Lock()
		for k, v := range ann.fields {
			entry[k] = v
		}
		ann.mu.Unlock()
		s.interactions.Add(entry)

		s.log.Info("request",
			"traceId", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", capture.status,
			"duration", duration,
			"remote", ratelimit.ClientIP(r))
	})
}
