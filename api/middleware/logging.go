package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/logger"
)

type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (a *accessRecorder) WriteHeader(code int) {
	if a.status == 0 {
		a.status = code
	}
	a.ResponseWriter.WriteHeader(code)
}

func (a *accessRecorder) Write(b []byte) (int, error) {
	if a.status == 0 {
		a.status = http.StatusOK
	}
	n, err := a.ResponseWriter.Write(b)
	a.bytes += n
	return n, err
}

// Logging writes one access line per request. Responses >= 500 are logged at
// error level, everything else at info.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"route":  r.URL.Path,
			})
			rec := &accessRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.status,
				"bytes":       rec.bytes,
				"duration_ms": time.Since(started).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				logg.Error(ctx, "http.access", nil)
				return
			}
			logg.Info(ctx, "http.access")
		})
	}
}
