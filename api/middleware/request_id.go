package middleware

import (
	"net/http"
	"regexp"

	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// inbound ids are echoed into logs and headers, so only short plain tokens are trusted
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID keeps a well-formed inbound X-Request-Id or mints a new one, then
// puts it on the response and the log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !requestIDPattern.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
