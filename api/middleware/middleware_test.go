package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDKeepsWellFormedInboundID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "lb-1234.abc")
	resp := httptest.NewRecorder()

	RequestID(logger.Nop())(okHandler()).ServeHTTP(resp, req)
	assert.Equal(t, "lb-1234.abc", resp.Header().Get(requestIDHeader))
}

func TestRequestIDReplacesUnsafeInboundID(t *testing.T) {
	for _, inbound := range []string{"", "has space", strings.Repeat("a", 65), "line\nbreak"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, inbound)
		resp := httptest.NewRecorder()

		RequestID(nil)(okHandler()).ServeHTTP(resp, req)
		_, err := uuid.Parse(resp.Header().Get(requestIDHeader))
		require.NoError(t, err, "inbound %q", inbound)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	resp := httptest.NewRecorder()

	Recoverer(logger.Nop())(panicky).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, resp.Body.String(), "boom")
}

func TestRecovererReraisesAbort(t *testing.T) {
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Recoverer(nil)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORSPreflightAllowsIdempotencyKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/items", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	resp := httptest.NewRecorder()

	CORS([]string{"https://app.example"})(okHandler()).ServeHTTP(resp, req)
	assert.Equal(t, "https://app.example", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(resp.Header().Get("Access-Control-Allow-Headers")), "idempotency-key")
}

func TestLoggingRecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	})

	Logging(logg)(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/items", nil))

	line := buf.String()
	assert.Contains(t, line, `"level":"error"`)
	assert.Contains(t, line, `"status":502`)
	assert.Contains(t, line, `"bytes":8`)
	assert.Contains(t, line, `"route":"/api/v1/items"`)
}
