package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/smartlist-backend/api/responses"
	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/smartlist-backend/pkg/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	replayedHeader         = "Idempotent-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	maxIdempotencyKeyBytes = 128
)

type recordState string

const (
	statePending recordState = "pending"
	stateDone    recordState = "done"
)

// idempotencyRecord is stored under the key twice: once as a pending
// reservation before the handler runs, then overwritten with the response.
type idempotencyRecord struct {
	State       recordState `json:"state"`
	RequestHash string      `json:"request_hash"`
	Token       string      `json:"token,omitempty"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Body        []byte      `json:"body,omitempty"`
}

// Idempotency makes a mutating route safe to retry. The first request with a
// key reserves it, runs, and stores its response; a retry with the same body
// gets that response back, a retry while the first is still running gets 409,
// and a reused key with a different body gets 409. Responses >= 500 release
// the reservation so the client can try again.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case clientKey == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case len(clientKey) > maxIdempotencyKeyBytes:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			guard := idempotencyGuard{
				store: store,
				key:   store.IdempotencyKey(requestScope(r), clientKey),
				hash:  hashBody(body),
				ttl:   ttl,
			}
			reservation, existing, err := guard.reserve(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if existing != nil {
				guard.replay(ctx, logg, w, *existing)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if err := guard.settle(context.WithoutCancel(ctx), reservation, capture); err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	key   string
	hash  string
	ttl   time.Duration
}

// reserve claims the key. When another request already holds it, the stored
// record is returned instead. A reservation that expires between the claim
// and the read is claimed again once.
func (g idempotencyGuard) reserve(ctx context.Context) (string, *idempotencyRecord, error) {
	pending, err := json.Marshal(idempotencyRecord{State: statePending, RequestHash: g.hash, Token: uuid.NewString()})
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode reservation")
	}
	for range 2 {
		claimed, err := g.store.SetNX(ctx, g.key, string(pending), g.ttl)
		if err != nil {
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
		}
		if claimed {
			return string(pending), nil, nil
		}
		stored, err := g.store.Get(ctx, g.key)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
		}
		var record idempotencyRecord
		if err := json.Unmarshal([]byte(stored), &record); err != nil {
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
		}
		return "", &record, nil
	}
	return "", nil, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key is contended, retry")
}

func (g idempotencyGuard) replay(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, record idempotencyRecord) {
	switch {
	case record.RequestHash != g.hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.State != stateDone:
		responses.WriteError(ctx, logg, w, pkgerrors.Rule(pkgerrors.CodeIdempotency, pkgerrors.ReasonRequestInProgress, "a request with this idempotency key is still in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

// settle stores the captured response over the reservation, or drops the
// reservation when the handler failed with a server error.
func (g idempotencyGuard) settle(ctx context.Context, reservation string, capture *responseCapture) error {
	status := capture.statusOrOK()
	if status >= http.StatusInternalServerError {
		_, err := g.store.CompareAndDelete(ctx, g.key, reservation)
		return err
	}
	done, err := json.Marshal(idempotencyRecord{
		State:       stateDone,
		RequestHash: g.hash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
	if err != nil {
		return err
	}
	return g.store.Set(ctx, g.key, string(done), g.ttl)
}

// requestScope keeps keys from colliding across users and routes.
func requestScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()).String(), r.Method, r.URL.Path}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
