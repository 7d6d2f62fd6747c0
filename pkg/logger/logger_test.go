package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithShoppingListID(ctx, "list-1")
	log.Error(ctx, "finalize failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"shopping_list_id":"list-1"`)
	assert.Contains(t, out, `"stack"`)
	assert.Contains(t, out, `"service":"test"`)
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	log.Warn(context.Background(), "no stack")
	assert.NotContains(t, buf.String(), `"stack"`)

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf, WarnStack: true})
	log.Warn(context.Background(), "with stack")
	assert.Contains(t, buf.String(), `"stack"`)
}

func TestJSONOnlyIgnoresConsoleFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")

	buf := &bytes.Buffer{}
	New(Options{ServiceName: "test", Output: buf, JSONOnly: true}).Info(context.Background(), "structured")
	assert.Contains(t, buf.String(), `"message":"structured"`)

	buf.Reset()
	New(Options{ServiceName: "test", Output: buf}).Info(context.Background(), "pretty")
	assert.Contains(t, buf.String(), "pretty")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: buf})
	log.Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}

func TestFieldsAccumulateAcrossCalls(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	ctx := log.WithUserID(context.Background(), "u-1")
	ctx = log.WithFields(ctx, map[string]any{"item_id": "i-9", "attempt": 2})
	log.Info(ctx, "stock.added")

	out := buf.String()
	assert.Contains(t, out, `"user_id":"u-1"`)
	assert.Contains(t, out, `"item_id":"i-9"`)
	assert.Contains(t, out, `"attempt":2`)
}

func TestBareContextUsesBaseLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "bare", Output: buf})
	log.Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), `"service":"bare"`)

	assert.NotPanics(t, func() { Nop().Error(context.Background(), "dropped", nil) })
}
