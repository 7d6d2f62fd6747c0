package api

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerAppliesTimeouts(t *testing.T) {
	server := NewServer(":0", http.NotFoundHandler())
	assert.Equal(t, readHeaderTimeout, server.ReadHeaderTimeout)
	assert.Equal(t, writeTimeout, server.WriteTimeout)
}

func TestServeStopsOnCancel(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	server := NewServer("127.0.0.1:0", http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, server, logg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
