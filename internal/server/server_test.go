package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/data-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, port int) (*Server, *syncBuffer) {
	t.Helper()

	cfg := &config.Config{
		Primary:       config.Primary{Env: "test"},
		Observability: config.DefaultObservabilityConfig(),
	}
	cfg.Server.Port = port
	cfg.Server.BodyLimit = "100KiB"
	require.NoError(t, cfg.Validate())

	logs := &syncBuffer{}
	log := zerolog.New(logs)
	return New(cfg, &log, nil), logs
}

func TestServer_ListenServeShutdown(t *testing.T) {
	s, _ := newTestServer(t, 0)
	s.SetupHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	require.NoError(t, s.Listen())
	require.NotNil(t, s.Addr())

	served := make(chan error, 1)
	go func() { served <- s.Serve() }()

	resp, err := http.Get(fmt.Sprintf("http://%s/", s.Addr().String()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-served:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServer_ListenLogsBoundPort(t *testing.T) {
	s, logs := newTestServer(t, 0)
	s.SetupHTTPServer(http.NotFoundHandler())

	require.NoError(t, s.Listen())
	t.Cleanup(func() { _ = s.listener.Close() })

	addr, ok := s.Addr().(*net.TCPAddr)
	require.True(t, ok)
	require.NotZero(t, addr.Port)

	out := logs.String()
	assert.Contains(t, out, fmt.Sprintf(`"message":"server is running on port %d"`, addr.Port))
	assert.Contains(t, out, fmt.Sprintf(`"port":%d`, addr.Port))
	assert.Contains(t, out, `"env":"test"`)
}

func TestServer_RequiresSetup(t *testing.T) {
	s, _ := newTestServer(t, 0)

	assert.Error(t, s.Listen())
	assert.Error(t, s.Start())
	assert.Error(t, s.Serve())
	assert.Nil(t, s.Addr())
	assert.NoError(t, s.Shutdown(context.Background()))
}
