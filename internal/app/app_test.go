package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"taskBoard/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
		Logging: config.LoggingConfig{Development: true},
		Remote:  config.RemoteConfig{Type: config.RemoteMemory},
		Session: config.SessionConfig{Dir: t.TempDir()},
		Worker:  config.WorkerConfig{ResyncInterval: time.Minute},
	}
}

func TestInit_MemoryBackend(t *testing.T) {
	a, err := New(testConfig(t)).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	assert.NotNil(t, a.worker)
	assert.Equal(t, config.RemoteMemory, a.remote.Name())

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "none", body["session"])
}

func TestInit_GuestFlowThroughRouter(t *testing.T) {
	a, err := New(testConfig(t)).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest("POST", "/session/guest", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest("GET", "/board", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	a, err := New(testConfig(t)).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	req := httptest.NewRequest("OPTIONS", "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInit_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.Type = "ftp"

	_, err := New(cfg).Init(context.Background())
	assert.Error(t, err)
}
