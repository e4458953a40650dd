package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/zkroulette/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8000",
		Env:               "test",
		LogLevel:          "error",
		CommitmentTTL:     600 * time.Second,
		SweepInterval:     300 * time.Second,
		AttestationMaxAge: 600 * time.Second,
		MinBetAmount:      0.001,
		MaxBetAmount:      10.0,
		MaxBetsPerHour:    50,
		SessionTTL:        24 * time.Hour,
		SuspendScore:      0.8,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(testConfig(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chain_rpc"`)

	w = doJSON(t, srv, "GET", "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Readiness flips only once Run has started.
	w = doJSON(t, srv, "GET", "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	srv.ready.Store(true)
	w = doJSON(t, srv, "GET", "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "zkroulette_")
}

func TestBetFlowThroughRouter(t *testing.T) {
	srv := newTestServer(t)

	number := 17
	w := doJSON(t, srv, "POST", "/v1/bet/prepare", map[string]any{
		"playerAddress": "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1",
		"number":        number,
		"amount":        0.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var prepared struct {
		ZKProof json.RawMessage `json:"zkProof"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prepared))
	require.NotEmpty(t, prepared.ZKProof)

	// The attestation round-trips through the verify endpoint.
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/attestation/verify", bytes.NewReader(prepared.ZKProof))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"valid":true`)

	w = doJSON(t, srv, "POST", "/v1/bet/settle", map[string]any{
		"playerAddress": "0x742d35cc6634c0532925a3b844bc9e7595f0beb1",
		"number":        number,
		"betAmount":     0.5,
		"won":           false,
		"payout":        0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/v1/stats/number/17", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"observations":1`)

	w = doJSON(t, srv, "GET", "/v1/players/0x742d35cc6634c0532925a3b844bc9e7595f0beb1/risk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"riskLevel":"LOW"`)

	w = doJSON(t, srv, "GET", "/v1/commitments/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalCommitments":1`)
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/health/live", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
