package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/zkroulette/internal/chain"
	"github.com/mbd888/zkroulette/internal/commitment"
	"github.com/mbd888/zkroulette/internal/risk"
	"github.com/mbd888/zkroulette/internal/session"
)

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	assert.True(t, healthy)
	assert.Empty(t, statuses)
}

func TestRegistryAggregation(t *testing.T) {
	r := NewRegistry()
	r.Register("up", func(_ context.Context) Status {
		return Status{Name: "up", Healthy: true}
	})
	r.Register("down", func(_ context.Context) Status {
		return Status{Name: "down", Healthy: false, Detail: "connection refused"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	assert.False(t, healthy)
	require.Len(t, statuses, 2)
	assert.Equal(t, "connection refused", statuses[1].Detail)
}

func TestDomainCheckers(t *testing.T) {
	store := commitment.NewStore()
	_, err := store.Create("0xaaaa", 17)
	require.NoError(t, err)

	model := risk.NewModel()
	require.NoError(t, model.RecordOutcome(17))

	builder, err := chain.NewBuilder("", "")
	require.NoError(t, err)

	r := NewRegistry()
	r.Register("commitments", CommitmentStore(store))
	r.Register("risk_model", RiskModel(model))
	r.Register("sessions", Sessions(session.NewManager(time.Hour)))
	r.Register("chain_rpc", ChainRPC(builder))

	healthy, statuses := r.CheckAll(context.Background())
	assert.True(t, healthy)
	require.Len(t, statuses, 4)
	assert.Equal(t, "1 active", statuses[0].Detail)
	assert.Equal(t, "offline mode", statuses[3].Detail)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := NewRegistry()
	r.Register("up", func(_ context.Context) Status {
		return Status{Name: "up", Healthy: true}
	})

	router := gin.New()
	router.GET("/health", r.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	r.Register("down", func(_ context.Context) Status {
		return Status{Name: "down", Healthy: false}
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
