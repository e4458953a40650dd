package roulette

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, betsPerHour int) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := newTestService(t, betsPerHour)
	h := NewHandler(svc)

	r := gin.New()
	h.RegisterRoutes(r.Group("/v1"))
	return r, svc
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPrepareBetEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	number := 17
	w := postJSON(r, "/v1/bet/prepare", PrepareRequest{
		PlayerAddress: testPlayer,
		Number:        &number,
		Amount:        0.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Nonce   string `json:"nonce"`
		ZKProof struct {
			Commitment  string   `json:"commitment"`
			Challenge   string   `json:"challenge"`
			Response    string   `json:"response"`
			MerkleProof []string `json:"merkleProof"`
			MerkleRoot  string   `json:"merkleRoot"`
		} `json:"zkProof"`
		TransactionData struct {
			To  string `json:"to"`
			Gas uint64 `json:"gas"`
		} `json:"transactionData"`
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Len(t, body.Nonce, 32)
	assert.Len(t, body.ZKProof.Commitment, 64)
	assert.Len(t, body.ZKProof.MerkleProof, 4)
	assert.Equal(t, uint64(300000), body.TransactionData.Gas)
	assert.NotEmpty(t, body.SessionID)
}

func TestPrepareBetEndpointErrors(t *testing.T) {
	r, svc := newTestRouter(t, 1)

	num := func(n int) *int { return &n }

	// Suspend a second player up front so the 403 case has history.
	suspended := "0x0000000000000000000000000000000000000bad"
	_, err := svc.SettleBet(context.Background(), suspended, 7, 1.0, true, 36.0)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  PrepareRequest
		code int
	}{
		{"missing fields", PrepareRequest{PlayerAddress: testPlayer}, http.StatusBadRequest},
		{"bad address", PrepareRequest{PlayerAddress: "not-an-address", Number: num(5), Amount: 0.5}, http.StatusBadRequest},
		{"number too high", PrepareRequest{PlayerAddress: testPlayer, Number: num(37), Amount: 0.5}, http.StatusBadRequest},
		{"amount too high", PrepareRequest{PlayerAddress: testPlayer, Number: num(5), Amount: 100}, http.StatusBadRequest},
		{"suspended", PrepareRequest{PlayerAddress: suspended, Number: num(5), Amount: 0.5}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(r, "/v1/bet/prepare", tc.req)
			assert.Equal(t, tc.code, w.Code)
		})
	}

	// Hourly budget of one: the second prepare is refused.
	w := postJSON(r, "/v1/bet/prepare", PrepareRequest{PlayerAddress: testPlayer, Number: num(5), Amount: 0.5})
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(r, "/v1/bet/prepare", PrepareRequest{PlayerAddress: testPlayer, Number: num(5), Amount: 0.5})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSettleBetEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, 50)

	number := 7
	w := postJSON(r, "/v1/bet/settle", SettleRequest{
		PlayerAddress: testPlayer,
		Number:        &number,
		BetAmount:     1.0,
		Won:           true,
		Payout:        36.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string `json:"status"`
		Profile struct {
			TotalBets int     `json:"totalBets"`
			RiskScore float64 `json:"riskScore"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "settled", body.Status)
	assert.Equal(t, 1, body.Profile.TotalBets)
	assert.InDelta(t, 2.0, body.Profile.RiskScore, 1e-9)

	bad := 99
	w = postJSON(r, "/v1/bet/settle", SettleRequest{
		PlayerAddress: testPlayer,
		Number:        &bad,
		BetAmount:     1.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyAttestationEndpoint(t *testing.T) {
	r, svc := newTestRouter(t, 50)

	result, err := svc.PrepareBet(context.Background(), testPlayer, 17, 0.5)
	require.NoError(t, err)

	w := postJSON(r, "/v1/attestation/verify", result.Attestation)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	// A field stripped out flips the verdict, still a 200.
	stripped := *result.Attestation
	stripped.Response = ""
	w = postJSON(r, "/v1/attestation/verify", &stripped)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":false}`, w.Body.String())
}

func TestCommitmentStatsEndpoint(t *testing.T) {
	r, svc := newTestRouter(t, 50)

	_, err := svc.PrepareBet(context.Background(), testPlayer, 17, 0.5)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/commitments/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalCommitments int `json:"totalCommitments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalCommitments)
}
