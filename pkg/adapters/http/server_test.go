package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/internal/testutils"
	"github.com/aretw0/fsmgen/pkg/adapters/memory"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/fsm"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestValidateFSM(t *testing.T) {
	h := NewHandler()

	tests := []struct {
		name       string
		body       string
		status     int
		valid      bool
		accepted   bool
		message    string
		unreachable []string
	}{
		{
			name: "Accepted", body: testutils.Fence("json", testutils.ValidFSM),
			status: http.StatusOK, valid: true, accepted: true, message: fsm.PassedMessage, unreachable: []string{},
		},
		{
			name: "Acyclic", body: testutils.AcyclicFSM,
			status: http.StatusOK, valid: true, message: fsm.PassedMessage, unreachable: []string{},
		},
		{
			name:   "BadTarget",
			body:   `{"initialState":"A","states":[{"name":"A","transitions":[{"trigger":"go","target":"Z"}]}],"events":["go"]}`,
			status: http.StatusOK, message: "The target Z of state A is invalid.", unreachable: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/fsm/validate", tt.body)
			require.Equal(t, tt.status, w.Code)

			var resp AnalysisResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.accepted, resp.Accepted)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, tt.unreachable, resp.Unreachable)
		})
	}

	t.Run("Undecodable", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/fsm/validate", `{"states": []}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Violations)
	})
}

func TestGraphFSM(t *testing.T) {
	body := `{"initialState":"A","states":[{"name":"A","transitions":[]},{"name":"B","transitions":[]}],"events":[]}`
	w := do(t, NewHandler(), http.MethodPost, "/fsm/graph", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), "class B unreachable;")
}

func TestRepairFSM(t *testing.T) {
	w := do(t, NewHandler(), http.MethodPost, "/fsm/repair", "```json\n{\"states\":[{\"name\":\"A\"},],\"events\":[\"e\"]\n```")
	require.Equal(t, http.StatusOK, w.Code)

	var got fsm.Cardinality
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.False(t, got.ParseFailed)
	assert.Equal(t, 1, got.States)
	assert.Equal(t, 1, got.Events)
}

func TestScoreFindings(t *testing.T) {
	findings := []domain.Finding{
		{Check: "reentrancy-eth", Impact: domain.LevelHigh, Confidence: domain.LevelMedium, StartLine: 3, EndLine: 9},
		{Check: "reentrancy-eth", Impact: domain.LevelHigh, Confidence: domain.LevelMedium, StartLine: 5, EndLine: 12},
		{Check: "naming-convention", Impact: domain.LevelInformational, Confidence: domain.LevelHigh, StartLine: 1, EndLine: 1},
	}
	body, err := json.Marshal(findings)
	require.NoError(t, err)

	h := NewHandler()
	w := do(t, h, http.MethodPost, "/security/score", string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ScoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, 12, resp.Findings[0].EndLine)
	assert.InDelta(t, 6.0, resp.Report.RiskScore, 1e-9)
	assert.Equal(t, 1, resp.Report.High.Count)

	t.Run("Empty", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/security/score", "[]")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"findings":[]`)
	})

	t.Run("BadBody", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/security/score", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSARIF(t *testing.T) {
	body := `[{"check":"tx-origin","impact":"Medium","confidence":"Medium","start_line":4,"end_line":4,"description":"tx.origin used"}]`
	w := do(t, NewHandler(), http.MethodPost, "/security/sarif?uri=Auction.sol", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/sarif+json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Auction.sol")
	assert.Contains(t, w.Body.String(), "tx-origin")
}

func TestRecords(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), domain.Record{ID: "r1", Model: "gpt-4o"}))
	h := NewHandler(WithStore(store))

	w := do(t, h, http.MethodGet, "/records/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["r1"]`, w.Body.String())

	w = do(t, h, http.MethodGet, "/records/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model":"gpt-4o"`)

	w = do(t, h, http.MethodDelete, "/records/r1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/records/r1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecords_NotMountedWithoutStore(t *testing.T) {
	w := do(t, NewHandler(), http.MethodGet, "/records/r1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInfoAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fsmgen_refine_rounds_total 0\n"))
	})
	h := NewHandler(WithVersion("1.2.3"), WithMetrics(metrics))

	w := do(t, h, http.MethodGet, "/info", "")
	assert.JSONEq(t, `{"name":"fsmgen","version":"1.2.3"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Contains(t, w.Body.String(), "fsmgen_refine_rounds_total")

	w = do(t, h, http.MethodOptions, "/fsm/validate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
