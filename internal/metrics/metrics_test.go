package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/refine"
)

func TestCollector(t *testing.T) {
	c := New()

	c.Round(refine.PhaseCompile, false)
	c.Round(refine.PhaseCompile, true)
	c.Round(refine.PhaseCompile, true)
	c.Finished(refine.PhaseFSM, domain.OutcomeExhausted)
	c.ObserveSession(3*time.Second, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rounds.WithLabelValues("compile", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("fsm", "exhausted")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fsmgen_session_duration_seconds")
}
