package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue lê um contador do registry padrão; 0 quando a série ainda não existe.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func panicking(http.ResponseWriter, *http.Request) { panic("boom secreto") }

func TestRecovererHidesPanicInProduction(t *testing.T) {
	rr := httptest.NewRecorder()
	Recoverer(true)(http.HandlerFunc(panicking)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Erro interno do servidor")
	assert.NotContains(t, rr.Body.String(), "boom secreto")

	rr = httptest.NewRecorder()
	Recoverer(false)(http.HandlerFunc(panicking)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, rr.Body.String(), "boom secreto")
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/leads/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	labels := map[string]string{"method": http.MethodGet, "path": "/api/leads/{id}", "status": "204"}
	before := counterValue(t, "http_requests_total", labels)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads/abc", nil))

	assert.Equal(t, before+1, counterValue(t, "http_requests_total", labels))
}

func TestLeadAndRateLimitCounters(t *testing.T) {
	disp := map[string]string{"disposition": "new"}
	before := counterValue(t, "leads_submissions_total", disp)
	LeadMetrics{}.RecordLeadDisposition("new")
	assert.Equal(t, before+1, counterValue(t, "leads_submissions_total", disp))

	policy := map[string]string{"policy": "lead_creation"}
	before = counterValue(t, "rate_limit_rejections_total", policy)
	RecordRateLimitRejection("lead_creation")
	assert.Equal(t, before+1, counterValue(t, "rate_limit_rejections_total", policy))

	before = counterValue(t, "rate_limit_windows_swept_total", nil)
	RecordWindowsSwept(3)
	assert.Equal(t, before+3, counterValue(t, "rate_limit_windows_swept_total", nil))
}
