package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveRefresh("ok", 20*time.Millisecond)
	m.ObserveRefresh("error", time.Millisecond)
	m.SetCircuitBreakerState("samples", 2)

	h := m.WrapHandler("/api/charts/steps", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/charts/steps", nil))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	text := string(body)

	for _, want := range []string{
		`chart_refresh_total{outcome="ok"} 1`,
		`chart_refresh_total{outcome="error"} 1`,
		`cb_state{target="samples"} 2`,
		`http_requests_total{route="/api/charts/steps",status="418"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRefresh("ok", time.Second)
	m.SetCircuitBreakerState("samples", 1)

	called := false
	h := m.WrapHandler("/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called {
		t.Error("nil metrics should pass requests through")
	}
}
