package monitoring

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestCountersExported(t *testing.T) {
	m := New()
	m.RPCTotal.WithLabelValues("/clinic.v1.Patients/GetAll", "OK").Inc()
	m.RateLimited.WithLabelValues("/clinic.v1.Auth/Login").Add(2)

	out := scrape(t, m)
	for _, want := range []string{
		`clinic_rpc_requests_total{code="OK",method="/clinic.v1.Patients/GetAll"} 1`,
		`clinic_rate_limited_total{method="/clinic.v1.Auth/Login"} 2`,
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRegisterPool(t *testing.T) {
	m := New()
	calls := 0
	m.RegisterPool(func() PoolStats {
		calls++
		return PoolStats{TotalConns: 4, IdleConns: 3, AcquiredConns: 1, MaxConns: 10}
	})

	out := scrape(t, m)
	if !strings.Contains(out, "clinic_db_pool_max_conns 10") || !strings.Contains(out, "clinic_db_pool_acquired_conns 1") {
		t.Errorf("pool gauges missing:\n%s", out)
	}
	if calls == 0 {
		t.Error("stats should be read at scrape time")
	}
}

func TestCaptureWithoutClient(t *testing.T) {
	// no DSN configured: both calls must be no-ops
	if err := InitSentry("", "test", "dev"); err != nil {
		t.Fatalf("init: %v", err)
	}
	CaptureError(errors.New("boom"), map[string]any{"method": "x"})
	CapturePanic("boom", nil)
}
