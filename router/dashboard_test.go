package router

import (
	"bytes"
	"log"
	"os"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecommerce-dashboard/controllers/dashboard"
	"ecommerce-dashboard/controllers/health"
	"ecommerce-dashboard/pkg/config"
	"ecommerce-dashboard/pkg/dataset"
	"ecommerce-dashboard/services/dashboard_service"
	"ecommerce-dashboard/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sampleCSV = "order_id,order_item_id,product_id,seller_id,customer_id,customer_state,order_approved_at,price,review_id,review_score\n" +
	"O1,1,P1,S1,C1,SP,2024-01-01 10:00:00,10.00,R1,5\n" +
	"O2,1,P2,S1,C2,RJ,2024-01-02 09:00:00,20.00,no_review,no_review\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Log.SlowTime = "500ms"
	cfg.Dashboard.SessionSecret = "router-test"
	cfg.Security.AllowedOrigins = []string{"http://localhost:3000", "*.example.com"}
	cfg.Security.EnableRateLimit = true
	cfg.Security.RateLimit = 1000
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, requestLog *bytes.Buffer) *gin.Engine {
	t.Helper()

	lines, stats, err := dataset.Load(strings.NewReader(sampleCSV), dataset.Options{})
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	board := dashboard_service.NewDashboard(lines)
	ctl := Controllers{
		Dashboard: dashboard.NewDashboardController(board, views.Presenter{Title: "Router Test", Locale: "en"}, ""),
		Health:    health.NewHealthController("ecommerce-dashboard", "test", board, stats),
	}
	if requestLog == nil {
		return NewEngine(cfg, ctl, nil)
	}
	return NewEngine(cfg, ctl, requestLog)
}

func get(r http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesRegistered(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)

	for _, target := range []string{
		"/",
		"/api/dashboard",
		"/api/dashboard/daily-orders",
		"/api/dashboard/products/reviews",
		"/api/dashboard/products/sales",
		"/api/dashboard/customers/states",
		"/api/dashboard/sellers/reviews",
		"/api/dashboard/customers/rfm",
		"/charts/daily-orders",
		"/health",
		"/metrics",
		"/api/monitor/live",
		"/api/monitor/ready",
		"/api/monitor/system",
	} {
		if w := get(r, target, nil); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", target, w.Code)
		}
	}

	if w := get(r, "/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)

	w := get(r, "/health", nil)
	if _, err := uuid.Parse(w.Header().Get("X-Request-ID")); err != nil {
		t.Fatalf("expected generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}

	id := uuid.NewString()
	w = get(r, "/health", map[string]string{"X-Request-ID": id})
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Fatalf("request id = %q, want %q", got, id)
	}
}

func TestCorsHeaders(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)

	w := get(r, "/api/dashboard", map[string]string{"Origin": "http://localhost:3000"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("max age = %q", got)
	}

	w = get(r, "/api/dashboard", map[string]string{"Origin": "https://app.example.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("wildcard origin = %q", got)
	}

	w = get(r, "/api/dashboard", map[string]string{"Origin": "https://evilexample.com"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = 2
	r := newTestEngine(t, cfg, nil)

	for i := 0; i < 2; i++ {
		if w := get(r, "/health", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	w := get(r, "/health", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), "20005") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = 1
	cfg.Security.EnableRateLimit = false
	r := newTestEngine(t, cfg, nil)

	for i := 0; i < 3; i++ {
		if w := get(r, "/health", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
}

func TestMetricsExposeDashboardBuilds(t *testing.T) {
	r := newTestEngine(t, testConfig(), nil)

	get(r, "/api/dashboard", nil)
	get(r, "/charts/rfm-monetary", nil)

	body := get(r, "/metrics", nil).Body.String()
	for _, metric := range []string{
		"dashboard_builds_total",
		"dashboard_build_duration_seconds",
		`dashboard_chart_renders_total{chart="rfm-monetary"}`,
		`http_requests_total{endpoint="/api/dashboard"`,
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics missing %s", metric)
		}
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	r := newTestEngine(t, testConfig(), &buf)

	get(r, "/api/dashboard/products/sales?limit=1", nil)
	line := buf.String()
	if !strings.Contains(line, "GET /api/dashboard/products/sales 200") || !strings.Contains(line, `"limit=1"`) {
		t.Fatalf("unexpected request log %q", line)
	}
}

func TestEmptySessionSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Dashboard.SessionSecret = ""
	r := newTestEngine(t, cfg, nil)

	w := get(r, "/?start=2024-01-01&end=2024-01-02", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("session cookie should still be issued with a generated secret")
	}
}

func TestSlowRequestLogFollowsLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	tests := []struct {
		level string
		want  bool
	}{
		{"warn", true},
		{"error", false},
	}
	for _, tt := range tests {
		buf.Reset()
		cfg := testConfig()
		cfg.Log.SlowTime = "1ns"
		cfg.Log.Level = tt.level
		r := newTestEngine(t, cfg, nil)

		get(r, "/api/dashboard", nil)
		if got := strings.Contains(buf.String(), "[SLOW REQUEST]"); got != tt.want {
			t.Errorf("level %s: slow log written = %v, want %v", tt.level, got, tt.want)
		}
	}
}
