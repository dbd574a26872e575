package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/metrics"
	"github.com/polkiloo/flashrent/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/flashrent/internal/test"
)

func newEngine(collector *metrics.Collector) *gin.Engine {
	return Setup(Params{
		Facade:   testhelpers.FlashRentFacadeStub{},
		Verifier: testhelpers.KeyVerifierStub{Key: "secret"},
		Metrics:  collector,
		Logger:   zap.NewNop(),
	})
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(metrics.New())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		key    string
		status int
	}{
		{name: "health is public", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "metrics is public", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "api requires key", method: http.MethodGet, path: "/api/orders/FL1700000000000ABC123", status: http.StatusUnauthorized},
		{name: "order lookup", method: http.MethodGet, path: "/api/orders/FL1700000000000ABC123", key: "secret", status: http.StatusOK},
		{
			name:   "payment intake",
			method: http.MethodPost,
			path:   "/api/payments",
			body:   `{"from_address":"TBuyer","amount":30,"network_id":"mainnet","tx_id":"tx-1"}`,
			key:    "secret",
			status: http.StatusAccepted,
		},
		{name: "redelegate", method: http.MethodPost, path: "/api/orders/7/redelegate", key: "secret", status: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/user/orders", key: "secret", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			resp := httptest.NewRecorder()
			engine.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestSetupCompressesResponses(t *testing.T) {
	engine := newEngine(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/FL1700000000000ABC123", nil)
	req.Header.Set("X-API-Key", "secret")
	req.Header.Set("Accept-Encoding", "gzip")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if !strings.Contains(resp.Header().Get("Content-Encoding"), "gzip") {
		t.Fatalf("expected gzip response, headers: %v", resp.Header())
	}
}

func TestSetupWithoutMetrics(t *testing.T) {
	engine := newEngine(nil)
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without collector, got %d", resp.Code)
	}
}

var _ handlers.FlashRentFacade = (*testhelpers.FlashRentFacadeStub)(nil)
