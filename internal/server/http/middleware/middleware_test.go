package middleware

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	testhelpers "github.com/polkiloo/flashrent/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAPIKeyRequired(t *testing.T) {
	newRouter := func(verifier testhelpers.KeyVerifierStub) *gin.Engine {
		router := gin.New()
		router.Use(APIKeyRequired(verifier))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	tests := []struct {
		name     string
		verifier testhelpers.KeyVerifierStub
		headers  map[string]string
		status   int
	}{
		{name: "missing key", verifier: testhelpers.KeyVerifierStub{Key: "secret"}, status: http.StatusUnauthorized},
		{name: "wrong key", verifier: testhelpers.KeyVerifierStub{Key: "secret"}, headers: map[string]string{APIKeyHeader: "nope"}, status: http.StatusUnauthorized},
		{name: "header key", verifier: testhelpers.KeyVerifierStub{Key: "secret"}, headers: map[string]string{APIKeyHeader: "secret"}, status: http.StatusOK},
		{name: "bearer key", verifier: testhelpers.KeyVerifierStub{Key: "secret"}, headers: map[string]string{"Authorization": "Bearer secret"}, status: http.StatusOK},
		{
			name:     "verifier failure",
			verifier: testhelpers.KeyVerifierStub{VerifyFn: func(string) error { return errors.New("boom") }},
			headers:  map[string]string{APIKeyHeader: "secret"},
			status:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp := httptest.NewRecorder()
			newRouter(tt.verifier).ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestExtractKey(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if key := extractKey(c); key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if key := extractKey(c); key != "abc" {
		t.Fatalf("expected key from bearer token, got %q", key)
	}
	c.Request.Header.Set(APIKeyHeader, " header ")
	if key := extractKey(c); key != "header" {
		t.Fatalf("expected header key to win, got %q", key)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(DefaultMaxBody))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestDecompressRequestLimitsBody(t *testing.T) {
	router := gin.New()
	router.Use(DecompressRequest(4))
	var readErr error
	router.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("too long"))))
	if readErr == nil {
		t.Fatal("expected body limit error")
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 2 {
		t.Fatalf("expected two request logs, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[1].Level != zap.ErrorLevel {
		t.Fatalf("unexpected levels: %v %v", entries[0].Level, entries[1].Level)
	}
	if entries[0].ContextMap()["path"] != "/ok" {
		t.Fatalf("expected route path field, got %v", entries[0].ContextMap())
	}
}
