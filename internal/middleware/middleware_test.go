package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthMiddleware(config.AuthConfig{
		Enabled:   true,
		MasterKey: "secret",
		SkipPaths: []string{"/health"},
	}, zap.NewNop())
	handler := auth.Handler(okHandler())

	cases := []struct {
		name   string
		path   string
		header string
		query  string
		want   int
	}{
		{"missing key", "/campaigns", "", "", http.StatusUnauthorized},
		{"wrong key", "/campaigns", "nope", "", http.StatusUnauthorized},
		{"header key", "/campaigns", "secret", "", http.StatusOK},
		{"query key", "/campaigns", "", "secret", http.StatusOK},
		{"skip path", "/health", "", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := tc.path
			if tc.query != "" {
				target += "?" + AuthQueryParam + "=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set(AuthHeaderName, tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	auth := NewAuthMiddleware(config.AuthConfig{Enabled: false}, zap.NewNop())
	handler := auth.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	rl := NewRateLimitMiddleware(config.RateLimitConfig{
		Enabled: true,
		RPS:     1,
		Burst:   2,
	}, nil, zap.NewNop())
	handler := rl.HandlerPerIP(okHandler())

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("first request = %d", got)
	}
	if got := send("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("second request = %d", got)
	}
	if got := send("10.0.0.1:1234"); got != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", got)
	}

	// A different client gets its own bucket.
	if got := send("10.0.0.2:1234"); got != http.StatusOK {
		t.Errorf("other client = %d, want 200", got)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: false}, nil, zap.NewNop())
	handler := rl.Handler(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	recovery := NewRecoveryMiddleware(zap.NewNop())
	handler := recovery.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
