package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.2.3.4:80", want: "10.0.0.1"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": " 10.0.0.9 "}, remote: "1.2.3.4:80", want: "10.0.0.9"},
		{name: "ipv4 remote", remote: "1.2.3.4:5678", want: "1.2.3.4"},
		{name: "ipv6 remote", remote: "[::1]:5678", want: "::1"},
		{name: "remote without port", remote: "1.2.3.4", want: "1.2.3.4"},
		{name: "no address", remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIPFromRequest(r); got != tt.want {
				t.Fatalf("ClientIPFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var got string
	h := ClientIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetClientIP(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got != "192.0.2.7" {
		t.Fatalf("client ip = %q, want 192.0.2.7", got)
	}
}
