package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := map[string]struct {
		expected string
		header   string
		status   int
	}{
		"matching token":      {expected: "s3cret", header: "s3cret", status: http.StatusNoContent},
		"wrong token":         {expected: "s3cret", header: "guess", status: http.StatusUnauthorized},
		"missing header":      {expected: "s3cret", status: http.StatusUnauthorized},
		"no token configured": {expected: "", header: "", status: http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/consent/privacy/accept", nil)
			if tc.header != "" {
				req.Header.Set("X-Admin-Token", tc.header)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tc.expected, slog.New(slog.DiscardHandler))(ok).ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}
