package drift

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/pkg/platform/circuit"
	"pixelguard/pkg/platform/sentinel"
)

func TestNewHTTPClock_RequiresURL(t *testing.T) {
	_, err := NewHTTPClock("")
	require.ErrorIs(t, err, sentinel.ErrConfigurationMissing)
}

func TestHTTPClock_Now(t *testing.T) {
	t.Run("parses unixtime", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = fmt.Fprint(w, `{"abbreviation":"UTC","unixtime":1700000000}`)
		}))
		defer srv.Close()

		c, err := NewHTTPClock(srv.URL)
		require.NoError(t, err)

		got, err := c.Now(context.Background())
		require.NoError(t, err)
		assert.Equal(t, time.Unix(1_700_000_000, 0), got)
	})

	t.Run("uses the configured method", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = fmt.Fprint(w, `{"unixtime":1700000000}`)
		}))
		defer srv.Close()

		c, err := NewHTTPClock(srv.URL, WithMethod(http.MethodPost))
		require.NoError(t, err)
		_, err = c.Now(context.Background())
		require.NoError(t, err)
	})

	t.Run("rejects a body without unixtime", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = fmt.Fprint(w, `{"datetime":"2024-03-01T12:00:00Z"}`)
		}))
		defer srv.Close()

		c, err := NewHTTPClock(srv.URL)
		require.NoError(t, err)
		_, err = c.Now(context.Background())
		require.Error(t, err)
	})
}

func TestHTTPClock_BreakerOpensOnRepeatedFailures(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{"unixtime":1700000000}`)
	}))
	defer srv.Close()

	c, err := NewHTTPClock(srv.URL, WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))))
	require.NoError(t, err)

	for range 2 {
		_, err := c.Now(context.Background())
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
	}
	assert.True(t, c.Degraded())

	healthy = true
	_, err = c.Now(context.Background())
	require.NoError(t, err)
	assert.False(t, c.Degraded())
}

func TestTimeDetector_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewHTTPClock(srv.URL, WithBreaker(circuit.New("test", circuit.WithFailureThreshold(1))))
	require.NoError(t, err)

	d, _, _ := newTimeDetector(t, WithNetworkClock(c))
	assert.False(t, d.Degraded())

	_, err = c.Now(context.Background())
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.True(t, d.Degraded())

	local, _, _ := newTimeDetector(t)
	assert.False(t, local.Degraded(), "local mode has no breaker")
}
