package github

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitTransportFailsFast(t *testing.T) {
	reset := time.Now().Add(time.Hour).Truncate(time.Second)
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}))
	defer srv.Close()

	rlt := newRateLimitTransport(srv.Client().Transport)
	hc := &http.Client{Transport: rlt}

	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 1, hits)

	_, err = hc.Get(srv.URL)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, 1, hits)

	rlt.now = func() time.Time { return reset.Add(time.Second) }
	resp, err = hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 2, hits)
}

func TestRateLimitTransportPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	hc := &http.Client{Transport: newRateLimitTransport(srv.Client().Transport)}
	for i := 0; i < 3; i++ {
		resp, err := hc.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
