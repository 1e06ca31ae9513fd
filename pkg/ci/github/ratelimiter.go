package github

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/rs/zerolog/log"
)

// errRateLimited is returned without touching the network while the last
// known rate limit window is still open
var errRateLimited = errors.New("github rate limit reached")

// rateLimitTransport remembers GitHub rate limit responses and fails fast
// until the limit resets. Status checks are best-effort, so it never sleeps
// or retries.
type rateLimitTransport struct {
	transport http.RoundTripper
	now       func() time.Time

	m       sync.Mutex
	blocked time.Time
}

func (rlt *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rlt.m.Lock()
	blocked := rlt.blocked
	rlt.m.Unlock()

	if rlt.now().Before(blocked) {
		return nil, fmt.Errorf("%w until %s", errRateLimited, blocked.Format(time.RFC3339))
	}

	resp, err := rlt.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// Make response body accessible for both CheckResponse and the caller
	// See https://github.com/google/go-github/pull/986
	r1, r2, err := drainBody(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = r1
	ghErr := github.CheckResponse(resp)
	resp.Body = r2

	var until time.Time
	if arlErr, ok := ghErr.(*github.AbuseRateLimitError); ok {
		until = rlt.now().Add(arlErr.GetRetryAfter())
		log.Debug().Dur("retry_after", arlErr.GetRetryAfter()).
			Msg("abuse detection mechanism triggered")
	}
	if rlErr, ok := ghErr.(*github.RateLimitError); ok {
		until = rlErr.Rate.Reset.Time
		log.Debug().Int("limit", rlErr.Rate.Limit).Time("reset", until).
			Msg("rate limit reached")
	}

	if !until.IsZero() {
		rlt.m.Lock()
		if until.After(rlt.blocked) {
			rlt.blocked = until
		}
		rlt.m.Unlock()
	}

	return resp, nil
}

// newRateLimitTransport creates new roundtripper rate limiter
func newRateLimitTransport(rt http.RoundTripper) *rateLimitTransport {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &rateLimitTransport{transport: rt, now: time.Now}
}

// drainBody reads all of b to memory and then returns two equivalent
// ReadClosers yielding the same bytes.
func drainBody(b io.ReadCloser) (r1, r2 io.ReadCloser, err error) {
	if b == nil || b == http.NoBody {
		// No copying needed. Preserve the magic sentinel meaning of NoBody.
		return http.NoBody, http.NoBody, nil
	}
	var buf bytes.Buffer
	if _, err = buf.ReadFrom(b); err != nil {
		return nil, b, err
	}
	if err = b.Close(); err != nil {
		return nil, b, err
	}
	return io.NopCloser(&buf),
		io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}
