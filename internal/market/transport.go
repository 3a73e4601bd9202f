package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listingwatch/listingwatch/internal/recovery"
)

const maxResponseBytes = 1 << 20

// transport is the fetch side shared by all marketplace clients: a
// timeout-bounded HTTP client whose egress proxy and request identity
// can be rotated between attempts. Each client instance owns one
// transport, so recovery state never leaks across marketplaces.
type transport struct {
	client  *http.Client
	proxies *recovery.ProxyPool

	mu       sync.Mutex
	identity recovery.Identity

	failures atomic.Int64
}

func newTransport(timeout time.Duration, proxies *recovery.ProxyPool) *transport {
	t := &transport{
		proxies:  proxies,
		identity: recovery.NewIdentity(),
	}
	t.client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: t.proxyFor,
		},
	}
	return t
}

// proxyFor selects the current pool proxy for a request, or none when
// no pool is configured.
func (t *transport) proxyFor(req *http.Request) (*url.URL, error) {
	pair, ok := t.proxies.Current()
	if !ok {
		return nil, nil
	}
	if req.URL.Scheme == "https" {
		return pair.HTTPS, nil
	}
	return pair.HTTP, nil
}

// getJSON performs a GET with the current identity and decodes the JSON
// body into v. Failures come back as classified recovery errors.
func (t *transport) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return recovery.NewError(recovery.ClassTransient, "building request", err)
	}

	t.mu.Lock()
	id := t.identity
	t.mu.Unlock()

	req.Header.Set("User-Agent", id.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: id.SessionID})

	resp, err := t.client.Do(req)
	if err != nil {
		return recovery.NewError(recovery.ClassTransient, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recovery.NewError(
			recovery.ClassifyStatus(resp.StatusCode),
			"fetching items",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
		)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return recovery.NewError(recovery.ClassTransient, "decoding response", err)
	}

	return nil
}

// beginFetch bumps the failure streak; fetchSucceeded clears it. Search
// implementations call beginFetch on entry and fetchSucceeded just
// before returning items, so any early exit leaves the streak raised.
func (t *transport) beginFetch() {
	t.failures.Add(1)
}

func (t *transport) fetchSucceeded() {
	t.failures.Store(0)
}

// RotateProxy implements recovery.Rotator.
func (t *transport) RotateProxy() bool {
	return t.proxies.Rotate()
}

// RefreshIdentity implements recovery.Rotator.
func (t *transport) RefreshIdentity() {
	t.mu.Lock()
	t.identity = recovery.NewIdentity()
	t.mu.Unlock()
}

// ConsecutiveFailures implements recovery.Rotator.
func (t *transport) ConsecutiveFailures() int {
	return int(t.failures.Load())
}
