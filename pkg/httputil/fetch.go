package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cfaller/planweave/pkg/kv"
	"github.com/cfaller/planweave/pkg/observability"
)

// Fetcher retrieves documents over HTTP with store-backed caching.
//
// Response bodies are cached in the store keyed by a hash of the URL, with
// a time-to-live recorded per entry. A TTL of 0 disables expiry. Transient
// failures (network errors, 5xx responses) are retried with exponential
// backoff.
type Fetcher struct {
	client *http.Client
	store  kv.Store
	ttl    time.Duration
}

// NewFetcher creates a Fetcher over the given store. A nil store disables
// caching entirely; every Fetch hits the network.
func NewFetcher(store kv.Store, ttl time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		store:  store,
		ttl:    ttl,
	}
}

// cacheEntry is the stored envelope for one fetched response.
type cacheEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Body      []byte    `json:"body"`
}

// Fetch returns the body at url, from the store when a fresh entry exists,
// otherwise from the network. Network fetches are retried on transient
// failures and the result is written back to the store.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := fetchKey(url)

	if body, ok := f.cached(ctx, key); ok {
		observability.Store().OnStoreHit(ctx, "fetch")
		return body, nil
	}
	observability.Store().OnStoreMiss(ctx, "fetch")

	var body []byte
	err := RetryFetch(ctx, func() error {
		var fetchErr error
		body, fetchErr = f.fetchOnce(ctx, url)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		entry := cacheEntry{FetchedAt: time.Now(), Body: body}
		if data, err := json.Marshal(entry); err == nil {
			_ = f.store.Set(ctx, key, data)
			observability.Store().OnStoreSet(ctx, "fetch", len(data))
		}
	}
	return body, nil
}

// cached returns a stored body when the entry exists and is within TTL.
func (f *Fetcher) cached(ctx context.Context, key string) ([]byte, bool) {
	if f.store == nil {
		return nil, false
	}
	data, hit, err := f.store.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if f.ttl > 0 && time.Since(entry.FetchedAt) > f.ttl {
		return nil, false
	}
	return entry.Body, true
}

// fetchOnce performs one HTTP GET. Network errors and 5xx responses are
// wrapped as retryable.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Fetch().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)

	resp, err := f.client.Do(req)
	if err != nil {
		observability.Fetch().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	observability.Fetch().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RetryableError{Err: fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func fetchKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return "fetch-" + hex.EncodeToString(h[:])[:16]
}
