// Package httputil provides HTTP utilities for fetching remote planning
// documents.
//
// # Overview
//
// This package provides the infrastructure used by remote document sources:
//
//   - [Fetcher]: HTTP GET with store-backed response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Fetcher] stores response bodies in a [kv.Store] with a configurable TTL,
// so repeated layout runs against the same remote document do not refetch
// it. Entries are keyed by a hash of the URL.
//
// Usage:
//
//	fetcher := httputil.NewFetcher(store, 15*time.Minute)
//	body, err := fetcher.Fetch(ctx, url)
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures.
// Wrap errors in [RetryableError] to mark them as retryable; 5xx responses
// and network errors from [Fetcher.Fetch] are retried automatically:
//
//	err := httputil.RetryFetch(ctx, func() error {
//	    return fetchOnce()
//	})
package httputil
