// Package httputil carries the HTTP plumbing shared by the content
// clients: a file-backed response cache and a retry loop for
// transient failures.
//
// # Caching
//
// [Cache] keeps JSON-decoded responses on disk, keyed by request, so
// repeated runs against the same blog skip the network entirely while
// an entry is fresh:
//
//	cache, err := httputil.NewCache("", 15*time.Minute) // "" means ~/.cache/cardgrid
//	var posts []Post
//	ok, err := cache.Get("posts?page=2", &posts)
//	if !ok {
//	    posts = fetchFromAPI()
//	    cache.Set("posts?page=2", posts)
//	}
//
// [Cache.Get] distinguishes a miss from an expired entry via
// [ErrExpired]; callers refetch in both cases but may serve the stale
// value when the refetch fails. Clients that share one directory scope
// their keys with [Cache.Namespace] ("page:" for fetched documents,
// "api:" for content API responses).
//
// # Retry
//
// [Retry] re-runs a request a bounded number of times with doubling
// delays, but only when the failure is wrapped in [RetryableError].
// The content clients mark network errors, 5xx responses and 429
// rate limits as retryable; everything else fails the first time.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchPage(n)
//	})
//
// [RetryWithBackoff] uses the client defaults of three attempts from a
// one second delay.
//
// # Maintenance
//
// Entries expire by file modification time; nothing prunes them. The
// cache directory can be wiped with "cardgrid cache clear" or deleted
// outright between runs.
package httputil
