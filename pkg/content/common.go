// Package content fetches and parses card data from a hosted blog.
//
// Two sources feed the board: server-rendered pages (followed through
// rel=next links by the incremental loader) and the host CMS's read-only
// content API (used by the category filter). Both go through a shared
// base [Client] that layers caching and retry over plain HTTP.
package content

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/masonworks/cardgrid/pkg/httputil"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a page or resource doesn't exist at the source.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for content requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewBrowserlikeClient creates an HTTP client that carries cookies across
// requests, matching how a browser fetches next-page documents with
// same-origin credentials.
func NewBrowserlikeClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Timeout: httpTimeout, Jar: jar}
}

// NewCache creates a file-based cache with the given TTL in the default cache directory.
// See [httputil.NewCache] for details on cache location and behavior.
func NewCache(ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache("", ttl)
}

// AbsoluteURL resolves a possibly-relative href against a base URL.
// Returns the href unchanged if either side fails to parse.
func AbsoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a tag name to its category key form: lowercase,
// non-alphanumerics collapsed to single hyphens, trimmed.
// "Design Systems" becomes "design-systems".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugCleaner.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
