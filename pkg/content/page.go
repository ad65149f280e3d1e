package content

import (
	"bytes"
	"context"

	"github.com/masonworks/cardgrid/pkg/httputil"
)

// PageClient fetches server-rendered pages the way a browser's in-page
// loader does: cookies carried across requests plus the XHR marker header
// hosts use to skip analytics for partial loads. Raw page bytes are
// cached so repeated walks of a trail stay local.
type PageClient struct {
	*Client
}

// NewPageClient creates a page fetcher backed by the given cache.
func NewPageClient(cache *httputil.Cache) *PageClient {
	headers := map[string]string{
		"Accept":           "text/html",
		"X-Requested-With": "XMLHttpRequest",
	}
	return &PageClient{Client: NewBrowserClient(cache.Namespace("page:"), headers)}
}

// FetchDocument retrieves and parses one server-rendered page.
func (c *PageClient) FetchDocument(ctx context.Context, pageURL string, refresh bool) (Document, error) {
	var raw []byte
	err := c.Cached(ctx, pageURL, refresh, &raw, func() error {
		b, err := c.GetDocument(ctx, pageURL)
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return ParseDocument(pageURL, bytes.NewReader(raw))
}
