package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/masonworks/cardgrid/internal/config"
	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/filter"
)

// upstreamSource proxies the configured blog: index pages through the
// page client, categories through the content API when one is
// configured, otherwise by filtering the front page locally.
type upstreamSource struct {
	base    string
	perPage int
	pages   *content.PageClient
	api     *content.APIClient
}

func newUpstreamSource(cfg config.Config) (*upstreamSource, error) {
	httpCache, err := content.NewCache(cache.TTLPage)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	src := &upstreamSource{
		base:    strings.TrimRight(cfg.Site.URL, "/"),
		perPage: cfg.Content.PerPage,
		pages:   content.NewPageClient(httpCache),
	}
	if src.perPage <= 0 {
		src.perPage = content.DefaultBatchLimit
	}

	if cfg.Content.APIURL != "" {
		api, err := content.NewAPIClient(cfg.Content.APIURL, cfg.Content.APIKey, cache.TTLCategory)
		if err != nil {
			return nil, err
		}
		src.api = api
	}
	return src, nil
}

func (u *upstreamSource) Page(ctx context.Context, n int) (PageData, error) {
	pageURL := u.base
	if n > 1 {
		pageURL = fmt.Sprintf("%s/page/%d/", u.base, n)
	}

	doc, err := u.pages.FetchDocument(ctx, pageURL, false)
	if err != nil {
		return PageData{}, err
	}

	page := doc.Page
	if page == 0 {
		page = n
	}
	return PageData{
		Cards:     doc.Cards,
		Container: doc.Container,
		Page:      page,
		Pages:     doc.Pages,
		Next:      doc.NextURL,
	}, nil
}

func (u *upstreamSource) Category(ctx context.Context, key string) ([]card.Card, error) {
	if u.api != nil {
		return u.api.FetchCategory(ctx, key, u.perPage)
	}

	// No content API configured, filter the front page locally.
	doc, err := u.pages.FetchDocument(ctx, u.base, false)
	if err != nil {
		return nil, err
	}
	if key == filter.AllCategory {
		return doc.Cards, nil
	}

	var out []card.Card
	for _, c := range doc.Cards {
		if content.Slugify(c.Category) == key {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeCategoryNotFound, "no posts in category %q", key)
	}
	return out, nil
}
