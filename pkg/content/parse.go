package content

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/masonworks/cardgrid/pkg/card"
)

// ContainerKind identifies which board container a server-rendered page
// carries. A page uses exactly one; the kind decides the layout mode.
type ContainerKind int

const (
	// ContainerNone means no known container was found.
	ContainerNone ContainerKind = iota
	// ContainerMasonry is the column-packed grid container.
	ContainerMasonry
	// ContainerPile is the scattered-card container.
	ContainerPile
	// ContainerFeed is the plain sequential post feed.
	ContainerFeed
)

// String returns the container's class name, or "none".
func (k ContainerKind) String() string {
	switch k {
	case ContainerMasonry:
		return "masonry-grid"
	case ContainerPile:
		return "card-pile"
	case ContainerFeed:
		return "post-feed"
	default:
		return "none"
	}
}

// Document is the parsed form of one server-rendered page: the cards it
// carries, which container they sat in, and the pagination trail.
//
// NextURL is always absolute. It comes from the page's rel=next link when
// one exists, falling back to the embedded pagination block; a page whose
// pagination block fails to parse reports no next page at all, so a broken
// deployment stops the chain instead of looping.
type Document struct {
	Container ContainerKind
	Cards     []card.Card
	Page      int
	Pages     int
	NextURL   string
}

// HasNext reports whether the page links to a further page.
func (d Document) HasNext() bool {
	return d.NextURL != ""
}

// paginationData mirrors the JSON block themes embed for script consumers.
type paginationData struct {
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Next  string `json:"next"`
}

var (
	selMasonry  = cascadia.MustCompile(".masonry-grid")
	selPile     = cascadia.MustCompile(".card-pile")
	selFeed     = cascadia.MustCompile(".post-feed")
	selCard     = cascadia.MustCompile(".post-card")
	selNextLink = cascadia.MustCompile(`link[rel="next"], a[rel="next"]`)
	selPageData = cascadia.MustCompile("script#pagination-data")

	selTitle     = cascadia.MustCompile(".post-card-title")
	selHeading   = cascadia.MustCompile("h1, h2, h3")
	selContent   = cascadia.MustCompile("a.post-card-content-link")
	selImageLink = cascadia.MustCompile("a.post-card-image-link")
	selAnchor    = cascadia.MustCompile("a[href]")
	selImage     = cascadia.MustCompile(".post-card-image img")
	selAnyImg    = cascadia.MustCompile("img")
	selExcerpt   = cascadia.MustCompile(".post-card-excerpt")
	selAuthorsA  = cascadia.MustCompile(".post-card-author a")
	selAuthors   = cascadia.MustCompile(".post-card-author")
	selAuthorImg = cascadia.MustCompile("img.author-profile-image")
	selTag       = cascadia.MustCompile(".post-card-tag")
	selTime      = cascadia.MustCompile("time[datetime]")
)

// ParseDocument extracts cards and pagination from a server-rendered page.
// pageURL is the address the document was fetched from; relative links in
// the markup are resolved against it. Entries without a post id or
// permalink get a generated identity when they carry a title, and are
// dropped otherwise.
func ParseDocument(pageURL string, r io.Reader) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{}
	container := root
	if n := query(root, selMasonry); n != nil {
		doc.Container, container = ContainerMasonry, n
	} else if n := query(root, selPile); n != nil {
		doc.Container, container = ContainerPile, n
	} else if n := query(root, selFeed); n != nil {
		doc.Container, container = ContainerFeed, n
	}

	for _, n := range queryAll(container, selCard) {
		if c, ok := parseCard(pageURL, n); ok {
			doc.Cards = append(doc.Cards, c)
		}
	}

	doc.Page, doc.Pages, doc.NextURL = parsePagination(pageURL, root)
	return doc, nil
}

// parsePagination merges the two trail signals a page can carry. The
// rel=next link decides has-more-ness when the counters disagree with it;
// a present-but-unparseable pagination block wins over everything and
// ends the trail.
func parsePagination(pageURL string, root *html.Node) (page, pages int, next string) {
	if n := query(root, selNextLink); n != nil {
		next = AbsoluteURL(pageURL, attr(n, "href"))
	}

	script := query(root, selPageData)
	if script == nil {
		return 0, 0, next
	}

	var data paginationData
	if err := json.Unmarshal([]byte(rawText(script)), &data); err != nil {
		return 0, 0, ""
	}
	if next == "" && data.Next != "" {
		next = AbsoluteURL(pageURL, data.Next)
	}
	return data.Page, data.Pages, next
}

// parseCard extracts one card from its article node. The second return is
// false for junk nodes carrying neither an identity nor a title.
func parseCard(pageURL string, n *html.Node) (card.Card, bool) {
	c := card.Card{
		ID:      attr(n, "data-post-id"),
		Title:   textOf(n, selTitle),
		Excerpt: textOf(n, selExcerpt),
	}

	if link := queryFirst(n, selContent, selImageLink, selAnchor); link != nil {
		c.URL = AbsoluteURL(pageURL, attr(link, "href"))
	}
	if c.ID == "" {
		c.ID = c.URL
	}

	if c.Title == "" {
		c.Title = textOf(n, selHeading)
	}
	if c.ID == "" {
		if c.Title == "" {
			return card.Card{}, false
		}
		// Titled but keyless entries still render; a generated identity
		// means they cannot deduplicate across fetches.
		c.ID = uuid.NewString()
	}

	img := query(n, selImage)
	if img == nil {
		for _, m := range queryAll(n, selAnyImg) {
			if !selAuthorImg.Match(m) {
				img = m
				break
			}
		}
	}
	if img != nil {
		src := attr(img, "src")
		if src == "" {
			src = attr(img, "data-src")
		}
		c.ImageURL = AbsoluteURL(pageURL, src)
	}

	if a := queryFirst(n, selAuthorsA, selAuthors); a != nil {
		c.AuthorName = textContent(a)
		if href := attr(a, "href"); href != "" {
			c.AuthorURL = AbsoluteURL(pageURL, href)
		}
	}
	if avatar := query(n, selAuthorImg); avatar != nil {
		c.AuthorImage = AbsoluteURL(pageURL, attr(avatar, "src"))
	}

	c.Category = textOf(n, selTag)
	if c.Category == "" {
		c.Category = attr(n, "data-category")
	}

	if t := query(n, selTime); t != nil {
		c.PublishedAt = parseTime(attr(t, "datetime"))
	}

	var sb strings.Builder
	if err := html.Render(&sb, n); err == nil {
		c.Markup = sb.String()
	}
	return c, true
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func query(n *html.Node, sel cascadia.Selector) *html.Node {
	if n == nil {
		return nil
	}
	return sel.MatchFirst(n)
}

// queryFirst tries each selector in order and returns the first match,
// so more specific markup wins over generic fallbacks.
func queryFirst(n *html.Node, sels ...cascadia.Selector) *html.Node {
	for _, sel := range sels {
		if m := query(n, sel); m != nil {
			return m
		}
	}
	return nil
}

func queryAll(n *html.Node, sel cascadia.Selector) []*html.Node {
	if n == nil {
		return nil
	}
	return sel.MatchAll(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf returns the normalized text of the first node matching sel under n.
func textOf(n *html.Node, sel cascadia.Selector) string {
	m := query(n, sel)
	if m == nil {
		return ""
	}
	return textContent(m)
}

// textContent concatenates a node's text descendants, collapsing runs of
// whitespace the way rendered text does.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// rawText concatenates text descendants verbatim, for content where
// whitespace is meaningful (script bodies).
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
