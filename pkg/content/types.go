package content

import (
	"time"

	"github.com/masonworks/cardgrid/pkg/card"
)

// PostsResponse is the content API's envelope for post queries.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  Meta   `json:"meta"`
}

// Meta carries the API's pagination block.
type Meta struct {
	Pagination APIPagination `json:"pagination"`
}

// APIPagination is the content API's cursor, distinct from the cursor
// the incremental loader tracks for server-rendered pages.
type APIPagination struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Pages int  `json:"pages"`
	Total int  `json:"total"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

// Post is one post summary as returned by the content API.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	CustomExcerpt string     `json:"custom_excerpt"`
	URL           string     `json:"url"`
	FeatureImage  string     `json:"feature_image"`
	PublishedAt   *time.Time `json:"published_at"`
	PrimaryAuthor *Author    `json:"primary_author"`
	PrimaryTag    *Tag       `json:"primary_tag"`
}

// Author is a post's primary author summary.
type Author struct {
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
	URL          string `json:"url"`
}

// Tag is a post's primary tag.
type Tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Card converts the post to the board's card model. Identity prefers the
// server-provided id and falls back to the post URL, which is stable too.
func (p Post) Card() card.Card {
	id := p.ID
	if id == "" {
		id = p.URL
	}

	excerpt := p.CustomExcerpt
	if excerpt == "" {
		excerpt = p.Excerpt
	}

	c := card.Card{
		ID:       id,
		Title:    p.Title,
		Excerpt:  excerpt,
		URL:      p.URL,
		ImageURL: p.FeatureImage,
	}
	if p.PublishedAt != nil {
		c.PublishedAt = *p.PublishedAt
	}
	if p.PrimaryAuthor != nil {
		c.AuthorName = p.PrimaryAuthor.Name
		c.AuthorImage = p.PrimaryAuthor.ProfileImage
		c.AuthorURL = p.PrimaryAuthor.URL
	}
	if p.PrimaryTag != nil {
		c.Category = p.PrimaryTag.Name
	}
	return c
}

// Cards converts every post in the response, preserving order.
func (r PostsResponse) Cards() []card.Card {
	cards := make([]card.Card, len(r.Posts))
	for i, p := range r.Posts {
		cards[i] = p.Card()
	}
	return cards
}
