// Package card defines the card data model and the ordered store that
// owns the visible set.
//
// A Card is one content summary tile: title, excerpt, image, and author
// metadata as delivered by the content source. Cards carry no geometry;
// positions, rotations, and animation state belong to the layout layer,
// which treats the store as its single source of truth and its own output
// as disposable.
package card

import (
	"time"
)

// Card represents one content summary tile.
//
// The zero value is not a valid card: ID must be a stable identity,
// unique within a Store. Identities are derived from the content URL or
// a server-provided id by the parsing layer.
type Card struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorImage string    `json:"author_image,omitempty"`
	AuthorURL   string    `json:"author_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`

	// Markup is the raw rendered fragment as received from the server,
	// kept verbatim for re-insertion by HTML sinks.
	Markup string `json:"markup,omitempty"`
}

// HasImage reports whether the card carries a feature image.
func (c Card) HasImage() bool {
	return c.ImageURL != ""
}
