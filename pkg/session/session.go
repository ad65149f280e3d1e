// Package session remembers the blogs a user recently pointed the tool
// at, so interactive commands can offer them back instead of asking for
// URLs again.
//
// Entries live in a single JSON file under the user config directory
// (~/.config/cardgrid/recents.json by default), most recently used
// first, capped at MaxEntries. Touch upserts by URL: revisiting a blog
// moves it to the front and keeps previously stored fields the caller
// left empty.
//
// # Usage
//
//	recents, err := session.NewRecents("")
//	if err != nil {
//	    return err
//	}
//
//	// Record a visit
//	recents.Touch(session.Entry{URL: "https://blog.example/", Title: "Example"})
//
//	// Offer the list back
//	entries, err := recents.List()
package session

import (
	"strings"
	"time"
)

// MaxEntries caps the recents list. The oldest entry falls off when a
// new blog is recorded at the cap.
const MaxEntries = 10

// Entry is one remembered blog.
type Entry struct {
	URL      string    `json:"url"`
	Title    string    `json:"title,omitempty"`
	Mode     string    `json:"mode,omitempty"`     // last layout mode used
	Category string    `json:"category,omitempty"` // last category filter used
	LastUsed time.Time `json:"last_used"`
	Visits   int       `json:"visits,omitempty"`
}

// urlKey canonicalizes a URL for upsert matching so trailing slashes
// and stray whitespace do not create duplicate entries.
func urlKey(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}
