package server

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/filter"
)

// demoSource serves a fixed built-in post set so the preview server
// runs without an upstream blog. Pages, categories, and image URLs are
// deterministic, which the loader and pipeline tests rely on.
type demoSource struct {
	perPage int
	cards   []card.Card
}

func newDemoSource(perPage int) *demoSource {
	if perPage <= 0 {
		perPage = content.DefaultBatchLimit
	}
	return &demoSource{perPage: perPage, cards: demoCards()}
}

func (d *demoSource) Page(ctx context.Context, n int) (PageData, error) {
	pages := (len(d.cards) + d.perPage - 1) / d.perPage
	if pages == 0 {
		pages = 1
	}
	if n < 1 || n > pages {
		return PageData{}, errors.New(errors.ErrCodePageNotFound, "page %d not found (trail has %d)", n, pages)
	}

	start := (n - 1) * d.perPage
	end := min(start+d.perPage, len(d.cards))

	next := ""
	if n < pages {
		next = fmt.Sprintf("/page/%d/", n+1)
	}

	return PageData{
		Cards:     slices.Clone(d.cards[start:end]),
		Container: content.ContainerMasonry,
		Page:      n,
		Pages:     pages,
		Next:      next,
	}, nil
}

func (d *demoSource) Category(ctx context.Context, key string) ([]card.Card, error) {
	if key == filter.AllCategory {
		return slices.Clone(d.cards), nil
	}

	var out []card.Card
	for _, c := range d.cards {
		if content.Slugify(c.Category) == key {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeCategoryNotFound, "no posts in category %q", key)
	}
	return out, nil
}

// demoAuthors cycles across the demo posts.
var demoAuthors = []struct {
	name  string
	image string
	url   string
}{
	{"June Akimoto", "/img/avatar-june.svg", "/author/june/"},
	{"Theo Marsh", "/img/avatar-theo.svg", "/author/theo/"},
	{"Priya Nair", "/img/avatar-priya.svg", "/author/priya/"},
}

// demoPosts is the built-in trail, newest first like a blog index.
var demoPosts = []struct {
	slug     string
	title    string
	excerpt  string
	category string
	image    bool
}{
	{"morning-fog-over-the-harbor", "Morning Fog Over the Harbor", "The ferries ran late and nobody minded. Notes from a slow commute.", "Sketchbook", true},
	{"on-keeping-a-notebook", "On Keeping a Notebook", "Why the cheap spiral-bound kind outlasts every app I have tried.", "Essays", false},
	{"three-poems-for-october", "Three Poems for October", "Short pieces written between trains, mostly about leaving.", "Poetry", true},
	{"letter-to-a-young-archivist", "Letter to a Young Archivist", "You asked what is worth saving. Almost nothing, and that is the point.", "Letters", false},
	{"the-stairwell-study", "The Stairwell Study", "Forty minutes of charcoal and one impossible banister.", "Sketchbook", true},
	{"against-productivity", "Against Productivity", "A defense of the unscheduled afternoon.", "Essays", true},
	{"salt-and-distance", "Salt and Distance", "A poem about the coast road and the people who stay.", "Poetry", false},
	{"what-the-printers-knew", "What the Printers Knew", "Lessons from a dying trade about margins, patience, and ink.", "Essays", true},
	{"postcard-from-the-interior", "Postcard from the Interior", "Sent from a town with one diner and two opinions about it.", "Letters", true},
	{"studies-in-wet-pavement", "Studies in Wet Pavement", "Reflections, literally. Six quick watercolors after rain.", "Sketchbook", false},
	{"the-lighthouse-keeper-interview", "The Lighthouse Keeper Interview", "Ninety years old and still distrustful of automation.", "Essays", true},
	{"november-fragments", "November Fragments", "Poems left unfinished on purpose.", "Poetry", true},
	{"on-rereading", "On Rereading", "The book did not change. Something else did.", "Essays", false},
	{"dear-committee-of-one", "Dear Committee of One", "A letter to the person who decides what I do today.", "Letters", true},
	{"the-orchard-in-winter", "The Orchard in Winter", "Bare branches are just diagrams of summer.", "Sketchbook", true},
	{"field-notes-from-a-waiting-room", "Field Notes from a Waiting Room", "Everyone here is between chapters.", "Essays", false},
	{"two-rivers", "Two Rivers", "A long poem in short lines about confluence.", "Poetry", true},
	{"the-typeface-on-the-ferry-schedule", "The Typeface on the Ferry Schedule", "Municipal design, lovingly observed.", "Essays", true},
	{"letter-from-the-garden", "Letter from the Garden", "The tomatoes failed. The correspondence did not.", "Letters", false},
	{"night-market-gouache", "Night Market Gouache", "Paint fast, the stalls close at eleven.", "Sketchbook", true},
	{"elegy-for-a-corner-store", "Elegy for a Corner Store", "They knew my order. Now it is a phone shop.", "Poetry", false},
	{"the-slow-mail-manifesto", "The Slow Mail Manifesto", "Ship letters, not notifications.", "Essays", true},
	{"harbor-cranes-at-dusk", "Harbor Cranes at Dusk", "Industrial ballet in four quick ink studies.", "Sketchbook", true},
	{"reply-all-considered-harmful", "Reply All, Considered Harmful", "A letter about letters that should not exist.", "Letters", false},
}

// demoCards materializes the post table. Dates step back two days per
// post from a fixed anchor so ordering and identity never shift
// between runs.
func demoCards() []card.Card {
	anchor := time.Date(2026, time.July, 14, 9, 0, 0, 0, time.UTC)

	cards := make([]card.Card, 0, len(demoPosts))
	for i, p := range demoPosts {
		author := demoAuthors[i%len(demoAuthors)]
		c := card.Card{
			ID:          p.slug,
			Title:       p.title,
			Excerpt:     p.excerpt,
			URL:         "/posts/" + p.slug + "/",
			AuthorName:  author.name,
			AuthorImage: author.image,
			AuthorURL:   author.url,
			Category:    p.category,
			PublishedAt: anchor.AddDate(0, 0, -2*i),
		}
		if p.image {
			c.ImageURL = fmt.Sprintf("/img/post-%02d.svg", i+1)
		}
		cards = append(cards, c)
	}
	return cards
}

// demoPalette colors the placeholder art.
var demoPalette = []string{"#7c9885", "#b5651d", "#5b7c99", "#8e6c88", "#a3a380", "#c97b63"}

// handleImage serves deterministic placeholder art for demo posts and
// avatars. Any name resolves to a color so stale references never 404.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	fill := demoPalette[int(h.Sum32())%len(demoPalette)]

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="400" viewBox="0 0 600 400">`+
		`<rect width="600" height="400" fill="%s"/>`+
		`<circle cx="300" cy="200" r="90" fill="#ffffff" fill-opacity="0.25"/>`+
		`</svg>`, fill)
}
