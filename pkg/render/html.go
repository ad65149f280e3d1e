package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/errors"
)

// pageCSS is the embedded stylesheet: card chrome, the container rules
// for both modes, and the entrance animation. Positioned cards animate
// opacity only, since their transform carries the layout coordinates.
const pageCSS = `
    body { margin: 0; font-family: system-ui, sans-serif; background: #f4f5f6; color: #15171a; }
    .site-main { margin: 0 auto; padding: 24px 0; }
    .masonry-grid { position: relative; margin: 0 auto; }
    .card-pile { position: relative; margin: 0 auto; }
    .post-card { background: #fff; border-radius: 5px; box-shadow: 0 1px 4px rgba(0,0,0,.1); overflow: hidden; }
    .masonry-grid > .post-card { position: absolute; top: 0; left: 0; }
    .masonry-grid.flow > .post-card { position: static; margin: 0 auto 16px; max-width: 100%; }
    .card-pile > .post-card { position: absolute; top: 20%; left: 50%; width: 320px; margin-left: -160px; }
    .post-card-image-link { display: block; }
    .post-card-image img { display: block; width: 100%; height: auto; }
    .post-card-content { padding: 20px; }
    .post-card-tag { display: block; font-size: 12px; text-transform: uppercase; color: #ff1a75; margin-bottom: 4px; }
    .post-card-content-link { text-decoration: none; color: inherit; }
    .post-card-title { margin: 0 0 8px; font-size: 24px; line-height: 1.25; }
    .post-card-excerpt { margin: 0; font-size: 16px; line-height: 1.5; color: #626d79; }
    .post-card-meta { display: flex; align-items: center; gap: 8px; margin-top: 16px; font-size: 13px; color: #626d79; }
    .author-profile-image { width: 24px; height: 24px; border-radius: 50%; }
    .post-card-author a { color: inherit; text-decoration: none; font-weight: 600; }
    .card-enter { animation: card-enter .4s ease both; }
    @keyframes card-enter { from { opacity: 0; } to { opacity: 1; } }`

const pageMarkup = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Next}}<link rel="next" href="{{.Next}}">
{{end}}<style>{{.CSS}}</style>
</head>
<body>
<main class="site-main" style="{{.MainStyle}}">
  <div class="{{.ContainerClass}}"{{with .ContainerStyle}} style="{{.}}"{{end}}>
{{range .Cards}}    <article class="post-card{{if .Entering}} card-enter{{end}}" data-post-id="{{.ID}}"{{if .Category}} data-category="{{.Category}}"{{end}}{{with .Style}} style="{{.}}"{{end}}>
{{if .ImageURL}}      <a class="post-card-image-link" href="{{.URL}}">
        <div class="post-card-image"><img src="{{.ImageURL}}" alt="{{.Title}}" loading="lazy"></div>
      </a>
{{end}}      <div class="post-card-content">
{{if .Category}}        <span class="post-card-tag">{{.Category}}</span>
{{end}}        <a class="post-card-content-link" href="{{.URL}}">
          <h2 class="post-card-title">{{.Title}}</h2>
{{if .Excerpt}}          <p class="post-card-excerpt">{{.Excerpt}}</p>
{{end}}        </a>
        <footer class="post-card-meta">
{{if .AuthorName}}          <span class="post-card-author">{{if .AuthorImage}}<img class="author-profile-image" src="{{.AuthorImage}}" alt="{{.AuthorName}}">{{end}}{{if .AuthorURL}}<a href="{{.AuthorURL}}">{{.AuthorName}}</a>{{else}}{{.AuthorName}}{{end}}</span>
{{end}}{{if .Datetime}}          <time datetime="{{.Datetime}}">{{.Published}}</time>
{{end}}        </footer>
      </div>
    </article>
{{end}}  </div>
</main>
{{if .Pagination}}<script id="pagination-data" type="application/json">{{.Pagination}}</script>
{{end}}</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageMarkup))

// htmlPage is the fully precomputed template input. Geometry math stays
// in Go; the template only substitutes.
type htmlPage struct {
	Title          string
	CSS            template.CSS
	MainStyle      template.CSS
	ContainerClass string
	ContainerStyle template.CSS
	Cards          []htmlCard
	Next           string
	Pagination     template.JS
}

type htmlCard struct {
	card.Card
	Style     template.CSS
	Entering  bool
	Datetime  string
	Published string
}

// RenderHTML renders the scene as a complete server-side page.
//
// The markup honors the DOM contract the loader consumes: the container
// class names the mode, every card is a .post-card carrying
// data-post-id, pagination travels as both a rel=next link and the
// embedded JSON block. A rendered page fed back through the content
// parser yields the same cards and trail.
func RenderHTML(s Scene) ([]byte, error) {
	page := htmlPage{
		Title:     s.Title,
		CSS:       pageCSS,
		MainStyle: template.CSS(fmt.Sprintf("max-width: %.0fpx;", s.Width)),
		Next:      s.NextURL,
	}
	if page.Title == "" {
		page.Title = "Cards"
	}

	switch s.Mode {
	case "pile":
		page.ContainerClass = "card-pile"
		page.ContainerStyle = template.CSS(fmt.Sprintf("height: %.0fpx;", s.Height()))
		page.Cards = pileCards(s)
	default:
		page.ContainerClass = "masonry-grid"
		if !s.Result.Positioned {
			page.ContainerClass += " flow"
		} else {
			page.ContainerStyle = template.CSS(fmt.Sprintf("height: %.0fpx;", s.Result.ContainerHeight))
		}
		page.Cards = masonryCards(s)
	}

	if s.Page > 0 || s.Pages > 0 || s.NextURL != "" {
		data, err := json.Marshal(struct {
			Page  int    `json:"page"`
			Pages int    `json:"pages"`
			Next  string `json:"next"`
		}{s.Page, s.Pages, s.NextURL})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode pagination block")
		}
		page.Pagination = template.JS(data)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render html page")
	}
	return buf.Bytes(), nil
}

func masonryCards(s Scene) []htmlCard {
	frames := s.frameIndex()
	cards := make([]htmlCard, 0, len(s.Cards))
	for _, c := range s.Cards {
		hc := newHTMLCard(c)
		var style strings.Builder
		if f, ok := frames[c.ID]; ok && s.Result.Positioned {
			fmt.Fprintf(&style, "transform: translate(%.1fpx, %.1fpx); width: %.1fpx;", f.X, f.Y, f.Width)
		}
		if delay, ok := s.Entering[c.ID]; ok {
			hc.Entering = true
			if delay > 0 {
				fmt.Fprintf(&style, " animation-delay: %dms;", delay.Milliseconds())
			}
		}
		hc.Style = template.CSS(strings.TrimSpace(style.String()))
		cards = append(cards, hc)
	}
	return cards
}

func pileCards(s Scene) []htmlCard {
	states := s.stateIndex()
	cards := make([]htmlCard, 0, len(s.Cards))
	for _, c := range s.Cards {
		hc := newHTMLCard(c)
		var style strings.Builder
		if st, ok := states[c.ID]; ok {
			fmt.Fprintf(&style, "transform: translate(%.1fpx, %.1fpx) rotate(%.2fdeg); z-index: %d;", st.DX, st.DY, st.Rotation, st.Z)
			if st.Scale != 1 {
				fmt.Fprintf(&style, " scale: %.2f;", st.Scale)
			}
			if st.Dimmed {
				style.WriteString(" opacity: 0.5;")
			}
		}
		if delay, ok := s.Entering[c.ID]; ok {
			hc.Entering = true
			if delay > 0 {
				fmt.Fprintf(&style, " animation-delay: %dms;", delay.Milliseconds())
			}
		}
		hc.Style = template.CSS(strings.TrimSpace(style.String()))
		cards = append(cards, hc)
	}
	return cards
}

func newHTMLCard(c card.Card) htmlCard {
	hc := htmlCard{Card: c}
	if !c.PublishedAt.IsZero() {
		hc.Datetime = c.PublishedAt.Format("2006-01-02")
		hc.Published = c.PublishedAt.Format("2 Jan 2006")
	}
	return hc
}
