package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const cardHoverCSS = `
    .card rect.card-body { transition: stroke-width 0.2s ease; }
    .card { transition: opacity 0.2s ease, transform 0.2s ease; }
    .card.raised rect.card-body { stroke-width: 3; }
    .card.dimmed { opacity: 0.45; }`

const cardHoverJS = `
    document.querySelectorAll('.card').forEach(el => {
      el.addEventListener('mouseenter', () => {
        document.querySelectorAll('.card').forEach(c => c.classList.toggle('dimmed', c !== el));
        el.classList.add('raised');
        el.parentNode.appendChild(el);
      });
      el.addEventListener('mouseleave', () => {
        document.querySelectorAll('.card').forEach(c => c.classList.remove('dimmed', 'raised'));
      });
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels bool
	static bool
}

// WithSVGLabels draws card titles as text instead of placeholder bars.
func WithSVGLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithSVGStatic omits the embedded hover script, for sinks that strip
// or forbid scripts (PNG conversion, sanitized embedding).
func WithSVGStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

// RenderSVG renders the scene as a standalone SVG preview: one group
// per card with the image region and text bars sketched in. Hovering a
// card raises it and dims its siblings, mirroring the pile focus
// behavior.
func RenderSVG(s Scene, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	width, height := s.Width, s.Height()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"#f4f5f6\"/>\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardHoverCSS)

	if s.Mode == "pile" {
		renderPileCards(&buf, s, &r)
	} else {
		renderMasonryCards(&buf, s, &r)
	}

	if !r.static {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", cardHoverJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderMasonryCards(buf *bytes.Buffer, s Scene, r *svgRenderer) {
	byID := cardIndex(s)
	for _, f := range s.Result.Frames {
		fmt.Fprintf(buf, "  <g id=\"card-%s\" class=\"card\" transform=\"translate(%.1f %.1f)\">\n",
			escapeAttr(f.CardID), f.X, f.Y)
		c := byID[f.CardID]
		renderCardBody(buf, f.Width, f.Height, c.HasImage(), titleFor(r, c.Title))
		buf.WriteString("  </g>\n")
	}
}

func renderPileCards(buf *bytes.Buffer, s Scene, r *svgRenderer) {
	byID := cardIndex(s)
	cw, ch := pileCardSize(s.Width)
	baseX := (s.Width - cw) / 2
	baseY := s.Height()*0.5 - ch/2

	for _, st := range s.States {
		x, y := baseX+st.DX, baseY+st.DY
		fmt.Fprintf(buf, "  <g id=\"card-%s\" class=\"card\" transform=\"translate(%.1f %.1f) rotate(%.2f %.1f %.1f)\">\n",
			escapeAttr(st.CardID), x, y, st.Rotation, cw/2, ch/2)
		c := byID[st.CardID]
		renderCardBody(buf, cw, ch, c.HasImage(), titleFor(r, c.Title))
		buf.WriteString("  </g>\n")
	}
}

// renderCardBody sketches one card: body, image region, and either the
// title text or placeholder bars.
func renderCardBody(buf *bytes.Buffer, w, h float64, hasImage bool, title string) {
	fmt.Fprintf(buf, "    <rect class=\"card-body\" width=\"%.1f\" height=\"%.1f\" rx=\"5\" fill=\"#ffffff\" stroke=\"#d4d9de\" stroke-width=\"1\"/>\n", w, h)

	textTop := 16.0
	if hasImage {
		imgH := min(w*2.0/3.0, h*0.6)
		fmt.Fprintf(buf, "    <rect width=\"%.1f\" height=\"%.1f\" rx=\"5\" fill=\"#c3cdd6\"/>\n", w, imgH)
		textTop = imgH + 20
	}

	if title != "" {
		fmt.Fprintf(buf, "    <text x=\"16\" y=\"%.1f\" font-family=\"sans-serif\" font-size=\"15\" fill=\"#15171a\">%s</text>\n",
			textTop+12, escapeText(title))
		textTop += 28
	} else {
		fmt.Fprintf(buf, "    <rect x=\"16\" y=\"%.1f\" width=\"%.1f\" height=\"12\" rx=\"3\" fill=\"#48525c\"/>\n", textTop, w*0.7-16)
		textTop += 24
	}

	for i := 0; i < 2 && textTop+10 < h-12; i++ {
		barW := w - 32
		if i == 1 {
			barW *= 0.6
		}
		fmt.Fprintf(buf, "    <rect x=\"16\" y=\"%.1f\" width=\"%.1f\" height=\"8\" rx=\"3\" fill=\"#d4d9de\"/>\n", textTop, barW)
		textTop += 16
	}
}

// pileCardSize picks the nominal card footprint for a scattered canvas;
// pile states carry transforms, not dimensions.
func pileCardSize(width float64) (w, h float64) {
	w = width / 3
	if w < 220 {
		w = 220
	}
	if w > 360 {
		w = 360
	}
	return w, w * 1.25
}

func cardIndex(s Scene) map[string]sceneCard {
	idx := make(map[string]sceneCard, len(s.Cards))
	for _, c := range s.Cards {
		idx[c.ID] = sceneCard{Title: c.Title, Image: c.ImageURL != ""}
	}
	return idx
}

type sceneCard struct {
	Title string
	Image bool
}

func (c sceneCard) HasImage() bool { return c.Image }

func titleFor(r *svgRenderer, title string) string {
	if !r.labels {
		return ""
	}
	if runes := []rune(title); len(runes) > 40 {
		title = string(runes[:37]) + "..."
	}
	return title
}

func escapeText(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeAttr(s string) string {
	return escapeText(s)
}
