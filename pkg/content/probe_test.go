package content

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/masonworks/cardgrid/pkg/card"
)

func TestProberAspects(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 150))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tall.png":
			w.Write(buf.Bytes())
		case "/broken.png":
			w.Write([]byte("not an image"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cards := []card.Card{
		{ID: "tall", ImageURL: server.URL + "/tall.png"},
		{ID: "broken", ImageURL: server.URL + "/broken.png"},
		{ID: "missing", ImageURL: server.URL + "/gone.png"},
		{ID: "plain"},
	}

	got := NewProber().Aspects(context.Background(), cards)

	if len(got) != 1 {
		t.Fatalf("expected 1 probed aspect, got %d: %v", len(got), got)
	}
	if ratio, ok := got["tall"]; !ok || math.Abs(ratio-1.5) > 1e-9 {
		t.Errorf("aspect for tall = %v, want 1.5", ratio)
	}
}

func TestProberAspectsEmpty(t *testing.T) {
	got := NewProber().Aspects(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
