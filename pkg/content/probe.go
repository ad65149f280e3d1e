package content

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	// Decoders for the formats blogs actually serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/card"
)

// probeTimeout caps how long a single image fetch may take. Probing is a
// layout refinement, not a load dependency, so slow images are abandoned.
const probeTimeout = 3 * time.Second

// maxConcurrentProbes bounds parallel image fetches against one origin.
const maxConcurrentProbes = 10

// Prober fetches feature images and reports their intrinsic aspect ratios
// (height over width) for the layout height oracle. Failures are silent:
// a card whose image cannot be probed keeps the default estimate.
type Prober struct {
	http   *http.Client
	logger *log.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberHTTPClient overrides the HTTP client used for image fetches.
func WithProberHTTPClient(c *http.Client) ProberOption {
	return func(p *Prober) {
		if c != nil {
			p.http = c
		}
	}
}

// WithProberLogger sets the logger for probe failures.
func WithProberLogger(logger *log.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProber creates an image prober.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		http:   NewHTTPClient(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Aspects probes every carded feature image concurrently and returns the
// ratios it could determine, keyed by card ID. Cards without an image are
// skipped; probe errors drop the card from the result.
func (p *Prober) Aspects(ctx context.Context, cards []card.Card) map[string]float64 {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxConcurrentProbes)
		out = make(map[string]float64)
	)

	for _, c := range cards {
		if !c.HasImage() {
			continue
		}
		wg.Add(1)
		go func(c card.Card) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ratio, err := p.probe(ctx, c.ImageURL)
			if err != nil {
				p.logger.Debug("image probe failed", "card", c.ID, "error", err)
				return
			}
			mu.Lock()
			out[c.ID] = ratio
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return out
}

// probe fetches one image and decodes just its header for dimensions.
func (p *Prober) probe(ctx context.Context, url string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("image reports %dx%d", cfg.Width, cfg.Height)
	}
	return float64(cfg.Height) / float64(cfg.Width), nil
}
