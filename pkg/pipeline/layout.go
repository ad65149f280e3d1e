package pipeline

import (
	"context"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/grid"
	"github.com/masonworks/cardgrid/pkg/render"
)

// ComputeScene runs one board pass over the fetched cards and packages
// the result as a renderable scene.
//
// The mode follows opts.Mode when set; otherwise the container the page
// declared decides, the same rule the live board applies. When
// opts.ProbeImages is set, image dimensions are probed first so card
// heights come from real aspect ratios instead of the typographic
// default.
func ComputeScene(ctx context.Context, fetched Fetched, opts Options) (render.Scene, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return render.Scene{}, err
	}

	mode := grid.ModeFor(fetched.Container)
	if opts.Mode != "" {
		parsed, err := grid.ParseMode(opts.Mode)
		if err != nil {
			return render.Scene{}, err
		}
		mode = parsed
	}

	store := card.NewStore()
	store.Append(fetched.Cards...)

	board := grid.New(store,
		grid.WithMode(mode),
		grid.WithWidth(opts.Width),
		grid.WithSeed(opts.Seed),
		grid.WithLogger(opts.Logger),
	)

	if opts.ProbeImages {
		prober := opts.Prober
		if prober == nil {
			prober = content.NewProber(content.WithProberLogger(opts.Logger))
		}
		if aspects := prober.Aspects(ctx, fetched.Cards); len(aspects) > 0 {
			board.ApplyAspects(aspects)
		}
	}

	board.RequestLayout("pipeline")
	view := board.View()

	scene := render.Scene{
		Title:    opts.Title,
		Mode:     view.Mode.String(),
		Width:    opts.Width,
		Seed:     opts.Seed,
		Cards:    view.Cards,
		Result:   view.Result,
		States:   view.States,
		Entering: view.Entering,
		Page:     fetched.Cursor.Page,
		Pages:    fetched.Cursor.Pages,
		NextURL:  fetched.Cursor.NextURL,
	}
	return scene, nil
}
