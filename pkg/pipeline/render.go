package pipeline

import (
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/render"
)

// RenderScene generates output artifacts in the requested formats.
func RenderScene(scene render.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(scene, format, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(scene render.Scene, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return render.RenderHTML(scene)
	case FormatSVG:
		var svgOpts []render.SVGOption
		if opts.Labels {
			svgOpts = append(svgOpts, render.WithSVGLabels())
		}
		return render.RenderSVG(scene, svgOpts...), nil
	case FormatPNG:
		var pngOpts []render.PNGOption
		if opts.Scale > 0 {
			pngOpts = append(pngOpts, render.WithPNGScale(opts.Scale))
		}
		return render.RenderPNG(scene, pngOpts...)
	case FormatJSON:
		return render.RenderJSON(scene)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}
