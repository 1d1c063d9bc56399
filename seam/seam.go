// Package seam is a pure Go seam carving engine. Importing it registers the
// engine with package resize, which enables resize.ModeCarve and
// resize.Carve.
package seam

import (
	"fmt"

	"imgex/bitmap"
	"imgex/resize"
)

func init() {
	resize.RegisterCarver(Engine{})
}

// Engine removes or duplicates low energy seams. The energy of a pixel is
// the gradient magnitude of its luminance, seams are found by dynamic
// programming over the cumulative energy.
type Engine struct{}

var _ resize.Carver = Engine{}

// Carve resizes b to exactly width x height. Width changes first unless
// opts.VerticalFirst is set. The result is truecolor, with alpha only when
// opts.KeepAlpha is set.
func (Engine) Carve(b *bitmap.Bitmap, width, height int, opts resize.CarveOptions) (*bitmap.Bitmap, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: carve to %dx%d", bitmap.ErrInvalidParameter, width, height)
	}
	if opts.MaxStep < 0 {
		return nil, fmt.Errorf("%w: carve max step %d is negative", bitmap.ErrInvalidParameter, opts.MaxStep)
	}

	g, err := newGrid(b, opts.KeepAlpha)
	if err != nil {
		return nil, fmt.Errorf("could not prepare carving: %w", err)
	}
	if opts.VerticalFirst {
		g.resizeHeight(height, opts)
		g.resizeWidth(width, opts)
	} else {
		g.resizeWidth(width, opts)
		g.resizeHeight(height, opts)
	}
	return g.bitmap()
}
