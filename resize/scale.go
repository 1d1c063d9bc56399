// Package resize maps bitmaps onto a target size, by ordinary resampling or
// by seam carving when an engine is registered.
package resize

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"imgex/bitmap"

	"golang.org/x/image/draw"
)

type options struct {
	pos    Position
	filter draw.Interpolator
	bg     color.Color
	logger *slog.Logger
	carve  CarveOptions
}

// Option tunes Scale.
type Option func(o *options)

// WithPosition anchors the source for cropping, padding and tiling.
func WithPosition(p Position) Option {
	return func(o *options) {
		o.pos = p
	}
}

// WithFilter selects the resampling filter, draw.CatmullRom by default.
func WithFilter(f draw.Interpolator) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithBackground paints the canvas before the source is drawn over it.
// Without a background uncovered pixels are transparent.
func WithBackground(c color.Color) Option {
	return func(o *options) {
		o.bg = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCarveOptions tunes ModeCarve.
func WithCarveOptions(c CarveOptions) Option {
	return func(o *options) {
		o.carve = c
	}
}

// plan is where the source rectangle src lands on a canvas.
type plan struct {
	canvas   image.Point
	src, dst image.Rectangle
	resample bool
	tile     bool
}

func layout(sw, sh, dw, dh int, mode Mode, pos Position) plan {
	sr := float64(sw) / float64(sh)
	dr := float64(dw) / float64(dh)
	atLeast1 := func(v float64) int { return max(1, int(math.Round(v))) }
	fitW, fitH := atLeast1(float64(dh)*sr), atLeast1(float64(dw)/sr)
	fillW, fillH := atLeast1(float64(sh)*dr), atLeast1(float64(sw)/dr)

	p := plan{canvas: image.Pt(dw, dh), resample: true}
	srcX, srcY, srcW, srcH := 0, 0, sw, sh
	dstX, dstY, dstW, dstH := 0, 0, dw, dh

	switch mode {
	case ModeNone, ModeCrop, ModeTile:
		p.resample = false
		p.tile = mode == ModeTile && (sw < dw || sh < dh)
		if sw > dw {
			srcX, srcW = pos.X.offset(sw, dw), dw
		} else if sw < dw {
			if mode == ModeCrop {
				p.canvas.X = sw
			} else {
				dstX = pos.X.offset(dw, sw)
			}
		}
		if sh > dh {
			srcY, srcH = pos.Y.offset(sh, dh), dh
		} else if sh < dh {
			if mode == ModeCrop {
				p.canvas.Y = sh
			} else {
				dstY = pos.Y.offset(dh, sh)
			}
		}
		dstW, dstH = srcW, srcH

	case ModeFit:
		if sr > dr {
			dstH = fitH
		} else if sr < dr {
			dstW = fitW
		}
		p.canvas = image.Pt(dstW, dstH)

	case ModeFill:
		if sr > dr {
			srcX, srcW = pos.X.offset(sw, fillW), fillW
		} else if sr < dr {
			srcY, srcH = pos.Y.offset(sh, fillH), fillH
		}

	case ModePad:
		if sr > dr {
			dstY, dstH = pos.Y.offset(dh, fitH), fitH
		} else if sr < dr {
			dstX, dstW = pos.X.offset(dw, fitW), fitW
		}

	case ModeCarve:
		if sr > dr {
			dstW = fitW
		} else if sr < dr {
			dstH = fitH
		}
		p.canvas = image.Pt(dstW, dstH)
	}

	p.src = image.Rect(srcX, srcY, srcX+srcW, srcY+srcH)
	p.dst = image.Rect(dstX, dstY, dstX+dstW, dstY+dstH)
	return p
}

// tileOrigin is the top-left corner of the first tile along one axis.
func tileOrigin(a Align, target, length int) int {
	if target <= length {
		return a.offset(target, length)
	}
	switch a {
	case AlignCenter:
		return (target%length)/2 - length
	case AlignEnd:
		return target%length - length
	default:
		return 0
	}
}

// Scale maps b onto width x height according to mode and returns a new
// truecolor bitmap. The result carries alpha only when some pixel is not
// opaque. ModeFit and ModeCrop can return a smaller size than asked.
func Scale(b *bitmap.Bitmap, width, height int, mode Mode, opts ...Option) (*bitmap.Bitmap, error) {
	o := options{
		pos:    Center,
		filter: draw.CatmullRom,
		logger: slog.New(slog.DiscardHandler),
		carve:  DefaultCarveOptions,
	}
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: target size %dx%d", bitmap.ErrInvalidParameter, width, height)
	}
	if mode > ModeCarve {
		return nil, fmt.Errorf("%w: scale mode %d", bitmap.ErrInvalidParameter, mode)
	}
	if mode == ModeCarve && !Available() {
		return nil, fmt.Errorf("%w: %s mode needs a seam carving engine", bitmap.ErrFeatureUnavailable, mode)
	}

	p := layout(b.Width, b.Height, width, height, mode, o.pos)
	o.logger.Info("resizing", "mode", mode, "width", p.dst.Dx(), "height", p.dst.Dy(),
		"canvas_width", p.canvas.X, "canvas_height", p.canvas.Y)

	src := b.NRGBA()
	dest := image.NewNRGBA(image.Rectangle{Max: p.canvas})
	op := draw.Src
	if o.bg != nil {
		draw.Draw(dest, dest.Bounds(), image.NewUniform(o.bg), image.Point{}, draw.Src)
		op = draw.Over
	}

	switch {
	case p.tile:
		x0, y0 := tileOrigin(o.pos.X, p.canvas.X, b.Width), tileOrigin(o.pos.Y, p.canvas.Y, b.Height)
		for y := y0; y < p.canvas.Y; y += b.Height {
			for x := x0; x < p.canvas.X; x += b.Width {
				draw.Draw(dest, image.Rect(x, y, x+b.Width, y+b.Height), src, image.Point{}, op)
			}
		}
	case p.resample:
		o.filter.Scale(dest, p.dst, src, p.src, op, nil)
	default:
		draw.Draw(dest, p.dst, src, p.src.Min, op)
	}

	out, err := bitmap.FromImage(dest)
	if err != nil {
		return nil, err
	}
	if mode == ModeCarve && (width != out.Width || height != out.Height) {
		o.logger.Debug("carving", "from_width", out.Width, "from_height", out.Height, "width", width, "height", height)
		return Carve(out, width, height, o.carve)
	}
	return out, nil
}
