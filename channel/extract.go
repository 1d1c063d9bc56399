// Package channel splits bitmaps into single-component gray planes and
// merges them back.
package channel

import (
	"fmt"

	"imgex/bitmap"
	"imgex/colorspace"
)

// Planes is the fixed-order result of an extraction.
type Planes interface {
	Space() colorspace.Space
	// Components returns the planes in the order of Space().Components().
	Components() []*bitmap.Bitmap
	// Alpha is nil unless the extraction asked for it.
	Alpha() *bitmap.Bitmap
}

type RGBPlanes struct {
	R, G, B *bitmap.Bitmap
	A       *bitmap.Bitmap
}

func (p RGBPlanes) Space() colorspace.Space       { return colorspace.RGB }
func (p RGBPlanes) Components() []*bitmap.Bitmap { return []*bitmap.Bitmap{p.R, p.G, p.B} }
func (p RGBPlanes) Alpha() *bitmap.Bitmap        { return p.A }

type HSLPlanes struct {
	H, S, L *bitmap.Bitmap
	A       *bitmap.Bitmap
}

func (p HSLPlanes) Space() colorspace.Space       { return colorspace.HSL }
func (p HSLPlanes) Components() []*bitmap.Bitmap { return []*bitmap.Bitmap{p.H, p.S, p.L} }
func (p HSLPlanes) Alpha() *bitmap.Bitmap        { return p.A }

type HSVPlanes struct {
	H, S, V *bitmap.Bitmap
	A       *bitmap.Bitmap
}

func (p HSVPlanes) Space() colorspace.Space       { return colorspace.HSV }
func (p HSVPlanes) Components() []*bitmap.Bitmap { return []*bitmap.Bitmap{p.H, p.S, p.V} }
func (p HSVPlanes) Alpha() *bitmap.Bitmap        { return p.A }

type CMYKPlanes struct {
	C, M, Y, K *bitmap.Bitmap
	A          *bitmap.Bitmap
}

func (p CMYKPlanes) Space() colorspace.Space       { return colorspace.CMYK }
func (p CMYKPlanes) Components() []*bitmap.Bitmap { return []*bitmap.Bitmap{p.C, p.M, p.Y, p.K} }
func (p CMYKPlanes) Alpha() *bitmap.Bitmap        { return p.A }

type options struct {
	alpha bool
}

// Option tunes an extraction.
type Option func(o *options)

// WithAlpha also extracts the alpha channel, fully opaque when the source
// has none.
func WithAlpha() Option {
	return func(o *options) {
		o.alpha = true
	}
}

// Extract decomposes b into the planes of space. Hue spans [0,255] for
// [0°,360°), every other component maps its [0,1] range onto [0,255]. The
// concrete result type is RGBPlanes, HSLPlanes, HSVPlanes or CMYKPlanes.
func Extract(b *bitmap.Bitmap, space colorspace.Space, opts ...Option) (Planes, error) {
	var o options
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	raw, alpha, err := extract(b, space, o)
	if err != nil {
		return nil, err
	}

	switch space {
	case colorspace.HSL:
		return HSLPlanes{H: raw[0], S: raw[1], L: raw[2], A: alpha}, nil
	case colorspace.HSV:
		return HSVPlanes{H: raw[0], S: raw[1], V: raw[2], A: alpha}, nil
	case colorspace.CMYK:
		return CMYKPlanes{C: raw[0], M: raw[1], Y: raw[2], K: raw[3], A: alpha}, nil
	default:
		return RGBPlanes{R: raw[0], G: raw[1], B: raw[2], A: alpha}, nil
	}
}

// ExtractCMYK is Extract for CMYK.
func ExtractCMYK(b *bitmap.Bitmap, opts ...Option) (CMYKPlanes, error) {
	p, err := Extract(b, colorspace.CMYK, opts...)
	if err != nil {
		return CMYKPlanes{}, err
	}
	return p.(CMYKPlanes), nil
}

// ExtractHSL is Extract for HSL.
func ExtractHSL(b *bitmap.Bitmap, opts ...Option) (HSLPlanes, error) {
	p, err := Extract(b, colorspace.HSL, opts...)
	if err != nil {
		return HSLPlanes{}, err
	}
	return p.(HSLPlanes), nil
}

// ExtractHSV is Extract for HSV.
func ExtractHSV(b *bitmap.Bitmap, opts ...Option) (HSVPlanes, error) {
	p, err := Extract(b, colorspace.HSV, opts...)
	if err != nil {
		return HSVPlanes{}, err
	}
	return p.(HSVPlanes), nil
}

// ExtractRGB is Extract for RGB.
func ExtractRGB(b *bitmap.Bitmap, opts ...Option) (RGBPlanes, error) {
	p, err := Extract(b, colorspace.RGB, opts...)
	if err != nil {
		return RGBPlanes{}, err
	}
	return p.(RGBPlanes), nil
}

func extract(b *bitmap.Bitmap, space colorspace.Space, o options) ([]*bitmap.Bitmap, *bitmap.Bitmap, error) {
	if space > colorspace.CMYK {
		return nil, nil, fmt.Errorf("%w: color space %s", bitmap.ErrInvalidParameter, space)
	}
	src, err := b.Truecolor()
	if err != nil {
		return nil, nil, err
	}

	n := space.Len()
	planes := make([]*bitmap.Bitmap, n)
	for i := range planes {
		if planes[i], err = bitmap.NewGray(src.Width, src.Height); err != nil {
			return nil, nil, err
		}
	}
	var alpha *bitmap.Bitmap
	if o.alpha {
		if alpha, err = bitmap.NewGray(src.Width, src.Height); err != nil {
			return nil, nil, err
		}
	}

	bpp := src.Format.BytesPerPixel()
	for i, j := 0, 0; i < len(src.Pix); i, j = i+bpp, j+1 {
		p := src.Pix[i : i+bpp : i+bpp]
		var v [4]float64
		if space == colorspace.RGB {
			v = [4]float64{float64(p[0]), float64(p[1]), float64(p[2])}
		} else {
			v = space.Decompose(colorspace.ByteToFloat(p[0]), colorspace.ByteToFloat(p[1]), colorspace.ByteToFloat(p[2]))
		}
		for c := range n {
			if space == colorspace.RGB {
				planes[c].Pix[j] = uint8(v[c])
			} else {
				planes[c].Pix[j] = colorspace.FloatToByte(v[c])
			}
		}
		if alpha != nil {
			if src.Format.Alpha {
				alpha.Pix[j] = p[3]
			} else {
				alpha.Pix[j] = 0xff
			}
		}
	}
	return planes, alpha, nil
}
