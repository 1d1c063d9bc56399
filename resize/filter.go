package resize

import (
	"fmt"
	"image"
	"strings"

	"imgex/bitmap"

	nfnt "github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// kernel adapts an nfnt/resize filter to draw.Interpolator. Scale resamples
// the source rectangle to the size of dr and draws it with op, opts are
// ignored. Transform falls back to draw.CatmullRom.
type kernel struct {
	interp nfnt.InterpolationFunction
}

var _ draw.Interpolator = kernel{}

func (k kernel) Scale(dst draw.Image, dr image.Rectangle, src image.Image, sr image.Rectangle, op draw.Op, opts *draw.Options) {
	if dr.Empty() || sr.Empty() {
		return
	}
	if s, ok := src.(interface{ SubImage(image.Rectangle) image.Image }); ok {
		src = s.SubImage(sr)
	} else {
		tmp := image.NewNRGBA(image.Rectangle{Max: sr.Size()})
		draw.Draw(tmp, tmp.Bounds(), src, sr.Min, draw.Src)
		src = tmp
	}

	scaled := nfnt.Resize(uint(dr.Dx()), uint(dr.Dy()), src, k.interp)
	draw.Draw(dst, dr, scaled, scaled.Bounds().Min, op)
}

func (k kernel) Transform(dst draw.Image, m f64.Aff3, src image.Image, sr image.Rectangle, op draw.Op, opts *draw.Options) {
	draw.CatmullRom.Transform(dst, m, src, sr, op, opts)
}

var filterNames = []string{
	"nearest", "approxbilinear", "bilinear", "catmullrom",
	"bicubic", "mitchell", "lanczos2", "lanczos3",
}

var filters = map[string]draw.Interpolator{
	"nearest":        draw.NearestNeighbor,
	"approxbilinear": draw.ApproxBiLinear,
	"bilinear":       draw.BiLinear,
	"catmullrom":     draw.CatmullRom,
	"bicubic":        kernel{nfnt.Bicubic},
	"mitchell":       kernel{nfnt.MitchellNetravali},
	"lanczos2":       kernel{nfnt.Lanczos2},
	"lanczos3":       kernel{nfnt.Lanczos3},
}

// FilterNames lists the accepted resampling filters.
func FilterNames() []string {
	return filterNames
}

// ParseFilter returns the interpolator for a filter name.
func ParseFilter(name string) (draw.Interpolator, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter %q", bitmap.ErrInvalidParameter, name)
	}
	return f, nil
}
