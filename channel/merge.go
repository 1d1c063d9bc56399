package channel

import (
	"fmt"

	"imgex/bitmap"
	"imgex/colorspace"
)

// planeValues returns the 8-bit samples of a plane. Gray planes are read
// directly, anything else by luminance.
func planeValues(p *bitmap.Bitmap) []uint8 {
	if p.IsIndexed() && p.Transparent() < 0 && p.Palette.IsGrayRamp() {
		return p.Pix
	}

	out := make([]uint8, p.Width*p.Height)
	for y := range p.Height {
		for x := range p.Width {
			c, _ := p.Pixel(x, y)
			out[y*p.Width+x] = colorspace.Luminance(c.R, c.G, c.B)
		}
	}
	return out
}

// Merge rebuilds a truecolor bitmap from planes. The result has alpha only
// when p carries an alpha plane.
func Merge(p Planes) (*bitmap.Bitmap, error) {
	return MergePlanes(p.Space(), p.Components(), p.Alpha())
}

// MergePlanes is Merge for loose planes, in the component order of space.
func MergePlanes(space colorspace.Space, planes []*bitmap.Bitmap, alpha *bitmap.Bitmap) (*bitmap.Bitmap, error) {
	if space > colorspace.CMYK {
		return nil, fmt.Errorf("%w: color space %s", bitmap.ErrInvalidParameter, space)
	}
	if len(planes) != space.Len() {
		return nil, fmt.Errorf("%w: %s needs %d planes, got %d", bitmap.ErrInvalidParameter, space, space.Len(), len(planes))
	}
	all := planes
	if alpha != nil {
		all = append(append([]*bitmap.Bitmap(nil), planes...), alpha)
	}
	for i, p := range all {
		if p == nil {
			return nil, fmt.Errorf("%w: plane %d is nil", bitmap.ErrInvalidParameter, i)
		}
		if p.Width != all[0].Width || p.Height != all[0].Height {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, plane 0 is %dx%d", bitmap.ErrDimensionMismatch,
				i, p.Width, p.Height, all[0].Width, all[0].Height)
		}
	}

	vals := make([][]uint8, len(all))
	for i, p := range all {
		vals[i] = planeValues(p)
	}

	dst, err := bitmap.New(all[0].Width, all[0].Height, bitmap.Truecolor(alpha != nil))
	if err != nil {
		return nil, err
	}
	bpp := dst.Format.BytesPerPixel()
	n := space.Len()
	for j := range dst.Width * dst.Height {
		i := j * bpp
		if space == colorspace.RGB {
			dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2] = vals[0][j], vals[1][j], vals[2][j]
		} else {
			var v [4]float64
			for c := range n {
				v[c] = colorspace.ByteToFloat(vals[c][j])
			}
			r, g, b := space.Compose(v)
			dst.Pix[i+0] = colorspace.FloatToByte(r)
			dst.Pix[i+1] = colorspace.FloatToByte(g)
			dst.Pix[i+2] = colorspace.FloatToByte(b)
		}
		if alpha != nil {
			dst.Pix[i+3] = vals[n][j]
		}
	}
	return dst, nil
}

// Histogram returns the share of pixels at every level of a plane.
func Histogram(plane *bitmap.Bitmap) [256]float64 {
	var counts [256]int
	for _, v := range planeValues(plane) {
		counts[v]++
	}

	var h [256]float64
	total := float64(plane.Width * plane.Height)
	for i, c := range counts {
		h[i] = float64(c) / total
	}
	return h
}
