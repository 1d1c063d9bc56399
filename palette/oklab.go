// OKLab conversion based on:
// https://bottosson.github.io/posts/oklab/

package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"imgex/bitmap"
)

// Lab is a color in the OKLab space.
type Lab struct {
	L float64 // perceived lightness
	A float64 // how green/red the color is
	B float64 // how blue/yellow the color is
}

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

// LabOf converts an sRGB color.
func LabOf(c bitmap.RGB) Lab {
	r := toLinear(float64(c.R) / 255)
	g := toLinear(float64(c.G) / 255)
	b := toLinear(float64(c.B) / 255)

	l := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	m := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	s := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return Lab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// LabPalette is a palette converted to OKLab for perceptual matching.
type LabPalette []Lab

func NewLabPalette(p bitmap.Palette) LabPalette {
	lp := make(LabPalette, len(p))
	for i, c := range p {
		lp[i] = LabOf(c)
	}
	return lp
}

// Index returns the entry closest to lc, the first one on ties.
func (p LabPalette) Index(lc Lab) int {
	ret, bestSum := 0, math.MaxFloat64
	for i, v := range p {
		dL := lc.L - v.L
		da := lc.A - v.A
		db := lc.B - v.B
		sum := dL*dL + da*da + db*db
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

// RemapPerceptual maps every pixel of img to the palette entry nearest in
// OKLab. Alpha is ignored. Matches are cached per color.
func RemapPerceptual(img image.Image, pal bitmap.Palette) (*bitmap.Bitmap, error) {
	if len(pal) == 0 || len(pal) > bitmap.MaxPaletteSize {
		return nil, fmt.Errorf("%w: palette size %d outside 1..%d", bitmap.ErrInvalidParameter, len(pal), bitmap.MaxPaletteSize)
	}

	sr := img.Bounds()
	dest, err := bitmap.NewIndexed(sr.Dx(), sr.Dy(), pal)
	if err != nil {
		return nil, err
	}

	lp := NewLabPalette(pal)
	cache := map[bitmap.RGB]uint8{}
	i := 0
	for y := sr.Min.Y; y < sr.Max.Y; y++ {
		for x := sr.Min.X; x < sr.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			key := bitmap.RGB{R: c.R, G: c.G, B: c.B}
			idx, ok := cache[key]
			if !ok {
				idx = uint8(lp.Index(LabOf(key)))
				cache[key] = idx
			}
			dest.Pix[i] = idx
			i++
		}
	}
	return dest, nil
}
