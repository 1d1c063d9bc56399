package bitmap

import (
	"fmt"
	"image/color"
	"math"
)

// MaxPaletteSize is the largest palette an indexed bitmap can carry.
const MaxPaletteSize = 256

// RGB is a palette entry.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color, palette entries are always opaque.
func (c RGB) RGBA() (uint32, uint32, uint32, uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Palette maps indices to colors in insertion order.
type Palette []RGB

// GrayPalette returns the 256 entry ramp used by single-channel planes, where
// index i maps to gray level i.
func GrayPalette() Palette {
	p := make(Palette, MaxPaletteSize)
	for i := range p {
		p[i] = RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
	}
	return p
}

// PaletteFrom converts a color.Palette, dropping alpha. The index of the
// first fully transparent entry is returned, or -1.
func PaletteFrom(cp color.Palette) (Palette, int, error) {
	if len(cp) == 0 || len(cp) > MaxPaletteSize {
		return nil, -1, fmt.Errorf("%w: palette size %d outside 1..%d", ErrInvalidParameter, len(cp), MaxPaletteSize)
	}

	transparent := -1
	p := make(Palette, len(cp))
	for i, c := range cp {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		p[i] = RGB{R: nc.R, G: nc.G, B: nc.B}
		if nc.A == 0 && transparent < 0 {
			transparent = i
		}
	}
	return p, transparent, nil
}

// ColorPalette converts p for use with the image and draw packages. The
// transparent index, if any, becomes a zero color.
func (p Palette) ColorPalette(transparent int) color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		if i == transparent {
			cp[i] = color.NRGBA{}
			continue
		}
		cp[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return cp
}

// Index returns the entry closest to c in RGB distance.
func (p Palette) Index(c RGB) int {
	ret, bestSum := 0, math.MaxInt
	for i, v := range p {
		dr := int(c.R) - int(v.R)
		dg := int(c.G) - int(v.G)
		db := int(c.B) - int(v.B)
		sum := dr*dr + dg*dg + db*db
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

// Depth returns the smallest indexed bit depth able to address every entry.
func (p Palette) Depth() int {
	switch n := len(p); {
	case n <= 2:
		return 1
	case n <= 16:
		return 4
	default:
		return 8
	}
}

// IsGrayRamp reports whether entry i is gray level i for every entry.
func (p Palette) IsGrayRamp() bool {
	if len(p) != MaxPaletteSize {
		return false
	}
	for i, c := range p {
		if int(c.R) != i || int(c.G) != i || int(c.B) != i {
			return false
		}
	}
	return true
}
