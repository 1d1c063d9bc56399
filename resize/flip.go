package resize

import (
	"fmt"
	"strings"

	"imgex/bitmap"
)

// Flip selects the axes Mirror reverses.
type Flip uint8

const (
	FlipHorizontal Flip = 1 << iota // swap left and right
	FlipVertical                    // swap top and bottom
	FlipBoth       = FlipHorizontal | FlipVertical
)

var flipNames = map[string]Flip{
	"horizontal": FlipHorizontal,
	"vertical":   FlipVertical,
	"both":       FlipBoth,
}

func (f Flip) String() string {
	switch f {
	case FlipHorizontal:
		return "horizontal"
	case FlipVertical:
		return "vertical"
	case FlipBoth:
		return "both"
	}
	return fmt.Sprintf("Flip(%d)", f)
}

// ParseFlip returns the flip for a case-insensitive name.
func ParseFlip(name string) (Flip, error) {
	f, ok := flipNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown flip %q", bitmap.ErrInvalidParameter, name)
	}
	return f, nil
}

// Mirror flips b in place. Indexed bitmaps keep their palette.
func Mirror(b *bitmap.Bitmap, f Flip) error {
	if f == 0 || f&^FlipBoth != 0 {
		return fmt.Errorf("%w: flip %d", bitmap.ErrInvalidParameter, f)
	}

	bpp, stride := b.Format.BytesPerPixel(), b.Stride()
	if f&FlipHorizontal != 0 {
		for y := range b.Height {
			row := b.Pix[y*stride : (y+1)*stride]
			for l, r := 0, (b.Width-1)*bpp; l < r; l, r = l+bpp, r-bpp {
				for k := range bpp {
					row[l+k], row[r+k] = row[r+k], row[l+k]
				}
			}
		}
	}
	if f&FlipVertical != 0 {
		tmp := make([]uint8, stride)
		for top, bot := 0, b.Height-1; top < bot; top, bot = top+1, bot-1 {
			t := b.Pix[top*stride : (top+1)*stride]
			u := b.Pix[bot*stride : (bot+1)*stride]
			copy(tmp, t)
			copy(t, u)
			copy(u, tmp)
		}
	}
	return nil
}
