// Package mask drives the alpha channel of a bitmap from another bitmap.
package mask

import (
	"fmt"
	"strings"

	"imgex/bitmap"
	"imgex/colorspace"
)

// Mode combines the mask value m with the current alpha a. Both are
// opacities where 255 is opaque.
type Mode uint8

const (
	// ModeSet replaces alpha with m.
	ModeSet Mode = iota
	// ModeMerge multiplies: a*m/255.
	ModeMerge
	// ModeScreen is the inverse multiply: a + m - a*m/255.
	ModeScreen
	// ModeAnd, ModeOr and ModeXor are bitwise on the 8-bit values.
	ModeAnd
	ModeOr
	ModeXor
)

var modeNames = [...]string{
	ModeSet:    "set",
	ModeMerge:  "merge",
	ModeScreen: "screen",
	ModeAnd:    "and",
	ModeOr:     "or",
	ModeXor:    "xor",
}

// ModeNames lists the accepted mode names.
func ModeNames() []string {
	return modeNames[:]
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode returns the mode for a case-insensitive name.
func ParseMode(name string) (Mode, error) {
	n := strings.ToLower(name)
	for i, v := range modeNames {
		if v == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mask mode %q", bitmap.ErrInvalidParameter, name)
}

func (m Mode) blend(a, v uint8) uint8 {
	switch m {
	case ModeMerge:
		return uint8((uint16(a)*uint16(v) + 127) / 255)
	case ModeScreen:
		return uint8(uint16(a) + uint16(v) - (uint16(a)*uint16(v)+127)/255)
	case ModeAnd:
		return a & v
	case ModeOr:
		return a | v
	case ModeXor:
		return a ^ v
	default:
		return v
	}
}

// Config tunes Apply.
type Config struct {
	// Tile repeats the mask over the target, wrapping coordinates modulo the
	// mask size. Without it the sizes must match.
	Tile bool
	// Invert stores 255 minus the blended value.
	Invert bool
	Mode   Mode
}

// values returns the 8-bit opacity samples of a mask: its alpha when it has
// one, its luminance otherwise. Gray planes are read directly.
func values(m *bitmap.Bitmap) []uint8 {
	n := m.Width * m.Height
	if m.IsIndexed() && m.Transparent() < 0 && m.Palette.IsGrayRamp() {
		return m.Pix
	}

	out := make([]uint8, n)
	if m.IsIndexed() {
		lum := make([]uint8, len(m.Palette))
		for i, c := range m.Palette {
			lum[i] = colorspace.Luminance(c.R, c.G, c.B)
		}
		for i, idx := range m.Pix {
			switch {
			case int(idx) == m.Transparent():
				out[i] = 0
			case m.Transparent() >= 0:
				out[i] = 0xff
			default:
				out[i] = lum[idx]
			}
		}
		return out
	}

	bpp := m.Format.BytesPerPixel()
	for i, j := 0, 0; j < n; i, j = i+bpp, j+1 {
		if m.Format.Alpha {
			out[j] = m.Pix[i+3]
		} else {
			out[j] = colorspace.Luminance(m.Pix[i], m.Pix[i+1], m.Pix[i+2])
		}
	}
	return out
}

// Apply blends the mask into the alpha channel of target, converting target
// to truecolor with alpha first. Sizes must match unless cfg.Tile is set.
func Apply(target, m *bitmap.Bitmap, cfg Config) error {
	if cfg.Mode > ModeXor {
		return fmt.Errorf("%w: mask mode %d", bitmap.ErrInvalidParameter, cfg.Mode)
	}
	if !cfg.Tile && (m.Width != target.Width || m.Height != target.Height) {
		return fmt.Errorf("%w: mask is %dx%d, target is %dx%d", bitmap.ErrDimensionMismatch,
			m.Width, m.Height, target.Width, target.Height)
	}

	vals := values(m)
	if err := target.EnableAlpha(); err != nil {
		return err
	}

	for y := range target.Height {
		row := vals[(y%m.Height)*m.Width : (y%m.Height+1)*m.Width]
		o := target.Offset(0, y) + 3
		for x := range target.Width {
			a := cfg.Mode.blend(target.Pix[o], row[x%m.Width])
			if cfg.Invert {
				a = 0xff - a
			}
			target.Pix[o] = a
			o += 4
		}
	}
	return nil
}
