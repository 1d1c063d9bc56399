// Package palette provides the fixed and adaptive palettes used to constrain
// images before they are written as indexed BMP or ICO entries.
package palette

import (
	"fmt"
	"image/color"
	colorpal "image/color/palette"
	"os"
	"slices"

	"imgex/bitmap"
)

var named = map[string]func() bitmap.Palette{
	"bw":      func() bitmap.Palette { return bitmap.Palette{{}, {R: 0xff, G: 0xff, B: 0xff}} },
	"gray4":   func() bitmap.Palette { return grays(4) },
	"gray16":  func() bitmap.Palette { return grays(16) },
	"gray":    bitmap.GrayPalette,
	"vga16":   func() bitmap.Palette { return append(bitmap.Palette(nil), vga16...) },
	"websafe": func() bitmap.Palette { return fromColors(colorpal.WebSafe) },
	"plan9":   func() bitmap.Palette { return fromColors(colorpal.Plan9) },
}

// vga16 is the default 16 color text mode palette.
var vga16 = bitmap.Palette{
	{0x00, 0x00, 0x00}, {0x00, 0x00, 0xaa}, {0x00, 0xaa, 0x00}, {0x00, 0xaa, 0xaa},
	{0xaa, 0x00, 0x00}, {0xaa, 0x00, 0xaa}, {0xaa, 0x55, 0x00}, {0xaa, 0xaa, 0xaa},
	{0x55, 0x55, 0x55}, {0x55, 0x55, 0xff}, {0x55, 0xff, 0x55}, {0x55, 0xff, 0xff},
	{0xff, 0x55, 0x55}, {0xff, 0x55, 0xff}, {0xff, 0xff, 0x55}, {0xff, 0xff, 0xff},
}

func grays(n int) bitmap.Palette {
	p := make(bitmap.Palette, n)
	for i := range p {
		v := uint8(i * 0xff / (n - 1))
		p[i] = bitmap.RGB{R: v, G: v, B: v}
	}
	return p
}

func fromColors(cp color.Palette) bitmap.Palette {
	p, _, _ := bitmap.PaletteFrom(cp)
	return p
}

// Names lists the built in palettes, sorted.
func Names() []string {
	names := make([]string, 0, len(named))
	for k := range named {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Named returns a copy of a built in palette.
func Named(name string) (bitmap.Palette, bool) {
	f, ok := named[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// LoadPalette resolves name as a built in palette first, then as the path of
// a RIFF PAL file whose first palette is used.
func LoadPalette(name string) (bitmap.Palette, error) {
	if p, ok := Named(name); ok {
		return p, nil
	}

	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no palette named %q", bitmap.ErrInvalidParameter, name)
		}
		return nil, fmt.Errorf("could not open palette file: %w", err)
	}
	defer f.Close()

	pals, err := ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("could not read palette %q: %w", name, err)
	}
	if len(pals) == 0 {
		return nil, fmt.Errorf("%w: palette file %q holds no palette", bitmap.ErrEmptyInput, name)
	}
	return pals[0], nil
}
