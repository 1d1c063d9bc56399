package palette

import (
	"fmt"
	"image"

	"imgex/bitmap"

	"github.com/soniakeys/quant/median"
	"golang.org/x/image/draw"
)

// Remap draws img onto pal, optionally with Floyd-Steinberg error diffusion.
func Remap(img image.Image, pal bitmap.Palette, dither bool) (*bitmap.Bitmap, error) {
	if len(pal) == 0 || len(pal) > bitmap.MaxPaletteSize {
		return nil, fmt.Errorf("%w: palette size %d outside 1..%d", bitmap.ErrInvalidParameter, len(pal), bitmap.MaxPaletteSize)
	}

	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal.ColorPalette(-1))
	render(dest, img, dither)
	return bitmap.FromImage(dest)
}

// Reduce picks at most n colors for img by median cut and maps img onto
// them. n must be within 2..256.
func Reduce(img image.Image, n int, dither bool) (*bitmap.Bitmap, error) {
	if n < 2 || n > bitmap.MaxPaletteSize {
		return nil, fmt.Errorf("%w: %d colors outside 2..%d", bitmap.ErrInvalidParameter, n, bitmap.MaxPaletteSize)
	}

	sr := img.Bounds()
	pal := median.Quantizer(n).Paletted(img).Palette
	dest := image.NewPaletted(image.Rect(0, 0, sr.Dx(), sr.Dy()), pal)
	render(dest, img, dither)
	return bitmap.FromImage(dest)
}

func render(dest *image.Paletted, img image.Image, dither bool) {
	dr, sp := dest.Bounds(), img.Bounds().Min
	if dither {
		draw.FloydSteinberg.Draw(dest, dr, img, sp)
	} else {
		draw.Draw(dest, dr, img, sp, draw.Src)
	}
}
