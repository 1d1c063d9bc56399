package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// FromImage copies img into a new bitmap. Paletted images stay indexed,
// everything else becomes truecolor, with alpha only when img is not opaque.
func FromImage(img image.Image) (*Bitmap, error) {
	r := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty image bounds %v", ErrInvalidParameter, r)
	}

	if p, ok := img.(*image.Paletted); ok {
		return fromPaletted(p)
	}

	alpha := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		alpha = !o.Opaque()
	}

	b, err := New(r.Dx(), r.Dy(), Truecolor(alpha))
	if err != nil {
		return nil, err
	}
	bpp := b.Format.BytesPerPixel()
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			b.Pix[i+0] = c.R
			b.Pix[i+1] = c.G
			b.Pix[i+2] = c.B
			if alpha {
				b.Pix[i+3] = c.A
			}
			i += bpp
		}
	}
	return b, nil
}

func fromPaletted(p *image.Paletted) (*Bitmap, error) {
	pal, transparent, err := PaletteFrom(p.Palette)
	if err != nil {
		return nil, err
	}

	r := p.Bounds()
	b, err := NewIndexed(r.Dx(), r.Dy(), pal)
	if err != nil {
		return nil, err
	}
	b.SetTransparent(transparent)
	for y := 0; y < b.Height; y++ {
		row := p.Pix[y*p.Stride : y*p.Stride+b.Width]
		dst := b.Pix[y*b.Width : (y+1)*b.Width]
		for x, idx := range row {
			if int(idx) >= len(pal) {
				return nil, fmt.Errorf("%w: index %d at (%d,%d) with %d palette entries",
					ErrInvalidParameter, idx, x, y, len(pal))
			}
			dst[x] = idx
		}
	}
	return b, nil
}

// NRGBA copies b into a new image.NRGBA for use with the image and draw
// packages.
func (b *Bitmap) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	for y := range b.Height {
		for x := range b.Width {
			c := b.nrgbaAt(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}
