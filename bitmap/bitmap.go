// Package bitmap holds the in-memory pixel buffers shared by every transform
// and encoder of the module.
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// Kind tells indexed bitmaps from truecolor ones.
type Kind uint8

const (
	KindTruecolor Kind = iota
	KindIndexed
)

// Format describes how pixels are stored.
type Format struct {
	Kind  Kind
	Depth int  // bits per index: 1, 4 or 8, indexed only
	Alpha bool // truecolor only
}

// Truecolor returns the truecolor format, with or without alpha.
func Truecolor(alpha bool) Format {
	return Format{Kind: KindTruecolor, Alpha: alpha}
}

// Indexed returns the palette format with the given index depth.
func Indexed(depth int) Format {
	return Format{Kind: KindIndexed, Depth: depth}
}

// BytesPerPixel is the storage size of one pixel. Indices always take one
// byte regardless of the depth, depth only limits the palette size.
func (f Format) BytesPerPixel() int {
	switch {
	case f.Kind == KindIndexed:
		return 1
	case f.Alpha:
		return 4
	default:
		return 3
	}
}

func (f Format) validate() error {
	switch f.Kind {
	case KindTruecolor:
		return nil
	case KindIndexed:
		switch f.Depth {
		case 1, 4, 8:
			return nil
		}
		return fmt.Errorf("%w: indexed depth %d", ErrUnsupportedFormat, f.Depth)
	}
	return fmt.Errorf("%w: pixel kind %d", ErrUnsupportedFormat, f.Kind)
}

func (f Format) String() string {
	switch {
	case f.Kind == KindIndexed:
		return fmt.Sprintf("indexed%d", f.Depth)
	case f.Alpha:
		return "rgba"
	default:
		return "rgb"
	}
}

// Bitmap is a dense row-major pixel buffer. Truecolor pixels are stored as
// R, G, B (, A) bytes, indexed pixels as one palette index per byte.
type Bitmap struct {
	Width   int
	Height  int
	Format  Format
	Pix     []uint8
	Palette Palette
	// transparent is the palette index treated as fully transparent plus
	// one, so that the zero value means none.
	transparent int
}

var _ image.Image = (*Bitmap)(nil)

// New allocates a zeroed bitmap. Indexed bitmaps start with a single black
// palette entry so that every zero index is valid.
func New(width, height int, f Format) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParameter, width, height)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	b := &Bitmap{
		Width:  width,
		Height: height,
		Format: f,
		Pix:    make([]uint8, width*height*f.BytesPerPixel()),
	}
	if f.Kind == KindIndexed {
		b.Palette = Palette{{}}
	}
	return b, nil
}

// NewIndexed allocates a zeroed indexed bitmap using pal, with the smallest
// depth able to address it.
func NewIndexed(width, height int, pal Palette) (*Bitmap, error) {
	if len(pal) == 0 || len(pal) > MaxPaletteSize {
		return nil, fmt.Errorf("%w: palette size %d outside 1..%d", ErrInvalidParameter, len(pal), MaxPaletteSize)
	}
	b, err := New(width, height, Indexed(pal.Depth()))
	if err != nil {
		return nil, err
	}
	b.Palette = append(Palette(nil), pal...)
	return b, nil
}

// NewGray allocates a single-channel 8-bit plane: an indexed bitmap over the
// gray ramp where the index is the value.
func NewGray(width, height int) (*Bitmap, error) {
	return NewIndexed(width, height, GrayPalette())
}

// Stride is the number of bytes between vertically adjacent pixels.
func (b *Bitmap) Stride() int {
	return b.Width * b.Format.BytesPerPixel()
}

// Offset returns the index of the first byte of pixel (x, y) in Pix.
func (b *Bitmap) Offset(x, y int) int {
	return y*b.Stride() + x*b.Format.BytesPerPixel()
}

// InBounds reports whether (x, y) addresses a pixel.
func (b *Bitmap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b *Bitmap) checkBounds(x, y int) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, b.Width, b.Height)
	}
	return nil
}

// IsIndexed reports whether pixels are palette indices.
func (b *Bitmap) IsIndexed() bool {
	return b.Format.Kind == KindIndexed
}

// Transparent returns the transparent palette index, or -1 when there is none.
func (b *Bitmap) Transparent() int {
	return b.transparent - 1
}

// SetTransparent marks palette index idx as transparent. A negative idx
// clears the mark.
func (b *Bitmap) SetTransparent(idx int) {
	b.transparent = max(idx, -1) + 1
}

// HasAlpha reports whether pixels can be partially transparent.
func (b *Bitmap) HasAlpha() bool {
	if b.IsIndexed() {
		return b.Transparent() >= 0
	}
	return b.Format.Alpha
}

// Pixel returns the color at (x, y).
func (b *Bitmap) Pixel(x, y int) (color.NRGBA, error) {
	if err := b.checkBounds(x, y); err != nil {
		return color.NRGBA{}, err
	}
	return b.nrgbaAt(x, y), nil
}

// nrgbaAt assumes (x, y) is in bounds.
func (b *Bitmap) nrgbaAt(x, y int) color.NRGBA {
	i := b.Offset(x, y)
	if b.IsIndexed() {
		idx := int(b.Pix[i])
		if idx == b.Transparent() {
			return color.NRGBA{}
		}
		c := b.Palette[idx]
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	p := b.Pix[i : i+b.Format.BytesPerPixel() : i+b.Format.BytesPerPixel()]
	a := uint8(0xff)
	if b.Format.Alpha {
		a = p[3]
	}
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: a}
}

// SetPixel stores c at (x, y). Indexed bitmaps store the nearest palette
// entry; truecolor bitmaps without alpha drop it.
func (b *Bitmap) SetPixel(x, y int, c color.Color) error {
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := b.Offset(x, y)
	if b.IsIndexed() {
		if nc.A == 0 && b.Transparent() >= 0 {
			b.Pix[i] = uint8(b.Transparent())
			return nil
		}
		b.Pix[i] = uint8(b.Palette.Index(RGB{R: nc.R, G: nc.G, B: nc.B}))
		return nil
	}
	b.Pix[i+0] = nc.R
	b.Pix[i+1] = nc.G
	b.Pix[i+2] = nc.B
	if b.Format.Alpha {
		b.Pix[i+3] = nc.A
	}
	return nil
}

// Index returns the palette index at (x, y) of an indexed bitmap.
func (b *Bitmap) Index(x, y int) (uint8, error) {
	if !b.IsIndexed() {
		return 0, fmt.Errorf("%w: %s bitmap has no indices", ErrUnsupportedFormat, b.Format)
	}
	if err := b.checkBounds(x, y); err != nil {
		return 0, err
	}
	return b.Pix[b.Offset(x, y)], nil
}

// SetIndex stores a palette index at (x, y) of an indexed bitmap.
func (b *Bitmap) SetIndex(x, y int, idx uint8) error {
	if !b.IsIndexed() {
		return fmt.Errorf("%w: %s bitmap has no indices", ErrUnsupportedFormat, b.Format)
	}
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	if int(idx) >= len(b.Palette) {
		return fmt.Errorf("%w: index %d with %d palette entries", ErrInvalidParameter, idx, len(b.Palette))
	}
	b.Pix[b.Offset(x, y)] = idx
	return nil
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	c := *b
	c.Pix = append([]uint8(nil), b.Pix...)
	if b.Palette != nil {
		c.Palette = append(Palette(nil), b.Palette...)
	}
	return &c
}

// ToTruecolor expands palette indices into a new truecolor bitmap. The result
// carries alpha when the palette has a transparent entry.
func (b *Bitmap) ToTruecolor() (*Bitmap, error) {
	if !b.IsIndexed() {
		return nil, fmt.Errorf("%w: bitmap is already %s", ErrUnsupportedFormat, b.Format)
	}

	alpha := b.Transparent() >= 0
	dst, err := New(b.Width, b.Height, Truecolor(alpha))
	if err != nil {
		return nil, err
	}
	bpp := dst.Format.BytesPerPixel()
	for i, idx := range b.Pix {
		o := i * bpp
		if int(idx) == b.Transparent() {
			continue
		}
		c := b.Palette[idx]
		dst.Pix[o+0] = c.R
		dst.Pix[o+1] = c.G
		dst.Pix[o+2] = c.B
		if alpha {
			dst.Pix[o+3] = 0xff
		}
	}
	return dst, nil
}

// Truecolor returns b itself when it is already truecolor, or an expanded copy.
func (b *Bitmap) Truecolor() (*Bitmap, error) {
	if !b.IsIndexed() {
		return b, nil
	}
	return b.ToTruecolor()
}

// EnableAlpha switches b in place to truecolor with alpha, expanding indices
// and adding an opaque alpha byte to every pixel as needed.
func (b *Bitmap) EnableAlpha() error {
	if b.IsIndexed() {
		tc, err := b.ToTruecolor()
		if err != nil {
			return err
		}
		*b = *tc
	}
	if b.Format.Alpha {
		return nil
	}

	pix := make([]uint8, b.Width*b.Height*4)
	for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
		pix[j+0] = b.Pix[i+0]
		pix[j+1] = b.Pix[i+1]
		pix[j+2] = b.Pix[i+2]
		pix[j+3] = 0xff
	}
	b.Pix = pix
	b.Format = Truecolor(true)
	return nil
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model {
	if b.IsIndexed() {
		return b.Palette.ColorPalette(b.Transparent())
	}
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	if !b.InBounds(x, y) {
		return color.NRGBA{}
	}
	return b.nrgbaAt(x, y)
}

// Opaque reports whether every pixel is fully opaque.
func (b *Bitmap) Opaque() bool {
	if !b.HasAlpha() {
		return true
	}
	if b.IsIndexed() {
		for _, idx := range b.Pix {
			if int(idx) == b.Transparent() {
				return false
			}
		}
		return true
	}
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
