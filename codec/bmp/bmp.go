// Package bmp encodes bitmaps as Windows BMP files and as the device
// independent bitmaps embedded in ICO files.
//
// https://learn.microsoft.com/en-us/windows/win32/gdi/bitmap-storage
package bmp

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"math"

	"imgex/bitmap"
)

const (
	FileHeaderLen = 14
	InfoHeaderLen = 40
	V5HeaderLen   = 124

	biRGB       = 0
	biBitFields = 3

	pixelsPerMeter = 3780 // 96 ppi

	lcsSRGB              = 0x73524742 // 'sRGB'
	lcsGMAbsColorimetric = 8
)

// FileHeader is BITMAPFILEHEADER.
type FileHeader struct {
	Type      [2]byte // "BM"
	Size      uint32  // size of the whole file
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32 // offset of the pixel array
}

// InfoHeader is BITMAPINFOHEADER.
type InfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32 // positive: rows are stored bottom-up
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32 // 0 means 1<<BitCount for indexed depths
	ClrImportant  uint32
}

// V5Fields are the BITMAPV5HEADER fields following the info header.
type V5Fields struct {
	RedMask     uint32
	GreenMask   uint32
	BlueMask    uint32
	AlphaMask   uint32
	CSType      uint32
	Endpoints   [9]int32 // CIEXYZTRIPLE, unused for sRGB
	GammaRed    uint32
	GammaGreen  uint32
	GammaBlue   uint32
	Intent      uint32
	ProfileData uint32
	ProfileSize uint32
	Reserved    uint32
}

// Depth returns the bits per pixel used for b: 32 for truecolor with alpha,
// 24 without, and 8, 4 or 1 for indexed bitmaps by palette size.
func Depth(b *bitmap.Bitmap) (int, error) {
	if !b.IsIndexed() {
		if b.Format.Alpha {
			return 32, nil
		}
		return 24, nil
	}

	switch n := len(b.Palette); {
	case n == 0:
		return 0, fmt.Errorf("%w: indexed bitmap without palette", bitmap.ErrInvalidParameter)
	case n > bitmap.MaxPaletteSize:
		return 0, fmt.Errorf("%w: %d palette entries need more than 8 bits per pixel", bitmap.ErrUnsupportedFormat, n)
	}
	return b.Palette.Depth(), nil
}

// Stride is the size in bytes of one padded pixel row.
func Stride(width, bpp int) int {
	return ((width*bpp + 31) / 32) * 4
}

// DIB is everything of a BMP file after the file header: the info header,
// the color table and the pixel rows.
type DIB struct {
	Info InfoHeader
	// V5 extends Info into a BITMAPV5HEADER when set.
	V5 *V5Fields
	// Colors holds the color table as BGR0 quads.
	Colors []byte
	// Pixels holds the rows bottom-up, each padded to a 4 byte boundary.
	Pixels []byte
}

type dibOptions struct {
	infoOnly    bool
	fullPalette bool
}

// DIBOption tunes NewDIB.
type DIBOption func(o *dibOptions)

// WithInfoHeader keeps the plain BITMAPINFOHEADER for 32 bpp bitmaps instead
// of the V5 header with alpha bit fields.
func WithInfoHeader() DIBOption {
	return func(o *dibOptions) {
		o.infoOnly = true
	}
}

// WithFullPalette pads the color table with zero entries to 1<<bpp entries.
func WithFullPalette() DIBOption {
	return func(o *dibOptions) {
		o.fullPalette = true
	}
}

// NewDIB encodes b at the depth chosen by Depth.
func NewDIB(b *bitmap.Bitmap, opts ...DIBOption) (*DIB, error) {
	var o dibOptions
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	bpp, err := Depth(b)
	if err != nil {
		return nil, err
	}
	if b.IsIndexed() {
		for i, idx := range b.Pix {
			if int(idx) >= len(b.Palette) {
				return nil, fmt.Errorf("%w: index %d at pixel %d with %d palette entries",
					bitmap.ErrInvalidParameter, idx, i, len(b.Palette))
			}
		}
	}

	stride := Stride(b.Width, bpp)
	if int64(stride)*int64(b.Height) >= math.MaxInt32-V5HeaderLen-FileHeaderLen-4*bitmap.MaxPaletteSize {
		return nil, fmt.Errorf("%w: %dx%d at %d bpp is too large", bitmap.ErrUnsupportedFormat, b.Width, b.Height, bpp)
	}

	d := &DIB{
		Info: InfoHeader{
			Size:          InfoHeaderLen,
			Width:         int32(b.Width),
			Height:        int32(b.Height),
			Planes:        1,
			BitCount:      uint16(bpp),
			Compression:   biRGB,
			SizeImage:     uint32(stride * b.Height),
			XPelsPerMeter: pixelsPerMeter,
			YPelsPerMeter: pixelsPerMeter,
		},
	}

	if b.IsIndexed() {
		entries := len(b.Palette)
		switch full := 1 << bpp; {
		case o.fullPalette || bpp == 1:
			entries = full
		case entries < full:
			d.Info.ClrUsed = uint32(entries)
		}
		d.Colors = appendColors(make([]byte, 0, 4*entries), b.Palette, entries)
	}

	if bpp == 32 && !o.infoOnly {
		d.Info.Size = V5HeaderLen
		d.Info.Compression = biBitFields
		d.V5 = &V5Fields{
			RedMask:    0x00ff0000,
			GreenMask:  0x0000ff00,
			BlueMask:   0x000000ff,
			AlphaMask:  0xff000000,
			CSType:     lcsSRGB,
			GammaRed:   1,
			GammaGreen: 1,
			GammaBlue:  1,
			Intent:     lcsGMAbsColorimetric,
		}
	}

	d.Pixels = appendRows(make([]byte, 0, stride*b.Height), b, bpp, stride)
	return d, nil
}

// Len is the encoded size of d.
func (d *DIB) Len() int {
	return int(d.Info.Size) + len(d.Colors) + len(d.Pixels)
}

// AppendBinary appends the encoded DIB to dst.
func (d *DIB) AppendBinary(dst []byte) ([]byte, error) {
	dst, err := binary.Append(dst, binary.LittleEndian, d.Info)
	if err != nil {
		return nil, err
	}
	if d.V5 != nil {
		if dst, err = binary.Append(dst, binary.LittleEndian, d.V5); err != nil {
			return nil, err
		}
	}
	dst = append(dst, d.Colors...)
	return append(dst, d.Pixels...), nil
}

func appendColors(dst []byte, pal bitmap.Palette, entries int) []byte {
	for _, c := range pal {
		dst = append(dst, c.B, c.G, c.R, 0)
	}
	for range entries - len(pal) {
		dst = append(dst, 0, 0, 0, 0)
	}
	return dst
}

func appendRows(dst []byte, b *bitmap.Bitmap, bpp, stride int) []byte {
	for y := b.Height - 1; y >= 0; y-- {
		row := b.Pix[y*b.Stride() : (y+1)*b.Stride()]
		eol := len(dst) + stride

		switch bpp {
		case 1, 4:
			var acc byte
			shift := 8 - bpp
			for _, idx := range row {
				acc |= idx << shift
				if shift == 0 {
					dst = append(dst, acc)
					acc, shift = 0, 8-bpp
				} else {
					shift -= bpp
				}
			}
			if shift != 8-bpp {
				dst = append(dst, acc)
			}
		case 8:
			dst = append(dst, row...)
		case 24:
			for i := 0; i < len(row); i += 3 {
				dst = append(dst, row[i+2], row[i+1], row[i])
			}
		case 32:
			for i := 0; i < len(row); i += 4 {
				dst = append(dst, row[i+2], row[i+1], row[i], row[i+3])
			}
		}

		for len(dst) < eol {
			dst = append(dst, 0)
		}
	}
	return dst
}

// Encode returns b as a BMP file.
func Encode(b *bitmap.Bitmap) ([]byte, error) {
	d, err := NewDIB(b)
	if err != nil {
		return nil, err
	}

	off := FileHeaderLen + int(d.Info.Size) + len(d.Colors)
	fh := FileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    uint32(off + len(d.Pixels)),
		OffBits: uint32(off),
	}
	buf, err := binary.Append(make([]byte, 0, FileHeaderLen+d.Len()), binary.LittleEndian, fh)
	if err != nil {
		return nil, err
	}
	return d.AppendBinary(buf)
}

// EncodeImage writes any image as a BMP file to w. Paletted images stay
// indexed, others are written at 24 or 32 bpp depending on their opacity.
func EncodeImage(w io.Writer, img image.Image) error {
	b, ok := img.(*bitmap.Bitmap)
	if !ok {
		var err error
		if b, err = bitmap.FromImage(img); err != nil {
			return err
		}
	}

	data, err := Encode(b)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
