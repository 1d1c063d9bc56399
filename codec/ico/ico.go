// Package ico packs bitmaps into a Windows icon file.
//
// https://learn.microsoft.com/en-us/previous-versions/ms997538(v=msdn.10)
package ico

import (
	"encoding/binary"
	"fmt"
	"math"

	"imgex/bitmap"
	"imgex/codec/bmp"
)

const (
	dirLen   = 6
	entryLen = 16

	typeIcon = 1

	// MaxSize is the largest width or height of an entry, stored as 0.
	MaxSize = 256
	// MaxImages is the capacity of the directory count field.
	MaxImages = math.MaxUint16
)

// Dir is ICONDIR without its entries.
type Dir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// DirEntry is ICONDIRENTRY.
type DirEntry struct {
	Width       uint8 // 0 means 256
	Height      uint8 // 0 means 256
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Options tunes Encode.
type Options struct {
	// AlphaOnly drops the AND mask of 32 bpp entries, which then store their
	// logical height and rely on alpha alone.
	AlphaOnly bool
}

// Option sets Options.
type Option func(o *Options)

// WithAlphaOnly sets Options.AlphaOnly.
func WithAlphaOnly() Option {
	return func(o *Options) {
		o.AlphaOnly = true
	}
}

// Image is one directory entry once encoded.
type Image struct {
	Bitmap *bitmap.Bitmap
	Width  int
	Height int
	Depth  int
	// Size is the encoded length of the entry: DIB and AND mask.
	Size int
	// Offset is the position of the entry from the start of the file.
	Offset int

	dib  *bmp.DIB
	mask []byte
}

// Entry returns the directory record of img.
func (img *Image) Entry() DirEntry {
	return DirEntry{
		Width:       uint8(img.Width & 0xff),
		Height:      uint8(img.Height & 0xff),
		Planes:      1,
		BitCount:    uint16(img.Depth),
		BytesInRes:  uint32(img.Size),
		ImageOffset: uint32(img.Offset),
	}
}

// Directory lists the encoded entries in input order.
type Directory []*Image

// NewDirectory encodes every bitmap and lays the entries out one after the
// other behind the directory.
func NewDirectory(bitmaps []*bitmap.Bitmap, opts ...Option) (Directory, error) {
	var o Options
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	if len(bitmaps) == 0 {
		return nil, fmt.Errorf("%w: icon without images", bitmap.ErrEmptyInput)
	}
	if len(bitmaps) > MaxImages {
		return nil, fmt.Errorf("%w: %d images, at most %d fit an icon directory",
			bitmap.ErrUnsupportedFormat, len(bitmaps), MaxImages)
	}

	dir := make(Directory, 0, len(bitmaps))
	offset := dirLen + entryLen*len(bitmaps)
	for i, b := range bitmaps {
		img, err := newImage(b, o)
		if err != nil {
			return nil, fmt.Errorf("icon entry %d: %w", i, err)
		}
		img.Offset = offset
		offset += img.Size
		if int64(offset) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: icon larger than 4GiB", bitmap.ErrUnsupportedFormat)
		}
		dir = append(dir, img)
	}
	return dir, nil
}

func newImage(b *bitmap.Bitmap, o Options) (*Image, error) {
	if b.Width > MaxSize || b.Height > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d", bitmap.ErrUnsupportedFormat, b.Width, b.Height, MaxSize, MaxSize)
	}

	dib, err := bmp.NewDIB(b, bmp.WithInfoHeader(), bmp.WithFullPalette())
	if err != nil {
		return nil, err
	}
	// Masked pixels are XORed with the screen, so the transparent entry
	// must be black.
	if t := b.Transparent(); b.IsIndexed() && t >= 0 && 4*t+4 <= len(dib.Colors) {
		clear(dib.Colors[4*t : 4*t+4])
	}
	img := &Image{
		Bitmap: b,
		Width:  b.Width,
		Height: b.Height,
		Depth:  int(dib.Info.BitCount),
		dib:    dib,
	}

	if !(o.AlphaOnly && img.Depth == 32) {
		img.mask = andMask(b)
		dib.Info.Height *= 2
	}
	img.Size = dib.Len() + len(img.mask)
	return img, nil
}

// andMask builds the 1 bpp transparency mask, bottom-up with rows padded to
// 4 bytes. A set bit marks a transparent pixel.
func andMask(b *bitmap.Bitmap) []byte {
	stride := bmp.Stride(b.Width, 1)
	mask := make([]byte, stride*b.Height)
	if !b.HasAlpha() {
		return mask
	}

	for y := range b.Height {
		row := mask[(b.Height-1-y)*stride:]
		for x := range b.Width {
			o := b.Offset(x, y)
			var transparent bool
			if b.IsIndexed() {
				transparent = int(b.Pix[o]) == b.Transparent()
			} else {
				transparent = b.Pix[o+3] == 0
			}
			if transparent {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return mask
}

// Len is the size of the encoded icon file.
func (d Directory) Len() int {
	if len(d) == 0 {
		return dirLen
	}
	last := d[len(d)-1]
	return last.Offset + last.Size
}

// AppendBinary appends the icon file to dst.
func (d Directory) AppendBinary(dst []byte) ([]byte, error) {
	dst, err := binary.Append(dst, binary.LittleEndian, Dir{Type: typeIcon, Count: uint16(len(d))})
	if err != nil {
		return nil, err
	}
	for _, img := range d {
		if dst, err = binary.Append(dst, binary.LittleEndian, img.Entry()); err != nil {
			return nil, err
		}
	}
	for _, img := range d {
		if dst, err = img.dib.AppendBinary(dst); err != nil {
			return nil, err
		}
		dst = append(dst, img.mask...)
	}
	return dst, nil
}

// Encode returns an icon file holding bitmaps in the given order. Each entry
// is a DIB at the depth bmp.Depth picks, 1 to 256 pixels wide and high.
func Encode(bitmaps []*bitmap.Bitmap, opts ...Option) ([]byte, error) {
	dir, err := NewDirectory(bitmaps, opts...)
	if err != nil {
		return nil, err
	}
	return dir.AppendBinary(make([]byte, 0, dir.Len()))
}
