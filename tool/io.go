package tool

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"imgex/bitmap"
	"imgex/codec/bmp"

	"golang.org/x/image/tiff"
)

// load decodes an image file into a bitmap. The second result is the name
// of the decoder that read it.
func load(path string) (*bitmap.Bitmap, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	img, imgType, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}
	b, err := bitmap.FromImage(img)
	if err != nil {
		return nil, "", fmt.Errorf("could not read %s image: %w", imgType, err)
	}
	return b, imgType, nil
}

// outputName replaces the extension of srcPath and inserts suffix before it.
func outputName(srcPath, suffix, ext string) string {
	base := filepath.Base(srcPath)
	return fmt.Sprintf("%s%s.%s", strings.TrimSuffix(base, filepath.Ext(base)), suffix, ext)
}

// writeFile writes through a temporary file in destDir renamed to destName
// once write succeeded.
func writeFile(destDir, destName string, write func(w io.Writer) error) (err error) {
	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		}
		if err != nil {
			os.Remove(outFile.Name())
		}
	}()

	if err = write(outFile); err != nil {
		return err
	}
	canRename = true
	return nil
}

// formats are the writable output types. "same" keeps the input type when
// it is writable.
var formats = []string{"gif", "jpeg", "png", "bmp", "tiff"}

func resolveFormat(outType, imgType string) string {
	if outType != "same" {
		return outType
	}
	for _, f := range formats {
		if f == imgType {
			return f
		}
	}
	return "png"
}

// save encodes img as outType next to the other outputs in destDir.
func save(img image.Image, outType, destDir, destName string) error {
	return writeFile(destDir, destName, func(w io.Writer) error {
		var err error
		switch outType {
		case "gif":
			err = gif.Encode(w, img, nil)
		case "jpeg":
			err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case "png":
			enc := png.Encoder{
				CompressionLevel: png.BestCompression,
				BufferPool:       pngPool,
			}
			err = enc.Encode(w, img)
		case "bmp":
			err = bmp.EncodeImage(w, img)
		case "tiff":
			err = tiff.Encode(w, img, nil)
		default:
			return fmt.Errorf("unsupported output format: %s", outType)
		}
		if err != nil {
			return fmt.Errorf("could not encode %s destination %q: %w", strings.ToUpper(outType), destName, err)
		}
		return nil
	})
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
