package tool

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"imgex/bitmap"
	"imgex/codec/bmp"
	"imgex/codec/ico"
	"imgex/resize"

	"github.com/alecthomas/kong"
)

type BMPCmd struct {
	Batch
}

func (c *BMPCmd) Validate(kctx *kong.Context) error {
	return c.Batch.validate()
}

func (c *BMPCmd) Run(g *Globals) error {
	return c.each(g, func(logger *slog.Logger, in input) error {
		img, err := c.constrain(logger, in.img)
		if err != nil {
			return err
		}
		data, err := bmp.Encode(img)
		if err != nil {
			return fmt.Errorf("could not encode BMP: %w", err)
		}

		name := outputName(in.path, "", "bmp")
		logger.Info("writing bitmap", "dest", name, "format", img.Format, "bytes", len(data))
		return writeFile(c.Dest, name, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
	})
}

type ICOCmd struct {
	Inputs    []string `arg:"" help:"Input images, one icon entry each" type:"existingfile"`
	Out       string   `help:"Icon file to write" default:"icon.ico"`
	Sizes     []int    `help:"Pad every input onto these square sizes instead of using it as is" sep:","`
	AlphaOnly bool     `help:"Store 32-bit entries without AND mask and with their real height" default:"false"`

	Quantize
}

func (c *ICOCmd) Validate(kctx *kong.Context) error {
	out, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", c.Out, err)
	}
	c.Out = out

	for _, s := range c.Sizes {
		if s < 1 || s > ico.MaxSize {
			return fmt.Errorf("invalid icon size: %d", s)
		}
	}
	return c.Quantize.validate()
}

func (c *ICOCmd) Run(g *Globals) error {
	var entries []*bitmap.Bitmap
	for _, path := range c.Inputs {
		logger := slog.Default().With("file", path)
		img, _, err := load(path)
		if err != nil {
			return fmt.Errorf("could not load %q: %w", path, err)
		}

		sized := []*bitmap.Bitmap{img}
		if len(c.Sizes) > 0 {
			sized = sized[:0]
			for _, s := range c.Sizes {
				scaled, err := resize.Scale(img, s, s, resize.ModePad, resize.WithLogger(logger))
				if err != nil {
					return fmt.Errorf("could not scale %q to %d: %w", path, s, err)
				}
				sized = append(sized, scaled)
			}
		}
		for _, s := range sized {
			s, err := c.constrain(logger, s)
			if err != nil {
				return fmt.Errorf("could not map colors of %q: %w", path, err)
			}
			entries = append(entries, s)
		}
	}

	var opts []ico.Option
	if c.AlphaOnly {
		opts = append(opts, ico.WithAlphaOnly())
	}
	data, err := ico.Encode(entries, opts...)
	if err != nil {
		return fmt.Errorf("could not encode icon: %w", err)
	}

	dir := filepath.Dir(c.Out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", dir, err)
	}
	slog.Info("writing icon", "dest", c.Out, "entries", len(entries), "bytes", len(data))
	return writeFile(dir, filepath.Base(c.Out), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
