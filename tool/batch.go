package tool

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"imgex/bitmap"
	"imgex/palette"
	"imgex/parallel"
)

// Quantize are the flags constraining output colors.
type Quantize struct {
	Palette string `help:"Palette name or PAL file in RIFF format to map the output onto" group:"palette"`
	Colors  int    `help:"Reduce the output to this many colors by median cut (2-256)" group:"palette"`
	Dither  bool   `help:"Apply Floyd-Steinberg dithering when mapping colors" default:"false" group:"palette"`

	Perceptual bool `help:"Match palette colors in OKLab instead of RGB, without dithering" default:"false" group:"palette"`

	Pal bitmap.Palette `kong:"-"`
}

func (q *Quantize) validate() error {
	if q.Palette != "" && q.Colors != 0 {
		return fmt.Errorf("palette and colors are mutually exclusive")
	}
	if q.Colors != 0 && (q.Colors < 2 || q.Colors > bitmap.MaxPaletteSize) {
		return fmt.Errorf("invalid color count: %d", q.Colors)
	}
	if q.Perceptual && (q.Palette == "" || q.Dither) {
		return fmt.Errorf("perceptual matching needs a palette and no dithering")
	}
	if q.Palette != "" {
		var err error
		if q.Pal, err = palette.LoadPalette(q.Palette); err != nil {
			return err
		}
	}
	return nil
}

// constrain maps img onto the requested palette or color count, if any.
func (q *Quantize) constrain(logger *slog.Logger, img *bitmap.Bitmap) (*bitmap.Bitmap, error) {
	switch {
	case q.Pal != nil && q.Perceptual:
		logger.Info("applying palette", "palette", q.Palette, "colors", len(q.Pal), "space", "oklab")
		return palette.RemapPerceptual(img, q.Pal)
	case q.Pal != nil:
		logger.Info("applying palette", "palette", q.Palette, "colors", len(q.Pal))
		return palette.Remap(img, q.Pal, q.Dither)
	case q.Colors > 0:
		logger.Info("reducing colors", "colors", q.Colors)
		return palette.Reduce(img, q.Colors, q.Dither)
	}
	return img, nil
}

// Batch are the flags of the commands that process every input file on its
// own.
type Batch struct {
	Inputs []string `arg:"" help:"Input images" type:"existingfile"`
	Dest   string   `help:"Destination folder for processed images" default:"."`

	Quantize
}

func (b *Batch) validate() error {
	dest, err := filepath.Abs(b.Dest)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", b.Dest, err)
	}
	b.Dest = dest
	return b.Quantize.validate()
}

// input is one decoded input file.
type input struct {
	path    string
	imgType string
	img     *bitmap.Bitmap
}

// each runs fn for every input on the worker pool of g. Failures are logged
// per file and counted.
func (b *Batch) each(g *Globals, fn func(logger *slog.Logger, in input) error) error {
	if err := os.MkdirAll(b.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", b.Dest, err)
	}

	pool := parallel.Start(g.Workers)
	for _, path := range b.Inputs {
		pool.Do(func() error {
			logger := slog.Default().With("file", path)

			img, imgType, err := load(path)
			if err != nil {
				logger.Error("could not load image", "error", err)
				return err
			}
			if err := fn(logger, input{path: path, imgType: imgType, img: img}); err != nil {
				logger.Error("could not process image", "error", err)
				return err
			}
			return nil
		})
	}
	stats := pool.Wait()

	slog.Info("stats", "processed", stats.Done-stats.Failed, "errors", stats.Failed, "total", stats.Done)
	if stats.Failed > 0 {
		return fmt.Errorf("error processing %d files", stats.Failed)
	}
	return nil
}

// write constrains img and saves it as outType under the input name plus
// suffix.
func (b *Batch) write(logger *slog.Logger, in input, suffix, outType string, img *bitmap.Bitmap) error {
	img, err := b.constrain(logger, img)
	if err != nil {
		return err
	}
	outType = resolveFormat(outType, in.imgType)
	name := outputName(in.path, suffix, outType)
	logger.Debug("writing", "dest", filepath.Join(b.Dest, name))
	return save(img, outType, b.Dest, name)
}
