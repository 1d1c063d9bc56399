package tool

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"imgex/bitmap"
	"imgex/channel"
	"imgex/colorspace"
	"imgex/correct"
	"imgex/mask"
	"imgex/resize"

	"github.com/alecthomas/kong"
)

type CorrectCmd struct {
	Batch
	Format string `help:"Output format. 'same' keeps the input format when it can be written" enum:"same,gif,jpeg,png,bmp,tiff" default:"png"`
	Params string `help:"Correction parameters as JSON, inline or in a file" required:""`
	Space  string `help:"Color space the channels belong to" enum:"rgb,hsl,hsv,cmyk" default:"rgb"`

	Spec       correct.Spec     `kong:"-"`
	ColorSpace colorspace.Space `kong:"-"`
}

func (c *CorrectCmd) Validate(kctx *kong.Context) error {
	var err error
	if c.ColorSpace, err = colorspace.Parse(c.Space); err != nil {
		return err
	}

	data := []byte(c.Params)
	if info, err := os.Stat(c.Params); err == nil && info.Mode().IsRegular() {
		if data, err = os.ReadFile(c.Params); err != nil {
			return fmt.Errorf("could not read parameters file %q: %w", c.Params, err)
		}
	}
	if c.Spec, err = correct.ParseJSON(data, c.ColorSpace); err != nil {
		return err
	}
	if c.Spec.Empty() {
		return fmt.Errorf("no correction for color space %s", c.ColorSpace)
	}
	return c.Batch.validate()
}

func (c *CorrectCmd) Run(g *Globals) error {
	slog.Info("correcting", "space", c.ColorSpace, "spec", c.Spec)
	return c.each(g, func(logger *slog.Logger, in input) error {
		if err := correct.Apply(in.img, c.Spec, c.ColorSpace); err != nil {
			return err
		}
		return c.write(logger, in, "", c.Format, in.img)
	})
}

type ExtractCmd struct {
	Batch
	Space string `help:"Color space to split into" enum:"rgb,hsl,hsv,cmyk" default:"cmyk"`
	Alpha bool   `help:"Also write the alpha plane" default:"false"`

	ColorSpace colorspace.Space `kong:"-"`
}

func (c *ExtractCmd) Validate(kctx *kong.Context) error {
	var err error
	if c.ColorSpace, err = colorspace.Parse(c.Space); err != nil {
		return err
	}
	return c.Batch.validate()
}

// gray wraps a plane as an image.Gray. Plane indices are the values.
func gray(plane *bitmap.Bitmap) *image.Gray {
	return &image.Gray{Pix: plane.Pix, Stride: plane.Width, Rect: plane.Bounds()}
}

func (c *ExtractCmd) Run(g *Globals) error {
	return c.each(g, func(logger *slog.Logger, in input) error {
		var opts []channel.Option
		if c.Alpha {
			opts = append(opts, channel.WithAlpha())
		}
		planes, err := channel.Extract(in.img, c.ColorSpace, opts...)
		if err != nil {
			return err
		}

		names := c.ColorSpace.Components()
		for i, plane := range planes.Components() {
			name := outputName(in.path, "_"+names[i], "png")
			if err := save(gray(plane), "png", c.Dest, name); err != nil {
				return err
			}
		}
		if a := planes.Alpha(); a != nil {
			if err := save(gray(a), "png", c.Dest, outputName(in.path, "_a", "png")); err != nil {
				return err
			}
		}
		logger.Info("extracted", "space", c.ColorSpace, "planes", len(names))
		return nil
	})
}

type MaskCmd struct {
	Batch
	Format string `help:"Output format. 'same' keeps the input format when it can be written" enum:"same,gif,png,bmp,tiff" default:"png"`
	Mask   string `help:"Mask image, its alpha or luminance becomes the opacity" type:"existingfile" required:""`
	Tile   bool   `help:"Repeat the mask over larger images" default:"false"`
	Invert bool   `help:"Invert the blended opacity" default:"false"`
	Mode   string `help:"How the mask combines with the existing alpha" enum:"set,merge,screen,and,or,xor" default:"set"`

	Config  mask.Config    `kong:"-"`
	Overlay *bitmap.Bitmap `kong:"-"`
}

func (c *MaskCmd) Validate(kctx *kong.Context) error {
	mode, err := mask.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Config = mask.Config{Tile: c.Tile, Invert: c.Invert, Mode: mode}

	if c.Overlay, _, err = load(c.Mask); err != nil {
		return fmt.Errorf("invalid mask %q: %w", c.Mask, err)
	}
	return c.Batch.validate()
}

func (c *MaskCmd) Run(g *Globals) error {
	return c.each(g, func(logger *slog.Logger, in input) error {
		if err := mask.Apply(in.img, c.Overlay, c.Config); err != nil {
			return err
		}
		return c.write(logger, in, "", c.Format, in.img)
	})
}

type ScaleCmd struct {
	Batch
	Format     string `help:"Output format. 'same' keeps the input format when it can be written" enum:"same,gif,jpeg,png,bmp,tiff" default:"png"`
	Width      int    `help:"Target width, 0 keeps the aspect ratio from height" group:"scale"`
	Height     int    `help:"Target height, 0 keeps the aspect ratio from width" group:"scale"`
	Mode       string `help:"Scale mode" enum:"none,crop,fit,fill,pad,stretch,tile,carve" default:"fit" group:"scale"`
	Filter     string `help:"Resampling filter" enum:"nearest,approxbilinear,bilinear,catmullrom,bicubic,mitchell,lanczos2,lanczos3" default:"catmullrom" group:"scale"`
	Position   string `help:"Anchor for cropping, padding and tiling, like top-left or bottom" default:"middle-center" group:"scale"`
	Background string `help:"Canvas color for padded areas, transparent if not given" group:"scale"`

	MaxStep       int     `help:"Largest sideways move of a seam between rows" default:"1" group:"carve"`
	Rigidity      float64 `help:"Extra cost of sideways seam moves" default:"0" group:"carve"`
	VerticalFirst bool    `help:"Carve height before width" default:"false" group:"carve"`
	KeepAlpha     bool    `help:"Keep the alpha channel through carving" default:"false" group:"carve"`

	Options []resize.Option     `kong:"-"`
	ScaleBy resize.Mode         `kong:"-"`
	BgColor color.Color         `kong:"-"`
	Carve   resize.CarveOptions `kong:"-"`
}

func (c *ScaleCmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Width < 0:
		return fmt.Errorf("invalid resize width: %d", c.Width)
	case c.Height < 0:
		return fmt.Errorf("invalid resize height: %d", c.Height)
	case c.Width == 0 && c.Height == 0:
		return fmt.Errorf("no resize dimensions given")
	}

	var err error
	if c.ScaleBy, err = resize.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.ScaleBy == resize.ModeCarve && !resize.Available() {
		return fmt.Errorf("carve mode: %w", bitmap.ErrFeatureUnavailable)
	}
	filter, err := resize.ParseFilter(c.Filter)
	if err != nil {
		return err
	}
	pos, err := resize.ParsePosition(c.Position)
	if err != nil {
		return err
	}
	c.Carve = resize.CarveOptions{
		MaxStep:       c.MaxStep,
		Rigidity:      c.Rigidity,
		VerticalFirst: c.VerticalFirst,
		KeepAlpha:     c.KeepAlpha,
	}
	if c.MaxStep < 0 || c.Rigidity < 0 {
		return fmt.Errorf("invalid carve options: max step %d, rigidity %g", c.MaxStep, c.Rigidity)
	}

	c.Options = []resize.Option{
		resize.WithFilter(filter),
		resize.WithPosition(pos),
		resize.WithCarveOptions(c.Carve),
	}
	if c.Background != "" {
		if c.BgColor, err = parseColor(c.Background); err != nil {
			return err
		}
		c.Options = append(c.Options, resize.WithBackground(c.BgColor))
	}
	return c.Batch.validate()
}

// target fills a zero dimension from the aspect ratio of a w x h source.
func (c *ScaleCmd) target(w, h int) (int, int) {
	width, height := c.Width, c.Height
	switch {
	case width == 0:
		width = max(1, (w*height+h/2)/h)
	case height == 0:
		height = max(1, (h*width+w/2)/w)
	}
	return width, height
}

func (c *ScaleCmd) Run(g *Globals) error {
	return c.each(g, func(logger *slog.Logger, in input) error {
		width, height := c.target(in.img.Width, in.img.Height)
		opts := append([]resize.Option{resize.WithLogger(logger)}, c.Options...)
		img, err := resize.Scale(in.img, width, height, c.ScaleBy, opts...)
		if err != nil {
			return err
		}
		return c.write(logger, in, "", c.Format, img)
	})
}

type FlipCmd struct {
	Batch
	Format string `help:"Output format. 'same' keeps the input format when it can be written" enum:"same,gif,jpeg,png,bmp,tiff" default:"png"`
	Axis   string `help:"Which sides to swap" enum:"horizontal,vertical,both" default:"horizontal"`

	Flip resize.Flip `kong:"-"`
}

func (c *FlipCmd) Validate(kctx *kong.Context) error {
	var err error
	if c.Flip, err = resize.ParseFlip(c.Axis); err != nil {
		return err
	}
	return c.Batch.validate()
}

func (c *FlipCmd) Run(g *Globals) error {
	return c.each(g, func(logger *slog.Logger, in input) error {
		if err := resize.Mirror(in.img, c.Flip); err != nil {
			return err
		}
		logger.Debug("flipped", "axis", c.Flip)
		return c.write(logger, in, "", c.Format, in.img)
	})
}
