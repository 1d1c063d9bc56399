package tool

import (
	"fmt"
	"strings"

	"imgex/colorspace"
	"imgex/mask"
	"imgex/palette"
	"imgex/resize"

	"github.com/alecthomas/kong"
)

type FeaturesCmd struct{}

func (c *FeaturesCmd) Run(kctx *kong.Context) error {
	caps := resize.Capabilities()
	lines := []struct {
		name  string
		value string
	}{
		{"carve", fmt.Sprint(caps.Carve)},
		{"scale modes", strings.Join(resize.ModeNames(), ", ")},
		{"filters", strings.Join(resize.FilterNames(), ", ")},
		{"color spaces", strings.Join(colorspace.Names(), ", ")},
		{"mask modes", strings.Join(mask.ModeNames(), ", ")},
		{"palettes", strings.Join(palette.Names(), ", ")},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(kctx.Stdout, "%s: %s\n", l.name, l.value); err != nil {
			return err
		}
	}
	return nil
}
