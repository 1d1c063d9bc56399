package tool

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"imgex/colorspace"

	"golang.org/x/image/colornames"
)

// parseColor reads SVG color names, #RGB, #RGBA, #RRGGBB, #RRGGBBAA,
// hsl(h, s%, l%), hsv(h, s%, v%) and cmyk(c%, m%, y%, k%). Hue is in degrees.
func parseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if fn, args, ok := strings.Cut(s, "("); ok {
		return parseFunc(strings.ToLower(strings.TrimSpace(fn)), strings.TrimSuffix(args, ")"))
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return color.NRGBA(c), nil
	}

	var c color.NRGBA
	var n int
	var err error
	switch len(s) {
	case 4:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A = 0xff
	case 5:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x%1x", &c.R, &c.G, &c.B, &c.A)
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 7:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
		c.A = 0xff
	case 9:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		return nil, fmt.Errorf("invalid color %q, should be a color name, #RGB, #RGBA, #RRGGBB, #RRGGBBAA, hsl(), hsv() or cmyk()", s)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read color %q: %w", s, err)
	}
	if n < 3 {
		return nil, fmt.Errorf("insufficient color fields in %q: %d", s, n)
	}
	return c, nil
}

func parseFunc(fn, args string) (color.Color, error) {
	want := 3
	if fn == "cmyk" {
		want = 4
	}
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("invalid color %s(%s): want %d components", fn, args, want)
	}

	v := make([]float64, want)
	for i, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), "%")
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("could not read color %s(%s): %w", fn, args, err)
		}
		hue := i == 0 && fn != "cmyk"
		if !hue && (f < 0 || f > 100) {
			return nil, fmt.Errorf("invalid color %s(%s): component %d outside 0..100", fn, args, i+1)
		}
		v[i] = f
	}

	switch fn {
	case "hsl":
		h := colorspace.WrapHue(v[0] / 360)
		return color.NRGBAModel.Convert(colorspace.HSLA{H: h, S: v[1] / 100, L: v[2] / 100, A: 0xffff}), nil
	case "hsv":
		h := colorspace.WrapHue(v[0] / 360)
		return color.NRGBAModel.Convert(colorspace.HSVA{H: h, S: v[1] / 100, V: v[2] / 100, A: 0xffff}), nil
	case "cmyk":
		r, g, b := colorspace.CMYKToRGB(v[0]/100, v[1]/100, v[2]/100, v[3]/100)
		return color.NRGBA{
			R: colorspace.FloatToByte(r),
			G: colorspace.FloatToByte(g),
			B: colorspace.FloatToByte(b),
			A: 0xff,
		}, nil
	}
	return nil, fmt.Errorf("unknown color function %q", fn)
}
