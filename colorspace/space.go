package colorspace

import (
	"fmt"
	"strings"

	"imgex/bitmap"
)

// Space selects how RGB components are reinterpreted.
type Space uint8

const (
	RGB Space = iota
	HSL
	HSV
	CMYK
)

var spaceNames = [...]string{
	RGB:  "rgb",
	HSL:  "hsl",
	HSV:  "hsv",
	CMYK: "cmyk",
}

// Names lists the accepted space names in declaration order.
func Names() []string {
	return spaceNames[:]
}

func (s Space) String() string {
	if int(s) < len(spaceNames) {
		return spaceNames[s]
	}
	return fmt.Sprintf("Space(%d)", s)
}

// Parse returns the space for a case-insensitive name.
func Parse(name string) (Space, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range spaceNames {
		if v == n {
			return Space(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color space %q", bitmap.ErrInvalidParameter, name)
}

// Components returns the component identifiers of the space in their fixed
// order: r g b, h s l, h s v or c m y k.
func (s Space) Components() []string {
	switch s {
	case HSL:
		return []string{"h", "s", "l"}
	case HSV:
		return []string{"h", "s", "v"}
	case CMYK:
		return []string{"c", "m", "y", "k"}
	default:
		return []string{"r", "g", "b"}
	}
}

// Len is the number of components of the space.
func (s Space) Len() int {
	if s == CMYK {
		return 4
	}
	return 3
}

// Decompose converts normalized RGB into the components of s. Unused slots
// are zero.
func (s Space) Decompose(r, g, b float64) [4]float64 {
	switch s {
	case HSL:
		h, sat, l := RGBToHSL(r, g, b)
		return [4]float64{h, sat, l}
	case HSV:
		h, sat, v := RGBToHSV(r, g, b)
		return [4]float64{h, sat, v}
	case CMYK:
		c, m, y, k := RGBToCMYK(r, g, b)
		return [4]float64{c, m, y, k}
	default:
		return [4]float64{r, g, b}
	}
}

// Compose is the inverse of Decompose.
func (s Space) Compose(v [4]float64) (r, g, b float64) {
	switch s {
	case HSL:
		return HSLToRGB(v[0], v[1], v[2])
	case HSV:
		return HSVToRGB(v[0], v[1], v[2])
	case CMYK:
		return CMYKToRGB(v[0], v[1], v[2], v[3])
	default:
		return v[0], v[1], v[2]
	}
}
