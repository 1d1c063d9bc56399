package colorspace

import (
	"image/color"
)

// HSLA is a color.Color in the HSL model with straight 16-bit alpha.
type HSLA struct {
	H, S, L float64
	A       uint16
}

var HSLModel = color.ModelFunc(hslConvert)

func hslConvert(c color.Color) color.Color {
	switch hc := c.(type) {
	case HSLA:
		return c
	case HSVA:
		r, g, b := HSVToRGB(hc.H, hc.S, hc.V)
		h, s, l := RGBToHSL(r, g, b)
		return HSLA{H: h, S: s, L: l, A: hc.A}
	}

	r, g, b, a := straight(c)
	h, s, l := RGBToHSL(r, g, b)
	return HSLA{H: h, S: s, L: l, A: a}
}

func (hc HSLA) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := HSLToRGB(hc.H, hc.S, hc.L)
	return premultiply(r, g, b, hc.A)
}

// HSVA is a color.Color in the HSV model with straight 16-bit alpha.
type HSVA struct {
	H, S, V float64
	A       uint16
}

var HSVModel = color.ModelFunc(hsvConvert)

func hsvConvert(c color.Color) color.Color {
	switch hc := c.(type) {
	case HSVA:
		return c
	case HSLA:
		r, g, b := HSLToRGB(hc.H, hc.S, hc.L)
		h, s, v := RGBToHSV(r, g, b)
		return HSVA{H: h, S: s, V: v, A: hc.A}
	}

	r, g, b, a := straight(c)
	h, s, v := RGBToHSV(r, g, b)
	return HSVA{H: h, S: s, V: v, A: a}
}

func (hc HSVA) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := HSVToRGB(hc.H, hc.S, hc.V)
	return premultiply(r, g, b, hc.A)
}

// straight undoes the alpha premultiplication of color.Color.
func straight(c color.Color) (r, g, b float64, a uint16) {
	c64 := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return float64(c64.R) / 0xffff, float64(c64.G) / 0xffff, float64(c64.B) / 0xffff, c64.A
}

func premultiply(r, g, b float64, a uint16) (uint32, uint32, uint32, uint32) {
	to16 := func(v float64) uint16 {
		return uint16(min(max(v, 0), 1)*0xffff + 0.5)
	}
	return color.NRGBA64{R: to16(r), G: to16(g), B: to16(b), A: a}.RGBA()
}
