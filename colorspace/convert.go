// Package colorspace converts normalized RGB values to and from the HSL, HSV
// and CMYK models. All values are in [0,1], hue included.
package colorspace

import "math"

// FloatToByte quantizes a normalized value to 8 bits, clamping it first.
func FloatToByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v * 255.5)
}

// ByteToFloat normalizes an 8-bit value.
func ByteToFloat(v uint8) float64 {
	return float64(v) / 255
}

// Luminance returns the Rec. 601 luma of an 8-bit color, truncated.
func Luminance(r, g, b uint8) uint8 {
	return uint8(float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114)
}

// WrapHue folds h into [0,1).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	return h
}

func maxMin(r, g, b float64) (float64, float64) {
	return max(r, g, b), min(r, g, b)
}

// hueOf assumes mx > mn.
func hueOf(r, g, b, mx, mn float64) float64 {
	d := mx - mn
	var f float64
	switch mx {
	case r:
		f = (g - b) / d
	case g:
		f = 2 + (b-r)/d
	default:
		f = 4 + (r-g)/d
	}
	f /= 6
	if f < 0 {
		f += 1
	}
	return f
}

// RGBToHSL converts with the usual max/min/chroma derivation.
func RGBToHSL(r, g, b float64) (h, s, l float64) {
	mx, mn := maxMin(r, g, b)
	l = (mx + mn) / 2
	if mx == mn {
		return 0, 0, l
	}

	d := mx - mn
	if l <= 0.5 {
		s = d / (mx + mn)
	} else {
		s = d / (2 - mx - mn)
	}
	return hueOf(r, g, b, mx, mn), s, l
}

// HSLToRGB is the inverse of RGBToHSL.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var mx float64
	if l <= 0.5 {
		mx = l * (s + 1)
	} else {
		mx = l + s - l*s
	}
	mn := l*2 - mx
	h = WrapHue(h) * 6

	switch int(h) {
	case 0:
		return mx, mn + (mx-mn)*h, mn
	case 1:
		return mn + (mx-mn)*(2-h), mx, mn
	case 2:
		return mn, mx, mn + (mx-mn)*(h-2)
	case 3:
		return mn, mn + (mx-mn)*(4-h), mx
	case 4:
		return mn + (mx-mn)*(h-4), mn, mx
	default:
		return mx, mn, mn + (mx-mn)*(6-h)
	}
}

// RGBToHSV converts with the usual max/min/chroma derivation.
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	mx, mn := maxMin(r, g, b)
	if mx == mn {
		return 0, 0, mx
	}
	return hueOf(r, g, b, mx, mn), (mx - mn) / mx, mx
}

// HSVToRGB is the inverse of RGBToHSV.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}

	e, f := math.Modf(WrapHue(h) * 6)
	if e >= 6 {
		e, f = 0, 0
	}
	x := v * (1 - s)
	y := v * (1 - s*f)
	z := v * (1 - s*(1-f))
	switch int(e) {
	case 0:
		return v, z, x
	case 1:
		return y, v, x
	case 2:
		return x, v, z
	case 3:
		return x, y, v
	case 4:
		return z, x, v
	default:
		return v, x, y
	}
}

// RGBToCMYK extracts black first and derives C, M and Y from the remaining
// ink, so that a gray has no color ink at all.
func RGBToCMYK(r, g, b float64) (c, m, y, k float64) {
	mx := max(r, g, b)
	if r == g && g == b {
		return 0, 0, 0, 1 - r
	}
	return (mx - r) / mx, (mx - g) / mx, (mx - b) / mx, 1 - mx
}

// CMYKToRGB is the inverse of RGBToCMYK.
func CMYKToRGB(c, m, y, k float64) (r, g, b float64) {
	ink := func(v float64) float64 {
		return 1 - min(v*(1-k)+k, 1)
	}
	return ink(c), ink(m), ink(y)
}
