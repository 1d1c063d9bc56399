package correct

import (
	"fmt"

	"imgex/bitmap"
	"imgex/colorspace"
)

// Apply corrects b in place. Each pixel is decomposed into space, every
// channel of spec belonging to space runs through its operations, and the
// result is composed back to RGB. Alpha is only touched when spec names it,
// which gives b an alpha channel if it had none. Indexed bitmaps are expanded
// to truecolor first. Channels outside space are ignored.
func Apply(b *bitmap.Bitmap, spec Spec, space colorspace.Space) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if space > colorspace.CMYK {
		return fmt.Errorf("%w: color space %s", bitmap.ErrInvalidParameter, space)
	}

	var comps [4][]Op
	active := false
	for ch, ops := range spec {
		if len(ops) == 0 || ch == Alpha {
			continue
		}
		if i, ok := ch.Component(space); ok {
			comps[i] = ops
			active = true
		}
	}
	alphaOps := spec[Alpha]
	if !active && len(alphaOps) == 0 {
		return nil
	}

	if b.IsIndexed() {
		tc, err := b.ToTruecolor()
		if err != nil {
			return err
		}
		*b = *tc
	}
	if len(alphaOps) > 0 && !b.Format.Alpha {
		if err := b.EnableAlpha(); err != nil {
			return err
		}
	}

	bpp := b.Format.BytesPerPixel()
	if space == colorspace.RGB {
		applyTables(b.Pix, bpp, comps[:3])
	} else if active {
		applySpace(b.Pix, bpp, comps, space)
	}
	if len(alphaOps) > 0 {
		lut := Simulate(alphaOps)
		for i := 3; i < len(b.Pix); i += 4 {
			b.Pix[i] = lut[b.Pix[i]]
		}
	}
	return nil
}

// applyTables runs RGB corrections through 8-bit lookup tables, one per
// corrected component.
func applyTables(pix []uint8, bpp int, comps [][]Op) {
	var luts [3]*[256]uint8
	for i, ops := range comps {
		if len(ops) > 0 {
			lut := Simulate(ops)
			luts[i] = &lut
		}
	}
	for i := 0; i < len(pix); i += bpp {
		for c, lut := range luts {
			if lut != nil {
				pix[i+c] = lut[pix[i+c]]
			}
		}
	}
}

func applySpace(pix []uint8, bpp int, comps [4][]Op, space colorspace.Space) {
	for i := 0; i < len(pix); i += bpp {
		v := space.Decompose(
			colorspace.ByteToFloat(pix[i+0]),
			colorspace.ByteToFloat(pix[i+1]),
			colorspace.ByteToFloat(pix[i+2]),
		)
		for c, ops := range comps {
			if len(ops) > 0 {
				v[c] = Chain(ops, v[c])
			}
		}
		r, g, b := space.Compose(v)
		pix[i+0] = colorspace.FloatToByte(r)
		pix[i+1] = colorspace.FloatToByte(g)
		pix[i+2] = colorspace.FloatToByte(b)
	}
}

// Simulate returns the response of ops for every 8-bit input.
func Simulate(ops []Op) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = colorspace.FloatToByte(Chain(ops, colorspace.ByteToFloat(uint8(i))))
	}
	return lut
}
