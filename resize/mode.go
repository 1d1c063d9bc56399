package resize

import (
	"fmt"
	"strings"

	"imgex/bitmap"
)

// Mode selects how the source is mapped onto the target size.
type Mode uint8

const (
	// ModeNone copies the source unscaled, cropping or padding it to the
	// target size.
	ModeNone Mode = iota
	// ModeCrop is ModeNone without padding: the result never exceeds the
	// source.
	ModeCrop
	// ModeFit scales to fit inside the target keeping the aspect ratio. One
	// side of the result can be shorter than asked.
	ModeFit
	// ModeFill scales to cover the target keeping the aspect ratio and crops
	// the overflow.
	ModeFill
	// ModePad is ModeFit centered on a canvas of exactly the target size.
	ModePad
	// ModeStretch scales to the target ignoring the aspect ratio.
	ModeStretch
	// ModeTile repeats the unscaled source over the target.
	ModeTile
	// ModeCarve scales to cover the target keeping the aspect ratio, then
	// removes the overflow by seam carving.
	ModeCarve
)

var modeNames = [...]string{
	ModeNone:    "none",
	ModeCrop:    "crop",
	ModeFit:     "fit",
	ModeFill:    "fill",
	ModePad:     "pad",
	ModeStretch: "stretch",
	ModeTile:    "tile",
	ModeCarve:   "carve",
}

// ModeNames lists the accepted mode names.
func ModeNames() []string {
	return modeNames[:]
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode returns the mode for a case-insensitive name.
func ParseMode(name string) (Mode, error) {
	n := strings.ToLower(name)
	for i, v := range modeNames {
		if v == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scale mode %q", bitmap.ErrInvalidParameter, name)
}

// Align places a shorter span inside a longer one.
type Align uint8

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// offset of a span of length inside target.
func (a Align) offset(target, length int) int {
	switch a {
	case AlignCenter:
		return (target - length) / 2
	case AlignEnd:
		return target - length
	default:
		return 0
	}
}

// Position anchors the source on the target for cropping, padding and
// tiling.
type Position struct {
	X Align // left, center, right
	Y Align // top, middle, bottom
}

// Center is the default position.
var Center = Position{X: AlignCenter, Y: AlignCenter}

var (
	xLabels = [...]string{AlignStart: "left", AlignCenter: "center", AlignEnd: "right"}
	yLabels = [...]string{AlignStart: "top", AlignCenter: "middle", AlignEnd: "bottom"}
)

// ParsePosition reads "top-left", "bottom", "middle-right", "center" and so
// on. A missing axis stays centered.
func ParsePosition(s string) (Position, error) {
	p := Center
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return p, nil
	}

	for part := range strings.SplitSeq(s, "-") {
		switch part {
		case "top":
			p.Y = AlignStart
		case "middle":
			p.Y = AlignCenter
		case "bottom":
			p.Y = AlignEnd
		case "left":
			p.X = AlignStart
		case "center":
			p.X = AlignCenter
		case "right":
			p.X = AlignEnd
		default:
			return Center, fmt.Errorf("%w: unknown position %q", bitmap.ErrInvalidParameter, s)
		}
	}
	return p, nil
}

func (p Position) String() string {
	if int(p.X) >= len(xLabels) || int(p.Y) >= len(yLabels) {
		return fmt.Sprintf("Position(%d,%d)", p.X, p.Y)
	}
	return yLabels[p.Y] + "-" + xLabels[p.X]
}
