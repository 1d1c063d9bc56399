// Package correct applies per-channel tonal corrections to bitmaps.
package correct

import (
	"fmt"
	"math"
	"strings"

	"imgex/bitmap"
	"imgex/colorspace"

	"gonum.org/v1/gonum/interp"
)

const (
	GammaMin = 0.001
	GammaMax = 1000.0
)

// Op is one tonal operation. It maps a normalized channel value in [0,1]
// to a new one. The variants are Gamma, Levels, ToneCurve, SmoothCurve,
// Negate and HueRotate; build them with their constructors.
type Op interface {
	Eval(v float64) float64
	String() string
	validate() error
}

// Gamma raises values to 1/g.
type Gamma struct {
	g float64
}

// NewGamma validates g and clamps it to [GammaMin, GammaMax].
func NewGamma(g float64) (Gamma, error) {
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return Gamma{}, fmt.Errorf("%w: gamma %v must be finite and positive", bitmap.ErrInvalidParameter, g)
	}
	return Gamma{g: min(max(g, GammaMin), GammaMax)}, nil
}

func (o Gamma) Exponent() float64 { return o.g }

func (o Gamma) Eval(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Pow(v, 1/o.g)
}

func (o Gamma) String() string { return fmt.Sprintf("gamma(%g)", o.g) }

func (o Gamma) validate() error {
	if o.g <= 0 {
		return fmt.Errorf("%w: zero gamma", bitmap.ErrInvalidParameter)
	}
	return nil
}

// Levels stretches [Black, White] to the output range [OutBlack, OutWhite],
// all on the 8-bit scale. Values outside the input window are clamped.
type Levels struct {
	black, white       uint8
	outBlack, outWhite uint8
	rgamma             float64
}

// NewLevels builds the two-point stretch onto the full output range.
func NewLevels(black, white int) (Levels, error) {
	return NewLevelsRange(black, white, 0, 255)
}

// NewLevelsRange builds the stretch followed by a remap of the output to
// [outBlack, outWhite]. Values are clamped to 0..255 first, both ranges must
// then be non-empty.
func NewLevelsRange(black, white, outBlack, outWhite int) (Levels, error) {
	clamp := func(v int) uint8 { return uint8(min(max(v, 0), 255)) }
	l := Levels{
		black:    clamp(black),
		white:    clamp(white),
		outBlack: clamp(outBlack),
		outWhite: clamp(outWhite),
		rgamma:   1,
	}
	if err := l.validate(); err != nil {
		return Levels{}, err
	}
	return l, nil
}

// WithGamma returns l with gamma g applied inside the input window.
func (o Levels) WithGamma(g Gamma) Levels {
	o.rgamma = 1 / g.g
	return o
}

func (o Levels) Eval(v float64) float64 {
	lo, hi := float64(o.black)/255, float64(o.white)/255
	olo, ohi := float64(o.outBlack)/255, float64(o.outWhite)/255
	switch {
	case v <= lo:
		return olo
	case v >= hi:
		return ohi
	}

	t := (v - lo) / (hi - lo)
	if o.rgamma != 1 {
		t = math.Pow(t, o.rgamma)
	}
	return olo + (ohi-olo)*t
}

func (o Levels) String() string {
	s := fmt.Sprintf("levels(%d,%d,%d,%d)", o.black, o.white, o.outBlack, o.outWhite)
	if o.rgamma != 1 {
		s += fmt.Sprintf("^%g", 1/o.rgamma)
	}
	return s
}

func (o Levels) validate() error {
	if o.black >= o.white {
		return fmt.Errorf("%w: levels black %d must be below white %d", bitmap.ErrInvalidParameter, o.black, o.white)
	}
	if o.outBlack >= o.outWhite {
		return fmt.Errorf("%w: levels output black %d must be below white %d",
			bitmap.ErrInvalidParameter, o.outBlack, o.outWhite)
	}
	if o.rgamma <= 0 {
		return fmt.Errorf("%w: levels gamma not set", bitmap.ErrInvalidParameter)
	}
	return nil
}

// Point is a tone curve control point.
type Point struct {
	X, Y float64
}

func checkPoints(pts []Point, minLen int) error {
	if len(pts) < minLen {
		return fmt.Errorf("%w: tone curve needs at least %d points, got %d", bitmap.ErrInvalidParameter, minLen, len(pts))
	}
	for i, p := range pts {
		if !(p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1) {
			return fmt.Errorf("%w: tone curve point %d (%g,%g) outside [0,1]", bitmap.ErrInvalidParameter, i, p.X, p.Y)
		}
		if i > 0 && p.X <= pts[i-1].X {
			return fmt.Errorf("%w: tone curve x values must be strictly increasing at point %d",
				bitmap.ErrInvalidParameter, i)
		}
	}
	return nil
}

func splitPoints(pts []Point) ([]float64, []float64) {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

type predictor interface {
	Predict(x float64) float64
}

// curve holds the shared clamping for both curve kinds.
type curve struct {
	pts  []Point
	pred predictor
}

func (c curve) eval(v float64) float64 {
	n := len(c.pts)
	switch {
	case v <= c.pts[0].X:
		return c.pts[0].Y
	case v >= c.pts[n-1].X:
		return c.pts[n-1].Y
	}
	return min(max(c.pred.Predict(v), 0), 1)
}

func (c curve) format(name string) string {
	parts := make([]string, len(c.pts))
	for i, p := range c.pts {
		parts[i] = fmt.Sprintf("%g:%g", p.X, p.Y)
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

func (c curve) validate() error {
	if c.pred == nil || len(c.pts) == 0 {
		return fmt.Errorf("%w: empty tone curve", bitmap.ErrInvalidParameter)
	}
	return nil
}

// ToneCurve interpolates linearly between its points. The curve is pinned
// to (0,0) and (1,1) unless its own points already reach x=0 and x=1.
type ToneCurve struct {
	curve
}

// NewToneCurve needs at least one point.
func NewToneCurve(pts []Point) (ToneCurve, error) {
	if err := checkPoints(pts, 1); err != nil {
		return ToneCurve{}, err
	}
	edged := make([]Point, 0, len(pts)+2)
	if pts[0].X > 0 {
		edged = append(edged, Point{0, 0})
	}
	edged = append(edged, pts...)
	if pts[len(pts)-1].X < 1 {
		edged = append(edged, Point{1, 1})
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(splitPoints(edged)); err != nil {
		return ToneCurve{}, fmt.Errorf("%w: could not fit tone curve: %v", bitmap.ErrInvalidParameter, err)
	}
	return ToneCurve{curve{pts: edged, pred: &pl}}, nil
}

func (o ToneCurve) Eval(v float64) float64 { return o.eval(v) }
func (o ToneCurve) String() string         { return o.format("tonecurve") }

// SmoothCurve passes a monotone piecewise cubic (Fritsch-Butland) through its
// points, which never overshoots between them. Two points degrade to a line.
type SmoothCurve struct {
	curve
}

func NewSmoothCurve(pts []Point) (SmoothCurve, error) {
	if err := checkPoints(pts, 2); err != nil {
		return SmoothCurve{}, err
	}
	pts = append([]Point(nil), pts...)
	xs, ys := splitPoints(pts)

	var pred interface {
		predictor
		Fit(xs, ys []float64) error
	}
	if len(pts) == 2 {
		pred = &interp.PiecewiseLinear{}
	} else {
		pred = &interp.FritschButland{}
	}
	if err := pred.Fit(xs, ys); err != nil {
		return SmoothCurve{}, fmt.Errorf("%w: could not fit smooth tone curve: %v", bitmap.ErrInvalidParameter, err)
	}
	return SmoothCurve{curve{pts: pts, pred: pred}}, nil
}

func (o SmoothCurve) Eval(v float64) float64 { return o.eval(v) }
func (o SmoothCurve) String() string         { return o.format("tonecurve2") }

// Negate inverts values.
type Negate struct{}

func (Negate) Eval(v float64) float64 { return 1 - v }
func (Negate) String() string         { return "negate" }
func (Negate) validate() error        { return nil }

// HueRotate shifts a hue by a fraction of a turn, wrapping into [0,1).
type HueRotate struct {
	turns float64
}

// NewHueRotate takes the rotation in degrees.
func NewHueRotate(degrees float64) (HueRotate, error) {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return HueRotate{}, fmt.Errorf("%w: hue rotation %v", bitmap.ErrInvalidParameter, degrees)
	}
	return HueRotate{turns: colorspace.WrapHue(degrees / 360)}, nil
}

func (o HueRotate) Eval(v float64) float64 { return colorspace.WrapHue(v + o.turns) }
func (o HueRotate) String() string         { return fmt.Sprintf("rotate(%g)", o.turns*360) }
func (HueRotate) validate() error          { return nil }

// Chain evaluates ops left to right.
func Chain(ops []Op, v float64) float64 {
	for _, op := range ops {
		v = op.Eval(v)
	}
	return v
}
