package correct

import (
	"errors"
	"math"
	"testing"

	"imgex/bitmap"
	"imgex/colorspace"

	"github.com/google/go-cmp/cmp"
)

func grayRamp(t *testing.T, w, h int) *bitmap.Bitmap {
	t.Helper()
	b, err := bitmap.New(w, h, bitmap.Truecolor(false))
	if err != nil {
		t.Fatal(err)
	}
	for y := range h {
		for x := range w {
			i := b.Offset(x, y)
			b.Pix[i+0], b.Pix[i+1], b.Pix[i+2] = uint8(x), uint8(x), uint8(x)
		}
	}
	return b
}

func colorful(t *testing.T) *bitmap.Bitmap {
	t.Helper()
	b, err := bitmap.New(16, 16, bitmap.Truecolor(true))
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Pix {
		b.Pix[i] = uint8(i * 37)
	}
	return b
}

func TestLevelsRamp(t *testing.T) {
	b := grayRamp(t, 256, 32)
	spec, err := ParseJSON([]byte(`{"levels": [51, 204]}`), colorspace.RGB)
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(b, spec, colorspace.RGB); err != nil {
		t.Fatal(err)
	}

	// 255*(127-51)/(204-51) is 126.67
	for in, want := range map[int]uint8{0: 0, 51: 0, 127: 126, 204: 255, 255: 255} {
		for y := range 32 {
			px, err := b.Pixel(in, y)
			if err != nil {
				t.Fatal(err)
			}
			if px.R != want || px.G != want || px.B != want {
				t.Fatalf("input %d row %d: got %v want %d", in, y, px, want)
			}
		}
	}
}

func TestEmptyOperationsAreNoop(t *testing.T) {
	for _, space := range []colorspace.Space{colorspace.RGB, colorspace.HSL, colorspace.HSV, colorspace.CMYK} {
		t.Run(space.String(), func(t *testing.T) {
			b := colorful(t)
			want := b.Clone()

			spec := Spec{}
			for _, id := range append(space.Components(), "a") {
				ch, _ := ParseChannel(id)
				spec[ch] = nil
			}
			if err := Apply(b, spec, space); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, b, cmp.AllowUnexported(bitmap.Bitmap{})); diff != "" {
				t.Fatalf("bitmap changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGammaSelfInverse(t *testing.T) {
	for _, g := range []float64{0.3, 0.8, 2.2, 5} {
		fwd, err := NewGamma(g)
		if err != nil {
			t.Fatal(err)
		}
		inv, err := NewGamma(1 / g)
		if err != nil {
			t.Fatal(err)
		}

		b := grayRamp(t, 256, 1)
		if err := Apply(b, Spec{Green: {fwd, inv}}, colorspace.RGB); err != nil {
			t.Fatal(err)
		}
		for x := range 256 {
			px, _ := b.Pixel(x, 0)
			if d := int(px.G) - x; d < -1 || d > 1 {
				t.Fatalf("gamma %v: input %d came back as %d", g, x, px.G)
			}
			if int(px.R) != x || int(px.B) != x {
				t.Fatalf("gamma %v: untouched channels changed at %d: %v", g, x, px)
			}
		}
	}
}

func TestGammaDirection(t *testing.T) {
	dark, _ := NewGamma(0.5)
	bright, _ := NewGamma(2)
	if v := dark.Eval(0.5); v >= 0.5 {
		t.Fatalf("gamma below one should darken midtones, got %v", v)
	}
	if v := bright.Eval(0.5); v <= 0.5 {
		t.Fatalf("gamma above one should brighten midtones, got %v", v)
	}

	g, err := NewGamma(1e6)
	if err != nil {
		t.Fatal(err)
	}
	if g.Exponent() != GammaMax {
		t.Fatalf("gamma not clamped: %v", g.Exponent())
	}
}

func TestLevelsOutputRange(t *testing.T) {
	l, err := NewLevelsRange(0, 255, 64, 192)
	if err != nil {
		t.Fatal(err)
	}
	lut := Simulate([]Op{l})
	if lut[0] != 64 || lut[255] != 192 {
		t.Fatalf("unexpected output range %d..%d", lut[0], lut[255])
	}
}

func TestToneCurve(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		in   []float64
		want []float64
	}{
		{
			name: "inner points",
			pts:  []Point{{0.25, 0.5}, {0.75, 1}},
			in:   []float64{0, 0.125, 0.25, 0.5, 0.75, 1},
			want: []float64{0, 0.25, 0.5, 0.75, 1, 1},
		},
		{
			name: "single point",
			pts:  []Point{{0.5, 0.75}},
			in:   []float64{0, 0.25, 0.5, 0.75, 1},
			want: []float64{0, 0.375, 0.75, 0.875, 1},
		},
		{
			name: "own endpoints",
			pts:  []Point{{0, 0.2}, {1, 0.6}},
			in:   []float64{0, 0.5, 1},
			want: []float64{0.2, 0.4, 0.6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewToneCurve(tt.pts)
			if err != nil {
				t.Fatal(err)
			}
			for i, in := range tt.in {
				if got := c.Eval(in); math.Abs(got-tt.want[i]) > 1e-9 {
					t.Fatalf("Eval(%v): got %v want %v", in, got, tt.want[i])
				}
			}
		})
	}
}

func TestToneCurveBrightensMidtones(t *testing.T) {
	spec, err := ParseJSON([]byte(`{"l": {"tonecurve": [[0.5, 0.75]]}}`), colorspace.HSL)
	if err != nil {
		t.Fatal(err)
	}
	table := Simulate(spec[Lightness])
	got := []uint8{table[0], table[128], table[255]}
	if diff := cmp.Diff([]uint8{0, 191, 255}, got); diff != "" {
		t.Fatalf("unexpected response (-want +got):\n%s", diff)
	}
}

func TestSmoothCurveIsMonotone(t *testing.T) {
	pts := []Point{{0, 0}, {0.2, 0.05}, {0.5, 0.6}, {0.55, 0.62}, {1, 1}}
	c, err := NewSmoothCurve(pts)
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range pts {
		if got := c.Eval(p.X); math.Abs(got-p.Y) > 1e-9 {
			t.Fatalf("curve misses control point %v: %v", p, got)
		}
	}

	prev := -1.0
	for i := range 1001 {
		v := c.Eval(float64(i) / 1000)
		if v < prev-1e-12 {
			t.Fatalf("curve decreases at %v: %v < %v", float64(i)/1000, v, prev)
		}
		if v < 0 || v > 1 {
			t.Fatalf("curve leaves [0,1] at %v: %v", float64(i)/1000, v)
		}
		prev = v
	}
}

func TestInvalidOperations(t *testing.T) {
	tests := []struct {
		name   string
		params string
	}{
		{name: "degenerate levels", params: `{"r": {"levels": [100, 100]}}`},
		{name: "inverted levels", params: `{"levels": [200, 100]}`},
		{name: "levels arity", params: `{"levels": [1, 2, 3]}`},
		{name: "zero gamma", params: `{"g": {"gamma": 0}}`},
		{name: "negative gamma", params: `{"gamma": -1}`},
		{name: "unsorted curve", params: `{"b": {"tonecurve": [[0.5, 0.5], [0.2, 0.1]]}}`},
		{name: "out of range curve", params: `{"b": {"tonecurve2": [[0, 0], [1.5, 1]]}}`},
		{name: "short smooth curve", params: `{"b": {"tonecurve2": [[0.5, 0.5]]}}`},
		{name: "bad point", params: `{"b": {"tonecurve": [[0.5]]}}`},
		{name: "bad entry", params: `{"r": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.params), colorspace.RGB); !errors.Is(err, bitmap.ErrInvalidParameter) {
				t.Fatalf("expected invalid parameter, got %v", err)
			}
		})
	}

	b := grayRamp(t, 2, 2)
	if err := Apply(b, Spec{Red: {Gamma{}}}, colorspace.RGB); !errors.Is(err, bitmap.ErrInvalidParameter) {
		t.Fatalf("zero value op: expected invalid parameter, got %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	spec, err := ParseJSON([]byte(`{
		"gamma": 2,
		"r": {"negate": true},
		"v": {"gamma": 3},
		"unknown": {"gamma": 4},
		"a": [{"levels": [0, 128]}, {"negate": true}]
	}`), colorspace.RGB)
	if err != nil {
		t.Fatal(err)
	}

	want := map[Channel]string{
		Red:   "gamma(2)|negate",
		Green: "gamma(2)",
		Blue:  "gamma(2)",
		Alpha: "levels(0,128,0,255)|negate",
	}
	got := map[Channel]string{}
	for ch, ops := range spec {
		got[ch] = Spec{ch: ops}.String()[2:]
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected spec (-want +got):\n%s", diff)
	}
}

func TestChannelOverridesShared(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   map[Channel]string
	}{
		{
			name:   "same key",
			params: `{"gamma": 2, "r": {"gamma": 2}}`,
			want:   map[Channel]string{Red: "gamma(2)", Green: "gamma(2)", Blue: "gamma(2)"},
		},
		{
			name:   "gamma inside channel levels",
			params: `{"gamma": 2, "r": {"levels": [51, 204]}}`,
			want:   map[Channel]string{Red: "levels(51,204,0,255)^2", Green: "gamma(2)", Blue: "gamma(2)"},
		},
		{
			name:   "negate switched off",
			params: `{"negate": true, "b": {"negate": false}}`,
			want:   map[Channel]string{Red: "negate", Green: "negate"},
		},
		{
			name:   "channel curve replaces shared curve",
			params: `{"tonecurve2": [[0, 0], [1, 1]], "g": {"tonecurve": [[0, 0.5], [1, 1]]}}`,
			want:   map[Channel]string{Red: "tonecurve2(0:0,1:1)", Green: "tonecurve(0:0.5,1:1)", Blue: "tonecurve2(0:0,1:1)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseJSON([]byte(tt.params), colorspace.RGB)
			if err != nil {
				t.Fatal(err)
			}
			got := map[Channel]string{}
			for ch, ops := range spec {
				if len(ops) > 0 {
					got[ch] = Spec{ch: ops}.String()[2:]
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected spec (-want +got):\n%s", diff)
			}
		})
	}

	spec, err := ParseJSON([]byte(`{"gamma": 2, "r": {"gamma": 2}}`), colorspace.RGB)
	if err != nil {
		t.Fatal(err)
	}
	r, g := Simulate(spec[Red]), Simulate(spec[Green])
	if r[64] != g[64] {
		t.Fatalf("red gamma applied twice: r=%d g=%d", r[64], g[64])
	}
}

func TestParseConfigHue(t *testing.T) {
	spec, err := ParseJSON([]byte(`{"h": -90, "s": {"levels": [0, 200], "gamma": 2}, "r": {"gamma": 2}}`), colorspace.HSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec) != 2 {
		t.Fatalf("unexpected channels: %s", spec)
	}
	if s := spec.String(); s != "h=rotate(270) s=levels(0,200,0,255)^2" {
		t.Fatalf("unexpected spec: %s", s)
	}
}

func TestHueRotation(t *testing.T) {
	b, err := bitmap.New(1, 1, bitmap.Truecolor(false))
	if err != nil {
		t.Fatal(err)
	}
	copy(b.Pix, []uint8{255, 0, 0})

	spec, err := ParseJSON([]byte(`{"h": 120}`), colorspace.HSL)
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(b, spec, colorspace.HSL); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint8{0, 255, 0}, b.Pix); diff != "" {
		t.Fatalf("red rotated by 120 degrees (-want +got):\n%s", diff)
	}
}

func TestApplyCMYKBlack(t *testing.T) {
	b := grayRamp(t, 256, 1)
	spec, err := ParseJSON([]byte(`{"k": {"negate": true}}`), colorspace.CMYK)
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(b, spec, colorspace.CMYK); err != nil {
		t.Fatal(err)
	}
	for x := range 256 {
		px, _ := b.Pixel(x, 0)
		if d := int(px.R) - (255 - x); d < -1 || d > 1 {
			t.Fatalf("input %d: got %v", x, px)
		}
	}
}

func TestApplyIndexedAndAlpha(t *testing.T) {
	b, err := bitmap.NewIndexed(2, 1, bitmap.Palette{{10, 20, 30}, {200, 100, 50}})
	if err != nil {
		t.Fatal(err)
	}
	b.Pix[1] = 1

	neg := []Op{Negate{}}
	if err := Apply(b, Spec{Red: neg, Alpha: neg}, colorspace.RGB); err != nil {
		t.Fatal(err)
	}
	if b.Format != bitmap.Truecolor(true) {
		t.Fatalf("unexpected format %s", b.Format)
	}
	if diff := cmp.Diff([]uint8{245, 20, 30, 0, 55, 100, 50, 0}, b.Pix); diff != "" {
		t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
	}
}

func TestIgnoresForeignChannels(t *testing.T) {
	b := colorful(t)
	want := b.Clone()
	if err := Apply(b, Spec{Hue: {Negate{}}, Cyan: {Negate{}}}, colorspace.RGB); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, b, cmp.AllowUnexported(bitmap.Bitmap{})); diff != "" {
		t.Fatalf("bitmap changed (-want +got):\n%s", diff)
	}
}

func BenchmarkApplyHSL(b *testing.B) {
	bm, err := bitmap.New(512, 512, bitmap.Truecolor(false))
	if err != nil {
		b.Fatal(err)
	}
	for i := range bm.Pix {
		bm.Pix[i] = uint8(i)
	}
	spec, err := ParseJSON([]byte(`{"s": {"tonecurve2": [[0, 0], [0.4, 0.6], [1, 1]]}, "l": {"gamma": 1.2}}`), colorspace.HSL)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if err := Apply(bm, spec, colorspace.HSL); err != nil {
			b.Fatal(err)
		}
	}
}
