package palette

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"imgex/bitmap"

	"github.com/google/go-cmp/cmp"
)

func TestRIFFRoundTrip(t *testing.T) {
	pals := []bitmap.Palette{
		{{1, 2, 3}, {4, 5, 6}},
		vga16,
	}

	var buf bytes.Buffer
	n, err := WriteTo(&buf, pals)
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != buf.Len() {
		t.Fatalf("reported %d bytes, wrote %d", n, buf.Len())
	}
	if got := string(buf.Bytes()[8:12]); got != "PAL " {
		t.Fatalf("unexpected form type %q", got)
	}

	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(pals, got); diff != "" {
		t.Fatalf("palettes differ (-want +got):\n%s", diff)
	}
}

func TestReadRejects(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteTo(&buf, []bitmap.Palette{{{1, 2, 3}}}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	data[20] = 0x02 // palVersion

	if _, err := ReadFrom(bytes.NewReader(data)); !errors.Is(err, bitmap.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if _, err := ReadFrom(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE"))); !errors.Is(err, bitmap.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestLoadPalette(t *testing.T) {
	for _, name := range Names() {
		p, err := LoadPalette(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(p) == 0 || len(p) > bitmap.MaxPaletteSize {
			t.Fatalf("%s: %d entries", name, len(p))
		}
	}

	g, _ := Named("gray4")
	if diff := cmp.Diff(bitmap.Palette{{0, 0, 0}, {85, 85, 85}, {170, 170, 170}, {255, 255, 255}}, g); diff != "" {
		t.Fatalf("unexpected gray4 (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "two.pal")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteTo(f, []bitmap.Palette{{{9, 8, 7}, {6, 5, 4}}}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPalette(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bitmap.Palette{{9, 8, 7}, {6, 5, 4}}, p); diff != "" {
		t.Fatalf("unexpected palette (-want +got):\n%s", diff)
	}

	if _, err := LoadPalette("no-such-palette"); !errors.Is(err, bitmap.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}

func checker(w, h int, a, b color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

func TestRemap(t *testing.T) {
	img := checker(4, 4, color.NRGBA{R: 10, G: 10, B: 10, A: 255}, color.NRGBA{R: 240, G: 250, B: 245, A: 255})
	bw, _ := Named("bw")

	for _, dither := range []bool{false, true} {
		b, err := Remap(img, bw, dither)
		if err != nil {
			t.Fatal(err)
		}
		if !b.IsIndexed() || len(b.Palette) != 2 || b.Format.Depth != 1 {
			t.Fatalf("unexpected result %s with %d colors", b.Format, len(b.Palette))
		}
		for y := range 4 {
			for x := range 4 {
				idx, _ := b.Index(x, y)
				if want := uint8((x + y) % 2); idx != want {
					t.Fatalf("dither %v (%d,%d): got %d want %d", dither, x, y, idx, want)
				}
			}
		}
	}

	if _, err := Remap(img, nil, false); !errors.Is(err, bitmap.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}

func TestReduce(t *testing.T) {
	img := checker(8, 8, color.NRGBA{R: 200, A: 255}, color.NRGBA{B: 200, A: 255})

	b, err := Reduce(img, 16, false)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsIndexed() || len(b.Palette) > 16 {
		t.Fatalf("unexpected result %s with %d colors", b.Format, len(b.Palette))
	}
	for y := range 8 {
		for x := range 8 {
			c, _ := b.Pixel(x, y)
			want := color.NRGBA{R: 200, A: 255}
			if (x+y)%2 == 1 {
				want = color.NRGBA{B: 200, A: 255}
			}
			if !near(c, want) {
				t.Fatalf("(%d,%d): got %v want %v", x, y, c, want)
			}
		}
	}

	if _, err := Reduce(img, 1, false); !errors.Is(err, bitmap.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool { return int(x)-int(y) <= 1 && int(y)-int(x) <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && a.A == b.A
}

func TestLab(t *testing.T) {
	white := LabOf(bitmap.RGB{R: 0xff, G: 0xff, B: 0xff})
	if math.Abs(white.L-1) > 1e-4 || math.Abs(white.A) > 1e-4 || math.Abs(white.B) > 1e-4 {
		t.Fatalf("unexpected white %+v", white)
	}
	if black := LabOf(bitmap.RGB{}); black != (Lab{}) {
		t.Fatalf("unexpected black %+v", black)
	}

	pal, _ := Named("vga16")
	lp := NewLabPalette(pal)
	for i, c := range pal {
		if got := lp.Index(LabOf(c)); pal[got] != c {
			t.Fatalf("entry %d %v matched %d %v", i, c, got, pal[got])
		}
	}
}

func TestRemapPerceptual(t *testing.T) {
	bw := bitmap.Palette{{}, {R: 0xff, G: 0xff, B: 0xff}}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 110, G: 110, B: 110, A: 0xff})

	// Mid gray is nearer to black in sRGB but lighter than middle in OKLab.
	plain, err := Remap(img, bw, false)
	if err != nil {
		t.Fatal(err)
	}
	perceptual, err := RemapPerceptual(img, bw)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Pix[0] != 0 || perceptual.Pix[0] != 1 {
		t.Fatalf("got sRGB index %d and OKLab index %d", plain.Pix[0], perceptual.Pix[0])
	}

	if _, err := RemapPerceptual(img, nil); !errors.Is(err, bitmap.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}
