package tool

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	xbmp "golang.org/x/image/bmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#f00", color.NRGBA{R: 0xff, A: 0xff}},
		{"#0f08", color.NRGBA{G: 0xff, A: 0x88}},
		{"#102030", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{"#10203040", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
		{"hsl(120, 100%, 50%)", color.NRGBA{G: 0xff, A: 0xff}},
		{"HSV(240,100,100)", color.NRGBA{B: 0xff, A: 0xff}},
		{"hsv(-120, 100%, 100%)", color.NRGBA{B: 0xff, A: 0xff}},
		{"cmyk(0%, 100%, 100%, 0%)", color.NRGBA{R: 0xff, A: 0xff}},
		{"CornflowerBlue", color.NRGBA{R: 100, G: 149, B: 237, A: 0xff}},
		{"white", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := parseColor(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := color.NRGBAModel.Convert(c).(color.NRGBA); got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}

	for _, in := range []string{"#12", "reddish", "#ggg", "cmyk(0,0,0)", "cmyk(0,0,0,120)", "hsl(1,2)", "rgb(1,2,3)", "hsl(0,150%,50%)", "hsv(a,1,1)"} {
		if _, err := parseColor(in); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
}

// run parses args like the imgex binary and runs the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	parser, err := kong.New(&cli, kong.Name("imgex"), kong.Writers(&out, &out),
		kong.Exit(func(code int) { t.Fatalf("exit %d: %s", code, out.String()) }))
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = kctx.Run(&cli.Globals)
	return out.String(), err
}

// writePNG writes a w x h image with a red left half and an opaque blue
// right half.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 0xff, A: 0xff}
			if x >= w/2 {
				c = color.NRGBA{B: 0xff, A: 0xff}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestBMPCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 4, 2)
	out := filepath.Join(dir, "out")

	if _, err := run(t, "bmp", in, "--dest", out); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(out, "in.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := xbmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(img.At(3, 1)).(color.NRGBA); got != (color.NRGBA{B: 0xff, A: 0xff}) {
		t.Fatalf("unexpected pixel %v", got)
	}

	if _, err := run(t, "bmp", in, "--dest", out, "--palette", "vga16"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "in.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	if depth := binary.LittleEndian.Uint16(data[28:]); depth != 4 {
		t.Fatalf("16 colors written at %d bpp", depth)
	}
}

func TestICOCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 40, 20)
	out := filepath.Join(dir, "icons", "app.ico")

	if _, err := run(t, "ico", in, "--out", out, "--sizes", "16,32"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var head []uint16
	for i := 0; i < 6; i += 2 {
		head = append(head, binary.LittleEndian.Uint16(data[i:]))
	}
	if diff := cmp.Diff([]uint16{0, 1, 2}, head); diff != "" {
		t.Fatalf("unexpected header (-want +got):\n%s", diff)
	}
	if data[6] != 16 || data[6+16] != 32 {
		t.Fatalf("unexpected entry widths %d, %d", data[6], data[6+16])
	}

	if _, err := run(t, "ico", in, "--out", out, "--sizes", "300"); err == nil {
		t.Fatal("expected an error for a 300 px entry")
	}
}

func TestScaleCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 6, 4)

	tests := []struct {
		args          []string
		width, height int
	}{
		{[]string{"--width", "3"}, 3, 2},
		{[]string{"--width", "12", "--height", "4", "--mode", "pad", "--background", "#fff"}, 12, 4},
		{[]string{"--width", "4", "--height", "4", "--mode", "carve"}, 4, 4},
		{[]string{"--width", "2", "--height", "2", "--mode", "crop", "--position", "top-right"}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"scale", in, "--dest", out}, tt.args...)
			if _, err := run(t, args...); err != nil {
				t.Fatal(err)
			}
			b := decodeFile(t, filepath.Join(out, "in.png")).Bounds()
			if b.Dx() != tt.width || b.Dy() != tt.height {
				t.Fatalf("got %dx%d want %dx%d", b.Dx(), b.Dy(), tt.width, tt.height)
			}
		})
	}

	if _, err := run(t, "scale", in, "--dest", dir); err == nil {
		t.Fatal("expected an error without dimensions")
	}
	if _, err := run(t, "scale", in, "--dest", dir, "--width", "2", "--position", "upper"); err == nil {
		t.Fatal("expected an error for a bad position")
	}
}

func TestCorrectCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 2, 1)

	if _, err := run(t, "correct", in, "--dest", dir, "--format", "bmp", "--params", `{"r": {"negate": true}, "b": {"levels": [0, 128]}}`); err != nil {
		t.Fatal(err)
	}
	img := decodeFile(t, filepath.Join(dir, "in.bmp"))
	var got []color.NRGBA
	for x := range 2 {
		got = append(got, color.NRGBAModel.Convert(img.At(x, 0)).(color.NRGBA))
	}
	want := []color.NRGBA{{A: 0xff}, {R: 0xff, B: 0xff, A: 0xff}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
	}

	params := filepath.Join(dir, "params.json")
	if err := os.WriteFile(params, []byte(`{"l": {"gamma": 0}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "correct", in, "--dest", dir, "--space", "hsl", "--params", params); err == nil {
		t.Fatal("expected an error for gamma 0")
	}
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 2, 1)

	if _, err := run(t, "extract", in, "--dest", dir, "--space", "rgb", "--alpha"); err != nil {
		t.Fatal(err)
	}
	var got []uint8
	for _, c := range []string{"r", "g", "b", "a"} {
		img := decodeFile(t, filepath.Join(dir, "in_"+c+".png"))
		got = append(got, color.GrayModel.Convert(img.At(0, 0)).(color.Gray).Y)
	}
	if diff := cmp.Diff([]uint8{0xff, 0, 0, 0xff}, got); diff != "" {
		t.Fatalf("unexpected plane values (-want +got):\n%s", diff)
	}
}

func TestMaskCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 4, 2)

	m := image.NewGray(image.Rect(0, 0, 2, 1))
	m.Pix = []uint8{0, 0xff}
	maskPath := filepath.Join(dir, "mask.png")
	f, err := os.Create(maskPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, m); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out := filepath.Join(dir, "out")
	if _, err := run(t, "mask", in, "--dest", out, "--mask", maskPath, "--tile"); err != nil {
		t.Fatal(err)
	}
	img := decodeFile(t, filepath.Join(out, "in.png"))
	var alpha []uint8
	for x := range 4 {
		_, _, _, a := img.At(x, 1).RGBA()
		alpha = append(alpha, uint8(a>>8))
	}
	if diff := cmp.Diff([]uint8{0, 0xff, 0, 0xff}, alpha); diff != "" {
		t.Fatalf("unexpected alpha (-want +got):\n%s", diff)
	}

	if _, err := run(t, "mask", in, "--dest", out, "--mask", maskPath); err == nil {
		t.Fatal("expected a size mismatch without tiling")
	}
}

func TestFlipCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, "in.png", 4, 2)
	red, blue := color.NRGBA{R: 0xff, A: 0xff}, color.NRGBA{B: 0xff, A: 0xff}

	tests := []struct {
		axis  string
		left  color.NRGBA
		right color.NRGBA
	}{
		{"horizontal", blue, red},
		{"vertical", red, blue},
		{"both", blue, red},
	}
	for _, tt := range tests {
		t.Run(tt.axis, func(t *testing.T) {
			out := t.TempDir()
			if _, err := run(t, "flip", in, "--dest", out, "--axis", tt.axis); err != nil {
				t.Fatal(err)
			}
			img := decodeFile(t, filepath.Join(out, "in.png"))
			got := []color.NRGBA{
				color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA),
				color.NRGBAModel.Convert(img.At(3, 1)).(color.NRGBA),
			}
			if diff := cmp.Diff([]color.NRGBA{tt.left, tt.right}, got); diff != "" {
				t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFailuresAreCounted(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", 2, 2)
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "bmp", good, bad, "--dest", dir, "--workers", "2")
	if err == nil || !strings.Contains(err.Error(), "error processing 1 files") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.bmp")); err != nil {
		t.Fatalf("good input not written: %v", err)
	}
}

func TestFeaturesCommand(t *testing.T) {
	out, err := run(t, "features")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"carve: true", "scale modes: none, crop, fit", "palettes: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
