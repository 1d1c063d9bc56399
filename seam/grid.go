package seam

import (
	"math"

	"imgex/bitmap"
	"imgex/colorspace"
	"imgex/resize"
)

// grid is the working pixel buffer of the engine: ch bytes per pixel, rows
// of w pixels.
type grid struct {
	w, h, ch int
	pix      []uint8
}

func newGrid(b *bitmap.Bitmap, keepAlpha bool) (*grid, error) {
	tc, err := b.Truecolor()
	if err != nil {
		return nil, err
	}

	g := &grid{w: tc.Width, h: tc.Height, ch: 3}
	if keepAlpha {
		g.ch = 4
	}
	g.pix = make([]uint8, g.w*g.h*g.ch)
	bpp := tc.Format.BytesPerPixel()
	for i, j := 0, 0; i < len(tc.Pix); i, j = i+bpp, j+g.ch {
		copy(g.pix[j:j+3], tc.Pix[i:i+3])
		if keepAlpha {
			g.pix[j+3] = 0xff
			if bpp == 4 {
				g.pix[j+3] = tc.Pix[i+3]
			}
		}
	}
	return g, nil
}

func (g *grid) bitmap() (*bitmap.Bitmap, error) {
	b, err := bitmap.New(g.w, g.h, bitmap.Truecolor(g.ch == 4))
	if err != nil {
		return nil, err
	}
	copy(b.Pix, g.pix)
	return b, nil
}

func (g *grid) clone() *grid {
	c := *g
	c.pix = append([]uint8(nil), g.pix...)
	return &c
}

func (g *grid) transpose() {
	pix := make([]uint8, len(g.pix))
	for y := range g.h {
		for x := range g.w {
			src := (y*g.w + x) * g.ch
			dst := (x*g.h + y) * g.ch
			copy(pix[dst:dst+g.ch], g.pix[src:src+g.ch])
		}
	}
	g.pix = pix
	g.w, g.h = g.h, g.w
}

// energy is the gradient magnitude of the luminance, weighted by alpha
// when the grid keeps it.
func (g *grid) energy() []float64 {
	lum := make([]float64, g.w*g.h)
	for i := range lum {
		p := g.pix[i*g.ch:]
		l := float64(colorspace.Luminance(p[0], p[1], p[2]))
		if g.ch == 4 {
			l = l * float64(p[3]) / 0xff
		}
		lum[i] = l
	}

	e := make([]float64, len(lum))
	for y := range g.h {
		up, down := max(y-1, 0), min(y+1, g.h-1)
		for x := range g.w {
			left, right := max(x-1, 0), min(x+1, g.w-1)
			dx := lum[y*g.w+right] - lum[y*g.w+left]
			dy := lum[down*g.w+x] - lum[up*g.w+x]
			e[y*g.w+x] = math.Abs(dx) + math.Abs(dy)
		}
	}
	return e
}

// seam returns the column of the cheapest top to bottom path through e, one
// entry per row. Straight moves win ties, then the leftmost column.
func (g *grid) seam(e []float64, opts resize.CarveOptions) []int {
	cost := make([]float64, len(e))
	back := make([]int, len(e))
	copy(cost[:g.w], e[:g.w])

	for y := 1; y < g.h; y++ {
		prev := cost[(y-1)*g.w : y*g.w]
		for x := range g.w {
			best, from := prev[x], x
			for d := 1; d <= opts.MaxStep; d++ {
				penalty := opts.Rigidity * float64(d)
				if px := x - d; px >= 0 && prev[px]+penalty < best {
					best, from = prev[px]+penalty, px
				}
				if px := x + d; px < g.w && prev[px]+penalty < best {
					best, from = prev[px]+penalty, px
				}
			}
			cost[y*g.w+x] = e[y*g.w+x] + best
			back[y*g.w+x] = from
		}
	}

	last := cost[(g.h-1)*g.w:]
	x := 0
	for i, c := range last {
		if c < last[x] {
			x = i
		}
	}
	s := make([]int, g.h)
	for y := g.h - 1; y >= 0; y-- {
		s[y] = x
		x = back[y*g.w+x]
	}
	return s
}

// cut drops the element at column s[y] of every row of a row major buffer
// holding size values per element.
func cut[T any](data []T, w, h, size int, s []int) []T {
	out := make([]T, 0, (w-1)*h*size)
	for y := range h {
		row := data[y*w*size : (y+1)*w*size]
		out = append(out, row[:s[y]*size]...)
		out = append(out, row[(s[y]+1)*size:]...)
	}
	return out
}

func (g *grid) remove(s []int) {
	g.pix = cut(g.pix, g.w, g.h, g.ch, s)
	g.w--
}

// insert widens g by k seams at once. The seams are searched on a copy that
// loses each one after it is found, so that the k seams are distinct.
func (g *grid) insert(k int, opts resize.CarveOptions) {
	work := g.clone()
	cols := make([]int, g.w*g.h)
	for i := range cols {
		cols[i] = i % g.w
	}

	marked := make([]bool, g.w*g.h)
	for i := range k {
		s := work.seam(work.energy(), opts)
		for y, x := range s {
			marked[y*g.w+cols[y*work.w+x]] = true
		}
		if i < k-1 {
			cols = cut(cols, work.w, work.h, 1, s)
			work.remove(s)
		}
	}

	pix := make([]uint8, 0, (g.w+k)*g.h*g.ch)
	for y := range g.h {
		for x := range g.w {
			p := g.pix[(y*g.w+x)*g.ch:][:g.ch]
			pix = append(pix, p...)
			if !marked[y*g.w+x] {
				continue
			}
			q := g.pix[(y*g.w+min(x+1, g.w-1))*g.ch:][:g.ch]
			for c := range g.ch {
				pix = append(pix, uint8((int(p[c])+int(q[c])+1)/2))
			}
		}
	}
	g.pix = pix
	g.w += k
}

// resizeWidth carves seams out of g, or duplicates them, until it is width
// pixels wide.
func (g *grid) resizeWidth(width int, opts resize.CarveOptions) {
	for g.w > width {
		g.remove(g.seam(g.energy(), opts))
	}
	for g.w < width {
		g.insert(min(width-g.w, g.w), opts)
	}
}

func (g *grid) resizeHeight(height int, opts resize.CarveOptions) {
	if g.h == height {
		return
	}
	g.transpose()
	g.resizeWidth(height, opts)
	g.transpose()
}
