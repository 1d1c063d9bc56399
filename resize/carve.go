package resize

import (
	"fmt"
	"math"
	"sync"

	"imgex/bitmap"
)

// CarveOptions tunes seam carving.
type CarveOptions struct {
	// MaxStep is the largest horizontal move of a seam between two rows. 1
	// gives 8-connected seams, 0 straight ones.
	MaxStep int
	// Rigidity adds Rigidity*|step| to the energy of every move, favoring
	// straighter seams.
	Rigidity float64
	// VerticalFirst changes height before width.
	VerticalFirst bool
	// KeepAlpha keeps the alpha channel through carving. Otherwise the
	// result is opaque.
	KeepAlpha bool
}

// DefaultCarveOptions are 8-connected seams, no rigidity, width first.
var DefaultCarveOptions = CarveOptions{MaxStep: 1}

func (o CarveOptions) validate() error {
	if o.MaxStep < 0 {
		return fmt.Errorf("%w: carve max step %d is negative", bitmap.ErrInvalidParameter, o.MaxStep)
	}
	if math.IsNaN(o.Rigidity) || math.IsInf(o.Rigidity, 0) || o.Rigidity < 0 {
		return fmt.Errorf("%w: carve rigidity %g must be finite and not negative", bitmap.ErrInvalidParameter, o.Rigidity)
	}
	return nil
}

// Carver removes or inserts low energy seams until a bitmap has the
// requested size.
type Carver interface {
	Carve(b *bitmap.Bitmap, width, height int, opts CarveOptions) (*bitmap.Bitmap, error)
}

var (
	carverMu sync.Mutex
	carver   Carver
)

// RegisterCarver installs the seam carving engine. It is meant to be called
// from an init function, capabilities are resolved once on first use.
func RegisterCarver(c Carver) {
	carverMu.Lock()
	defer carverMu.Unlock()
	carver = c
}

// Features are the optional capabilities of the process.
type Features struct {
	Carve bool
}

type capabilities struct {
	Features
	carver Carver
}

var resolve = sync.OnceValue(func() capabilities {
	carverMu.Lock()
	defer carverMu.Unlock()
	return capabilities{Features: Features{Carve: carver != nil}, carver: carver}
})

// Capabilities reports which optional features are available.
func Capabilities() Features {
	return resolve().Features
}

// Available reports whether ModeCarve and Carve can be used.
func Available() bool {
	return Capabilities().Carve
}

// Carve seam carves b to exactly width x height. It fails with
// bitmap.ErrFeatureUnavailable when no engine is registered.
func Carve(b *bitmap.Bitmap, width, height int, opts CarveOptions) (*bitmap.Bitmap, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: carve to %dx%d", bitmap.ErrInvalidParameter, width, height)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	c := resolve().carver
	if c == nil {
		return nil, fmt.Errorf("%w: no seam carving engine", bitmap.ErrFeatureUnavailable)
	}
	return c.Carve(b, width, height, opts)
}
