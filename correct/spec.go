package correct

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"imgex/bitmap"
	"imgex/colorspace"
)

// Channel identifies a component of a color space.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
	Alpha
	Hue
	Saturation
	Lightness
	Value
	Cyan
	Magenta
	Yellow
	Black
)

var channelIDs = [...]string{
	Red:        "r",
	Green:      "g",
	Blue:       "b",
	Alpha:      "a",
	Hue:        "h",
	Saturation: "s",
	Lightness:  "l",
	Value:      "v",
	Cyan:       "c",
	Magenta:    "m",
	Yellow:     "y",
	Black:      "k",
}

func (c Channel) String() string {
	if int(c) < len(channelIDs) {
		return channelIDs[c]
	}
	return fmt.Sprintf("Channel(%d)", c)
}

// ParseChannel maps a one-letter identifier to its channel.
func ParseChannel(id string) (Channel, bool) {
	for i, v := range channelIDs {
		if v == id {
			return Channel(i), true
		}
	}
	return 0, false
}

// Component returns the position of c in the decomposition of space, or
// false when c does not belong to it. Alpha belongs to no space.
func (c Channel) Component(space colorspace.Space) (int, bool) {
	i := slices.Index(space.Components(), c.String())
	return i, i >= 0
}

// Spec maps channels to the ordered operations applied to them.
type Spec map[Channel][]Op

// Validate checks every operation of s.
func (s Spec) Validate() error {
	for _, ch := range slices.Sorted(maps.Keys(s)) {
		for i, op := range s[ch] {
			if op == nil {
				return fmt.Errorf("%w: channel %s operation %d is nil", bitmap.ErrInvalidParameter, ch, i)
			}
			if err := op.validate(); err != nil {
				return fmt.Errorf("channel %s operation %d: %w", ch, i, err)
			}
		}
	}
	return nil
}

// Empty reports whether no channel has any operation.
func (s Spec) Empty() bool {
	for _, ops := range s {
		if len(ops) > 0 {
			return false
		}
	}
	return true
}

func (s Spec) String() string {
	var sb strings.Builder
	for _, ch := range slices.Sorted(maps.Keys(s)) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(ch.String())
		sb.WriteByte('=')
		for i, op := range s[ch] {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(op.String())
		}
	}
	return sb.String()
}

// Operation keys of a correction entry.
const (
	keyLevels     = "levels"
	keyGamma      = "gamma"
	keyToneCurve  = "tonecurve"
	keyToneCurve2 = "tonecurve2"
	keyNegate     = "negate"
)

// ParseJSON decodes a correction dictionary and parses it with ParseConfig.
func ParseJSON(data []byte, space colorspace.Space) (Spec, error) {
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("%w: could not decode correction parameters: %v", bitmap.ErrInvalidParameter, err)
	}
	return ParseConfig(params, space)
}

// ParseConfig converts a correction dictionary into a validated Spec.
//
// Channel keys of space (plus "a" in every space) map to an entry object or
// a list of entry objects. An entry holds any of "levels" ([black, white] or
// [black, white, outBlack, outWhite]), "gamma", "tonecurve" or "tonecurve2"
// ([[x, y], ...]) and "negate", evaluated in that order with gamma applied
// inside the levels window when both are given. In RGB space entry keys at
// the top level are shared by r, g and b: a channel entry overrides them key
// by key and the merged entry is parsed as one. In HSL and HSV
// a number under "h" rotates the hue by that many degrees. Unknown keys are
// ignored.
func ParseConfig(params map[string]any, space colorspace.Space) (Spec, error) {
	spec := Spec{}

	var shared map[string]any
	if space == colorspace.RGB {
		shared = sharedEntry(params)
		ops, err := parseEntry(shared)
		if err != nil {
			return nil, fmt.Errorf("shared entry: %w", err)
		}
		if len(ops) > 0 {
			for _, ch := range []Channel{Red, Green, Blue} {
				if _, ok := params[ch.String()]; !ok {
					spec[ch] = slices.Clone(ops)
				}
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(params)) {
		ch, ok := ParseChannel(key)
		if !ok {
			continue
		}
		if _, inSpace := ch.Component(space); !inSpace && ch != Alpha {
			continue
		}

		val := params[key]
		if ch == Hue {
			if deg, ok := toFloat(val); ok {
				rot, err := NewHueRotate(deg)
				if err != nil {
					return nil, err
				}
				spec[ch] = append(spec[ch], rot)
				continue
			}
		}

		if len(shared) > 0 && (ch == Red || ch == Green || ch == Blue) {
			val = withShared(shared, val)
		}
		ops, err := parseEntries(val)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch, err)
		}
		spec[ch] = append(spec[ch], ops...)
	}

	return spec, nil
}

var entryKeys = []string{keyLevels, keyGamma, keyToneCurve, keyToneCurve2, keyNegate}

func sharedEntry(params map[string]any) map[string]any {
	m := map[string]any{}
	for _, k := range entryKeys {
		if v, ok := params[k]; ok {
			m[k] = v
		}
	}
	return m
}

// mergeEntry lays m over shared. A curve in m replaces either shared curve.
func mergeEntry(shared, m map[string]any) map[string]any {
	out := maps.Clone(shared)
	_, c1 := m[keyToneCurve]
	_, c2 := m[keyToneCurve2]
	if c1 || c2 {
		delete(out, keyToneCurve)
		delete(out, keyToneCurve2)
	}
	maps.Copy(out, m)
	return out
}

// withShared merges the shared entry into a channel value, into the first
// entry when the value is a list.
func withShared(shared map[string]any, val any) any {
	switch v := val.(type) {
	case map[string]any:
		return mergeEntry(shared, v)
	case []any:
		if len(v) == 0 {
			return v
		}
		if m, ok := v[0].(map[string]any); ok {
			out := slices.Clone(v)
			out[0] = mergeEntry(shared, m)
			return out
		}
	}
	return val
}

func parseEntries(val any) ([]Op, error) {
	switch v := val.(type) {
	case map[string]any:
		return parseEntry(v)
	case []any:
		var ops []Op
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T, not an object", bitmap.ErrInvalidParameter, i, e)
			}
			entry, err := parseEntry(m)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			ops = append(ops, entry...)
		}
		return ops, nil
	}
	return nil, fmt.Errorf("%w: entry is %T, not an object", bitmap.ErrInvalidParameter, val)
}

func parseEntry(m map[string]any) ([]Op, error) {
	var ops []Op

	var gamma *Gamma
	if v, ok := m[keyGamma]; ok {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: gamma is %T, not a number", bitmap.ErrInvalidParameter, v)
		}
		g, err := NewGamma(f)
		if err != nil {
			return nil, err
		}
		gamma = &g
	}

	if v, ok := m[keyLevels]; ok {
		l, err := parseLevels(v)
		if err != nil {
			return nil, err
		}
		if gamma != nil {
			l = l.WithGamma(*gamma)
		}
		ops = append(ops, l)
	} else if gamma != nil {
		ops = append(ops, *gamma)
	}

	if v, ok := m[keyToneCurve2]; ok {
		pts, err := toPoints(v)
		if err != nil {
			return nil, err
		}
		c, err := NewSmoothCurve(pts)
		if err != nil {
			return nil, err
		}
		ops = append(ops, c)
	} else if v, ok := m[keyToneCurve]; ok {
		pts, err := toPoints(v)
		if err != nil {
			return nil, err
		}
		c, err := NewToneCurve(pts)
		if err != nil {
			return nil, err
		}
		ops = append(ops, c)
	}

	if v, ok := m[keyNegate]; ok {
		neg, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: negate is %T, not a boolean", bitmap.ErrInvalidParameter, v)
		}
		if neg {
			ops = append(ops, Negate{})
		}
	}

	return ops, nil
}

func parseLevels(v any) (Levels, error) {
	vals, err := toFloats(v)
	if err != nil {
		return Levels{}, fmt.Errorf("levels: %w", err)
	}
	iv := make([]int, len(vals))
	for i, f := range vals {
		iv[i] = int(f)
	}
	switch len(iv) {
	case 2:
		return NewLevels(iv[0], iv[1])
	case 4:
		return NewLevelsRange(iv[0], iv[1], iv[2], iv[3])
	}
	return Levels{}, fmt.Errorf("%w: levels needs 2 or 4 values, got %d", bitmap.ErrInvalidParameter, len(iv))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toFloats(v any) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return s, nil
	case []int:
		out := make([]float64, len(s))
		for i, n := range s {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(s))
		for i, e := range s {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("%w: value %d is %T, not a number", bitmap.ErrInvalidParameter, i, e)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T is not a list of numbers", bitmap.ErrInvalidParameter, v)
}

func toPoints(v any) ([]Point, error) {
	var list []any
	switch s := v.(type) {
	case []Point:
		return s, nil
	case [][]float64:
		list = make([]any, len(s))
		for i, p := range s {
			list[i] = p
		}
	case []any:
		list = s
	default:
		return nil, fmt.Errorf("%w: tone curve is %T, not a list of points", bitmap.ErrInvalidParameter, v)
	}

	pts := make([]Point, len(list))
	for i, e := range list {
		xy, err := toFloats(e)
		if err != nil {
			return nil, fmt.Errorf("tone curve point %d: %w", i, err)
		}
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: tone curve point %d has %d values", bitmap.ErrInvalidParameter, i, len(xy))
		}
		pts[i] = Point{X: xy[0], Y: xy[1]}
	}
	return pts, nil
}
