package geo

import (
	"fmt"
	"math"
	"strings"
)

// Datum names a geodetic coordinate system used by a map provider.
type Datum string

const (
	// BD09 is the Baidu datum expected by the rendering engine.
	BD09 Datum = "BD09"
	// GCJ02 is the datum of AMap and Tencent data.
	GCJ02 Datum = "GCJ02"
	// WGS84 is the GPS datum.
	WGS84 Datum = "WGS84"

	// Target is the datum all output coordinates are expressed in.
	Target = BD09
)

// Datums lists supported datums.
var Datums = []Datum{BD09, GCJ02, WGS84}

// ParseDatum resolves a datum name, ignoring case, dashes and underscores ("bd-09", "gcj_02").
func ParseDatum(name string) (Datum, error) {
	norm := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for _, d := range Datums {
		if string(d) == norm {
			return d, nil
		}
	}

	return "", fmt.Errorf("unknown datum %q", name)
}

// ToBD09 converts a GCJ-02 point to BD-09.
func ToBD09(lng, lat float64) (float64, float64) {
	z := math.Sqrt(lng*lng+lat*lat) + 0.00002*math.Sin(lat*math.Pi*3000.0)
	theta := math.Atan2(lat, lng) + 0.000003*math.Cos(lng*math.Pi*3000.0)

	return z*math.Cos(theta) + 0.0065, z*math.Sin(theta) + 0.006
}

// projection returns the point function converting from d into Target.
// WGS84 input reuses the GCJ-02 formula without the intermediate WGS84 -> GCJ-02 step,
// so it carries the GCJ-02 offset error (hundreds of meters inside China).
func (d Datum) projection() func(lng, lat float64) (float64, float64) {
	switch d {
	case GCJ02, WGS84:
		return ToBD09
	default:
		return nil
	}
}

// TransformCoordinates returns a copy of tree with every leaf point converted from datum
// from into Target. When from is Target the tree is returned as is.
// The input tree is never modified.
func TransformCoordinates(tree any, from Datum) (any, error) {
	if from == Target {
		return tree, nil
	}

	fn := from.projection()
	if fn == nil {
		return nil, fmt.Errorf("no conversion from datum %q to %q", from, Target)
	}

	return transformNode(tree, fn, nil)
}

func transformNode(node any, fn func(lng, lat float64) (float64, float64), path []int) (any, error) {
	seq, ok := node.([]any)
	if !ok {
		return nil, shapeError(path, fmt.Sprintf("expected array, got %s", describe(node)))
	}
	if len(seq) == 0 {
		return nil, shapeError(path, "empty array")
	}

	if lng, lat, ok := pointOf(seq); ok {
		x, y := fn(lng, lat)
		return []any{x, y}, nil
	}

	out := make([]any, len(seq))
	for i, child := range seq {
		v, err := transformNode(child, fn, append(path, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// pointOf reports whether seq is a [lng, lat] pair.
func pointOf(seq []any) (lng, lat float64, ok bool) {
	if len(seq) != 2 {
		return 0, 0, false
	}

	lng, ok1 := seq[0].(float64)
	lat, ok2 := seq[1].(float64)

	return lng, lat, ok1 && ok2
}

func shapeError(path []int, reason string) error {
	return &GeometryShapeError{Path: append([]int(nil), path...), Reason: reason}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
