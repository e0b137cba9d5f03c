// Package geo handles geometry documents, datum conversion and display colors.
package geo

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Geometry is a structured-geometry document as embedded in the source table.
// Coordinates holds the nested coordinate tree decoded from JSON ([]any down to [lng, lat]).
// Members other than type and coordinates (bbox, crs, ...) are kept verbatim in Extra
// and written back after them in key order.
type Geometry struct {
	Type        string                     `json:"type" yaml:"type"`
	Coordinates any                        `json:"coordinates" yaml:"coordinates"`
	Extra       map[string]json.RawMessage `json:"-" yaml:"-"`
}

// ParseGeometry decodes the raw text of a geometry column.
func ParseGeometry(raw string) (*Geometry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &GeometryParseError{Reason: "empty geometry"}
	}

	var g Geometry
	if err := g.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}

	return &g, nil
}

// UnmarshalJSON decodes a geometry document, failing with GeometryParseError.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return &GeometryParseError{Err: err}
	}

	rawCoords, ok := members["coordinates"]
	if !ok || string(rawCoords) == "null" {
		return &GeometryParseError{Reason: "missing coordinates"}
	}

	var coords any
	if err := json.Unmarshal(rawCoords, &coords); err != nil {
		return &GeometryParseError{Err: err}
	}

	var typ string
	if rawType, ok := members["type"]; ok {
		if err := json.Unmarshal(rawType, &typ); err != nil {
			return &GeometryParseError{Err: err}
		}
	}

	delete(members, "type")
	delete(members, "coordinates")
	if len(members) == 0 {
		members = nil
	}

	*g = Geometry{Type: typ, Coordinates: coords, Extra: members}

	return nil
}

// MarshalJSON writes type, coordinates, then the extra members sorted by key.
func (g Geometry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	write := func(key string, value []byte) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	typ, err := json.Marshal(g.Type)
	if err != nil {
		return nil, err
	}
	if err := write("type", typ); err != nil {
		return nil, err
	}

	coords, err := json.Marshal(g.Coordinates)
	if err != nil {
		return nil, err
	}
	if err := write("coordinates", coords); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(g.Extra))
	for k := range g.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := write(k, g.Extra[k]); err != nil {
			return nil, err
		}
	}

	return append(append([]byte{'{'}, buf.Bytes()...), '}'), nil
}

// CountPoints returns the number of leaf points in a coordinate tree.
// Nodes that are not point pairs or sequences are ignored.
func CountPoints(tree any) int {
	seq, ok := tree.([]any)
	if !ok {
		return 0
	}
	if _, _, ok := pointOf(seq); ok {
		return 1
	}

	n := 0
	for _, child := range seq {
		n += CountPoints(child)
	}

	return n
}

// Feature is one street polygon in the engine save-file format.
type Feature struct {
	Type       string     `json:"type" yaml:"type"`
	Geometry   *Geometry  `json:"geometry" yaml:"geometry"`
	Properties Properties `json:"properties" yaml:"properties"`
}

// Properties holds the presentation attributes read by the rendering engine.
// Field order is the serialized key order.
type Properties struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	CustomType   string  `json:"customType" yaml:"customType"`
	Color        string  `json:"svCol" yaml:"svCol"`
	Opacity      float64 `json:"svOp" yaml:"svOp"`
	Line         bool    `json:"svLine" yaml:"svLine"` // false renders a filled area
	ParentID     string  `json:"pid" yaml:"pid"`
	TextColor    string  `json:"svTxtCol" yaml:"svTxtCol"`
	CustomTag    string  `json:"customTag" yaml:"customTag"`
	CustomHeight float64 `json:"customHeight" yaml:"customHeight"`
}
