package processor

import (
	"github.com/woozymasta/gisimport/internal/geo"
	"github.com/woozymasta/gisimport/internal/table"
)

// Fixed presentation values for imported streets.
const (
	FeatureIDPrefix = "street_"
	CustomType      = "Street"
	Opacity         = 0.4
	ParentID        = "None"
	TextColor       = "#FFFFFF"
)

// BuildFeature assembles the engine feature for a row from its converted geometry and color.
func BuildFeature(row table.Row, geometry *geo.Geometry, color string) geo.Feature {
	return geo.Feature{
		Type:     "Feature",
		Geometry: geometry,
		Properties: geo.Properties{
			ID:           FeatureIDPrefix + row.ID,
			Name:         row.Name,
			CustomType:   CustomType,
			Color:        color,
			Opacity:      Opacity,
			Line:         false,
			ParentID:     ParentID,
			TextColor:    TextColor,
			CustomTag:    row.DistrictCode,
			CustomHeight: 0,
		},
	}
}
