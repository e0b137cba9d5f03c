package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/woozymasta/gisimport/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// OrbGeometry decodes a feature geometry into an orb geometry.
func OrbGeometry(g *geo.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("nil geometry")
	}

	raw, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}

	gg, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, err
	}

	return gg.Geometry(), nil
}

// FeatureCollection converts features into a standard GeoJSON collection.
// Features whose geometry orb cannot represent are logged and left out.
func FeatureCollection(features []geo.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, f := range features {
		g, err := OrbGeometry(f.Geometry)
		if err != nil {
			log.Warn().
				Err(err).
				Str("id", f.Properties.ID).
				Msg("Feature left out of GeoJSON export")
			continue
		}

		gf := geojson.NewFeature(g)
		gf.ID = f.Properties.ID
		gf.Properties = geojson.Properties{
			"name":         f.Properties.Name,
			"customType":   f.Properties.CustomType,
			"svCol":        f.Properties.Color,
			"svOp":         f.Properties.Opacity,
			"svLine":       f.Properties.Line,
			"pid":          f.Properties.ParentID,
			"svTxtCol":     f.Properties.TextColor,
			"customTag":    f.Properties.CustomTag,
			"customHeight": f.Properties.CustomHeight,
		}

		fc.Append(gf)
	}

	return fc
}

// WriteGeoJSON writes features as a GeoJSON FeatureCollection for desktop GIS inspection.
func WriteGeoJSON(path string, features []geo.Feature) (err error) {
	fc := FeatureCollection(features)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
			if err == nil {
				err = closeErr
			}
		}
	}()

	if err := json.NewEncoder(f).Encode(fc); err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("features", len(fc.Features)).
		Msg("GeoJSON export written")

	return nil
}
