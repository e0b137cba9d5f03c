// Package render draws converted features into a raster preview.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/gisimport/internal/geo"
	"github.com/woozymasta/gisimport/internal/processor"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/vector"
)

const padding = 16

// Background fills the preview before polygons are drawn.
var Background = color.NRGBA{R: 0x1e, G: 0x22, B: 0x2a, A: 0xff}

// ErrEmpty is returned when there is no drawable geometry.
var ErrEmpty = errors.New("no drawable geometry")

type shape struct {
	polygons []orb.Polygon
	fill     color.NRGBA
}

// Preview rasterizes the polygons of features into a size x size image.
// Each feature is filled with its display color at its opacity.
// Longitude is scaled by cos(latitude) of the view center so shapes keep their proportions.
func Preview(features []geo.Feature, size int) (*image.NRGBA, error) {
	if size <= 2*padding {
		return nil, fmt.Errorf("preview size %d too small", size)
	}

	shapes, bound := collect(features)
	if len(shapes) == 0 {
		return nil, ErrEmpty
	}

	kx := math.Cos(bound.Center().Lat() * math.Pi / 180)
	w := (bound.Max.Lon() - bound.Min.Lon()) * kx
	h := bound.Max.Lat() - bound.Min.Lat()
	extent := math.Max(w, h)
	if extent == 0 {
		extent = 1e-9
	}
	scale := float64(size-2*padding) / extent

	// center the drawing along the shorter axis
	offX := padding + (float64(size-2*padding)-w*scale)/2
	offY := padding + (float64(size-2*padding)-h*scale)/2

	project := func(p orb.Point) (float32, float32) {
		x := offX + (p.Lon()-bound.Min.Lon())*kx*scale
		y := offY + (bound.Max.Lat()-p.Lat())*scale
		return float32(x), float32(y)
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	r := vector.NewRasterizer(size, size)
	for _, s := range shapes {
		for _, poly := range s.polygons {
			r.Reset(size, size)
			r.DrawOp = draw.Over

			for _, ring := range poly {
				if len(ring) < 3 {
					continue
				}
				r.MoveTo(project(ring[0]))
				for _, p := range ring[1:] {
					r.LineTo(project(p))
				}
				r.ClosePath()
			}

			r.Draw(img, img.Bounds(), image.NewUniform(s.fill), image.Point{})
		}
	}

	return img, nil
}

// WritePreview renders features and stores the image as lossless WebP.
func WritePreview(path string, features []geo.Feature, size int) error {
	img, err := Preview(features, size)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("size", size).
		Int("features", len(features)).
		Msg("Preview written")

	return f.Close()
}

// collect extracts polygons and fill colors and returns the overall bound.
func collect(features []geo.Feature) ([]shape, orb.Bound) {
	var shapes []shape
	var bound orb.Bound
	first := true

	for _, f := range features {
		g, err := processor.OrbGeometry(f.Geometry)
		if err != nil {
			log.Debug().Err(err).Str("id", f.Properties.ID).Msg("Feature not drawable")
			continue
		}

		var polys []orb.Polygon
		switch v := g.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{v}
		case orb.MultiPolygon:
			polys = v
		default:
			log.Debug().Str("id", f.Properties.ID).Str("type", g.GeoJSONType()).Msg("Feature not drawable")
			continue
		}
		if len(polys) == 0 {
			continue
		}

		if first {
			bound = g.Bound()
			first = false
		} else {
			bound = bound.Union(g.Bound())
		}

		shapes = append(shapes, shape{
			polygons: polys,
			fill:     fillColor(f.Properties.Color, f.Properties.Opacity),
		})
	}

	return shapes, bound
}

// fillColor parses "#rrggbb" and applies opacity, falling back to gray.
func fillColor(hex string, opacity float64) color.NRGBA {
	c := color.NRGBA{R: 0x80, G: 0x80, B: 0x80}

	if v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32); err == nil && len(hex) == 7 {
		c.R = uint8(v >> 16)
		c.G = uint8(v >> 8)
		c.B = uint8(v)
	}

	opacity = math.Min(math.Max(opacity, 0), 1)
	c.A = uint8(math.Round(opacity * 255))

	return c
}
