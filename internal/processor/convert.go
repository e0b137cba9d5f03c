// Package processor converts table rows into engine features and writes the results.
package processor

import (
	"fmt"
	"strings"

	"github.com/woozymasta/gisimport/internal/geo"
	"github.com/woozymasta/gisimport/internal/table"

	"github.com/rs/zerolog/log"
)

// RowError indicates a row that cannot be mapped to a feature for reasons other than geometry.
type RowError struct {
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("invalid row: %s", e.Reason)
}

// Result is the outcome of converting one row: either Feature or Err is set.
type Result struct {
	Feature *geo.Feature
	Err     error
	RowID   string
	Index   int
}

// Report collects per-row results in input order.
type Report struct {
	Results []Result
}

// Attempted returns the number of rows processed.
func (r *Report) Attempted() int {
	return len(r.Results)
}

// Features returns the converted features in input order, skipping failed rows.
func (r *Report) Features() []geo.Feature {
	out := make([]geo.Feature, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, *res.Feature)
		}
	}

	return out
}

// Failures returns the results of skipped rows.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}

	return out
}

// ConvertRow parses, reprojects and decorates a single row.
func ConvertRow(row table.Row, from geo.Datum) (geo.Feature, error) {
	if len(row.Missing) > 0 {
		return geo.Feature{}, &RowError{Reason: "missing column " + strings.Join(row.Missing, ", ")}
	}
	if row.ID == "" {
		return geo.Feature{}, &RowError{Reason: "empty id"}
	}

	g, err := geo.ParseGeometry(row.Geometry)
	if err != nil {
		return geo.Feature{}, err
	}

	coords, err := geo.TransformCoordinates(g.Coordinates, from)
	if err != nil {
		return geo.Feature{}, err
	}
	g.Coordinates = coords

	return BuildFeature(row, g, geo.ColorFromKey(row.DistrictCode)), nil
}

// Convert processes all rows in order. A failing row is logged and recorded in the report,
// the remaining rows are still converted.
func Convert(rows []table.Row, from geo.Datum) *Report {
	log.Info().
		Int("rows", len(rows)).
		Str("datum", string(from)).
		Str("target", string(geo.Target)).
		Msg("Converting streets")

	report := &Report{Results: make([]Result, 0, len(rows))}

	for _, row := range rows {
		res := Result{RowID: row.ID, Index: row.Index}

		feature, err := ConvertRow(row, from)
		if err != nil {
			res.Err = err
			log.Warn().
				Err(err).
				Int("row", row.Index).
				Str("id", row.ID).
				Msg("Skipping row")
		} else {
			res.Feature = &feature
			log.Trace().
				Int("row", row.Index).
				Str("id", feature.Properties.ID).
				Int("points", geo.CountPoints(feature.Geometry.Coordinates)).
				Msg("Row converted")
		}

		report.Results = append(report.Results, res)
	}

	return report
}
