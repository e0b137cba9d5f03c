package processor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/woozymasta/gisimport/internal/geo"
	"github.com/woozymasta/gisimport/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainStGeometry = `{"type":"MultiPolygon","coordinates":[[[[116.3,39.9],[116.4,39.9],[116.4,40.0],[116.3,39.9]]]]}`

func mainStRow() table.Row {
	return table.Row{ID: "7", Name: "Main St", DistrictCode: "D1", Geometry: mainStGeometry}
}

func TestConvertRowPassThrough(t *testing.T) {
	f, err := ConvertRow(mainStRow(), geo.BD09)
	require.NoError(t, err)

	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "street_7", f.Properties.ID)
	assert.Equal(t, "Main St", f.Properties.Name)
	assert.Equal(t, "D1", f.Properties.CustomTag)
	assert.Equal(t, 0.4, f.Properties.Opacity)
	assert.False(t, f.Properties.Line)
	assert.Equal(t, "Street", f.Properties.CustomType)
	assert.Equal(t, "None", f.Properties.ParentID)
	assert.Equal(t, "#FFFFFF", f.Properties.TextColor)
	assert.Equal(t, float64(0), f.Properties.CustomHeight)
	assert.Equal(t, geo.ColorFromKey("D1"), f.Properties.Color)

	want, err := geo.ParseGeometry(mainStGeometry)
	require.NoError(t, err)
	assert.Equal(t, want.Coordinates, f.Geometry.Coordinates)
	assert.Equal(t, "MultiPolygon", f.Geometry.Type)
}

func TestConvertRowReprojects(t *testing.T) {
	f, err := ConvertRow(mainStRow(), geo.GCJ02)
	require.NoError(t, err)

	first := f.Geometry.Coordinates.([]any)[0].([]any)[0].([]any)[0].([]any)
	assert.InDelta(t, 116.30638029947666, first[0].(float64), 1e-12)
	assert.InDelta(t, 39.90634889982044, first[1].(float64), 1e-12)
	assert.Equal(t, 4, geo.CountPoints(f.Geometry.Coordinates))
}

func TestConvertRowKeepsGeometryMembers(t *testing.T) {
	row := mainStRow()
	row.Geometry = `{"type":"MultiPolygon","crs":{"type":"name"},"coordinates":[[[[116.3,39.9],[116.4,39.9],[116.3,39.9]]]]}`

	f, err := ConvertRow(row, geo.GCJ02)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"name"}`, string(f.Geometry.Extra["crs"]))
}

func TestConvertRowErrors(t *testing.T) {
	tests := []struct {
		name   string
		row    table.Row
		target any
	}{
		{"bad json", table.Row{ID: "1", Geometry: "{oops"}, new(*geo.GeometryParseError)},
		{"no geometry", table.Row{ID: "1"}, new(*geo.GeometryParseError)},
		{"scalar leaf", table.Row{ID: "1", Geometry: `{"type":"Polygon","coordinates":[[116.3,[1,2]]]}`}, new(*geo.GeometryShapeError)},
		{"empty id", table.Row{Geometry: mainStGeometry}, new(*RowError)},
		{"short record", table.Row{ID: "8", Name: "Short Rd", DistrictCode: "D1", Missing: []string{"geometry"}}, new(*RowError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertRow(tt.row, geo.WGS84)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T", err)
		})
	}
}

func TestConvertSkipsBadRows(t *testing.T) {
	const n = 6
	const bad = 3

	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = table.Row{
			ID:           fmt.Sprint(i + 100),
			Name:         fmt.Sprintf("Street %d", i),
			DistrictCode: fmt.Sprintf("D%d", i%2),
			Geometry:     mainStGeometry,
			Index:        i,
		}
	}
	rows[bad].Geometry = `{"type":"MultiPolygon","coordinates":`

	var report *Report
	require.NotPanics(t, func() { report = Convert(rows, geo.GCJ02) })

	assert.Equal(t, n, report.Attempted())

	features := report.Features()
	require.Len(t, features, n-1)
	for i, f := range features {
		src := i
		if i >= bad {
			src++
		}
		assert.Equal(t, fmt.Sprintf("street_%d", src+100), f.Properties.ID)
	}

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, bad, failures[0].Index)
	assert.Equal(t, "103", failures[0].RowID)
	assert.Nil(t, failures[0].Feature)

	var perr *geo.GeometryParseError
	assert.True(t, errors.As(failures[0].Err, &perr))

	// same district, same color
	assert.Equal(t, features[0].Properties.Color, features[2].Properties.Color)
}

func TestConvertShortRecordMessage(t *testing.T) {
	row := mainStRow()
	row.Missing = []string{"district_code", "geometry"}

	_, err := ConvertRow(row, geo.BD09)
	require.Error(t, err)
	assert.Equal(t, "invalid row: missing column district_code, geometry", err.Error())
}

func TestConvertEmpty(t *testing.T) {
	report := Convert(nil, geo.BD09)
	assert.Equal(t, 0, report.Attempted())
	assert.Empty(t, report.Features())
	assert.Empty(t, report.Failures())
}
