package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `id,name,district_code,geometry
7,Main St,D1,"{""type"":""MultiPolygon"",""coordinates"":[[[[116.3,39.9],[116.4,39.9],[116.4,40.0],[116.3,39.9]]]]}"
8,东华门街道,110101,"{""type"":""Polygon"",""coordinates"":[[[116.4,39.9],[116.41,39.9],[116.4,39.91],[116.4,39.9]]]}"
`

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		ID:           "7",
		Name:         "Main St",
		DistrictCode: "D1",
		Geometry:     `{"type":"MultiPolygon","coordinates":[[[[116.3,39.9],[116.4,39.9],[116.4,40.0],[116.3,39.9]]]]}`,
		Index:        0,
	}, rows[0])

	assert.Equal(t, "东华门街道", rows[1].Name)
	assert.Equal(t, "110101", rows[1].DistrictCode)
	assert.Equal(t, 1, rows[1].Index)
}

func TestReadColumnOrderAndExtras(t *testing.T) {
	data := "\ufeffgeometry,city_code,district_code,name,id\n" +
		`"{""coordinates"":[1,2]}",1101,D2,Side St,9` + "\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "9", rows[0].ID)
	assert.Equal(t, "Side St", rows[0].Name)
	assert.Equal(t, "D2", rows[0].DistrictCode)
	assert.Equal(t, `{"coordinates":[1,2]}`, rows[0].Geometry)
}

func TestReadShortAndLongRecords(t *testing.T) {
	data := "id,name,district_code,geometry\n" +
		"7,Main St,D1,{}\n" +
		"8,Short Rd,D1\n" +
		"9\n" +
		"10,Long St,D2,{},extra,fields\n"

	rows, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Empty(t, rows[0].Missing)
	assert.Equal(t, []string{ColumnGeometry}, rows[1].Missing)
	assert.Equal(t, "D1", rows[1].DistrictCode)
	assert.Equal(t, 1, rows[1].Index)
	assert.Equal(t, []string{ColumnName, ColumnDistrictCode, ColumnGeometry}, rows[2].Missing)
	assert.Equal(t, "9", rows[2].ID)
	assert.Empty(t, rows[3].Missing)
	assert.Equal(t, "{}", rows[3].Geometry)
}

func TestReadKeepsDistrictCodeVerbatim(t *testing.T) {
	rows, err := Read(strings.NewReader("id,name,district_code,geometry\n 7 ,Main St,D1 ,{}\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "7", rows[0].ID)
	assert.Equal(t, "D1 ", rows[0].DistrictCode)
}

func TestReadHeaderOnly(t *testing.T) {
	rows, err := Read(strings.NewReader("id,name,district_code,geometry\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"empty", "", "empty table"},
		{"missing columns", "id,name\n1,a\n", "district_code, geometry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data))
			require.Error(t, err)

			var serr *SourceReadError
			require.True(t, errors.As(err, &serr))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streets.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	var serr *SourceReadError
	require.True(t, errors.As(err, &serr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.csv")

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("foo,bar\n1,2\n"), 0644))
	_, err = ReadFile(bad)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, bad, serr.Path)
}
