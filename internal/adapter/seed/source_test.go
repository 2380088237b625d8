package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evatlas/chargefeed/internal/domain"
)

type fakeGeocoder struct {
	results map[string]domain.GeocodeResult
	err     error
	calls   int
}

func (f *fakeGeocoder) Geocode(_ context.Context, city, country string) (domain.GeocodeResult, error) {
	f.calls++
	if f.err != nil {
		return domain.GeocodeResult{}, f.err
	}
	return f.results[city+"|"+country], nil
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcs_seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const seedJSON = `[
	{
		"name": "Greenlane Colton",
		"city": "Colton",
		"country": "US",
		"operator": "Greenlane",
		"status": "live",
		"connector": "MCS",
		"power_kw": 1200,
		"latitude": 34.05,
		"longitude": -117.31
	},
	{
		"name": "Milence Venlo",
		"city": "Venlo",
		"country": "NL",
		"operator": "Milence",
		"status": "pilot",
		"connector": "MCS",
		"power_kw": 1000
	}
]`

func TestSource_LoadsSites(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]domain.GeocodeResult{
		"Venlo|NL": {Lat: 51.37, Lon: 6.17, DisplayName: "Venlo, Netherlands"},
	}}
	src := NewSource("mcs-seed", writeSeed(t, seedJSON), geocoder, slog.Default())

	batch, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// Explicit coordinates pass through untouched, no geocoder call.
	v, _ := batch[0].Get("latitude")
	lat, _ := v.Float()
	assert.Equal(t, 34.05, lat)

	// Missing coordinates are backfilled.
	v, _ = batch[1].Get("latitude")
	lat, _ = v.Float()
	assert.Equal(t, 51.37, lat)
	v, _ = batch[1].Get("longitude")
	lon, _ := v.Float()
	assert.Equal(t, 6.17, lon)
	assert.Equal(t, 1, geocoder.calls)

	v, _ = batch[1].Get("status")
	assert.Equal(t, "pilot", v.Text())

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSource_GeocoderFailureLeavesNullCoords(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("timeout")}
	src := NewSource("mcs-seed", writeSeed(t, seedJSON), geocoder, slog.Default())

	batch, err := src.Next(context.Background())
	require.NoError(t, err, "a failed lookup is per-record noise, not a source failure")
	require.Len(t, batch, 2)

	v, _ := batch[1].Get("latitude")
	assert.True(t, v.IsNull(), "record flows through for rejection accounting")
}

func TestSource_NilGeocoder(t *testing.T) {
	src := NewSource("mcs-seed", writeSeed(t, seedJSON), nil, slog.Default())

	batch, err := src.Next(context.Background())
	require.NoError(t, err)

	v, _ := batch[1].Get("latitude")
	assert.True(t, v.IsNull())
}

func TestSource_MalformedSeedIsFatal(t *testing.T) {
	src := NewSource("mcs-seed", writeSeed(t, "{oops"), nil, slog.Default())

	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse seed file")
}
