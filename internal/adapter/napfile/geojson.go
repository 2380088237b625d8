package napfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evatlas/chargefeed/internal/domain"
)

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   *geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type string `json:"type"`

	// Coordinates stays raw until the type check: LineString and Polygon
	// geometries nest their arrays, so decoding into []float64 up front
	// would fail the whole file.
	Coordinates json.RawMessage `json:"coordinates"`
}

// readGeoJSON flattens Point features into raw records: the properties
// become fields, and the geometry fills lat/lon fields unless the
// properties already carry them under any spelling the detector knows.
// Non-point features are skipped.
func readGeoJSON(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	var records []domain.RawRecord
	for _, feat := range fc.Features {
		if feat.Geometry == nil || feat.Geometry.Type != "Point" {
			continue
		}
		var coords []float64
		if err := json.Unmarshal(feat.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
			continue
		}

		rec := domain.NewRawRecord()
		for key, value := range feat.Properties {
			rec.Set(key, scalar(value))
		}
		// GeoJSON coordinate order is [lon, lat].
		if !rec.Has("lat") && !rec.Has("latitude") {
			rec.Set("lat", domain.Number(coords[1]))
		}
		if !rec.Has("lon") && !rec.Has("lng") && !rec.Has("longitude") {
			rec.Set("lon", domain.Number(coords[0]))
		}
		records = append(records, rec)
	}
	return records, nil
}

// scalar converts a decoded JSON property into the tagged value kinds the
// pipeline understands. Arrays and nested objects have no canonical meaning
// here and collapse to null.
func scalar(v any) domain.Value {
	switch t := v.(type) {
	case string:
		return domain.String(t)
	case float64:
		return domain.Number(t)
	case bool:
		if t {
			return domain.String("true")
		}
		return domain.String("false")
	default:
		return domain.Null()
	}
}
