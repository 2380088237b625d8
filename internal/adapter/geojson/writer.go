// Package geojson serializes the canonical feed as a GeoJSON
// FeatureCollection for the map renderer.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evatlas/chargefeed/internal/domain"
)

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one station.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON Point. Coordinate order is [longitude, latitude]
// per the GeoJSON specification.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FromFeed converts a canonical feed into a FeatureCollection, preserving
// station order.
func FromFeed(feed domain.CanonicalFeed) FeatureCollection {
	features := make([]Feature, 0, len(feed.Stations))
	for _, s := range feed.Stations {
		props := map[string]any{
			"id":       s.ID,
			"category": string(s.Category),
			"power_kw": s.PowerKW,
			"source":   s.Source,
		}
		for k, v := range s.Attributes {
			// Canonical properties win over pass-through attributes on a
			// name collision.
			if _, taken := props[k]; !taken {
				props[k] = v
			}
		}
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{s.Longitude, s.Latitude},
			},
			Properties: props,
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Write atomically writes the feed to path: the document is serialized to a
// temp file in the target directory and renamed into place, so the renderer
// never observes a partially-written feed.
func Write(path string, feed domain.CanonicalFeed) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromFeed(feed)); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
