// Package seed reads the curated MCS site list. MCS deployments are few
// enough to track by hand, and announcements rarely come with coordinates,
// so sites missing them are backfilled through a geocoder before they enter
// the pipeline.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/evatlas/chargefeed/internal/domain"
)

// Site is one curated entry. Coordinates are optional; power defaults to
// the connector family's typical rating when omitted upstream.
type Site struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Operator  string   `json:"operator"`
	Status    string   `json:"status"` // live, pilot, announced
	Connector string   `json:"connector"`
	PowerKW   *float64 `json:"power_kw"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Source loads the seed file once and emits all sites as a single batch.
// Pass a nil geocoder to disable coordinate backfill; ungeocodable sites
// flow through with null coordinates and get rejected with accounting
// rather than vanishing.
type Source struct {
	name     string
	path     string
	geocoder domain.Geocoder
	logger   *slog.Logger
	done     bool
}

// NewSource creates a seed-list source for one run.
func NewSource(name, path string, geocoder domain.Geocoder, logger *slog.Logger) *Source {
	return &Source{name: name, path: path, geocoder: geocoder, logger: logger}
}

func (s *Source) Name() string { return s.name }

// Next returns the whole seed list on the first call and io.EOF afterwards.
func (s *Source) Next(ctx context.Context) ([]domain.RawRecord, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var sites []Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", s.path, err)
	}

	records := make([]domain.RawRecord, 0, len(sites))
	for _, site := range sites {
		records = append(records, s.toRecord(ctx, site))
	}
	return records, nil
}

func (s *Source) toRecord(ctx context.Context, site Site) domain.RawRecord {
	lat, lon := site.Latitude, site.Longitude
	if (lat == nil || lon == nil) && s.geocoder != nil && site.City != "" {
		result, err := s.geocoder.Geocode(ctx, site.City, site.Country)
		switch {
		case err != nil:
			s.logger.Warn("seed site geocoding failed",
				"name", site.Name, "city", site.City, "country", site.Country, "error", err)
		case result.Lat == 0 && result.Lon == 0:
			s.logger.Warn("seed site not geocodable",
				"name", site.Name, "city", site.City, "country", site.Country)
		default:
			lat, lon = &result.Lat, &result.Lon
		}
	}

	rec := domain.NewRawRecord()
	setText := func(key, v string) {
		if v != "" {
			rec.Set(key, domain.String(v))
		}
	}
	setText("name", site.Name)
	setText("city", site.City)
	setText("country", site.Country)
	setText("operator", site.Operator)
	setText("status", site.Status)
	setText("connector", site.Connector)

	if site.PowerKW != nil {
		rec.Set("power_kw", domain.Number(*site.PowerKW))
	} else {
		rec.Set("power_kw", domain.Null())
	}
	if lat != nil && lon != nil {
		rec.Set("latitude", domain.Number(*lat))
		rec.Set("longitude", domain.Number(*lon))
	} else {
		rec.Set("latitude", domain.Null())
		rec.Set("longitude", domain.Null())
	}
	return rec
}
