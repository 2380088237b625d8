package domain

import "context"

// GeocodeResult is a resolved coordinate pair for a place query.
type GeocodeResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64 // 0.0-1.0 provider confidence score
}

// Geocoder backfills coordinates for curated seed sites that ship with a
// city/country pair but no coordinates. A zero-value result with nil error
// means the provider found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (GeocodeResult, error)
}
