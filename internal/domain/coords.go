package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CoordinatePolicy configures coordinate validation per source.
type CoordinatePolicy struct {
	// AllowZero disables the (0,0) sentinel rejection. Off by default:
	// a point on the Gulf of Guinea null island almost always means a
	// missing-data placeholder, not a charging site.
	AllowZero bool
}

// Validate checks a coordinate pair for range and sentinel violations.
func (p CoordinatePolicy) Validate(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v: %w", lat, ErrOutOfRange)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v: %w", lon, ErrOutOfRange)
	}
	if !p.AllowZero && lat == 0 && lon == 0 {
		return fmt.Errorf("(0,0) placeholder: %w", ErrOutOfRange)
	}
	return nil
}

// parseCoordinate coerces a raw scalar into a decimal-degree float,
// tolerating decimal commas in string values.
func parseCoordinate(v Value) (float64, error) {
	if n, ok := v.Float(); ok {
		return n, nil
	}
	s := strings.TrimSpace(v.Text())
	if s == "" {
		return 0, fmt.Errorf("empty coordinate: %w", ErrNotNumeric)
	}
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("coordinate %q: %w", v.Text(), ErrNotNumeric)
	}
	return n, nil
}
