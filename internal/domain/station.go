package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

// Category is the connector family of a charging site.
type Category string

const (
	CategoryMCS Category = "MCS"
	CategoryCCS Category = "CCS"
)

// Station is the canonical representation of one fast-charging site.
type Station struct {
	ID        string   `json:"id"`
	Category  Category `json:"category"`
	PowerKW   float64  `json:"power_kw"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`

	// Source is the provenance tag of the adapter that produced the record.
	// Used for debugging and dedup attribution, never for filtering.
	Source string `json:"source"`

	// Attributes carries best-effort display fields (name, city, country,
	// operator, status). Pass-through, not validated.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DedupeKey identifies the physical site: coordinates rounded to 5 decimals
// (~1 meter) plus the connector category. Two records with the same key are
// the same site regardless of source.
func (s Station) DedupeKey() string {
	return fmt.Sprintf("%.5f|%.5f|%s", round5(s.Latitude), round5(s.Longitude), s.Category)
}

// StationID produces a deterministic ID from rounded coordinates and the
// source tag. Re-runs over the same input yield the same IDs, which makes
// the feed idempotent and diffable without a shared upstream identifier.
func StationID(category Category, lat, lon float64, source string) string {
	input := fmt.Sprintf("%.5f|%.5f|%s", round5(lat), round5(lon), source)
	hash := sha256.Sum256([]byte(input))
	return strings.ToLower(string(category)) + "-" + hex.EncodeToString(hash[:8])
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// FeedCounts is the per-run record accounting. Every input record lands in
// exactly one bucket.
type FeedCounts struct {
	Accepted                      int `json:"accepted"`
	RejectedNoPower               int `json:"rejected_no_power"`
	RejectedLowPower              int `json:"rejected_low_power"`
	RejectedBadCoords             int `json:"rejected_bad_coords"`
	RejectedUnclassifiedConnector int `json:"rejected_unclassified_connector"`
	DuplicatesMerged              int `json:"duplicates_merged"`
}

// Total returns the number of input records the counts account for.
func (c FeedCounts) Total() int {
	return c.Accepted +
		c.RejectedNoPower +
		c.RejectedLowPower +
		c.RejectedBadCoords +
		c.RejectedUnclassifiedConnector +
		c.DuplicatesMerged
}

// CanonicalFeed is the finished output of one pipeline run: unique stations
// in first-seen order plus the accounting. Immutable once emitted.
type CanonicalFeed struct {
	Stations    []Station  `json:"stations"`
	Counts      FeedCounts `json:"counts"`
	GeneratedAt time.Time  `json:"generated_at"`
}
