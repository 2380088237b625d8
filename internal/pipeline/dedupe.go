package pipeline

import "github.com/evatlas/chargefeed/internal/domain"

// Deduplicator collapses records that describe the same physical site:
// coordinates rounding to the same 5-decimal point with the same category.
// First write wins, so the caller's source processing order is the source
// priority order.
type Deduplicator struct {
	seen map[string]string // dedupe key -> ID of the kept station
}

// NewDeduplicator returns an empty running set for one pipeline run.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]string)}
}

// Merge records the candidate's site key. It returns true when the site is
// new; false means an earlier station already claimed it and the candidate
// must be dropped as a duplicate.
func (d *Deduplicator) Merge(candidate domain.Station) bool {
	key := candidate.DedupeKey()
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = candidate.ID
	return true
}

// KeeperID returns the ID of the station that claimed the candidate's site.
func (d *Deduplicator) KeeperID(candidate domain.Station) (string, bool) {
	id, ok := d.seen[candidate.DedupeKey()]
	return id, ok
}
