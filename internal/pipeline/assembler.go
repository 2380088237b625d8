package pipeline

import (
	"github.com/evatlas/chargefeed/internal/domain"
)

// Assembler accumulates accepted stations in first-seen order and accounts
// for every processed record in exactly one counter. Finalize is one-shot;
// mutating a finalized assembler is a programming error and panics.
type Assembler struct {
	stations  []domain.Station
	counts    domain.FeedCounts
	finalized bool
}

// NewAssembler returns an empty assembler for one pipeline run.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Accept appends a unique station to the feed.
func (a *Assembler) Accept(s domain.Station) {
	a.mustBeOpen()
	a.stations = append(a.stations, s)
	a.counts.Accepted++
}

// Reject attributes a dropped record to its rejection counter.
func (a *Assembler) Reject(reason domain.Rejection) {
	a.mustBeOpen()
	switch reason {
	case domain.RejectedNoPower:
		a.counts.RejectedNoPower++
	case domain.RejectedLowPower:
		a.counts.RejectedLowPower++
	case domain.RejectedBadCoords:
		a.counts.RejectedBadCoords++
	default:
		a.counts.RejectedUnclassifiedConnector++
	}
}

// Duplicate accounts for a record that merged into an existing station.
func (a *Assembler) Duplicate() {
	a.mustBeOpen()
	a.counts.DuplicatesMerged++
}

// Counts returns a snapshot of the accounting so far.
func (a *Assembler) Counts() domain.FeedCounts {
	return a.counts
}

// Finalize seals the assembler and emits the immutable feed. The state is
// always consistent, so finalizing a partial run is safe.
func (a *Assembler) Finalize() domain.CanonicalFeed {
	a.mustBeOpen()
	a.finalized = true

	stations := make([]domain.Station, len(a.stations))
	copy(stations, a.stations)

	return domain.CanonicalFeed{
		Stations:    stations,
		Counts:      a.counts,
		GeneratedAt: domain.Now(),
	}
}

func (a *Assembler) mustBeOpen() {
	if a.finalized {
		panic("pipeline: assembler used after Finalize")
	}
}
