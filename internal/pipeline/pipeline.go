package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/evatlas/chargefeed/internal/domain"
	"github.com/evatlas/chargefeed/internal/observability"
)

// Source produces finite batches of raw records. A fresh source instance is
// created per run; Next returns io.EOF after the final batch. Empty batches
// with a nil error are allowed and skipped.
type Source interface {
	Name() string
	Next(ctx context.Context) ([]domain.RawRecord, error)
}

// SourceRun pairs a source with its normalization spec. The slice order
// passed to Run is the source priority order: first-write-wins dedup means
// earlier sources keep contested sites.
type SourceRun struct {
	Source Source
	Spec   domain.SourceSpec
}

// Pipeline drives raw record batches through normalization, validation,
// dedup, and assembly. Per-record failures are counted, never fatal; a
// structural source failure aborts the run with the source named.
type Pipeline struct {
	normalizer *domain.RecordNormalizer
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. The normalizer, dedup set, and assembler state are
// per-run; the Pipeline itself is reusable across runs.
func New(normalizer *domain.RecordNormalizer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run processes every source to exhaustion in the given order and finalizes
// the canonical feed. Cancelling the context stops feeding batches; the
// error then reports the interruption without a feed.
func (p *Pipeline) Run(ctx context.Context, sources []SourceRun) (domain.CanonicalFeed, error) {
	start := time.Now()
	p.metrics.BuildRunning.Set(1)
	defer p.metrics.BuildRunning.Set(0)

	dedupe := NewDeduplicator()
	assembler := NewAssembler()

	for _, sr := range sources {
		if err := p.drainSource(ctx, sr, dedupe, assembler); err != nil {
			return domain.CanonicalFeed{}, fmt.Errorf("source %s: %w", sr.Source.Name(), err)
		}
	}

	feed := assembler.Finalize()
	p.metrics.FeedStations.Set(float64(len(feed.Stations)))
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("feed build complete",
		"stations", len(feed.Stations),
		"accepted", feed.Counts.Accepted,
		"duplicates_merged", feed.Counts.DuplicatesMerged,
		"rejected_unclassified_connector", feed.Counts.RejectedUnclassifiedConnector,
		"rejected_no_power", feed.Counts.RejectedNoPower,
		"rejected_low_power", feed.Counts.RejectedLowPower,
		"rejected_bad_coords", feed.Counts.RejectedBadCoords,
		"duration", time.Since(start),
	)
	return feed, nil
}

// drainSource pulls batches from one source until io.EOF.
func (p *Pipeline) drainSource(ctx context.Context, sr SourceRun, dedupe *Deduplicator, assembler *Assembler) error {
	spec := sr.Spec
	if spec.Tag == "" {
		spec.Tag = sr.Source.Name()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := sr.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, rec := range batch {
			p.processRecord(rec, spec, dedupe, assembler)
		}
	}
}

func (p *Pipeline) processRecord(rec domain.RawRecord, spec domain.SourceSpec, dedupe *Deduplicator, assembler *Assembler) {
	p.metrics.RecordsProcessed.WithLabelValues(spec.Tag).Inc()

	station, err := p.normalizer.Normalize(rec, spec)
	if err != nil {
		reason, ok := domain.RejectionOf(err)
		if !ok {
			// Normalize only returns RejectErrors; anything else is a bug,
			// but a single record never aborts the run.
			reason = domain.RejectedUnclassifiedConnector
		}
		assembler.Reject(reason)
		p.metrics.RecordsRejected.WithLabelValues(string(reason)).Inc()
		p.logger.Debug("record rejected", "source", spec.Tag, "reason", reason, "error", err)
		return
	}

	if !dedupe.Merge(station) {
		assembler.Duplicate()
		p.metrics.DuplicatesMerged.Inc()
		if keeper, ok := dedupe.KeeperID(station); ok {
			p.logger.Debug("duplicate site merged", "source", spec.Tag, "id", station.ID, "kept", keeper)
		}
		return
	}

	assembler.Accept(station)
	p.metrics.RecordsAccepted.Inc()
}
