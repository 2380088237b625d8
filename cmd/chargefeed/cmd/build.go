package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	geojsonadapter "github.com/evatlas/chargefeed/internal/adapter/geojson"
	kafkaadapter "github.com/evatlas/chargefeed/internal/adapter/kafka"
	"github.com/evatlas/chargefeed/internal/adapter/napfile"
	"github.com/evatlas/chargefeed/internal/adapter/nominatim"
	"github.com/evatlas/chargefeed/internal/adapter/ocm"
	"github.com/evatlas/chargefeed/internal/adapter/seed"
	"github.com/evatlas/chargefeed/internal/config"
	"github.com/evatlas/chargefeed/internal/domain"
	"github.com/evatlas/chargefeed/internal/observability"
	"github.com/evatlas/chargefeed/internal/pipeline"
)

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run one feed build and exit",
		Long: "Pulls every configured source to exhaustion, normalizes and\n" +
			"deduplicates the records, and writes the canonical GeoJSON feed.",
		RunE: func(_ *cobra.Command, _ []string) error {
			rt, err := newRuntime(cfgFile)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			feed, err := rt.buildOnce(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %d stations to %s (accepted %d, duplicates %d, rejected %d)\n",
				len(feed.Stations), rt.cfg.OutputPath,
				feed.Counts.Accepted, feed.Counts.DuplicatesMerged,
				feed.Counts.Total()-feed.Counts.Accepted-feed.Counts.DuplicatesMerged)
			return nil
		},
	}
}

// runtime holds the wiring shared by the build and serve commands.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipe     *pipeline.Pipeline
	geocoder domain.Geocoder
	kafka    *kafkaadapter.Writer
}

func newRuntime(path string) (*runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}

	if cfg.Geocoder.Enabled {
		client := nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout.Std(), logger)
		rt.geocoder = nominatim.NewCachedGeocoder(client, cfg.Geocoder.CacheSize, metrics)
		logger.Info("geocoding enabled", "base_url", cfg.Geocoder.BaseURL, "cache_size", cfg.Geocoder.CacheSize)
	} else {
		logger.Info("geocoding disabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		rt.kafka = kafkaadapter.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info("kafka publishing enabled", "topic", cfg.Kafka.Topic)
	}

	normalizer := domain.NewRecordNormalizer(cfg.Aliases, cfg.ConnectorRules, cfg.PowerThresholdKW)
	rt.pipe = pipeline.New(normalizer, logger, metrics)

	return rt, nil
}

// buildOnce runs the pipeline over fresh source instances, writes the GeoJSON
// output atomically, and publishes to Kafka when configured.
func (rt *runtime) buildOnce(ctx context.Context) (domain.CanonicalFeed, error) {
	feed, err := rt.pipe.Run(ctx, rt.makeSources())
	if err != nil {
		return domain.CanonicalFeed{}, err
	}

	if err := geojsonadapter.Write(rt.cfg.OutputPath, feed); err != nil {
		return domain.CanonicalFeed{}, fmt.Errorf("write feed: %w", err)
	}

	if rt.kafka != nil {
		if err := rt.kafka.PublishFeed(ctx, feed); err != nil {
			// The feed file already landed; publishing is best-effort.
			rt.logger.Error("kafka publish failed", "error", err)
		}
	}
	return feed, nil
}

// makeSources constructs fresh source instances in config order. Sources hold
// per-run paging state, so each build gets its own set.
func (rt *runtime) makeSources() []pipeline.SourceRun {
	runs := make([]pipeline.SourceRun, 0, len(rt.cfg.Sources))
	for _, src := range rt.cfg.Sources {
		var s pipeline.Source
		switch src.Type {
		case "ocm":
			s = ocm.NewSource(src.Tag(), ocm.Options{
				BaseURL:    src.BaseURL,
				APIKey:     rt.cfg.OCMAPIKey,
				Countries:  src.Countries,
				PageSize:   src.PageSize,
				MinPowerKW: rt.cfg.PowerThresholdKW,
			}, rt.logger)
		case "nap_dir":
			s = napfile.NewSource(src.Tag(), src.Path, rt.logger)
		case "mcs_seed":
			s = seed.NewSource(src.Tag(), src.Path, rt.geocoder, rt.logger)
		default:
			// validate() rejects unknown types at load time.
			continue
		}
		runs = append(runs, pipeline.SourceRun{Source: s, Spec: src.Spec()})
	}
	return runs
}

func (rt *runtime) close() {
	if rt.kafka != nil {
		if err := rt.kafka.Close(); err != nil {
			rt.logger.Error("kafka writer close error", "error", err)
		}
	}
}
