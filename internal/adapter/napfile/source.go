// Package napfile reads National Access Point exports dropped into a local
// directory. Jurisdictions publish wildly different schemas; the package only
// materializes rows as raw records and leaves field meaning to the pipeline.
package napfile

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evatlas/chargefeed/internal/domain"
)

// Source walks a drop directory and emits one batch per recognized file.
// CSV and GeoJSON/JSON files are parsed; anything else is skipped. A file
// that cannot be parsed is a fatal source error: a half-imported NAP export
// is a configuration problem, not data noise.
type Source struct {
	name   string
	dir    string
	logger *slog.Logger

	files  []string
	index  int
	walked bool
}

// NewSource creates a NAP drop-directory source for one run.
func NewSource(name, dir string, logger *slog.Logger) *Source {
	return &Source{name: name, dir: dir, logger: logger}
}

func (s *Source) Name() string { return s.name }

// Next parses the next file in the directory, in sorted path order for
// deterministic runs. Returns io.EOF after the last file.
func (s *Source) Next(_ context.Context) ([]domain.RawRecord, error) {
	if !s.walked {
		if err := s.walk(); err != nil {
			return nil, err
		}
		s.walked = true
	}
	if s.index >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.index]
	s.index++

	var (
		records []domain.RawRecord
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".geojson", ".json":
		records, err = readGeoJSON(path)
	}
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", path, err)
	}

	s.logger.Debug("nap file parsed", "file", path, "records", len(records))
	return records, nil
}

func (s *Source) walk() error {
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".geojson", ".json":
			s.files = append(s.files, path)
		default:
			s.logger.Debug("skipping unrecognized file", "file", path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", s.dir, err)
	}
	sort.Strings(s.files)
	return nil
}
