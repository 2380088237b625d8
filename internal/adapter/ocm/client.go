// Package ocm reads charging sites from the Open Charge Map POI API and
// flattens them into raw records for the normalization pipeline.
package ocm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evatlas/chargefeed/internal/domain"
)

const defaultBaseURL = "https://api.openchargemap.io/v3/poi/"

// Options configures a Source.
type Options struct {
	BaseURL   string
	APIKey    string
	Countries []string // ISO country codes, queried one at a time
	PageSize  int      // maxresults per request, default 1000

	// MinPowerKW is passed upstream so the API pre-filters slow chargers;
	// the pipeline still enforces the threshold locally.
	MinPowerKW float64

	// Delay between consecutive API requests. Open Charge Map asks bulk
	// consumers to stay polite; default 1200ms.
	Delay   time.Duration
	Timeout time.Duration
}

// Source pages through the POI API country by country. It implements
// pipeline.Source; each page of results is one batch.
type Source struct {
	name       string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger

	country int
	offset  int
	started bool
	done    bool
}

// NewSource creates an OCM source for one run.
func NewSource(name string, opts Options, logger *slog.Logger) *Source {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.MinPowerKW <= 0 {
		opts.MinPowerKW = 50
	}
	if opts.Delay <= 0 {
		opts.Delay = 1200 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Source{
		name:       name,
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

func (s *Source) Name() string { return s.name }

// Next fetches the next page. Pages advance within a country until a short
// page, then move to the next country. Returns io.EOF when all countries are
// exhausted. A non-200 response is a fatal source error: it means a broken
// key or endpoint, not data noise.
func (s *Source) Next(ctx context.Context) ([]domain.RawRecord, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.country >= len(s.opts.Countries) {
		s.done = true
		return nil, io.EOF
	}

	if s.started {
		if err := sleepWithContext(ctx, s.opts.Delay); err != nil {
			return nil, err
		}
	}
	s.started = true

	country := s.opts.Countries[s.country]
	pois, err := s.fetchPage(ctx, country, s.offset)
	if err != nil {
		return nil, fmt.Errorf("country %s offset %d: %w", country, s.offset, err)
	}

	if len(pois) < s.opts.PageSize {
		s.country++
		s.offset = 0
	} else {
		s.offset += s.opts.PageSize
	}

	records := make([]domain.RawRecord, 0, len(pois))
	for _, p := range pois {
		records = append(records, flatten(p))
	}
	s.logger.Debug("ocm page fetched", "country", country, "records", len(records))
	return records, nil
}

func (s *Source) fetchPage(ctx context.Context, country string, offset int) ([]poi, error) {
	params := url.Values{
		"output":      {"json"},
		"countrycode": {country},
		"minpowerkw":  {strconv.FormatFloat(s.opts.MinPowerKW, 'f', -1, 64)},
		"maxresults":  {strconv.Itoa(s.opts.PageSize)},
		"offset":      {strconv.Itoa(offset)},
		"compact":     {"true"},
		"verbose":     {"false"},
	}
	if s.opts.APIKey != "" {
		params.Set("key", s.opts.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ocm API error: status %d: %s", resp.StatusCode, body)
	}

	var pois []poi
	if err := json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return pois, nil
}

// flatten maps the nested POI structure onto the flat field names the
// default alias tables expect.
func flatten(p poi) domain.RawRecord {
	rec := domain.NewRawRecord()

	if p.AddressInfo != nil {
		a := p.AddressInfo
		setCoord(rec, "latitude", a.Latitude)
		setCoord(rec, "longitude", a.Longitude)
		setText(rec, "name", a.Title)
		setText(rec, "city", a.Town)
		if a.Country != nil {
			setText(rec, "country", a.Country.ISOCode)
		}
	} else {
		rec.Set("latitude", domain.Null())
		rec.Set("longitude", domain.Null())
	}

	if p.OperatorInfo != nil {
		setText(rec, "operator", p.OperatorInfo.Title)
	}

	// One site may expose several connections; take the highest rating and
	// join the type labels so the classifier sees every token.
	var labels []string
	maxPower := 0.0
	for _, c := range p.Connections {
		if c.ConnectionType != nil && c.ConnectionType.Title != "" {
			labels = append(labels, c.ConnectionType.Title)
		}
		if c.PowerKW != nil && *c.PowerKW > maxPower {
			maxPower = *c.PowerKW
		}
	}
	if len(labels) > 0 {
		rec.Set("connector_type", domain.String(strings.Join(labels, "; ")))
	} else {
		rec.Set("connector_type", domain.Null())
	}
	if maxPower > 0 {
		rec.Set("power_kw", domain.Number(maxPower))
	} else {
		rec.Set("power_kw", domain.Null())
	}

	if p.ID != 0 {
		rec.Set("source_url", domain.String(fmt.Sprintf("https://openchargemap.org/site/poi/%d", p.ID)))
	}
	return rec
}

func setCoord(rec domain.RawRecord, key string, v *float64) {
	if v == nil {
		rec.Set(key, domain.Null())
		return
	}
	rec.Set(key, domain.Number(*v))
}

func setText(rec domain.RawRecord, key, v string) {
	if v == "" {
		return
	}
	rec.Set(key, domain.String(v))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Open Charge Map POI response types (compact form).

type poi struct {
	ID           int           `json:"ID"`
	AddressInfo  *addressInfo  `json:"AddressInfo"`
	OperatorInfo *operatorInfo `json:"OperatorInfo"`
	Connections  []connection  `json:"Connections"`
}

type addressInfo struct {
	Title     string       `json:"Title"`
	Town      string       `json:"Town"`
	Latitude  *float64     `json:"Latitude"`
	Longitude *float64     `json:"Longitude"`
	Country   *countryInfo `json:"Country"`
}

type countryInfo struct {
	ISOCode string `json:"ISOCode"`
}

type operatorInfo struct {
	Title string `json:"Title"`
}

type connection struct {
	ConnectionType *connectionType `json:"ConnectionType"`
	PowerKW        *float64        `json:"PowerKW"`
}

type connectionType struct {
	Title string `json:"Title"`
}
