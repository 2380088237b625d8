package domain

// SourceSpec carries the per-source knobs the normalizer needs: the
// provenance tag, the CCS-only default for feeds whose connector column is
// unusable, and the coordinate sentinel override.
type SourceSpec struct {
	// Tag is the provenance label stored on every station from this source.
	Tag string

	// DefaultCategory, when non-empty, classifies records whose connector
	// field is missing or matches no keyword. Meant for dedicated
	// single-standard feeds; leave empty to reject such records.
	DefaultCategory Category

	// AllowZeroCoord accepts the (0,0) coordinate pair from this source.
	AllowZeroCoord bool
}

// RecordNormalizer turns raw records of unknown shape into canonical
// stations. It is stateless and safe for concurrent use.
type RecordNormalizer struct {
	detector    *FieldDetector
	rules       []KeywordRule
	thresholdKW float64
}

// NewRecordNormalizer builds a normalizer. Pass nil rules to use
// DefaultConnectorRules; thresholdKW <= 0 falls back to 50.
func NewRecordNormalizer(aliases AliasConfig, rules []KeywordRule, thresholdKW float64) *RecordNormalizer {
	if rules == nil {
		rules = DefaultConnectorRules()
	}
	if thresholdKW <= 0 {
		thresholdKW = 50
	}
	return &RecordNormalizer{
		detector:    NewFieldDetector(aliases),
		rules:       rules,
		thresholdKW: thresholdKW,
	}
}

// ThresholdKW returns the minimum accepted power rating.
func (n *RecordNormalizer) ThresholdKW() float64 {
	return n.thresholdKW
}

// Normalize resolves, coerces, and filters one raw record. On failure the
// returned error is a *RejectError naming exactly one rejection counter.
//
// Checks run in a fixed priority order (connector, then power, then
// coordinates) so a record failing several criteria is always attributed to
// the same counter.
func (n *RecordNormalizer) Normalize(rec RawRecord, src SourceSpec) (Station, error) {
	det := n.detector.Detect(rec)

	category, err := n.resolveCategory(rec, det, src)
	if err != nil {
		return Station{}, err
	}

	power, err := n.resolvePower(rec, det)
	if err != nil {
		return Station{}, err
	}
	if power < n.thresholdKW {
		return Station{}, reject(RejectedLowPower, nil)
	}

	lat, lon, err := n.resolveCoordinates(rec, det, src)
	if err != nil {
		return Station{}, err
	}

	return Station{
		ID:         StationID(category, lat, lon, src.Tag),
		Category:   category,
		PowerKW:    power,
		Latitude:   lat,
		Longitude:  lon,
		Source:     src.Tag,
		Attributes: passThrough(rec, det),
	}, nil
}

func (n *RecordNormalizer) resolveCategory(rec RawRecord, det FieldDetection, src SourceSpec) (Category, error) {
	if det.Connector == "" {
		if src.DefaultCategory != "" {
			return src.DefaultCategory, nil
		}
		return "", reject(RejectedUnclassifiedConnector, ErrMissingField)
	}
	value, _ := rec.Get(det.Connector)
	category, err := ClassifyConnector(value.Text(), n.rules)
	if err != nil {
		if src.DefaultCategory != "" {
			return src.DefaultCategory, nil
		}
		return "", reject(RejectedUnclassifiedConnector, err)
	}
	return category, nil
}

func (n *RecordNormalizer) resolvePower(rec RawRecord, det FieldDetection) (float64, error) {
	if det.Power == "" {
		return 0, reject(RejectedNoPower, ErrMissingField)
	}
	value, _ := rec.Get(det.Power)
	power, err := NormalizePower(value)
	if err != nil {
		return 0, reject(RejectedNoPower, err)
	}
	if power < 0 {
		return 0, reject(RejectedNoPower, ErrNotNumeric)
	}
	return power, nil
}

func (n *RecordNormalizer) resolveCoordinates(rec RawRecord, det FieldDetection, src SourceSpec) (float64, float64, error) {
	if det.Latitude == "" || det.Longitude == "" {
		return 0, 0, reject(RejectedBadCoords, ErrMissingField)
	}
	latValue, _ := rec.Get(det.Latitude)
	lonValue, _ := rec.Get(det.Longitude)
	if latValue.IsNull() || lonValue.IsNull() {
		return 0, 0, reject(RejectedBadCoords, ErrMissingField)
	}

	lat, err := parseCoordinate(latValue)
	if err != nil {
		return 0, 0, reject(RejectedBadCoords, err)
	}
	lon, err := parseCoordinate(lonValue)
	if err != nil {
		return 0, 0, reject(RejectedBadCoords, err)
	}

	policy := CoordinatePolicy{AllowZero: src.AllowZeroCoord}
	if err := policy.Validate(lat, lon); err != nil {
		return 0, 0, reject(RejectedBadCoords, err)
	}
	return lat, lon, nil
}

// passThrough collects the detected display fields with non-empty values.
func passThrough(rec RawRecord, det FieldDetection) map[string]string {
	attrs := make(map[string]string)
	put := func(name, key string) {
		if key == "" {
			return
		}
		value, _ := rec.Get(key)
		if text := value.Text(); text != "" {
			attrs[name] = text
		}
	}
	put("name", det.Name)
	put("city", det.City)
	put("country", det.Country)
	put("operator", det.Operator)
	put("status", det.Status)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
