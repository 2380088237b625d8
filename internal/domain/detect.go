package domain

import "strings"

// AliasConfig holds the ordered field-name aliases the detector consults for
// each target field. Order encodes specificity: unambiguous names come first
// so a generic column ("power") never shadows a specific one ("max_power_kw")
// when both are present. Overridable per deployment via the config file.
type AliasConfig struct {
	Connector []string `yaml:"connector"`
	Power     []string `yaml:"power"`
	Latitude  []string `yaml:"latitude"`
	Longitude []string `yaml:"longitude"`

	// Display fields, pass-through only.
	Name     []string `yaml:"name"`
	City     []string `yaml:"city"`
	Country  []string `yaml:"country"`
	Operator []string `yaml:"operator"`
	Status   []string `yaml:"status"`
}

// DefaultAliases returns the alias tables covering the column names observed
// across NAP exports and the OCM feed.
func DefaultAliases() AliasConfig {
	return AliasConfig{
		Connector: []string{"connector", "connectors", "connector_type", "socket", "plug", "plug_type"},
		Power:     []string{"power_kw", "max_power_kw", "max_power", "rated_power_kw", "rated_power", "maxkw", "kw", "power"},
		Latitude:  []string{"lat", "latitude", "y"},
		Longitude: []string{"lon", "lng", "longitude", "x"},
		Name:      []string{"name", "title", "site_name", "address_title"},
		City:      []string{"city", "town", "municipality", "place"},
		Country:   []string{"country", "country_code", "iso2", "iso"},
		Operator:  []string{"operator", "operator_name", "cpo", "owner", "organisation"},
		Status:    []string{"status", "site_status"},
	}
}

// FieldDetection holds the resolved key name per target field for one record.
// An empty string means no alias matched.
type FieldDetection struct {
	Connector string
	Power     string
	Latitude  string
	Longitude string
	Name      string
	City      string
	Country   string
	Operator  string
	Status    string
}

// FieldDetector resolves which keys of a raw record supply each target field.
// It matches key names only, case-insensitively, and never inspects values.
type FieldDetector struct {
	aliases AliasConfig
}

// NewFieldDetector builds a detector from the given alias tables. Empty
// tables fall back to the defaults so a partial config override works.
func NewFieldDetector(aliases AliasConfig) *FieldDetector {
	def := DefaultAliases()
	if len(aliases.Connector) == 0 {
		aliases.Connector = def.Connector
	}
	if len(aliases.Power) == 0 {
		aliases.Power = def.Power
	}
	if len(aliases.Latitude) == 0 {
		aliases.Latitude = def.Latitude
	}
	if len(aliases.Longitude) == 0 {
		aliases.Longitude = def.Longitude
	}
	if len(aliases.Name) == 0 {
		aliases.Name = def.Name
	}
	if len(aliases.City) == 0 {
		aliases.City = def.City
	}
	if len(aliases.Country) == 0 {
		aliases.Country = def.Country
	}
	if len(aliases.Operator) == 0 {
		aliases.Operator = def.Operator
	}
	if len(aliases.Status) == 0 {
		aliases.Status = def.Status
	}
	return &FieldDetector{aliases: aliases}
}

// Detect resolves field keys for one record. For each target field the first
// alias present in the record wins.
func (d *FieldDetector) Detect(rec RawRecord) FieldDetection {
	return FieldDetection{
		Connector: firstKey(rec, d.aliases.Connector),
		Power:     firstKey(rec, d.aliases.Power),
		Latitude:  firstKey(rec, d.aliases.Latitude),
		Longitude: firstKey(rec, d.aliases.Longitude),
		Name:      firstKey(rec, d.aliases.Name),
		City:      firstKey(rec, d.aliases.City),
		Country:   firstKey(rec, d.aliases.Country),
		Operator:  firstKey(rec, d.aliases.Operator),
		Status:    firstKey(rec, d.aliases.Status),
	}
}

// firstKey returns the first alias present in the record, preserving the
// alias spelling for later lookup (RawRecord.Get is case-insensitive).
func firstKey(rec RawRecord, aliases []string) string {
	for _, alias := range aliases {
		if rec.Has(strings.ToLower(alias)) {
			return alias
		}
	}
	return ""
}
