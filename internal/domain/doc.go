// Package domain models EV fast-charging station data drawn from
// heterogeneous open datasets.
//
// # Data Sources
//
// Records arrive from three kinds of adapters: the Open Charge Map POI API
// (paged JSON, nested but predictable field names), National Access Point
// (NAP) file drops (CSV or GeoJSON with whatever column names a given
// jurisdiction chose), and a curated seed list of announced MCS sites.
// No source shares a schema with any other, so the core works on untyped
// RawRecords and resolves field meaning by name.
//
// # Field Detection
//
// Each target field (connector, power, latitude, longitude, and the display
// fields) has an ordered alias list. The first alias present among a
// record's keys wins, compared case-insensitively. Ordering encodes
// specificity: "max_power_kw" is consulted before "power" so a dataset
// carrying both a per-connector maximum and some unrelated generic "power"
// column resolves to the right one. The detector looks at keys only, never
// values. See [FieldDetector].
//
// # Power Encoding
//
// NAP datasets quote power ratings inconsistently:
//
//	"150"      -> 150 kW (bare numbers are kilowatts)
//	"150 kW"   -> 150 kW
//	"50000W"   -> 50 kW  (bare "w" suffix means watts)
//	"1.2 MW"   -> 1200 kW (megawatt figures appear in MCS announcements)
//	"22,5"     -> 22.5 kW (decimal comma)
//
// See [NormalizePower].
//
// # Connector Classification
//
// Classification is keyword matching over an ordered rule table
// ([KeywordRule]). MCS tokens are checked before CCS tokens: a label such as
// "MCS (CCS compatible)" describes a Megawatt Charging System site, and
// misfiling the handful of real MCS sites under generic CCS would defeat the
// point of tracking them. Sources known a priori to be single-standard can
// set [SourceSpec.DefaultCategory] instead of relying on the label.
//
// # ID Generation
//
// Station IDs are deterministic SHA-256 hashes of the rounded coordinates
// and source tag, prefixed with the category ("ccs-1a2b..."). Re-running the
// pipeline over the same inputs reproduces the same IDs, so downstream
// consumers can diff feeds between runs. See [StationID].
package domain
