package domain

import (
	"strconv"
	"strings"
)

// Kind discriminates the scalar kinds a raw field value can hold.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a tagged scalar from a raw source row: a string, a number, or null.
// Sources with typed data (JSON numbers) keep the numeric kind; CSV sources
// produce strings and leave coercion to the normalizer.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String wraps a string value. Empty strings are kept as strings, not nulls;
// emptiness is a normalizer concern.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Null is the explicit missing-value scalar.
func Null() Value {
	return Value{kind: KindNull}
}

// Kind reports which scalar kind the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the null scalar.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text renders the value as a string. Numbers use the shortest round-trip
// formatting; null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value and true when the value is a number.
// String values are not parsed here; see NormalizePower and parseCoordinate.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// RawRecord is one unprocessed source row: an unordered mapping from
// field name (arbitrary casing) to scalar value. Lookup is case-insensitive
// while the original key spelling is preserved for pass-through attributes.
type RawRecord struct {
	fields map[string]rawField
}

type rawField struct {
	key   string // original spelling
	value Value
}

// NewRawRecord returns an empty record.
func NewRawRecord() RawRecord {
	return RawRecord{fields: make(map[string]rawField)}
}

// Set stores a field. A later Set with a key differing only in case
// overwrites the earlier one.
func (r RawRecord) Set(key string, v Value) {
	r.fields[strings.ToLower(key)] = rawField{key: key, value: v}
}

// Get looks up a field case-insensitively.
func (r RawRecord) Get(key string) (Value, bool) {
	f, ok := r.fields[strings.ToLower(key)]
	if !ok {
		return Value{}, false
	}
	return f.value, true
}

// Has reports whether a field with the given name exists, case-insensitively.
func (r RawRecord) Has(key string) bool {
	_, ok := r.fields[strings.ToLower(key)]
	return ok
}

// Len returns the number of fields.
func (r RawRecord) Len() int {
	return len(r.fields)
}

// Keys returns the original field names in unspecified order.
func (r RawRecord) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		keys = append(keys, f.key)
	}
	return keys
}
