package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// powerRe extracts numeric tokens and their optional unit markers from a raw
// power value, e.g. "50kW", "50 kW", "50000W", "1.2 MW", "2x150kW".
var powerRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([km]?w)?`)

// NormalizePower coerces a raw power value into kilowatts.
//
// Unit handling: a bare "w" suffix means watts (divide by 1000), "mw" means
// megawatts (multiply by 1000), "kw" or no unit means the number already is
// kilowatts. Decimal commas are tolerated ("22,5" -> 22.5). A leading minus
// carries through, so negative ratings reach the caller's range check. Fails
// with ErrNotNumeric when no numeric token can be extracted.
func NormalizePower(v Value) (float64, error) {
	if n, ok := v.Float(); ok {
		return n, nil
	}

	s := strings.ToLower(strings.TrimSpace(v.Text()))
	if s == "" {
		return 0, fmt.Errorf("empty power value: %w", ErrNotNumeric)
	}
	s = strings.ReplaceAll(s, ",", ".")

	matches := powerRe.FindAllStringSubmatch(s, -1)
	if matches == nil {
		return 0, fmt.Errorf("power value %q: %w", v.Text(), ErrNotNumeric)
	}

	// Multi-gun and range notations ("2x150kW", "50-150 kW") carry several
	// numeric tokens; the one next to a unit marker is the rating. With no
	// unit anywhere the last token wins.
	m := matches[len(matches)-1]
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][2] != "" {
			m = matches[i]
			break
		}
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("power value %q: %w", v.Text(), ErrNotNumeric)
	}
	if strings.HasPrefix(s, "-") {
		n = -n
	}

	switch m[2] {
	case "w":
		return n / 1000, nil
	case "mw":
		return n * 1000, nil
	default:
		return n, nil
	}
}

// KeywordRule maps connector-label keywords to a category. Rules are matched
// in slice order, so the rarer, more specific family must come first: a label
// mentioning both MCS and CCS describes an MCS site.
type KeywordRule struct {
	Category Category `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultConnectorRules returns the keyword table for MCS and CCS
// classification. MCS precedes CCS deliberately.
func DefaultConnectorRules() []KeywordRule {
	return []KeywordRule{
		{Category: CategoryMCS, Keywords: []string{"mcs", "megawatt"}},
		{Category: CategoryCCS, Keywords: []string{"ccs", "combo", "type 2 combo", "iec 62196-3"}},
	}
}

// ClassifyConnector matches a raw connector label against the rule table and
// returns the first category whose keywords appear in the lower-cased label.
// Fails with ErrUnclassified when nothing matches.
func ClassifyConnector(raw string, rules []KeywordRule) (Category, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return "", fmt.Errorf("empty connector label: %w", ErrUnclassified)
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(label, kw) {
				return rule.Category, nil
			}
		}
	}
	return "", fmt.Errorf("connector label %q: %w", raw, ErrUnclassified)
}
