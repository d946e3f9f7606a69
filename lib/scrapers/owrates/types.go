package owrates

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// FilterTuple is one combination of the six query filters the rates
// endpoint understands. Values keep the casing the endpoint expects
// ("PC", "Europe", "Gold"); Slug lower-cases them for artifact names.
type FilterTuple struct {
	Input  string
	Map    string
	Region string
	Role   string
	RQ     string
	Tier   string
}

// QueryParams returns the tuple as request query parameters, values
// verbatim.
func (t FilterTuple) QueryParams() map[string]string {
	return map[string]string{
		"input":  t.Input,
		"map":    t.Map,
		"region": t.Region,
		"role":   t.Role,
		"rq":     t.RQ,
		"tier":   t.Tier,
	}
}

func (t FilterTuple) String() string {
	return fmt.Sprintf(
		"input=%s map=%s region=%s role=%s rq=%s tier=%s",
		t.Input, t.Map, t.Region, t.Role, t.RQ, t.Tier,
	)
}

// Slug converts a filter value into its artifact-name segment:
// lower-cased, spaces replaced with hyphens.
func Slug(value string) string {
	return strings.ReplaceAll(strings.ToLower(value), " ", "-")
}

// Domains enumerates the allowed values per filter field, in the order
// Sequence iterates them.
type Domains struct {
	Inputs  []string
	Maps    []string
	Regions []string
	Roles   []string
	RQ      []string
	Tiers   []string
}

// DefaultDomains returns the filter values the live rates endpoint accepts.
// Maps is open-ended on the endpoint side; "all-maps" is the aggregate.
func DefaultDomains() Domains {
	return Domains{
		Inputs:  []string{"PC", "Controller"},
		Maps:    []string{"all-maps"},
		Regions: []string{"Europe", "US", "Asia"},
		Roles:   []string{"All", "Damage", "Tank", "Support"},
		RQ:      []string{"0", "1"},
		Tiers: []string{
			"All", "Bronze", "Silver", "Gold",
			"Platinum", "Diamond", "Master", "Grandmaster",
		},
	}
}

// InvalidFieldError reports a filter value outside its enumerated domain.
type InvalidFieldError struct {
	Field      string
	Value      string
	Suggestion string
}

func (e InvalidFieldError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid %s %q (did you mean %q?)", e.Field, e.Value, e.Suggestion)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// closest picks the domain value most similar to value, or "" when
// nothing comes reasonably close.
func closest(domain []string, value string) string {
	best := ""
	bestScore := 0.0
	for _, candidate := range domain {
		score := matchr.JaroWinkler(strings.ToLower(value), strings.ToLower(candidate), false)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore < 0.8 {
		return ""
	}
	return best
}

func checkField(field, value string, domain []string) error {
	for _, v := range domain {
		if v == value {
			return nil
		}
	}
	return InvalidFieldError{Field: field, Value: value, Suggestion: closest(domain, value)}
}

// Restrict narrows the named field's domain down to a single value,
// validating it first. The map field is open-ended and accepts anything
// non-empty.
func (d Domains) Restrict(field, value string) (Domains, error) {
	switch field {
	case "input":
		if err := checkField(field, value, d.Inputs); err != nil {
			return d, err
		}
		d.Inputs = []string{value}
	case "map":
		if value == "" {
			return d, InvalidFieldError{Field: field, Value: value}
		}
		d.Maps = []string{value}
	case "region":
		if err := checkField(field, value, d.Regions); err != nil {
			return d, err
		}
		d.Regions = []string{value}
	case "role":
		if err := checkField(field, value, d.Roles); err != nil {
			return d, err
		}
		d.Roles = []string{value}
	case "rq":
		if err := checkField(field, value, d.RQ); err != nil {
			return d, err
		}
		d.RQ = []string{value}
	case "tier":
		if err := checkField(field, value, d.Tiers); err != nil {
			return d, err
		}
		d.Tiers = []string{value}
	default:
		return d, fmt.Errorf("unknown filter field %q", field)
	}
	return d, nil
}
