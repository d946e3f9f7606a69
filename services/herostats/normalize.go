package herostats

import (
	"fmt"

	"owstats/lib/scrapers/owrates"

	"github.com/tidwall/gjson"
)

// ShapeError reports a payload that does not match the expected
// hero-to-stats mapping. Retrying the fetch will not fix it, so it is
// terminal for the tuple that produced the payload.
type ShapeError struct {
	Detail string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected payload shape: %s", e.Detail)
}

// Table is the flattened form of one payload, ready for serialization.
// Header starts with "hero", continues with the stat columns in the
// order they first appear in the payload, and ends with the six filter
// tags. Rows follow the payload's hero order.
type Table struct {
	Header []string
	Rows   [][]string
}

func jsonKind(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	}
	switch v.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.Null:
		return "null"
	default:
		return "boolean"
	}
}

// renderValue keeps the source literal for numbers and booleans so
// values survive the round trip to csv without any precision loss.
func renderValue(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}

// flatten walks one hero's stat mapping and reports a (column, value)
// pair for every leaf. Nested objects join their keys with "_", lists
// of scalars keep their raw json literal and lists containing objects
// get an index suffix per element.
func flatten(prefix string, obj gjson.Result, visit func(key, value string)) {
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch {
		case v.IsObject():
			flatten(key, v, visit)
		case v.IsArray():
			items := v.Array()
			scalar := true
			for _, item := range items {
				if item.IsObject() || item.IsArray() {
					scalar = false
					break
				}
			}
			if scalar {
				visit(key, v.Raw)
				break
			}
			for i, item := range items {
				if item.IsObject() {
					flatten(fmt.Sprintf("%s_%d", key, i), item, visit)
				} else {
					visit(fmt.Sprintf("%s_%d", key, i), renderValue(item))
				}
			}
		default:
			visit(key, renderValue(v))
		}
		return true
	})
}

// Normalize validates that raw is a mapping from hero name to a stat
// object and flattens it into one row per hero. Every row carries the
// tuple's field values, lowercased, in the trailing columns. Heroes
// missing a column another hero has get an empty cell there.
func Normalize(tuple owrates.FilterTuple, raw []byte) (Table, error) {
	if !gjson.ValidBytes(raw) {
		return Table{}, &ShapeError{Detail: "malformed json"}
	}
	payload := gjson.ParseBytes(raw)
	if !payload.IsObject() {
		return Table{}, &ShapeError{
			Detail: fmt.Sprintf("expected a top-level object, got %s", jsonKind(payload)),
		}
	}

	type heroRow struct {
		hero  string
		stats map[string]string
	}
	var columns []string
	seen := map[string]bool{}
	var rows []heroRow
	var shapeErr error

	payload.ForEach(func(k, v gjson.Result) bool {
		if !v.IsObject() {
			shapeErr = &ShapeError{
				Detail: fmt.Sprintf("stats for %q: expected an object, got %s", k.String(), jsonKind(v)),
			}
			return false
		}
		stats := map[string]string{}
		flatten("", v, func(key, value string) {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			stats[key] = value
		})
		rows = append(rows, heroRow{hero: k.String(), stats: stats})
		return true
	})
	if shapeErr != nil {
		return Table{}, shapeErr
	}

	header := append([]string{"hero"}, columns...)
	header = append(header, "input", "map", "region", "role", "rq", "tier")
	tags := []string{
		owrates.Slug(tuple.Input),
		owrates.Slug(tuple.Map),
		owrates.Slug(tuple.Region),
		owrates.Slug(tuple.Role),
		owrates.Slug(tuple.RQ),
		owrates.Slug(tuple.Tier),
	}

	table := Table{Header: header}
	for _, r := range rows {
		row := make([]string, 0, len(header))
		row = append(row, r.hero)
		for _, c := range columns {
			row = append(row, r.stats[c])
		}
		row = append(row, tags...)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
