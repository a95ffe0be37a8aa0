package odoo

import (
	"time"
)

// odooTimeLayout is the naive UTC format the external API uses for
// datetime fields.
const odooTimeLayout = "2006-01-02 15:04:05"

// Record is one decoded row from an Odoo read or search_read call. Odoo
// encodes absent values as boolean false, so every accessor tolerates
// type mismatches.
type Record map[string]interface{}

// Str returns the string value of a field, or "" when absent or false.
func (r Record) Str(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer value of a field, or 0.
func (r Record) Int(field string) int64 {
	if v, ok := toInt64(r[field]); ok {
		return v
	}
	return 0
}

// Float returns the float value of a field, or 0.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns the boolean value of a field.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Time parses a datetime field. The zero time is returned for absent or
// malformed values.
func (r Record) Time(field string) time.Time {
	s := r.Str(field)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(odooTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Many2One decodes a relational field, which arrives as [id, display_name]
// or false when unset.
func (r Record) Many2One(field string) (int64, string) {
	pair, ok := r[field].([]interface{})
	if !ok || len(pair) < 2 {
		return 0, ""
	}
	id, _ := toInt64(pair[0])
	name, _ := pair[1].(string)
	return id, name
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
