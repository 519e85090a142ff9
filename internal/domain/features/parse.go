package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseFunc turns the raw payload value of field into a numeric feature value.
// A nil raw value means the key was missing or null.
type ParseFunc func(raw any, field string) (float64, error)

// Table is a static categorical encoding keyed by normalised token.
type Table map[string]float64

// Normalizer canonicalises a categorical token before table lookup.
type Normalizer func(string) string

var (
	yesTokens = map[string]struct{}{"yes": {}, "true": {}, "1": {}, "y": {}}
	noTokens  = map[string]struct{}{"no": {}, "false": {}, "0": {}, "n": {}}
)

// Lower trims and lowercases.
func Lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Compact lowercases and drops every rune that is not a letter or digit,
// so "Very High" and "very-high" both become "veryhigh".
func Compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Snake lowercases and joins whitespace-separated words with underscores.
func Snake(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// ParseYesNo accepts yes/true/1/y as 1 and no/false/0/n as 0.
func ParseYesNo(raw any, field string) (float64, error) {
	if raw == nil {
		return 0, required(field)
	}
	token := Lower(stringify(raw))
	if _, ok := yesTokens[token]; ok {
		return 1, nil
	}
	if _, ok := noTokens[token]; ok {
		return 0, nil
	}
	return 0, invalid(field, "%s must be yes/no", field)
}

// ParseGender encodes male as 1 and female as 0. The model was trained on a
// binary column; other values are rejected rather than guessed.
func ParseGender(raw any) (float64, error) {
	if raw == nil {
		return 0, required("gender")
	}
	switch Lower(stringify(raw)) {
	case "male":
		return 1, nil
	case "female":
		return 0, nil
	}
	return 0, invalid("gender", "gender must be male or female")
}

// ParseNumber accepts JSON numbers, numeric strings and booleans. NaN and
// infinities are rejected.
func ParseNumber(raw any, field string) (float64, error) {
	var (
		f  float64
		ok = true
	)
	switch v := raw.(type) {
	case nil:
		return 0, required(field)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		f, ok = n, err == nil
	case bool:
		if v {
			f = 1
		}
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		f, ok = n, err == nil
	default:
		ok = false
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, "%s must be a valid number", field)
	}
	return f, nil
}

// ParseCategory normalises raw and looks it up in table.
func ParseCategory(raw any, table Table, normalize Normalizer, field string) (float64, error) {
	if raw == nil {
		return 0, required(field)
	}
	s := stringify(raw)
	if normalize == nil {
		normalize = Lower
	}
	code, ok := table[normalize(s)]
	if !ok {
		return 0, invalid(field, "%s has an unknown option: %s", field, s)
	}
	return code, nil
}

// Gender adapts ParseGender to a ParseFunc.
func Gender(raw any, _ string) (float64, error) { return ParseGender(raw) }

// Category binds a table and normaliser into a ParseFunc.
func Category(table Table, normalize Normalizer) ParseFunc {
	return func(raw any, field string) (float64, error) {
		return ParseCategory(raw, table, normalize, field)
	}
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
