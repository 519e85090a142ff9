// Package features translates survey payloads into classifier feature vectors.
//
// Every model is described by a Spec: an ordered list of rules mapping a
// payload field onto a schema feature, plus an optional one-hot block. A single
// Build function interprets any Spec, so the four models share one code path.
// The feature schema itself comes from the loaded classifier; a Spec only
// knows how to produce values, never which features the model requires.
package features

import (
	"strings"

	"github.com/okian/enhealth/internal/domain/model"
)

// Rule maps one payload field onto one schema feature.
type Rule struct {
	Field   string
	Feature string
	Parse   ParseFunc
}

// OneHot describes a block of mutually exclusive 0/1 features. Options maps a
// normalised token to the feature name suffix following Prefix.
type OneHot struct {
	Field     string
	Prefix    string
	Options   map[string]string
	Normalize Normalizer
}

// Spec is the declarative description of a model's payload.
type Spec struct {
	Name   string
	Rules  []Rule
	OneHot *OneHot
}

// Fields lists the payload keys the spec reads, in evaluation order.
func (s Spec) Fields() []string {
	out := make([]string, 0, len(s.Rules)+1)
	if s.OneHot != nil {
		out = append(out, s.OneHot.Field)
	}
	for _, r := range s.Rules {
		out = append(out, r.Field)
	}
	return out
}

// Uncovered returns the schema features no rule or one-hot block produces.
// Build would reject every payload for such a schema.
func (s Spec) Uncovered(schema []string) []string {
	produced := make(map[string]struct{}, len(s.Rules))
	for _, r := range s.Rules {
		produced[r.Feature] = struct{}{}
	}
	var out []string
	for _, name := range schema {
		if _, ok := produced[name]; ok {
			continue
		}
		if s.OneHot != nil && strings.HasPrefix(name, s.OneHot.Prefix) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Build parses payload according to spec and returns a vector ordered by schema.
// The one-hot field is checked first, then the rules in order, stopping at the
// first invalid field. Values for features outside the schema are dropped;
// schema features left without a value are reported together.
func Build(spec Spec, schema []string, payload map[string]any) (model.Vector, error) {
	values := make(map[string]float64, len(schema))

	if oh := spec.OneHot; oh != nil {
		feature, err := oh.resolve(payload[oh.Field])
		if err != nil {
			return model.Vector{}, err
		}
		for _, name := range schema {
			if strings.HasPrefix(name, oh.Prefix) {
				values[name] = 0
			}
		}
		values[feature] = 1
	}

	for _, r := range spec.Rules {
		v, err := r.Parse(payload[r.Field], r.Field)
		if err != nil {
			return model.Vector{}, err
		}
		values[r.Feature] = v
	}

	var missing []string
	out := model.Vector{Names: schema, Values: make([]float64, len(schema))}
	for i, name := range schema {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Values[i] = v
	}
	if len(missing) > 0 {
		return model.Vector{}, &ValidationError{Message: "Missing values for: " + strings.Join(missing, ", ")}
	}
	return out, nil
}

func (oh *OneHot) resolve(raw any) (string, error) {
	if raw == nil {
		return "", required(oh.Field)
	}
	s := stringify(raw)
	normalize := oh.Normalize
	if normalize == nil {
		normalize = Lower
	}
	suffix, ok := oh.Options[normalize(s)]
	if !ok {
		return "", invalid(oh.Field, "%s has an unknown option: %s", oh.Field, s)
	}
	return oh.Prefix + suffix, nil
}
