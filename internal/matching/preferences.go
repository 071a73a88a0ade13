package matching

import "strings"

// notPrefix marks an exclusion token inside a list preference, e.g.
// "not Jain-Vanta" means hard-exclude that community.
const notPrefix = "not "

// noPreferenceLiteral is accepted anywhere a preference field may hold
// the explicit "don't care" value.
const noPreferenceLiteral = "no preference"

// Preference is the single normalized representation of a list-valued
// partner preference. It is either "no preference" or a list of include
// values plus a list of hard-exclude values. Normalization happens once
// here, never inside the scoring functions.
type Preference struct {
	None    bool
	Include []string
	Exclude []string
}

// ParsePreference normalizes a raw preference list. Blank entries and
// the literal "no preference" are dropped; entries prefixed "not "
// (case-insensitive) become exclusions. An empty result is
// NoPreference.
func ParsePreference(values []string) Preference {
	var p Preference
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, noPreferenceLiteral) {
			continue
		}
		if len(v) > len(notPrefix) && strings.EqualFold(v[:len(notPrefix)], notPrefix) {
			token := strings.TrimSpace(v[len(notPrefix):])
			if token != "" {
				p.Exclude = append(p.Exclude, token)
			}
			continue
		}
		p.Include = append(p.Include, v)
	}
	if len(p.Include) == 0 && len(p.Exclude) == 0 {
		p.None = true
	}
	return p
}

// ParseScalarPreference normalizes a single-valued preference field.
func ParseScalarPreference(value *string) Preference {
	if value == nil {
		return Preference{None: true}
	}
	return ParsePreference([]string{*value})
}

// IsNoPreference reports whether a scalar preference means "don't care".
func IsNoPreference(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, noPreferenceLiteral)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
