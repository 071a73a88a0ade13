package matching

import "strings"

// Sub-scores are 0-100. A near miss scores 1, never 0: a single weak
// attribute must not eliminate a candidate outright. The only true
// zeros are "seeker is indifferent and the candidate left the field
// blank".
const (
	scoreFull     = 100
	scoreNearMiss = 1
	scoreEmpty    = 0

	// Partial credit for a present-but-unmatched education.
	scoreEducationPartial = 70

	// Linear decay per year outside the preferred age window.
	agePenaltyPerYear = 10
)

// scoreAge scores a candidate's age against the seeker's window.
// Inside the window scores full; outside, 10 points per year of
// distance from the nearest bound, floored at 1. An unknown age is a
// missing attribute.
func scoreAge(pref AgeRange, age int) int {
	if age <= 0 {
		return scoreNearMiss
	}
	if age >= pref.From && age <= pref.To {
		return scoreFull
	}
	distance := pref.From - age
	if age > pref.To {
		distance = age - pref.To
	}
	score := scoreFull - agePenaltyPerYear*distance
	if score < scoreNearMiss {
		return scoreNearMiss
	}
	return score
}

// scoreList applies the shared policy for list-valued preferences
// (community, profession): exclusion always wins, an indifferent seeker
// rewards any filled-in value, a missing candidate value near-misses.
func scoreList(pref Preference, values []string) int {
	values = nonEmpty(values)
	if pref.None {
		if len(values) > 0 {
			return scoreFull
		}
		return scoreEmpty
	}
	if len(values) == 0 {
		return scoreNearMiss
	}
	for _, v := range values {
		if containsFold(pref.Exclude, v) {
			return scoreNearMiss
		}
	}
	if len(pref.Include) == 0 {
		return scoreFull
	}
	for _, v := range values {
		if containsFold(pref.Include, v) {
			return scoreFull
		}
	}
	return scoreNearMiss
}

// Diet categories used for the soft fallback when no literal value
// matches. A flexible eater on either side is compatible with anyone.
const (
	dietVegetarian = "vegetarian"
	dietNonVeg     = "non-vegetarian"
	dietFlexible   = "flexible"
	dietUnknown    = ""
)

func dietCategory(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return dietUnknown
	case strings.Contains(v, "flex") || strings.Contains(v, "occasionally"):
		return dietFlexible
	case strings.Contains(v, "non-veg") || strings.Contains(v, "non veg") || strings.HasPrefix(v, "non"):
		return dietNonVeg
	case strings.Contains(v, "veg") || strings.Contains(v, "jain") || strings.Contains(v, "vegan"):
		return dietVegetarian
	default:
		return dietUnknown
	}
}

// scoreDiet follows the list policy, then falls back to category-level
// compatibility instead of a flat near miss.
func scoreDiet(pref Preference, diet string) int {
	diet = strings.TrimSpace(diet)
	if pref.None {
		if diet != "" {
			return scoreFull
		}
		return scoreEmpty
	}
	if diet == "" {
		return scoreNearMiss
	}
	if containsFold(pref.Exclude, diet) {
		return scoreNearMiss
	}
	if len(pref.Include) == 0 || containsFold(pref.Include, diet) {
		return scoreFull
	}
	candCat := dietCategory(diet)
	if candCat == dietFlexible {
		return scoreFull
	}
	for _, p := range pref.Include {
		prefCat := dietCategory(p)
		if prefCat == dietFlexible {
			return scoreFull
		}
		if prefCat != dietUnknown && prefCat == candCat {
			return scoreFull
		}
	}
	return scoreNearMiss
}

// scoreEducation follows the list policy but gives partial credit for a
// present, valid education that simply does not match the preference.
func scoreEducation(pref Preference, education string) int {
	education = strings.TrimSpace(education)
	if pref.None {
		if education != "" {
			return scoreFull
		}
		return scoreEmpty
	}
	if education == "" {
		return scoreNearMiss
	}
	if containsFold(pref.Exclude, education) {
		return scoreNearMiss
	}
	if len(pref.Include) == 0 || containsFold(pref.Include, education) {
		return scoreFull
	}
	return scoreEducationPartial
}

// scoreAlcohol scores the seeker's alcohol preference against the
// candidate's declared status. "occasionally" is fully permissive.
func scoreAlcohol(pref, status string) int {
	status = strings.TrimSpace(status)
	if IsNoPreference(pref) {
		if status != "" {
			return scoreFull
		}
		return scoreEmpty
	}
	if strings.EqualFold(strings.TrimSpace(pref), DefaultAlcohol) {
		return scoreFull
	}
	if strings.EqualFold(strings.TrimSpace(pref), status) {
		return scoreFull
	}
	return scoreNearMiss
}

// scoreMarital is exact string equality only; "no preference" always
// passes.
func scoreMarital(pref, status string) int {
	if IsNoPreference(pref) {
		return scoreFull
	}
	if strings.EqualFold(strings.TrimSpace(pref), strings.TrimSpace(status)) {
		return scoreFull
	}
	return scoreNearMiss
}

// Location reason strings surfaced by the aggregator.
const (
	reasonSameCountry = "Same country"
	reasonSameState   = "Same state"
)

// scoreLocation evaluates country and state as two independent checks
// on the single location weight: either match sets the score to full,
// and both reasons can appear together.
func scoreLocation(prefCountry, prefState, country, state string) (int, []string) {
	var reasons []string
	score := scoreNearMiss
	if IsNoPreference(prefCountry) && IsNoPreference(prefState) {
		if strings.TrimSpace(country) != "" || strings.TrimSpace(state) != "" {
			return scoreFull, nil
		}
		return scoreEmpty, nil
	}
	if !IsNoPreference(prefCountry) && strings.EqualFold(strings.TrimSpace(prefCountry), strings.TrimSpace(country)) && strings.TrimSpace(country) != "" {
		score = scoreFull
		reasons = append(reasons, reasonSameCountry)
	}
	if !IsNoPreference(prefState) && strings.EqualFold(strings.TrimSpace(prefState), strings.TrimSpace(state)) && strings.TrimSpace(state) != "" {
		score = scoreFull
		reasons = append(reasons, reasonSameState)
	}
	return score, reasons
}
