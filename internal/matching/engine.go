package matching

import (
	"math"
	"time"
)

// Fixed sub-score weights. They sum to 100, so the weighted sum divided
// by 100 stays on the 0-100 scale.
const (
	weightAge        = 20
	weightCommunity  = 20
	weightLocation   = 15
	weightMarital    = 15
	weightEducation  = 10
	weightAlcohol    = 10
	weightProfession = 10
)

// Reason strings appended when a sub-score passes.
const (
	reasonAge        = "Age within preferred range"
	reasonCommunity  = "Community preference matched"
	reasonMarital    = "Marital status preference matched"
	reasonEducation  = "Education preference matched"
	reasonAlcohol    = "Lifestyle preference matched"
	reasonProfession = "Profession preference matched"
)

// ScoreEngine computes the weighted compatibility score for one seeker
// and candidate pairing.
type ScoreEngine interface {
	CalculateMatchScore(seeker, candidate *MatchProfile) *ScoreDetail
}

type scoreEngine struct {
	now func() time.Time
}

// NewScoreEngine returns the production score engine.
func NewScoreEngine() ScoreEngine {
	return &scoreEngine{now: time.Now}
}

// CalculateMatchScore computes each sub-score independently, applies
// the fixed weights, and collects human-readable reasons for every
// passing factor. The result is always in [1,100]; the computation is
// deterministic for identical inputs.
func (e *scoreEngine) CalculateMatchScore(seeker, candidate *MatchProfile) *ScoreDetail {
	if seeker == nil || seeker.User == nil || candidate == nil || candidate.User == nil {
		return nil
	}

	exp := seeker.Expectation
	reasons := newReasonSet()

	ageScore := scoreAge(exp.PreferredAgeRange(), candidate.User.Age(e.now()))
	if ageScore >= scoreFull {
		reasons.add(reasonAge)
	}

	communityScore := scoreList(communityPreference(exp), candidateCommunities(candidate))
	if communityScore >= scoreFull {
		reasons.add(reasonCommunity)
	}

	locationScore, locationReasons := scoreLocation(
		expectationCountry(exp), expectationState(exp),
		candidateCountry(candidate), candidateState(candidate),
	)
	for _, r := range locationReasons {
		reasons.add(r)
	}

	maritalScore := scoreMarital(expectationMarital(exp), candidateMarital(candidate))
	if maritalScore >= scoreFull {
		reasons.add(reasonMarital)
	}

	educationScore := scoreEducation(educationPreference(exp), candidateEducation(candidate))
	if educationScore >= scoreEducationPartial {
		reasons.add(reasonEducation)
	}

	alcoholScore := scoreAlcohol(expectationAlcohol(exp), candidateAlcohol(candidate))
	if alcoholScore >= scoreFull {
		reasons.add(reasonAlcohol)
	}

	professionScore := scoreList(professionPreference(exp), candidateProfessions(candidate))
	if professionScore >= scoreFull {
		reasons.add(reasonProfession)
	}

	weighted := ageScore*weightAge +
		communityScore*weightCommunity +
		locationScore*weightLocation +
		maritalScore*weightMarital +
		educationScore*weightEducation +
		alcoholScore*weightAlcohol +
		professionScore*weightProfession

	total := int(math.Round(float64(weighted) / 100.0))
	if total < 1 {
		total = 1
	}
	if total > 100 {
		total = 100
	}

	detail := &ScoreDetail{Score: total, Reasons: reasons.list()}
	RecordMatchScore(total)
	return detail
}

// reasonSet deduplicates reasons while keeping insertion order so the
// output is deterministic.
type reasonSet struct {
	seen  map[string]struct{}
	order []string
}

func newReasonSet() *reasonSet {
	return &reasonSet{seen: make(map[string]struct{})}
}

func (s *reasonSet) add(reason string) {
	if _, ok := s.seen[reason]; ok {
		return
	}
	s.seen[reason] = struct{}{}
	s.order = append(s.order, reason)
}

func (s *reasonSet) list() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}

// Accessors below normalize the loosely-filled expectation and record
// fields once, so the scoring primitives only ever see clean inputs.

func communityPreference(e *Expectation) Preference {
	if e == nil {
		return Preference{None: true}
	}
	return ParsePreference(e.Communities)
}

func professionPreference(e *Expectation) Preference {
	if e == nil {
		return Preference{None: true}
	}
	return ParsePreference(e.Professions)
}

func educationPreference(e *Expectation) Preference {
	if e == nil {
		return Preference{None: true}
	}
	return ParseScalarPreference(e.Education)
}

func dietPreference(e *Expectation) Preference {
	if e == nil {
		return Preference{None: true}
	}
	return ParseScalarPreference(e.Diet)
}

func expectationAlcohol(e *Expectation) string { return e.PreferredAlcohol() }

func expectationCountry(e *Expectation) string {
	if e == nil {
		return ""
	}
	return derefString(e.Country)
}

func expectationState(e *Expectation) string {
	if e == nil {
		return ""
	}
	return derefString(e.State)
}

func expectationMarital(e *Expectation) string {
	if e == nil {
		return ""
	}
	return derefString(e.MaritalStatus)
}

func candidateCommunities(p *MatchProfile) []string {
	if p.Personal == nil {
		return nil
	}
	return p.Personal.Communities
}

func candidateCountry(p *MatchProfile) string {
	if p.Personal == nil {
		return ""
	}
	return derefString(p.Personal.Country)
}

func candidateState(p *MatchProfile) string {
	if p.Personal == nil {
		return ""
	}
	return derefString(p.Personal.State)
}

func candidateMarital(p *MatchProfile) string {
	if p.Personal == nil {
		return ""
	}
	return derefString(p.Personal.MaritalStatus)
}

func candidateEducation(p *MatchProfile) string {
	if p.Education == nil {
		return ""
	}
	return derefString(p.Education.HighestEducation)
}

func candidateProfessions(p *MatchProfile) []string {
	if p.Profession == nil {
		return nil
	}
	if occ := derefString(p.Profession.Occupation); occ != "" {
		return []string{occ}
	}
	return nil
}

func candidateAlcohol(p *MatchProfile) string {
	if p.Health == nil {
		return ""
	}
	return derefString(p.Health.Alcohol)
}

func candidateDiet(p *MatchProfile) string {
	if p.Health == nil {
		return ""
	}
	return derefString(p.Health.Diet)
}
