package matching

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Hidden reasons recorded on a match whose visibility is suppressed by
// an existing social relationship.
const (
	HiddenReasonRequest  = "request"
	HiddenReasonFavorite = "favorite"
)

// Match is one direction of a materialized match pair. Every accepted
// pairing produces two rows, one per direction, written together.
type Match struct {
	ID               int64          `json:"id" db:"id"`
	UserID           int64          `json:"user_id" db:"user_id"`
	CandidateID      int64          `json:"candidate_id" db:"candidate_id"`
	Score            int            `json:"score" db:"score"`
	Reasons          pq.StringArray `json:"reasons" db:"reasons"`
	IsVisible        bool           `json:"is_visible" db:"is_visible"`
	HiddenReason     *string        `json:"hidden_reason,omitempty" db:"hidden_reason"`
	LastCalculatedAt time.Time      `json:"last_calculated_at" db:"last_calculated_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// MatchPair is the logical two-direction entity persisted atomically.
// Score and reasons are computed once and shared; visibility is derived
// from a symmetric relationship, so both directions carry the same state.
type MatchPair struct {
	UserID       int64
	CandidateID  int64
	Score        int
	Reasons      []string
	IsVisible    bool
	HiddenReason *string
}

// ScoreDetail is the output of the pairwise aggregator.
type ScoreDetail struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// MaterializeResult reports what a materialization run did. Created
// counts match rows, so one accepted pair contributes 2.
type MaterializeResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// MatchPage is one page of a user's visible matches.
type MatchPage struct {
	Matches []*Match `json:"matches"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// User carries the eligibility flags and identity attributes the
// matching core reads. The account subsystem owns the rows.
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Gender              string     `json:"gender" db:"gender"`
	DateOfBirth         *time.Time `json:"date_of_birth" db:"date_of_birth"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	IsDeleted           bool       `json:"is_deleted" db:"is_deleted"`
	IsVisible           *bool      `json:"is_visible" db:"is_visible"`
	IsProfileApproved   bool       `json:"is_profile_approved" db:"is_profile_approved"`
	ProfileReviewStatus string     `json:"profile_review_status" db:"profile_review_status"`
}

// Eligible reports whether the user can take part in matching.
// A nil IsVisible counts as visible.
func (u *User) Eligible() bool {
	if u == nil {
		return false
	}
	if u.IsVisible != nil && !*u.IsVisible {
		return false
	}
	return u.IsActive && !u.IsDeleted && u.IsProfileApproved &&
		strings.EqualFold(u.ProfileReviewStatus, "approved")
}

// Age returns the user's age in whole years at the given instant,
// or 0 when the date of birth is unknown.
func (u *User) Age(now time.Time) int {
	if u.DateOfBirth == nil {
		return 0
	}
	dob := *u.DateOfBirth
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Expectation holds a user's partner preferences. Absent fields fall
// back to defaults when read through the accessor methods.
type Expectation struct {
	UserID        int64          `json:"user_id" db:"user_id"`
	AgeFrom       *int           `json:"age_from" db:"age_from"`
	AgeTo         *int           `json:"age_to" db:"age_to"`
	Communities   pq.StringArray `json:"communities" db:"communities"`
	Professions   pq.StringArray `json:"professions" db:"professions"`
	Education     *string        `json:"education" db:"education"`
	Diet          *string        `json:"diet" db:"diet"`
	Alcohol       *string        `json:"alcohol" db:"alcohol"`
	Country       *string        `json:"country" db:"country"`
	State         *string        `json:"state" db:"state"`
	MaritalStatus *string        `json:"marital_status" db:"marital_status"`
}

// Defaults applied when a user never filled in an expectation field.
const (
	DefaultAgeFrom = 21
	DefaultAgeTo   = 36
	DefaultAlcohol = "occasionally"
)

// AgeRange is the seeker's preferred candidate age window.
type AgeRange struct {
	From int
	To   int
}

// PreferredAgeRange returns the age window with defaults applied.
func (e *Expectation) PreferredAgeRange() AgeRange {
	r := AgeRange{From: DefaultAgeFrom, To: DefaultAgeTo}
	if e == nil {
		return r
	}
	if e.AgeFrom != nil && *e.AgeFrom > 0 {
		r.From = *e.AgeFrom
	}
	if e.AgeTo != nil && *e.AgeTo > 0 {
		r.To = *e.AgeTo
	}
	if r.To < r.From {
		r.From, r.To = r.To, r.From
	}
	return r
}

// PreferredAlcohol returns the alcohol preference with the default
// applied.
func (e *Expectation) PreferredAlcohol() string {
	if e == nil || e.Alcohol == nil || strings.TrimSpace(*e.Alcohol) == "" {
		return DefaultAlcohol
	}
	return *e.Alcohol
}

// PersonalRecord holds a candidate's personal attributes read by the
// scorer.
type PersonalRecord struct {
	UserID        int64          `json:"user_id" db:"user_id"`
	Religion      *string        `json:"religion" db:"religion"`
	Communities   pq.StringArray `json:"communities" db:"communities"`
	Country       *string        `json:"country" db:"country"`
	State         *string        `json:"state" db:"state"`
	MaritalStatus *string        `json:"marital_status" db:"marital_status"`
}

// EducationRecord holds a candidate's highest education.
type EducationRecord struct {
	UserID           int64   `json:"user_id" db:"user_id"`
	HighestEducation *string `json:"highest_education" db:"highest_education"`
}

// ProfessionRecord holds a candidate's occupation.
type ProfessionRecord struct {
	UserID     int64   `json:"user_id" db:"user_id"`
	Occupation *string `json:"occupation" db:"occupation"`
}

// HealthRecord holds a candidate's lifestyle attributes.
type HealthRecord struct {
	UserID  int64   `json:"user_id" db:"user_id"`
	Diet    *string `json:"diet" db:"diet"`
	Alcohol *string `json:"alcohol" db:"alcohol"`
}

// MatchProfile bundles everything the aggregator needs about one user.
// Any record other than User may be nil when the user never filled in
// that section.
type MatchProfile struct {
	User        *User
	Expectation *Expectation
	Personal    *PersonalRecord
	Education   *EducationRecord
	Profession  *ProfessionRecord
	Health      *HealthRecord
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func oppositeGender(gender string) string {
	if strings.EqualFold(gender, "male") {
		return "female"
	}
	return "male"
}
