package profile

import (
	"time"

	"github.com/lib/pq"
)

// Profile review states.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// User is the account-owned identity and eligibility record.
type User struct {
	ID                  int64      `json:"id" db:"id"`
	Gender              string     `json:"gender" db:"gender"`
	DateOfBirth         *time.Time `json:"date_of_birth" db:"date_of_birth"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	IsDeleted           bool       `json:"is_deleted" db:"is_deleted"`
	IsVisible           *bool      `json:"is_visible" db:"is_visible"`
	IsProfileApproved   bool       `json:"is_profile_approved" db:"is_profile_approved"`
	ProfileReviewStatus string     `json:"profile_review_status" db:"profile_review_status"`
	ProfileApprovedAt   *time.Time `json:"profile_approved_at,omitempty" db:"profile_approved_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateExpectationRequest carries a partial expectation update; nil
// fields are left untouched.
type UpdateExpectationRequest struct {
	AgeFrom       *int     `json:"age_from"`
	AgeTo         *int     `json:"age_to"`
	Communities   []string `json:"communities"`
	Professions   []string `json:"professions"`
	Education     *string  `json:"education"`
	Diet          *string  `json:"diet"`
	Alcohol       *string  `json:"alcohol"`
	Country       *string  `json:"country"`
	State         *string  `json:"state"`
	MaritalStatus *string  `json:"marital_status"`
}

// Expectation mirrors the stored partner-preference row.
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
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// UpdatePersonalRequest carries a partial personal-record update.
type UpdatePersonalRequest struct {
	Religion      *string  `json:"religion"`
	Communities   []string `json:"communities"`
	Country       *string  `json:"country"`
	State         *string  `json:"state"`
	MaritalStatus *string  `json:"marital_status"`
}

// UpdateEducationRequest carries an education-record update.
type UpdateEducationRequest struct {
	HighestEducation *string `json:"highest_education"`
}

// UpdateProfessionRequest carries a profession-record update.
type UpdateProfessionRequest struct {
	Occupation *string `json:"occupation"`
}

// UpdateHealthRequest carries a health-record update.
type UpdateHealthRequest struct {
	Diet    *string `json:"diet"`
	Alcohol *string `json:"alcohol"`
}
