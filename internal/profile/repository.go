package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the profile store interface.
type Repository interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetExpectation(ctx context.Context, userID int64) (*Expectation, error)

	UpsertExpectation(ctx context.Context, userID int64, req *UpdateExpectationRequest) error
	UpsertPersonal(ctx context.Context, userID int64, req *UpdatePersonalRequest) error
	UpsertEducation(ctx context.Context, userID int64, req *UpdateEducationRequest) error
	UpsertProfession(ctx context.Context, userID int64, req *UpdateProfessionRequest) error
	UpsertHealth(ctx context.Context, userID int64, req *UpdateHealthRequest) error

	SetReviewStatus(ctx context.Context, userID int64, status string, approved bool) error

	BlockUser(ctx context.Context, userID, blockedID int64) error
	UnblockUser(ctx context.Context, userID, blockedID int64) error
	GetBlockedUsers(ctx context.Context, userID int64) ([]int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	query := `
        SELECT id, gender, date_of_birth, is_active, is_deleted, is_visible,
               is_profile_approved, profile_review_status, profile_approved_at,
               created_at, updated_at
        FROM users
        WHERE id = $1
    `

	err := r.db.GetContext(ctx, &user, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *postgresRepository) GetExpectation(ctx context.Context, userID int64) (*Expectation, error) {
	var expectation Expectation
	query := `
        SELECT user_id, age_from, age_to, communities, professions, education,
               diet, alcohol, country, state, marital_status, updated_at
        FROM expectations
        WHERE user_id = $1
    `

	err := r.db.GetContext(ctx, &expectation, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrExpectationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expectation: %w", err)
	}

	return &expectation, nil
}

// UpsertExpectation inserts the row if absent, then applies only the
// fields present in the request.
func (r *postgresRepository) UpsertExpectation(ctx context.Context, userID int64, req *UpdateExpectationRequest) error {
	insert := `
        INSERT INTO expectations (user_id)
        VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING
    `
	if _, err := r.db.ExecContext(ctx, insert, userID); err != nil {
		return fmt.Errorf("failed to ensure expectation row: %w", err)
	}

	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{userID}
	argCount := 2

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.AgeFrom != nil {
		addClause("age_from", *req.AgeFrom)
	}
	if req.AgeTo != nil {
		addClause("age_to", *req.AgeTo)
	}
	if req.Communities != nil {
		addClause("communities", pq.Array(req.Communities))
	}
	if req.Professions != nil {
		addClause("professions", pq.Array(req.Professions))
	}
	if req.Education != nil {
		addClause("education", *req.Education)
	}
	if req.Diet != nil {
		addClause("diet", *req.Diet)
	}
	if req.Alcohol != nil {
		addClause("alcohol", *req.Alcohol)
	}
	if req.Country != nil {
		addClause("country", *req.Country)
	}
	if req.State != nil {
		addClause("state", *req.State)
	}
	if req.MaritalStatus != nil {
		addClause("marital_status", *req.MaritalStatus)
	}

	query := fmt.Sprintf(
		"UPDATE expectations SET %s WHERE user_id = $1",
		strings.Join(setClauses, ", "),
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update expectation: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertPersonal(ctx context.Context, userID int64, req *UpdatePersonalRequest) error {
	query := `
        INSERT INTO personal_records (user_id, religion, communities, country, state, marital_status)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id)
        DO UPDATE SET
            religion = COALESCE(EXCLUDED.religion, personal_records.religion),
            communities = COALESCE(EXCLUDED.communities, personal_records.communities),
            country = COALESCE(EXCLUDED.country, personal_records.country),
            state = COALESCE(EXCLUDED.state, personal_records.state),
            marital_status = COALESCE(EXCLUDED.marital_status, personal_records.marital_status)
    `

	var communities interface{}
	if req.Communities != nil {
		communities = pq.Array(req.Communities)
	}

	_, err := r.db.ExecContext(
		ctx, query,
		userID, req.Religion, communities, req.Country, req.State, req.MaritalStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert personal record: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertEducation(ctx context.Context, userID int64, req *UpdateEducationRequest) error {
	query := `
        INSERT INTO education_records (user_id, highest_education)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET highest_education = COALESCE(EXCLUDED.highest_education, education_records.highest_education)
    `

	if _, err := r.db.ExecContext(ctx, query, userID, req.HighestEducation); err != nil {
		return fmt.Errorf("failed to upsert education record: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertProfession(ctx context.Context, userID int64, req *UpdateProfessionRequest) error {
	query := `
        INSERT INTO profession_records (user_id, occupation)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET occupation = COALESCE(EXCLUDED.occupation, profession_records.occupation)
    `

	if _, err := r.db.ExecContext(ctx, query, userID, req.Occupation); err != nil {
		return fmt.Errorf("failed to upsert profession record: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertHealth(ctx context.Context, userID int64, req *UpdateHealthRequest) error {
	query := `
        INSERT INTO health_records (user_id, diet, alcohol)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id)
        DO UPDATE SET
            diet = COALESCE(EXCLUDED.diet, health_records.diet),
            alcohol = COALESCE(EXCLUDED.alcohol, health_records.alcohol)
    `

	if _, err := r.db.ExecContext(ctx, query, userID, req.Diet, req.Alcohol); err != nil {
		return fmt.Errorf("failed to upsert health record: %w", err)
	}

	return nil
}

func (r *postgresRepository) SetReviewStatus(ctx context.Context, userID int64, status string, approved bool) error {
	query := `
        UPDATE users
        SET profile_review_status = $2,
            is_profile_approved = $3,
            profile_approved_at = CASE WHEN $3 THEN CURRENT_TIMESTAMP ELSE profile_approved_at END,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, userID, status, approved)
	if err != nil {
		return fmt.Errorf("failed to set review status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *postgresRepository) BlockUser(ctx context.Context, userID, blockedID int64) error {
	query := `
        INSERT INTO blocked_users (user_id, blocked_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, blocked_id) DO NOTHING
    `

	if _, err := r.db.ExecContext(ctx, query, userID, blockedID); err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}

	return nil
}

func (r *postgresRepository) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	query := `DELETE FROM blocked_users WHERE user_id = $1 AND blocked_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, blockedID); err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetBlockedUsers(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT blocked_id FROM blocked_users WHERE user_id = $1 ORDER BY blocked_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get blocked users: %w", err)
	}

	return ids, nil
}
