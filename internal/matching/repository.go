package matching

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// Profiles for scoring
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetMatchProfile(ctx context.Context, userID int64) (*MatchProfile, error)
	FindEligibleCandidates(ctx context.Context, userID int64, gender string) ([]*User, error)

	// Match store
	CountVisibleMatches(ctx context.Context, userID int64) (int, error)
	UpsertMatchPair(ctx context.Context, pair *MatchPair) error
	SetPairVisibility(ctx context.Context, userID, candidateID int64, visible bool, hiddenReason *string) (int64, error)
	DeleteUserMatches(ctx context.Context, userID int64) error
	GetUserMatches(ctx context.Context, userID int64, page, limit int) ([]*Match, int, error)

	// Social relationships consumed by visibility decisions
	HasActiveRequest(ctx context.Context, userID, candidateID int64) (bool, error)
	HasFavorite(ctx context.Context, userID, candidateID int64) (bool, error)

	// Scheduler feeds
	ListRecentlyApproved(ctx context.Context, since time.Time) ([]int64, error)
	ListStaleMatchUsers(ctx context.Context, olderThan time.Time) ([]int64, error)
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
        SELECT id, gender, date_of_birth, is_active, is_deleted,
               is_visible, is_profile_approved, profile_review_status
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

func (r *postgresRepository) GetMatchProfile(ctx context.Context, userID int64) (*MatchProfile, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &MatchProfile{User: user}

	var expectation Expectation
	err = r.db.GetContext(ctx, &expectation, `
        SELECT user_id, age_from, age_to, communities, professions,
               education, diet, alcohol, country, state, marital_status
        FROM expectations WHERE user_id = $1
    `, userID)
	if err == nil {
		profile.Expectation = &expectation
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get expectation: %w", err)
	}

	var personal PersonalRecord
	err = r.db.GetContext(ctx, &personal, `
        SELECT user_id, religion, communities, country, state, marital_status
        FROM personal_records WHERE user_id = $1
    `, userID)
	if err == nil {
		profile.Personal = &personal
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get personal record: %w", err)
	}

	var education EducationRecord
	err = r.db.GetContext(ctx, &education, `
        SELECT user_id, highest_education
        FROM education_records WHERE user_id = $1
    `, userID)
	if err == nil {
		profile.Education = &education
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get education record: %w", err)
	}

	var profession ProfessionRecord
	err = r.db.GetContext(ctx, &profession, `
        SELECT user_id, occupation
        FROM profession_records WHERE user_id = $1
    `, userID)
	if err == nil {
		profile.Profession = &profession
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get profession record: %w", err)
	}

	var health HealthRecord
	err = r.db.GetContext(ctx, &health, `
        SELECT user_id, diet, alcohol
        FROM health_records WHERE user_id = $1
    `, userID)
	if err == nil {
		profile.Health = &health
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get health record: %w", err)
	}

	return profile, nil
}

func (r *postgresRepository) FindEligibleCandidates(ctx context.Context, userID int64, gender string) ([]*User, error) {
	query := `
        SELECT u.id, u.gender, u.date_of_birth, u.is_active, u.is_deleted,
               u.is_visible, u.is_profile_approved, u.profile_review_status
        FROM users u
        WHERE u.id != $1
          AND LOWER(u.gender) = LOWER($2)
          AND u.is_active = TRUE
          AND u.is_deleted = FALSE
          AND (u.is_visible IS NULL OR u.is_visible = TRUE)
          AND u.is_profile_approved = TRUE
          AND LOWER(u.profile_review_status) = 'approved'
          AND NOT EXISTS (
              SELECT 1 FROM blocked_users b
              WHERE (b.user_id = $1 AND b.blocked_id = u.id)
                 OR (b.user_id = u.id AND b.blocked_id = $1)
          )
        ORDER BY u.id
    `

	var candidates []*User
	err := r.db.SelectContext(ctx, &candidates, query, userID, gender)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	return candidates, nil
}

func (r *postgresRepository) CountVisibleMatches(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE user_id = $1 AND is_visible = TRUE`

	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count visible matches: %w", err)
	}

	return count, nil
}

// UpsertMatchPair writes both directions of a pair in one statement so
// the two rows can never be created or refreshed separately.
func (r *postgresRepository) UpsertMatchPair(ctx context.Context, pair *MatchPair) error {
	query := `
        INSERT INTO matches (
            user_id, candidate_id, score, reasons, is_visible, hidden_reason, last_calculated_at
        ) VALUES
            ($1, $2, $3, $4, $5, $6, NOW()),
            ($2, $1, $3, $4, $5, $6, NOW())
        ON CONFLICT (user_id, candidate_id)
        DO UPDATE SET
            score = EXCLUDED.score,
            reasons = EXCLUDED.reasons,
            is_visible = EXCLUDED.is_visible,
            hidden_reason = EXCLUDED.hidden_reason,
            last_calculated_at = NOW()
    `

	_, err := r.db.ExecContext(
		ctx, query,
		pair.UserID, pair.CandidateID, pair.Score,
		pq.Array(pair.Reasons), pair.IsVisible, pair.HiddenReason,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match pair: %w", err)
	}

	return nil
}

// SetPairVisibility updates both directions in one statement and
// returns the number of rows touched; zero means the pair was never
// materialized.
func (r *postgresRepository) SetPairVisibility(ctx context.Context, userID, candidateID int64, visible bool, hiddenReason *string) (int64, error) {
	query := `
        UPDATE matches
        SET is_visible = $3, hidden_reason = $4
        WHERE (user_id = $1 AND candidate_id = $2)
           OR (user_id = $2 AND candidate_id = $1)
    `

	result, err := r.db.ExecContext(ctx, query, userID, candidateID, visible, hiddenReason)
	if err != nil {
		return 0, fmt.Errorf("failed to update pair visibility: %w", err)
	}

	return result.RowsAffected()
}

func (r *postgresRepository) DeleteUserMatches(ctx context.Context, userID int64) error {
	query := `DELETE FROM matches WHERE user_id = $1 OR candidate_id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user matches: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64, page, limit int) ([]*Match, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM matches WHERE user_id = $1 AND is_visible = TRUE`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count matches: %w", err)
	}

	offset := (page - 1) * limit
	query := `
        SELECT id, user_id, candidate_id, score, reasons,
               is_visible, hidden_reason, last_calculated_at, created_at
        FROM matches
        WHERE user_id = $1 AND is_visible = TRUE
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `

	var matches []*Match
	if err := r.db.SelectContext(ctx, &matches, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get matches: %w", err)
	}

	return matches, total, nil
}

func (r *postgresRepository) HasActiveRequest(ctx context.Context, userID, candidateID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM connection_requests
            WHERE ((sender_id = $1 AND receiver_id = $2)
                OR (sender_id = $2 AND receiver_id = $1))
              AND status = 'pending'
        )
    `

	err := r.db.GetContext(ctx, &exists, query, userID, candidateID)
	return exists, err
}

func (r *postgresRepository) HasFavorite(ctx context.Context, userID, candidateID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM favorites
            WHERE (user_id = $1 AND favorite_id = $2)
               OR (user_id = $2 AND favorite_id = $1)
        )
    `

	err := r.db.GetContext(ctx, &exists, query, userID, candidateID)
	return exists, err
}

func (r *postgresRepository) ListRecentlyApproved(ctx context.Context, since time.Time) ([]int64, error) {
	query := `
        SELECT id FROM users
        WHERE is_active = TRUE
          AND is_deleted = FALSE
          AND is_profile_approved = TRUE
          AND LOWER(profile_review_status) = 'approved'
          AND profile_approved_at >= $1
        ORDER BY profile_approved_at
    `

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, since); err != nil {
		return nil, fmt.Errorf("failed to list recently approved users: %w", err)
	}

	return ids, nil
}

func (r *postgresRepository) ListStaleMatchUsers(ctx context.Context, olderThan time.Time) ([]int64, error) {
	query := `
        SELECT DISTINCT user_id FROM matches
        WHERE last_calculated_at < $1
        ORDER BY user_id
    `

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, olderThan); err != nil {
		return nil, fmt.Errorf("failed to list stale match users: %w", err)
	}

	return ids, nil
}
