// cmd/matchd/migrations.go
// Schema bootstrap for the matching store.

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        gender VARCHAR(10) NOT NULL,
        date_of_birth DATE,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
        is_visible BOOLEAN,
        is_profile_approved BOOLEAN NOT NULL DEFAULT FALSE,
        profile_review_status VARCHAR(20) NOT NULL DEFAULT 'pending',
        profile_approved_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE TABLE IF NOT EXISTS expectations (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        age_from INT,
        age_to INT,
        communities TEXT[],
        professions TEXT[],
        education TEXT,
        diet TEXT,
        alcohol TEXT,
        country TEXT,
        state TEXT,
        marital_status TEXT,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE TABLE IF NOT EXISTS personal_records (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        religion TEXT,
        communities TEXT[],
        country TEXT,
        state TEXT,
        marital_status TEXT
    )`,

	`CREATE TABLE IF NOT EXISTS education_records (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        highest_education TEXT
    )`,

	`CREATE TABLE IF NOT EXISTS profession_records (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        occupation TEXT
    )`,

	`CREATE TABLE IF NOT EXISTS health_records (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        diet TEXT,
        alcohol TEXT
    )`,

	`CREATE TABLE IF NOT EXISTS matches (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        candidate_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        score INT NOT NULL,
        reasons TEXT[] NOT NULL DEFAULT '{}',
        is_visible BOOLEAN NOT NULL DEFAULT TRUE,
        hidden_reason VARCHAR(20),
        last_calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (user_id, candidate_id)
    )`,

	`CREATE INDEX IF NOT EXISTS idx_matches_user_visible
        ON matches (user_id, is_visible, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS connection_requests (
        id BIGSERIAL PRIMARY KEY,
        sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        status VARCHAR(20) NOT NULL DEFAULT 'pending',
        message TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        withdrawn_at TIMESTAMPTZ
    )`,

	`CREATE INDEX IF NOT EXISTS idx_connection_requests_pair
        ON connection_requests (sender_id, receiver_id, status)`,

	`CREATE TABLE IF NOT EXISTS favorites (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        favorite_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (user_id, favorite_id)
    )`,

	`CREATE TABLE IF NOT EXISTS blocked_users (
        user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        blocked_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (user_id, blocked_id)
    )`,
}

func runMigrations(db *sqlx.DB) error {
	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
