package social

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateRequest(ctx context.Context, req *ConnectionRequest) error
	GetPendingRequest(ctx context.Context, senderID, receiverID int64) (*ConnectionRequest, error)
	HasPendingRequest(ctx context.Context, userA, userB int64) (bool, error)
	WithdrawRequest(ctx context.Context, requestID int64) error
	GetUserRequests(ctx context.Context, userID int64, direction string) ([]*ConnectionRequest, error)

	AddFavorite(ctx context.Context, userID, favoriteID int64) error
	RemoveFavorite(ctx context.Context, userID, favoriteID int64) error
	IsFavorite(ctx context.Context, userID, favoriteID int64) (bool, error)
	GetFavorites(ctx context.Context, userID int64) ([]*Favorite, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRequest(ctx context.Context, req *ConnectionRequest) error {
	query := `
        INSERT INTO connection_requests (sender_id, receiver_id, status, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		req.SenderID, req.ReceiverID, req.Status, req.Message,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create connection request: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetPendingRequest(ctx context.Context, senderID, receiverID int64) (*ConnectionRequest, error) {
	var req ConnectionRequest
	query := `
        SELECT id, sender_id, receiver_id, status, message, created_at, updated_at, withdrawn_at
        FROM connection_requests
        WHERE sender_id = $1 AND receiver_id = $2 AND status = 'pending'
        ORDER BY created_at DESC
        LIMIT 1
    `

	err := r.db.GetContext(ctx, &req, query, senderID, receiverID)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}

	return &req, nil
}

func (r *postgresRepository) HasPendingRequest(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM connection_requests
            WHERE ((sender_id = $1 AND receiver_id = $2)
                OR (sender_id = $2 AND receiver_id = $1))
              AND status = 'pending'
        )
    `

	err := r.db.GetContext(ctx, &exists, query, userA, userB)
	return exists, err
}

func (r *postgresRepository) WithdrawRequest(ctx context.Context, requestID int64) error {
	query := `
        UPDATE connection_requests
        SET status = 'withdrawn', withdrawn_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND status = 'pending'
    `

	result, err := r.db.ExecContext(ctx, query, requestID)
	if err != nil {
		return fmt.Errorf("failed to withdraw request: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrRequestNotFound
	}

	return nil
}

func (r *postgresRepository) GetUserRequests(ctx context.Context, userID int64, direction string) ([]*ConnectionRequest, error) {
	baseQuery := `
        SELECT id, sender_id, receiver_id, status, message, created_at, updated_at, withdrawn_at
        FROM connection_requests
    `

	var query string
	switch direction {
	case "sent":
		query = baseQuery + " WHERE sender_id = $1 ORDER BY created_at DESC"
	case "received":
		query = baseQuery + " WHERE receiver_id = $1 ORDER BY created_at DESC"
	default:
		query = baseQuery + " WHERE sender_id = $1 OR receiver_id = $1 ORDER BY created_at DESC"
	}

	var requests []*ConnectionRequest
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user requests: %w", err)
	}

	return requests, nil
}

func (r *postgresRepository) AddFavorite(ctx context.Context, userID, favoriteID int64) error {
	query := `
        INSERT INTO favorites (user_id, favorite_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, favorite_id) DO NOTHING
    `

	if _, err := r.db.ExecContext(ctx, query, userID, favoriteID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

func (r *postgresRepository) RemoveFavorite(ctx context.Context, userID, favoriteID int64) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND favorite_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, favoriteID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

func (r *postgresRepository) IsFavorite(ctx context.Context, userID, favoriteID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM favorites
            WHERE user_id = $1 AND favorite_id = $2
        )
    `

	err := r.db.GetContext(ctx, &exists, query, userID, favoriteID)
	return exists, err
}

func (r *postgresRepository) GetFavorites(ctx context.Context, userID int64) ([]*Favorite, error) {
	query := `
        SELECT id, user_id, favorite_id, created_at
        FROM favorites
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	var favorites []*Favorite
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	return favorites, nil
}
