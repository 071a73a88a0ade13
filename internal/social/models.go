package social

import "time"

// Connection request states.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusDeclined  = "declined"
	RequestStatusWithdrawn = "withdrawn"
)

// ConnectionRequest is a directed interest expression between two
// users.
type ConnectionRequest struct {
	ID         int64      `json:"id" db:"id"`
	SenderID   int64      `json:"sender_id" db:"sender_id"`
	ReceiverID int64      `json:"receiver_id" db:"receiver_id"`
	Status     string     `json:"status" db:"status"`
	Message    *string    `json:"message,omitempty" db:"message"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	WithdrawAt *time.Time `json:"withdrawn_at,omitempty" db:"withdrawn_at"`
}

// Favorite marks one user shortlisting another.
type Favorite struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	FavoriteID int64     `json:"favorite_id" db:"favorite_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
