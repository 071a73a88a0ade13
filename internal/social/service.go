package social

import (
	"context"
	"errors"
	"log"
)

var (
	ErrRequestNotFound   = errors.New("connection request not found")
	ErrFavoriteNotFound  = errors.New("favorite not found")
	ErrAlreadyRequested  = errors.New("connection request already pending")
	ErrCannotRequestSelf = errors.New("cannot send connection request to yourself")
	ErrUnauthorized      = errors.New("unauthorized to perform this action")
)

// MatchVisibility is the slice of the matching core driven by social
// actions. Every mutation here is best-effort from the caller's point
// of view: a failed visibility update is a soft inconsistency that the
// stale-match sweep reconciles later.
type MatchVisibility interface {
	HideMatchForRequest(ctx context.Context, userID, candidateID int64) error
	ShowMatchForWithdraw(ctx context.Context, userID, candidateID int64) error
	HideMatchForFavorite(ctx context.Context, userID, candidateID int64) error
	ShowMatchForUnfavorite(ctx context.Context, userID, candidateID int64) error
}

type Service interface {
	SendRequest(ctx context.Context, senderID, receiverID int64, message *string) (*ConnectionRequest, error)
	WithdrawRequest(ctx context.Context, senderID, receiverID int64) error
	GetUserRequests(ctx context.Context, userID int64, direction string) ([]*ConnectionRequest, error)

	AddFavorite(ctx context.Context, userID, favoriteID int64) error
	RemoveFavorite(ctx context.Context, userID, favoriteID int64) error
	GetFavorites(ctx context.Context, userID int64) ([]*Favorite, error)
}

type service struct {
	repo    Repository
	matches MatchVisibility
}

func NewService(repo Repository, matches MatchVisibility) Service {
	return &service{repo: repo, matches: matches}
}

func (s *service) SendRequest(ctx context.Context, senderID, receiverID int64, message *string) (*ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, ErrCannotRequestSelf
	}

	hasPending, err := s.repo.HasPendingRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrAlreadyRequested
	}

	request := &ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     RequestStatusPending,
		Message:    message,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	// The request stands even when the match hide fails.
	if err := s.matches.HideMatchForRequest(ctx, senderID, receiverID); err != nil {
		log.Printf("soft inconsistency: match not hidden after request %d->%d: %v", senderID, receiverID, err)
	}

	return request, nil
}

func (s *service) WithdrawRequest(ctx context.Context, senderID, receiverID int64) error {
	request, err := s.repo.GetPendingRequest(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if request.SenderID != senderID {
		return ErrUnauthorized
	}

	if err := s.repo.WithdrawRequest(ctx, request.ID); err != nil {
		return err
	}

	if err := s.matches.ShowMatchForWithdraw(ctx, senderID, receiverID); err != nil {
		log.Printf("soft inconsistency: match not restored after withdraw %d->%d: %v", senderID, receiverID, err)
	}

	return nil
}

func (s *service) GetUserRequests(ctx context.Context, userID int64, direction string) ([]*ConnectionRequest, error) {
	return s.repo.GetUserRequests(ctx, userID, direction)
}

func (s *service) AddFavorite(ctx context.Context, userID, favoriteID int64) error {
	if userID == favoriteID {
		return ErrCannotRequestSelf
	}

	if err := s.repo.AddFavorite(ctx, userID, favoriteID); err != nil {
		return err
	}

	if err := s.matches.HideMatchForFavorite(ctx, userID, favoriteID); err != nil {
		log.Printf("soft inconsistency: match not hidden after favorite %d->%d: %v", userID, favoriteID, err)
	}

	return nil
}

func (s *service) RemoveFavorite(ctx context.Context, userID, favoriteID int64) error {
	if err := s.repo.RemoveFavorite(ctx, userID, favoriteID); err != nil {
		return err
	}

	if err := s.matches.ShowMatchForUnfavorite(ctx, userID, favoriteID); err != nil {
		log.Printf("soft inconsistency: match not restored after unfavorite %d->%d: %v", userID, favoriteID, err)
	}

	return nil
}

func (s *service) GetFavorites(ctx context.Context, userID int64) ([]*Favorite, error) {
	return s.repo.GetFavorites(ctx, userID)
}
