package profile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/vivahsetu/vivah-backend/internal/matching"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrExpectationNotFound = errors.New("expectation not found")
	ErrInvalidAgeRange     = errors.New("age range is invalid")
)

// MatchService is the slice of the matching core the profile service
// drives. Profile changes invalidate cached scores and refresh the
// materialized matches in the background.
type MatchService interface {
	ProcessNewUserMatches(ctx context.Context, userID int64) (*matching.MaterializeResult, error)
	RecalculateUserMatches(ctx context.Context, userID int64) (*matching.MaterializeResult, error)
	InvalidateUserScores(ctx context.Context, userID int64)
}

type Service interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetExpectation(ctx context.Context, userID int64) (*Expectation, error)

	UpdateExpectation(ctx context.Context, userID int64, req *UpdateExpectationRequest) error
	UpdatePersonal(ctx context.Context, userID int64, req *UpdatePersonalRequest) error
	UpdateEducation(ctx context.Context, userID int64, req *UpdateEducationRequest) error
	UpdateProfession(ctx context.Context, userID int64, req *UpdateProfessionRequest) error
	UpdateHealth(ctx context.Context, userID int64, req *UpdateHealthRequest) error

	ApproveProfile(ctx context.Context, userID int64) error
	RejectProfile(ctx context.Context, userID int64) error

	BlockUser(ctx context.Context, userID, blockedID int64) error
	UnblockUser(ctx context.Context, userID, blockedID int64) error
}

type service struct {
	repo    Repository
	matches MatchService
	// refreshTimeout bounds the background recalculation kicked off
	// after a profile change.
	refreshTimeout time.Duration
}

func NewService(repo Repository, matches MatchService) Service {
	return &service{repo: repo, matches: matches, refreshTimeout: 5 * time.Minute}
}

func (s *service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *service) GetExpectation(ctx context.Context, userID int64) (*Expectation, error) {
	return s.repo.GetExpectation(ctx, userID)
}

func (s *service) UpdateExpectation(ctx context.Context, userID int64, req *UpdateExpectationRequest) error {
	if req.AgeFrom != nil && req.AgeTo != nil && *req.AgeFrom > *req.AgeTo {
		return ErrInvalidAgeRange
	}

	if err := s.repo.UpsertExpectation(ctx, userID, req); err != nil {
		return err
	}

	s.refreshMatches(userID)
	return nil
}

func (s *service) UpdatePersonal(ctx context.Context, userID int64, req *UpdatePersonalRequest) error {
	if err := s.repo.UpsertPersonal(ctx, userID, req); err != nil {
		return err
	}

	s.refreshMatches(userID)
	return nil
}

func (s *service) UpdateEducation(ctx context.Context, userID int64, req *UpdateEducationRequest) error {
	if err := s.repo.UpsertEducation(ctx, userID, req); err != nil {
		return err
	}

	s.refreshMatches(userID)
	return nil
}

func (s *service) UpdateProfession(ctx context.Context, userID int64, req *UpdateProfessionRequest) error {
	if err := s.repo.UpsertProfession(ctx, userID, req); err != nil {
		return err
	}

	s.refreshMatches(userID)
	return nil
}

func (s *service) UpdateHealth(ctx context.Context, userID int64, req *UpdateHealthRequest) error {
	if err := s.repo.UpsertHealth(ctx, userID, req); err != nil {
		return err
	}

	s.refreshMatches(userID)
	return nil
}

// ApproveProfile flips the review status and kicks off match
// materialization for the newly eligible user. The approval itself
// never waits on materialization.
func (s *service) ApproveProfile(ctx context.Context, userID int64) error {
	if err := s.repo.SetReviewStatus(ctx, userID, ReviewStatusApproved, true); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()
		if _, err := s.matches.ProcessNewUserMatches(ctx, userID); err != nil {
			log.Printf("match materialization after approval failed for user %d: %v", userID, err)
		}
	}()

	return nil
}

func (s *service) RejectProfile(ctx context.Context, userID int64) error {
	return s.repo.SetReviewStatus(ctx, userID, ReviewStatusRejected, false)
}

// BlockUser records the block and refreshes both users' materialized
// matches; a blocked pair must disappear from both candidate pools.
func (s *service) BlockUser(ctx context.Context, userID, blockedID int64) error {
	if err := s.repo.BlockUser(ctx, userID, blockedID); err != nil {
		return err
	}

	s.refreshMatches(userID)
	s.refreshMatches(blockedID)
	return nil
}

func (s *service) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	if err := s.repo.UnblockUser(ctx, userID, blockedID); err != nil {
		return err
	}

	s.refreshMatches(userID)
	s.refreshMatches(blockedID)
	return nil
}

// refreshMatches invalidates cached scores and recalculates the user's
// matches in the background. Failures are logged, never surfaced to the
// caller that edited the profile.
func (s *service) refreshMatches(userID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		s.matches.InvalidateUserScores(ctx, userID)
		if _, err := s.matches.RecalculateUserMatches(ctx, userID); err != nil {
			log.Printf("match recalculation failed for user %d: %v", userID, err)
		}
	}()
}
